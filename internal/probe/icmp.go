package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const protocolICMP = 1

var icmpSeq atomic.Uint32

// ICMP probes with a single ICMP echo request.
// Unprivileged mode uses a datagram socket, which needs
// net.ipv4.ping_group_range to include the process group.
type ICMP struct {
	target     string
	timeout    time.Duration
	privileged bool
}

// NewICMP creates an ICMP echo prober.
func NewICMP(target string, timeout time.Duration, privileged bool) *ICMP {
	return &ICMP{target: target, timeout: timeout, privileged: privileged}
}

// Check sends one echo request and waits for the matching reply.
func (p *ICMP) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	started := time.Now()

	ip, err := resolveIPv4(ctx, p.target)
	if err != nil {
		return failed(ctx, started, err)
	}

	network, listen := "udp4", "0.0.0.0"
	var dst net.Addr = &net.UDPAddr{IP: ip}
	if p.privileged {
		network = "ip4:icmp"
		dst = &net.IPAddr{IP: ip}
	}

	conn, err := icmp.ListenPacket(network, listen)
	if err != nil {
		return failed(ctx, started, fmt.Errorf("icmp listen %s: %w", network, err))
	}
	defer conn.Close()

	// Unblock ReadFrom when the caller cancels.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	seq := int(icmpSeq.Add(1) & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  seq,
			Data: []byte("connectivity-led"),
		},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return failed(ctx, started, fmt.Errorf("icmp marshal: %w", err))
	}
	if _, err := conn.WriteTo(wb, dst); err != nil {
		return failed(ctx, started, fmt.Errorf("icmp send to %s: %w", ip, err))
	}

	rb := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(rb)
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return failed(ctx, started, fmt.Errorf("icmp reply from %s: %w", ip, err))
		}
		reply, err := icmp.ParseMessage(protocolICMP, rb[:n])
		if err != nil {
			continue
		}
		if reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		// The kernel rewrites the ID of unprivileged echo requests, so match on sequence only.
		if echo, ok := reply.Body.(*icmp.Echo); ok && echo.Seq == seq {
			return succeeded(started)
		}
	}
}

func (p *ICMP) String() string {
	return "icmp " + p.target
}

func resolveIPv4(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("icmp: %s is not an IPv4 address", host)
	}
	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("resolve %s: no IPv4 address", host)
	}
	return addrs[0], nil
}
