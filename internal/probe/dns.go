package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

// DNS probes by sending one A query to the target resolver.
// Any well-formed answer counts as reachable, whatever its rcode.
type DNS struct {
	server  string
	name    string
	timeout time.Duration
	client  *dns.Client
}

// NewDNS creates a DNS prober querying name against target.
// A target without a port uses port 53.
func NewDNS(target, name string, timeout time.Duration) *DNS {
	if name == "" {
		name = DefaultDNSName
	}
	server := target
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, strconv.Itoa(DefaultPort))
	}
	return &DNS{
		server:  server,
		name:    dns.Fqdn(name),
		timeout: timeout,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// Check sends the query and waits for a response. Cancelling ctx closes the
// socket so the read returns at once.
func (p *DNS) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(p.name, dns.TypeA)
	msg.RecursionDesired = true

	started := time.Now()
	conn, err := p.client.DialContext(ctx, p.server)
	if err != nil {
		return failed(ctx, started, fmt.Errorf("dns dial %s: %w", p.server, err))
	}
	defer conn.Close()

	// ExchangeWithConn sets its own deadlines, so closing is the only reliable way to unblock it.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, _, err := p.client.ExchangeWithConn(msg, conn); err != nil {
		return failed(ctx, started, fmt.Errorf("dns query %s via %s: %w", p.name, p.server, err))
	}
	return succeeded(started)
}

func (p *DNS) String() string {
	return "dns " + p.name + " @" + p.server
}
