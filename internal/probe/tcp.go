package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// TCP probes by opening (and immediately closing) a TCP connection.
type TCP struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

// NewTCP creates a TCP connect prober. A target that already carries a port
// is used as-is; otherwise port (default 53) is appended.
func NewTCP(target string, port int, timeout time.Duration) *TCP {
	if port <= 0 {
		port = DefaultPort
	}
	address := strings.TrimSpace(target)
	if _, _, err := net.SplitHostPort(address); err != nil {
		address = net.JoinHostPort(address, strconv.Itoa(port))
	}
	return &TCP{address: address, timeout: timeout}
}

// Check dials the target.
func (p *TCP) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return failed(ctx, started, fmt.Errorf("tcp dial %s: %w", p.address, err))
	}
	res := succeeded(started)
	conn.Close()
	return res
}

func (p *TCP) String() string {
	return "tcp " + p.address
}
