// Package probe answers "is the network reachable right now?".
// Every Prober bounds its own latency and reports failures as a
// Result with OK=false rather than returning an error.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Prober performs a single reachability test.
type Prober interface {
	// Check runs one probe. It never blocks longer than the prober's
	// timeout and never returns an error: failures are reported in Result.
	Check(ctx context.Context) Result

	// String describes the probe for logging, e.g. "exec ping 8.8.8.8".
	String() string
}

// Result is the outcome of one probe.
type Result struct {
	OK      bool
	Latency time.Duration
	// Err explains a failed probe. Always nil when OK.
	Err error
}

// ErrTimeout is reported when a probe does not complete within its timeout.
var ErrTimeout = errors.New("probe timed out")

// Method selects a Prober implementation.
type Method string

const (
	MethodExec Method = "exec"
	MethodICMP Method = "icmp"
	MethodTCP  Method = "tcp"
	MethodDNS  Method = "dns"
)

// Methods lists the supported methods.
var Methods = []Method{MethodExec, MethodICMP, MethodTCP, MethodDNS}

// Defaults.
const (
	DefaultTarget  = "8.8.8.8"
	DefaultTimeout = 3 * time.Second
	DefaultPort    = 53
	DefaultDNSName = "google.com"
)

// Options configures New.
type Options struct {
	Method     Method
	Target     string
	Timeout    time.Duration
	Port       int    // tcp only
	DNSName    string // dns only
	Privileged bool   // icmp only
}

// New builds the Prober selected by opts.Method, wrapped with Guard.
func New(opts Options) (Prober, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	var p Prober
	switch opts.Method {
	case MethodExec, "":
		p = NewExec(opts.Target, opts.Timeout)
	case MethodICMP:
		p = NewICMP(opts.Target, opts.Timeout, opts.Privileged)
	case MethodTCP:
		p = NewTCP(opts.Target, opts.Port, opts.Timeout)
	case MethodDNS:
		p = NewDNS(opts.Target, opts.DNSName, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown probe method %q", opts.Method)
	}
	return Guard(p), nil
}

// Guard wraps p so a panic inside Check becomes a failed Result.
func Guard(p Prober) Prober {
	return guarded{p}
}

type guarded struct {
	Prober
}

func (g guarded) Check(ctx context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("probe panic: %v", r)}
		}
	}()
	return g.Prober.Check(ctx)
}

// failed builds a failed Result. A caller cancellation is reported as
// context.Canceled; deadline errors map to ErrTimeout.
func failed(ctx context.Context, started time.Time, err error) Result {
	if errors.Is(ctx.Err(), context.Canceled) {
		if !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %v", context.Canceled, err)
		}
		return Result{Latency: time.Since(started), Err: err}
	}
	var ne net.Error
	timedOut := errors.As(err, &ne) && ne.Timeout()
	if timedOut || errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return Result{Latency: time.Since(started), Err: err}
}

func succeeded(started time.Time) Result {
	return Result{OK: true, Latency: time.Since(started)}
}
