// Package monitor runs the probe → debounce → indicator loop.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sweeney/connectivity-led/internal/indicator"
	"github.com/sweeney/connectivity-led/internal/logic"
	"github.com/sweeney/connectivity-led/internal/metrics"
	"github.com/sweeney/connectivity-led/internal/mqtt"
	"github.com/sweeney/connectivity-led/internal/probe"
	"github.com/sweeney/connectivity-led/internal/status"
)

// ShutdownReason is a context cancellation cause naming why the monitor stopped,
// e.g. "SIGTERM".
type ShutdownReason string

func (r ShutdownReason) Error() string {
	return string(r)
}

// Options wires the monitor's collaborators. Prober, Indicator and Logger are
// required; everything else is optional.
type Options struct {
	Prober    probe.Prober
	Indicator indicator.Indicator
	Logger    *zap.Logger

	// Threshold is the number of consecutive failures before DOWN.
	Threshold int
	// Heartbeat is the interval between heartbeat events. 0 disables.
	Heartbeat time.Duration
	// Clock defaults to the wall clock.
	Clock clock.Clock

	Tracker    *status.Tracker
	Metrics    *metrics.Metrics
	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus
	// Network, if set, is re-read for every heartbeat.
	Network func() *status.NetworkInfo
}

// Monitor owns the indicator and probe for the lifetime of the process.
type Monitor struct {
	prober    probe.Prober
	ind       indicator.Indicator
	log       *zap.Logger
	clock     clock.Clock
	heartbeat time.Duration
	tracker   *status.Tracker
	metrics   *metrics.Metrics
	publisher mqtt.Publisher
	mqttState mqtt.ConnectionStatus
	network   func() *status.NetworkInfo

	debouncer *logic.Debouncer
	// ledWant is the status the LED still has to be driven to after a failed write.
	ledWant logic.Status

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a monitor. The debouncer starts UNKNOWN and the LED is left
// untouched until the first transition.
func New(opts Options) *Monitor {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		prober:    opts.Prober,
		ind:       opts.Indicator,
		log:       log,
		clock:     clk,
		heartbeat: opts.Heartbeat,
		tracker:   opts.Tracker,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		mqttState: opts.MQTTStatus,
		network:   opts.Network,
		debouncer: logic.NewDebouncer(opts.Threshold, clk.Now()),
	}
}

// Run probes once immediately and then once per value received on tick, until
// ctx is cancelled or tick is closed. The tick value is used as the sample time.
// On return the LED has been deactivated and restored to its default.
func (m *Monitor) Run(ctx context.Context, tick <-chan time.Time) error {
	m.log.Info("connectivity monitor started",
		zap.Stringer("probe", m.prober),
		zap.Stringer("indicator", m.ind),
		zap.Uint64("threshold", m.debouncer.Threshold()),
	)
	m.publishSystem("STARTUP", "", true)

	reason := ""
	defer func() {
		m.Shutdown(reason)
	}()

	m.step(ctx, m.clock.Now())
	for {
		select {
		case <-ctx.Done():
			reason = shutdownReason(ctx)
			m.log.Info("shutdown requested", zap.String("reason", reason))
			return nil
		case t, ok := <-tick:
			if !ok {
				reason = "TICKER_CLOSED"
				return nil
			}
			if ctx.Err() != nil {
				continue
			}
			m.step(ctx, t)
		}
	}
}

func shutdownReason(ctx context.Context) string {
	var r ShutdownReason
	if errors.As(context.Cause(ctx), &r) {
		return string(r)
	}
	return "CANCELLED"
}

// step runs one probe and applies its outcome. A panic is logged and swallowed
// so the next tick still runs.
func (m *Monitor) step(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("unexpected error in monitor step", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	res := m.prober.Check(ctx)
	if !res.OK && errors.Is(res.Err, context.Canceled) {
		// Interrupted by shutdown; not a real sample.
		return
	}

	dec := m.debouncer.Process(logic.Input{OK: res.OK, Time: now})

	m.log.Debug("probe",
		zap.Bool("ok", res.OK),
		zap.Duration("latency", res.Latency),
		zap.Stringer("status", dec.Status),
		zap.Uint64("failures", dec.Failures),
		zap.Error(res.Err),
	)
	if dec.Pending {
		m.log.Debug("probe failed, below threshold",
			zap.Uint64("failures", dec.Failures),
			zap.Uint64("threshold", m.debouncer.Threshold()),
			zap.Error(res.Err),
		)
	}

	if dec.Event != nil {
		m.transition(*dec.Event)
	} else if m.ledWant != logic.StatusUnknown {
		m.drive(m.ledWant)
	}

	m.metrics.ObserveProbe(res.OK, res.Latency, dec.Status, dec.Failures)
	if m.tracker != nil {
		sample := status.Sample{Time: now, OK: res.OK, Latency: res.Latency}
		if res.Err != nil {
			sample.Error = res.Err.Error()
		}
		m.tracker.Update(sample, dec.Status, dec.Failures, m.debouncer.EventCountsSnapshot())
		if m.mqttState != nil {
			m.tracker.SetMQTTConnected(m.mqttState.IsConnected())
		}
	}

	m.checkHeartbeat(now)
}

func (m *Monitor) transition(e logic.Event) {
	switch e.Type {
	case logic.EventUp:
		m.log.Info("internet UP - LED ON", zap.Stringer("from", e.From))
		m.drive(logic.StatusUp)
	case logic.EventDown:
		m.log.Warn("internet DOWN - LED OFF", zap.Uint64("failures", e.Failures), zap.Stringer("from", e.From))
		m.drive(logic.StatusDown)
	}
	m.metrics.ObserveTransition(e)

	if m.publisher != nil {
		if err := m.publisher.Publish(e); err != nil {
			m.log.Warn("publish transition failed", zap.Error(err))
		}
	}
}

// drive sets the LED for st. A failed write is logged and retried on the next tick.
func (m *Monitor) drive(st logic.Status) {
	var err error
	if st == logic.StatusUp {
		err = m.ind.Activate()
	} else {
		err = m.ind.Deactivate()
	}
	if err != nil {
		m.ledWant = st
		m.metrics.ObserveIndicatorError()
		m.log.Error("indicator write failed, will retry", zap.Stringer("want", st), zap.Error(err))
		return
	}
	m.ledWant = logic.StatusUnknown
}

func (m *Monitor) checkHeartbeat(now time.Time) {
	hb := m.debouncer.CheckHeartbeat(now, m.heartbeat)
	if hb == nil {
		return
	}
	m.log.Info("heartbeat",
		zap.Duration("uptime", hb.Uptime),
		zap.Stringer("status", hb.Status),
		zap.Int("up", hb.Counts.Up),
		zap.Int("down", hb.Counts.Down),
	)
	if m.tracker != nil && m.network != nil {
		if info := m.network(); info != nil {
			m.tracker.SetNetwork(info)
		}
	}
	m.publishSystem("HEARTBEAT", "", false)
}

func (m *Monitor) publishSystem(event, reason string, retained bool) {
	if m.publisher == nil {
		return
	}
	ev := mqtt.SystemEvent{
		Timestamp: m.clock.Now(),
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if m.tracker != nil {
		if m.mqttState != nil {
			m.tracker.SetMQTTConnected(m.mqttState.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(m.tracker.Snapshot(), event, reason)
	}
	if err := m.publisher.PublishSystem(ev); err != nil {
		m.log.Warn("publish system event failed", zap.String("event", event), zap.Error(err))
	}
}

// Shutdown deactivates the LED and then restores its default behaviour, each
// exactly once however many times Shutdown is called. Errors are logged and
// returned combined; they never prevent the remaining steps.
func (m *Monitor) Shutdown(reason string) error {
	m.shutdownOnce.Do(func() {
		var err error
		if e := m.ind.Deactivate(); e != nil {
			m.log.Error("deactivate indicator on shutdown", zap.Error(e))
			err = multierr.Append(err, e)
		}
		if e := m.ind.RestoreDefault(); e != nil {
			m.log.Error("restore indicator default on shutdown", zap.Error(e))
			err = multierr.Append(err, e)
		}
		m.publishSystem("SHUTDOWN", reason, true)
		m.log.Info("connectivity monitor stopped", zap.String("reason", reason))
		m.shutdownErr = err
	})
	return m.shutdownErr
}

// Status returns the current debounced status.
func (m *Monitor) Status() logic.Status {
	return m.debouncer.CurrentStatus()
}
