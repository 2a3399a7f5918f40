package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sweeney/connectivity-led/internal/indicator"
	"github.com/sweeney/connectivity-led/internal/logic"
	"github.com/sweeney/connectivity-led/internal/metrics"
	"github.com/sweeney/connectivity-led/internal/monitor"
	"github.com/sweeney/connectivity-led/internal/mqtt"
	"github.com/sweeney/connectivity-led/internal/probe"
	"github.com/sweeney/connectivity-led/internal/status"
)

// brightnessProbe records the LED brightness seen at the start of every probe,
// which is the state left by all earlier ticks.
type brightnessProbe struct {
	inner *probe.Fake
	path  string
	seen  []string
}

func (p *brightnessProbe) Check(ctx context.Context) probe.Result {
	data, _ := os.ReadFile(p.path)
	p.seen = append(p.seen, string(data))
	return p.inner.Check(ctx)
}

func (p *brightnessProbe) String() string { return "brightness-recording fake" }

type rig struct {
	ledDir  string
	probe   *brightnessProbe
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
	metrics *metrics.Metrics
	logs    *observer.ObservedLogs
	mon     *monitor.Monitor
}

func newRig(t *testing.T, threshold int, samples ...bool) *rig {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "brightness"), []byte("0"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "trigger"), []byte("none rc-feedback [mmc0] timer"), 0o644); err != nil {
		t.Fatal(err)
	}

	led, err := indicator.NewSysfs(dir, "none", "actpwr")
	if err != nil {
		t.Fatalf("NewSysfs: %v", err)
	}

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	mock := clock.NewMock()
	mock.Set(start)
	core, logs := observer.New(zapcore.InfoLevel)

	r := &rig{
		ledDir:  dir,
		probe:   &brightnessProbe{inner: probe.NewFake(samples...), path: filepath.Join(dir, "brightness")},
		pub:     mqtt.NewFakePublisher(),
		tracker: status.NewTracker(start, status.Config{Target: "8.8.8.8", Threshold: threshold}),
		metrics: metrics.New(),
		logs:    logs,
	}
	r.mon = monitor.New(monitor.Options{
		Prober:     r.probe,
		Indicator:  led,
		Logger:     zap.New(core),
		Threshold:  threshold,
		Clock:      mock,
		Tracker:    r.tracker,
		Metrics:    r.metrics,
		Publisher:  r.pub,
		MQTTStatus: r.pub,
	})
	return r
}

func (r *rig) run(t *testing.T, ticks int) {
	t.Helper()
	ctx, cancel := context.WithCancelCause(context.Background())
	tick := make(chan time.Time)
	done := make(chan error, 1)
	go func() { done <- r.mon.Run(ctx, tick) }()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= ticks; i++ {
		tick <- base.Add(time.Duration(i) * 10 * time.Second)
	}
	cancel(monitor.ShutdownReason("SIGTERM"))
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func (r *rig) attr(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.ledDir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// TestIntegrationOutageAndRecovery drives a real sysfs LED through
// UP → DOWN → UP and checks every output surface.
func TestIntegrationOutageAndRecovery(t *testing.T) {
	r := newRig(t, 3, true, true, false, false, false, true, true)
	r.run(t, 6)

	want := []string{"0", "1", "1", "1", "1", "0", "1"}
	if strings.Join(r.probe.seen, ",") != strings.Join(want, ",") {
		t.Errorf("brightness before each probe: got %v, want %v", r.probe.seen, want)
	}

	// Shutdown: LED off and handed back to the kernel trigger found at startup.
	if got := r.attr(t, "brightness"); got != "0" {
		t.Errorf("brightness after shutdown: got %q, want 0", got)
	}
	if got := r.attr(t, "trigger"); got != "mmc0" {
		t.Errorf("trigger after shutdown: got %q, want mmc0", got)
	}

	types := r.pub.Transitions()
	if len(types) != 3 || types[0] != logic.EventUp || types[1] != logic.EventDown || types[2] != logic.EventUp {
		t.Errorf("published events: got %v", types)
	}

	snap := r.tracker.Snapshot()
	if snap.Status != logic.StatusUp {
		t.Errorf("tracker status: got %v, want UP", snap.Status)
	}
	if snap.Counts.Up != 2 || snap.Counts.Down != 1 {
		t.Errorf("tracker counts: got %+v", snap.Counts)
	}

	if n := r.logs.FilterMessage("internet DOWN - LED OFF").Len(); n != 1 {
		t.Errorf("DOWN log events: got %d, want 1", n)
	}
}

func TestIntegrationOutageBelowThresholdKeepsLEDOn(t *testing.T) {
	r := newRig(t, 3, true, false, false, true, false, false, true)
	r.run(t, 6)

	for i, b := range r.probe.seen[1:] {
		if b != "1" {
			t.Errorf("probe %d saw brightness %q, want LED held on", i+2, b)
		}
	}
	if len(r.pub.Events) != 1 || r.pub.Outages() != 0 {
		t.Errorf("expected only the initial UP event, got %v", r.pub.Transitions())
	}
}

func TestIntegrationStatusJSONAndMetrics(t *testing.T) {
	r := newRig(t, 2, false, false, false)
	r.run(t, 2)

	var sj status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(r.tracker.Snapshot()), &sj); err != nil {
		t.Fatalf("decode status JSON: %v", err)
	}
	if sj.Status.Internet != "DOWN" {
		t.Errorf("internet: got %q, want DOWN", sj.Status.Internet)
	}
	if sj.Status.Failures != 3 {
		t.Errorf("consecutive_failures: got %d, want 3", sj.Status.Failures)
	}

	ts := httptest.NewServer(r.metrics.Handler())
	defer ts.Close()
	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, line := range []string{
		`connectivity_led_probes_total{result="failure"} 3`,
		`connectivity_led_transitions_total{to="DOWN"} 1`,
		`connectivity_led_internet_up 0`,
		`connectivity_led_consecutive_failures 3`,
	} {
		if !strings.Contains(string(body), line) {
			t.Errorf("metrics missing %q", line)
		}
	}
}

func TestIntegrationSystemEvents(t *testing.T) {
	r := newRig(t, 3, true)
	r.pub.Connected = true
	r.run(t, 1)

	if len(r.pub.SystemEvents) != 2 {
		t.Fatalf("expected STARTUP and SHUTDOWN, got %d system events", len(r.pub.SystemEvents))
	}

	var shutdown status.StatusJSON
	if err := json.Unmarshal(r.pub.SystemPayloads[1], &shutdown); err != nil {
		t.Fatalf("decode shutdown payload: %v", err)
	}
	if shutdown.Status.Event != "SHUTDOWN" || shutdown.Status.Reason != "SIGTERM" {
		t.Errorf("shutdown payload: event=%q reason=%q", shutdown.Status.Event, shutdown.Status.Reason)
	}
	if shutdown.Status.Internet != "UP" {
		t.Errorf("shutdown payload internet: got %q, want UP", shutdown.Status.Internet)
	}
	if !shutdown.Status.MQTT.Connected {
		t.Error("shutdown payload should report MQTT connected")
	}
}
