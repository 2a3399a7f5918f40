// Package status provides a thread-safe status tracker for the connectivity-led daemon.
// It is read by the HTTP handlers, websocket pushers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/connectivity-led/internal/logic"
)

// NetworkInfo contains local network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Target      string
	Method      string
	IntervalMs  int64
	TimeoutMs   int64
	Threshold   int
	HeartbeatMs int64
	Indicator   string
	Broker      string
	HTTPAddr    string
}

// Sample is the most recent probe outcome.
type Sample struct {
	Time    time.Time
	OK      bool
	Latency time.Duration
	Error   string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Status        logic.Status
	Failures      uint64
	Counts        logic.EventCounts
	LastSample    *Sample
	LastChange    time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the result of one probe and the debounced state after it.
// Called from the monitor loop on every tick.
func (t *Tracker) Update(sample Sample, st logic.Status, failures uint64, counts logic.EventCounts) {
	t.mu.Lock()
	if st != t.snap.Status {
		t.snap.LastChange = sample.Time
	}
	t.snap.Status = st
	t.snap.Failures = failures
	t.snap.Counts = counts
	t.snap.LastSample = &sample
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.LastSample != nil {
		sample := *s.LastSample
		s.LastSample = &sample
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
