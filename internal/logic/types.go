// Package logic contains the pure connectivity debounce logic.
// This package has NO external dependencies (no probes, LEDs, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Status is the debounced connectivity status.
type Status string

const (
	// StatusUnknown is the zero value, held until the first transition.
	StatusUnknown Status = ""
	StatusUp      Status = "UP"
	StatusDown    Status = "DOWN"
)

// String returns the status name, UNKNOWN for the zero value.
func (s Status) String() string {
	if s == StatusUnknown {
		return "UNKNOWN"
	}
	return string(s)
}

// EventType represents a status transition event.
type EventType string

const (
	EventUp   EventType = "UP"
	EventDown EventType = "DOWN"
)

// Event represents a status transition to be applied and published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	From      Status
	// Failures is the consecutive failure count that caused a DOWN transition.
	// Always 0 for UP.
	Failures uint64
}

// Input represents a single probe sample.
type Input struct {
	OK   bool
	Time time.Time
}

// Decision is the outcome of processing one Input.
type Decision struct {
	// Event is non-nil only when the sample crossed a status boundary.
	Event *Event
	// Status is the stable status after the sample.
	Status Status
	// Failures is the consecutive failure count after the sample.
	Failures uint64
	// Pending is true when the sample was a failure that has not (yet)
	// reached the threshold and did not change the status.
	Pending bool
}

// EventCounts tracks the number of each transition since startup.
type EventCounts struct {
	Up   int
	Down int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Status    Status
	Counts    EventCounts
}
