package logic

import "time"

// Debouncer turns a stream of probe samples into a stable UP/DOWN status.
// A single success is enough to go UP; going DOWN requires threshold
// consecutive failures.
type Debouncer struct {
	threshold     uint64
	status        Status
	failures      uint64
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewDebouncer creates a debouncer that reports DOWN after threshold
// consecutive failures. A threshold below 1 is treated as 1.
// The startTime is used for calculating uptime in heartbeat events.
func NewDebouncer(threshold int, startTime time.Time) *Debouncer {
	if threshold < 1 {
		threshold = 1
	}
	return &Debouncer{
		threshold:     uint64(threshold),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a new probe sample and returns the resulting decision.
// An Event is only returned when the status changes.
func (d *Debouncer) Process(input Input) Decision {
	if input.OK {
		d.failures = 0
		if d.status == StatusUp {
			return d.decision(nil, false)
		}
		return d.decision(d.transition(StatusUp, input.Time), false)
	}

	d.failures++
	if d.failures < d.threshold {
		return d.decision(nil, true)
	}
	if d.status == StatusDown {
		return d.decision(nil, false)
	}
	return d.decision(d.transition(StatusDown, input.Time), false)
}

func (d *Debouncer) transition(to Status, now time.Time) *Event {
	event := &Event{
		Timestamp: now,
		From:      d.status,
	}
	switch to {
	case StatusUp:
		event.Type = EventUp
		d.eventCounts.Up++
	case StatusDown:
		event.Type = EventDown
		event.Failures = d.failures
		d.eventCounts.Down++
	}
	d.status = to
	return event
}

func (d *Debouncer) decision(event *Event, pending bool) Decision {
	return Decision{
		Event:    event,
		Status:   d.status,
		Failures: d.failures,
		Pending:  pending,
	}
}

// Threshold returns the number of consecutive failures needed for DOWN.
func (d *Debouncer) Threshold() uint64 {
	return d.threshold
}

// CurrentStatus returns the current stable status.
func (d *Debouncer) CurrentStatus() Status {
	return d.status
}

// Failures returns the current consecutive failure count.
func (d *Debouncer) Failures() uint64 {
	return d.failures
}

// EventCountsSnapshot returns a copy of the transition counts.
func (d *Debouncer) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil while the status is still unknown,
// if the interval has not elapsed, or if interval is <= 0 (disabled).
func (d *Debouncer) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if d.status == StatusUnknown {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Status:    d.status,
		Counts:    d.eventCounts,
	}
}
