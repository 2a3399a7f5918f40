package mqtt

import (
	"github.com/sweeney/connectivity-led/internal/logic"
)

// FakePublisher records what the monitor would have sent to the broker.
type FakePublisher struct {
	// Events holds published UP/DOWN transitions, oldest first.
	Events []logic.Event
	// Payloads holds the JSON sent for each transition.
	Payloads [][]byte

	// SystemEvents holds STARTUP, HEARTBEAT and SHUTDOWN events.
	SystemEvents []SystemEvent
	// SystemPayloads holds the JSON sent for each system event.
	SystemPayloads [][]byte

	// Injected failures. A failed publish is not recorded.
	PublishError       error
	PublishSystemError error

	Closed bool

	// Connected is returned by IsConnected.
	Connected bool
}

// NewFakePublisher creates a disconnected FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records a transition.
func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records a lifecycle event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Transitions returns the published event types, e.g. [UP DOWN UP].
func (f *FakePublisher) Transitions() []logic.EventType {
	var out []logic.EventType
	for _, e := range f.Events {
		out = append(out, e.Type)
	}
	return out
}

// LastTransition returns the most recent transition, or nil if none was published.
func (f *FakePublisher) LastTransition() *logic.Event {
	if len(f.Events) == 0 {
		return nil
	}
	e := f.Events[len(f.Events)-1]
	return &e
}

// Outages counts DOWN transitions.
func (f *FakePublisher) Outages() int {
	n := 0
	for _, e := range f.Events {
		if e.Type == logic.EventDown {
			n++
		}
	}
	return n
}

// SystemEventNames returns the lifecycle event names in order, e.g. [STARTUP SHUTDOWN].
func (f *FakePublisher) SystemEventNames() []string {
	var out []string
	for _, e := range f.SystemEvents {
		out = append(out, e.Event)
	}
	return out
}

// ShutdownReason returns the reason on the last SHUTDOWN event, and whether one was published.
func (f *FakePublisher) ShutdownReason() (string, bool) {
	for i := len(f.SystemEvents) - 1; i >= 0; i-- {
		if f.SystemEvents[i].Event == "SHUTDOWN" {
			return f.SystemEvents[i].Reason, true
		}
	}
	return "", false
}

// Reset clears recorded events and injected errors.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{}
}
