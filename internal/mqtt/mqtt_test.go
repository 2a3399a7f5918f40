package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/connectivity-led/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventDown,
		From:      logic.StatusUp,
		Failures:  3,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Connectivity.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Connectivity.Timestamp)
	}
	if parsed.Connectivity.Event != "DOWN" {
		t.Errorf("unexpected event: %s", parsed.Connectivity.Event)
	}
	if parsed.Connectivity.From != "UP" {
		t.Errorf("unexpected from: %s", parsed.Connectivity.From)
	}
	if parsed.Connectivity.Failures != 3 {
		t.Errorf("unexpected failures: %d", parsed.Connectivity.Failures)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventUp,
		From:      logic.StatusUnknown,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"connectivity":{"timestamp":"2026-02-02T22:18:12Z","event":"UP","from":"UNKNOWN"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 3, 0, 30, 0, 0, loc),
		Type:      logic.EventUp,
	}

	payload, _ := FormatPayload(event)

	var parsed Payload
	json.Unmarshal(payload, &parsed)
	if parsed.Connectivity.Timestamp != "2026-02-02T22:30:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Connectivity.Timestamp)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "network/connectivity-led/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "network/connectivity-led/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadOmitsReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	}

	payload, _ := FormatSystemPayload(event)

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRawPayload(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(logic.Event{Timestamp: time.Now(), Type: logic.EventUp}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].Type != logic.EventUp {
		t.Errorf("unexpected events: %+v", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("expected 1 payload, got %d", len(f.Payloads))
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "HEARTBEAT" {
		t.Errorf("unexpected system events: %+v", f.SystemEvents)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")
	f.PublishSystemError = errors.New("simulated error")

	if err := f.Publish(logic.Event{Type: logic.EventDown}); err == nil {
		t.Error("expected error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("expected nothing recorded on error")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(logic.Event{Type: logic.EventUp})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 || len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("expected recorded events cleared")
	}
	if f.Closed || f.Connected {
		t.Error("expected flags cleared")
	}
}

func TestFakePublisherOutageHelpers(t *testing.T) {
	f := NewFakePublisher()
	if f.LastTransition() != nil {
		t.Error("expected no last transition before any publish")
	}
	if _, ok := f.ShutdownReason(); ok {
		t.Error("expected no shutdown before any publish")
	}

	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Publish(logic.Event{Type: logic.EventUp, From: logic.StatusUnknown})
	f.Publish(logic.Event{Type: logic.EventDown, From: logic.StatusUp, Failures: 3})
	f.Publish(logic.Event{Type: logic.EventUp, From: logic.StatusDown})
	f.Publish(logic.Event{Type: logic.EventDown, From: logic.StatusUp, Failures: 4})
	f.PublishSystem(SystemEvent{Event: "SHUTDOWN", Reason: "SIGINT"})

	want := []logic.EventType{logic.EventUp, logic.EventDown, logic.EventUp, logic.EventDown}
	got := f.Transitions()
	if len(got) != len(want) {
		t.Fatalf("transitions: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if f.Outages() != 2 {
		t.Errorf("outages: got %d, want 2", f.Outages())
	}
	last := f.LastTransition()
	if last == nil || last.Type != logic.EventDown || last.Failures != 4 || last.From != logic.StatusUp {
		t.Errorf("last transition: got %+v", last)
	}
	if names := f.SystemEventNames(); len(names) != 2 || names[0] != "STARTUP" || names[1] != "SHUTDOWN" {
		t.Errorf("system events: got %v", names)
	}
	if reason, ok := f.ShutdownReason(); !ok || reason != "SIGINT" {
		t.Errorf("shutdown reason: got %q, %v", reason, ok)
	}
}
