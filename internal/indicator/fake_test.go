package indicator

import (
	"errors"
	"testing"
)

var _ Indicator = (*Fake)(nil)
var _ Indicator = (*Sysfs)(nil)
var _ Indicator = (*GPIO)(nil)

func TestFakeRecordsCalls(t *testing.T) {
	f := NewFake()

	f.Activate()
	if !f.On {
		t.Error("expected On after Activate")
	}
	f.Deactivate()
	if f.On {
		t.Error("expected Off after Deactivate")
	}
	f.RestoreDefault()
	f.Close()

	want := []string{CallActivate, CallDeactivate, CallRestoreDefault, CallClose}
	if len(f.Calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), f.Calls)
	}
	for i := range want {
		if f.Calls[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], f.Calls[i])
		}
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeActivateError(t *testing.T) {
	f := NewFake()
	f.ActivateError = errors.New("simulated error")

	err := f.Activate()
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
	if f.On {
		t.Error("failed Activate should leave the fake off")
	}
	if f.Count(CallActivate) != 1 {
		t.Errorf("failed call should still be recorded, got %v", f.Calls)
	}
}

func TestFakeRestoreError(t *testing.T) {
	f := NewFake()
	f.RestoreError = errors.New("simulated error")

	if err := f.RestoreDefault(); err == nil {
		t.Error("expected error to be returned")
	}
}

func TestFakeReset(t *testing.T) {
	f := NewFake()
	f.DeactivateError = errors.New("boom")
	f.Activate()
	f.Deactivate()
	f.Close()

	f.Reset()

	if len(f.Calls) != 0 || f.On || f.Closed || f.DeactivateError != nil {
		t.Errorf("reset left state behind: %+v", f)
	}
}
