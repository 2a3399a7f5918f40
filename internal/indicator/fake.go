package indicator

// Call names recorded by Fake.
const (
	CallActivate       = "activate"
	CallDeactivate     = "deactivate"
	CallRestoreDefault = "restore"
	CallClose          = "close"
)

// Fake is a test double that records every call in order.
type Fake struct {
	// Calls contains the ordered operation names.
	Calls []string

	// On reflects the last successful Activate/Deactivate.
	On bool

	// Closed tracks if Close was called.
	Closed bool

	// ActivateError, if set, will be returned by Activate.
	ActivateError error

	// DeactivateError, if set, will be returned by Deactivate.
	DeactivateError error

	// RestoreError, if set, will be returned by RestoreDefault.
	RestoreError error
}

// NewFake creates a Fake indicator that starts off.
func NewFake() *Fake {
	return &Fake{}
}

// Activate records the call and turns the fake on.
func (f *Fake) Activate() error {
	f.Calls = append(f.Calls, CallActivate)
	if f.ActivateError != nil {
		return f.ActivateError
	}
	f.On = true
	return nil
}

// Deactivate records the call and turns the fake off.
func (f *Fake) Deactivate() error {
	f.Calls = append(f.Calls, CallDeactivate)
	if f.DeactivateError != nil {
		return f.DeactivateError
	}
	f.On = false
	return nil
}

// RestoreDefault records the call.
func (f *Fake) RestoreDefault() error {
	f.Calls = append(f.Calls, CallRestoreDefault)
	return f.RestoreError
}

// Close marks the indicator as closed.
func (f *Fake) Close() error {
	f.Calls = append(f.Calls, CallClose)
	f.Closed = true
	return nil
}

func (f *Fake) String() string {
	return "fake"
}

// Count returns how many times the named call was made.
func (f *Fake) Count(call string) int {
	n := 0
	for _, c := range f.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// Reset clears recorded calls and injected errors.
func (f *Fake) Reset() {
	f.Calls = nil
	f.On = false
	f.Closed = false
	f.ActivateError = nil
	f.DeactivateError = nil
	f.RestoreError = nil
}
