package probe

import (
	"context"
	"errors"
)

// Fake is a test double that returns scripted results.
type Fake struct {
	// Results contains scripted results. Each call to Check consumes the next one.
	// If results are exhausted, the last one is returned repeatedly.
	Results []Result

	// PanicAt makes the call with this 1-based index panic. 0 disables.
	PanicAt int

	// Calls counts Check invocations.
	Calls int
}

// NewFake creates a Fake returning OK for each true and a failure for each false.
func NewFake(samples ...bool) *Fake {
	results := make([]Result, len(samples))
	for i, ok := range samples {
		if ok {
			results[i] = Result{OK: true}
		} else {
			results[i] = Result{Err: errors.New("scripted failure")}
		}
	}
	return &Fake{Results: results}
}

// Check returns the next scripted result.
func (f *Fake) Check(ctx context.Context) Result {
	f.Calls++
	if f.PanicAt == f.Calls {
		panic("scripted panic")
	}
	if len(f.Results) == 0 {
		return Result{Err: errors.New("no results configured")}
	}
	i := f.Calls - 1
	if i >= len(f.Results) {
		i = len(f.Results) - 1
	}
	return f.Results[i]
}

func (f *Fake) String() string {
	return "fake"
}
