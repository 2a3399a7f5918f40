package config

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/sweeney/connectivity-led/internal/probe"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	var errs []error

	// ---- probe ----
	if cfg.Probe.Target == "" {
		errs = append(errs, errors.New("probe.target is required"))
	}
	if !slices.Contains(probe.Methods, cfg.Probe.Method) {
		errs = append(errs, fmt.Errorf("probe.method %q: must be one of %v", cfg.Probe.Method, probe.Methods))
	}
	if cfg.Probe.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("probe.timeout %v: must be positive", cfg.Probe.Timeout))
	}
	if cfg.Probe.Port < 0 || cfg.Probe.Port > 65535 {
		errs = append(errs, fmt.Errorf("probe.port %d: out of range", cfg.Probe.Port))
	}

	// ---- schedule ----
	if cfg.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval %v: must be positive", cfg.Interval))
	} else if cfg.Probe.Timeout > cfg.Interval {
		errs = append(errs, fmt.Errorf("probe.timeout %v: must not exceed interval %v", cfg.Probe.Timeout, cfg.Interval))
	}
	if cfg.FailureThreshold < 1 {
		errs = append(errs, fmt.Errorf("failure_threshold %d: must be at least 1", cfg.FailureThreshold))
	}
	if cfg.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat %v: must not be negative (0 disables)", cfg.Heartbeat))
	}

	// ---- indicator ----
	switch cfg.Indicator.Backend {
	case BackendGPIO:
		if cfg.Indicator.GPIO.Chip == "" {
			errs = append(errs, errors.New("indicator.gpio.chip is required"))
		}
		if cfg.Indicator.GPIO.Pin < 0 {
			errs = append(errs, fmt.Errorf("indicator.gpio.pin %d: must not be negative", cfg.Indicator.GPIO.Pin))
		}
	case BackendSysfs:
		if cfg.Indicator.Sysfs.Path == "" {
			errs = append(errs, errors.New("indicator.sysfs.path is required"))
		}
		if cfg.Indicator.Sysfs.ManualTrigger == "" {
			errs = append(errs, errors.New("indicator.sysfs.manual_trigger is required"))
		}
		if cfg.Indicator.Sysfs.DefaultTrigger == "" {
			errs = append(errs, errors.New("indicator.sysfs.default_trigger is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("indicator.backend %q: must be %q or %q", cfg.Indicator.Backend, BackendGPIO, BackendSysfs))
	}

	return multierr.Combine(errs...)
}
