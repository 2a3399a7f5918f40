package indicator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sysfs drives an LED exposed by the kernel LED class, e.g. /sys/class/leds/ACT.
type Sysfs struct {
	dir        string
	brightness string
	trigger    string
	restore    string
}

// NewSysfs takes over the LED at dir. It checks the brightness control is
// readable, remembers the currently active trigger (falling back to
// restoreTrigger) and switches the trigger to manualTrigger so the kernel
// stops driving the LED.
func NewSysfs(dir, manualTrigger, restoreTrigger string) (*Sysfs, error) {
	s := &Sysfs{
		dir:        dir,
		brightness: filepath.Join(dir, "brightness"),
		trigger:    filepath.Join(dir, "trigger"),
		restore:    restoreTrigger,
	}

	if _, err := os.ReadFile(s.brightness); err != nil {
		return nil, classify("read brightness", err)
	}

	raw, err := os.ReadFile(s.trigger)
	if err != nil {
		return nil, classify("read trigger", err)
	}
	if active := activeTrigger(string(raw)); active != "" && active != manualTrigger {
		s.restore = active
	}

	if err := writeFile(s.trigger, manualTrigger); err != nil {
		return nil, classify("set trigger", err)
	}
	return s, nil
}

// Activate writes 1 to brightness.
func (s *Sysfs) Activate() error {
	return writeFile(s.brightness, "1")
}

// Deactivate writes 0 to brightness.
func (s *Sysfs) Deactivate() error {
	return writeFile(s.brightness, "0")
}

// RestoreDefault hands the LED back to its original trigger.
func (s *Sysfs) RestoreDefault() error {
	return writeFile(s.trigger, s.restore)
}

// RestoreTrigger returns the trigger RestoreDefault will write.
func (s *Sysfs) RestoreTrigger() string {
	return s.restore
}

// Close is a no-op; sysfs holds no descriptors between writes.
func (s *Sysfs) Close() error {
	return nil
}

func (s *Sysfs) String() string {
	return "sysfs " + s.dir
}

// activeTrigger extracts the bracketed entry from a trigger listing
// such as "none rc-feedback [mmc0] timer".
func activeTrigger(listing string) string {
	for _, field := range strings.Fields(listing) {
		if strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]") {
			return strings.Trim(field, "[]")
		}
	}
	return ""
}

func writeFile(path, value string) error {
	// No O_CREATE: a missing attribute means the device is gone.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(value); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %v", ErrPermission, op, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %v", ErrDeviceNotFound, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
