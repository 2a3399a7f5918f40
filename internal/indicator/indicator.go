// Package indicator drives the status LED with hardware abstraction.
// The GPIO implementation uses the Linux GPIO character device.
// The sysfs implementation uses an on-board LED under /sys/class/leds.
// The fake implementation allows testing without hardware.
package indicator

import "errors"

// Indicator is a binary status light.
type Indicator interface {
	// Activate turns the light on.
	Activate() error

	// Deactivate turns the light off.
	Deactivate() error

	// RestoreDefault returns the light to the behaviour it had before the
	// monitor took it over.
	RestoreDefault() error

	// Close releases hardware resources.
	Close() error

	// String describes the backend for logging.
	String() string
}

// Errors returned while acquiring an indicator. All of them are fatal at startup.
var (
	// ErrClaim is returned when a GPIO line cannot be requested.
	ErrClaim = errors.New("indicator: cannot claim gpio line")

	// ErrDeviceNotFound is returned when the sysfs LED does not exist.
	ErrDeviceNotFound = errors.New("indicator: led device not found")

	// ErrPermission is returned when the LED control files are not writable,
	// usually because the process is not running as root.
	ErrPermission = errors.New("indicator: permission denied (run as root?)")
)

// Defaults match a Raspberry Pi: LED on BCM 17, on-board ACT LED driven by SD card activity.
const (
	DefaultChip           = "gpiochip0"
	DefaultPin            = 17
	DefaultSysfsPath      = "/sys/class/leds/ACT"
	DefaultManualTrigger  = "none"
	DefaultRestoreTrigger = "mmc0"
)
