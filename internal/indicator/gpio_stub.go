//go:build !linux

package indicator

import "fmt"

// GPIO is not available on non-Linux platforms.
type GPIO struct{}

// NewGPIO returns an error on non-Linux platforms.
func NewGPIO(chipName string, pin int, activeLow bool) (*GPIO, error) {
	return nil, fmt.Errorf("%w: gpio not supported on this platform (requires Linux)", ErrClaim)
}

// Activate is not implemented on non-Linux platforms.
func (g *GPIO) Activate() error {
	return fmt.Errorf("gpio: not supported")
}

// Deactivate is not implemented on non-Linux platforms.
func (g *GPIO) Deactivate() error {
	return fmt.Errorf("gpio: not supported")
}

// RestoreDefault is not implemented on non-Linux platforms.
func (g *GPIO) RestoreDefault() error {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (g *GPIO) Close() error {
	return nil
}

func (g *GPIO) String() string {
	return "gpio (unsupported)"
}
