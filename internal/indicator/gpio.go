//go:build linux

package indicator

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

// GPIO drives an LED wired to a GPIO line using the Linux GPIO character device.
type GPIO struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	name string
	pin  int
}

// NewGPIO claims pin on the named chip as an output, initially off.
// Any failure is wrapped with ErrClaim.
func NewGPIO(chipName string, pin int, activeLow bool) (*GPIO, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("%w: open chip %s: %v", ErrClaim, chipName, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0), gpiocdev.WithConsumer("connectivity-led")}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := chip.RequestLine(pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("%w: request pin %d: %v", ErrClaim, pin, err)
	}

	return &GPIO{
		chip: chip,
		line: line,
		name: chipName,
		pin:  pin,
	}, nil
}

// Activate drives the line high (or low when active-low).
func (g *GPIO) Activate() error {
	if err := g.line.SetValue(1); err != nil {
		return fmt.Errorf("set pin %d on: %w", g.pin, err)
	}
	return nil
}

// Deactivate drives the line inactive.
func (g *GPIO) Deactivate() error {
	if err := g.line.SetValue(0); err != nil {
		return fmt.Errorf("set pin %d off: %w", g.pin, err)
	}
	return nil
}

// RestoreDefault turns the LED off. A GPIO line has no automatic mode to return to.
func (g *GPIO) RestoreDefault() error {
	return g.Deactivate()
}

// Close releases the line.
// Reconfigures the pin as an input (matching Pi boot defaults) before closing
// so the LED is not left driven after the process exits.
func (g *GPIO) Close() error {
	var err error
	if g.line != nil {
		err = multierr.Append(err, wrap("reconfigure pin", g.line.Reconfigure(gpiocdev.AsInput)))
		err = multierr.Append(err, wrap("close pin", g.line.Close()))
		g.line = nil
	}
	if g.chip != nil {
		err = multierr.Append(err, wrap("close chip", g.chip.Close()))
		g.chip = nil
	}
	return err
}

func (g *GPIO) String() string {
	return fmt.Sprintf("gpio %s pin %d", g.name, g.pin)
}

func wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
