//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// MotionLine watches the accelerometer INT pin using the Linux GPIO character device.
type MotionLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewMotionLine requests pin on chip as an input and calls onMotion on every
// rising edge. onMotion must not block.
func NewMotionLine(chip string, pin int, onMotion func()) (*MotionLine, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Pull-down keeps the line idle low when the accelerometer is not driving it.
	line, err := c.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			onMotion()
		}),
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", pin, err)
	}

	return &MotionLine{chip: c, line: line}, nil
}

// Value returns the current raw level of the line.
func (m *MotionLine) Value() (int, error) {
	v, err := m.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read motion pin: %w", err)
	}
	return v, nil
}

// Close releases the line and the chip.
func (m *MotionLine) Close() error {
	var errs []error

	if m.line != nil {
		if err := m.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motion pin: %w", err))
		}
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
