//go:build !linux

package gpio

import "errors"

// MotionLine is not available on non-Linux platforms.
type MotionLine struct{}

// NewMotionLine returns an error on non-Linux platforms.
func NewMotionLine(chip string, pin int, onMotion func()) (*MotionLine, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Value is not implemented on non-Linux platforms.
func (m *MotionLine) Value() (int, error) {
	return 0, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (m *MotionLine) Close() error {
	return nil
}
