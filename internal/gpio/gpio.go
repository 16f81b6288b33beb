// Package gpio delivers accelerometer interrupts from a GPIO line.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Line is a requested interrupt line. The handler passed at request time is
// called once per rising edge from the line's event goroutine.
type Line interface {
	// Close releases the line.
	Close() error
}

// DefaultChip is the GPIO chip the motion line is requested from.
const DefaultChip = "gpiochip0"

// DisabledPin disables the motion line.
const DisabledPin = -1
