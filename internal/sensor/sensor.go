// Package sensor reads the tracker's sensors and assembles reports.
// Real implementations read Linux sysfs attributes; fakes allow testing
// without hardware.
package sensor

import "github.com/sweeney/tracker-uplink/internal/payload"

// Battery reads the battery voltage.
type Battery interface {
	ReadMillivolts() (int, error)
}

// Accelerometer reads an acceleration sample.
type Accelerometer interface {
	Read() (payload.Acceleration, error)
}

// Environmental is the temperature/humidity/pressure/gas sensor.
type Environmental interface {
	// Start wakes the sensor for a new measurement.
	Start() error
	Read() (payload.Environment, error)
}

// Locator is the location subsystem. RequestFix is asynchronous; the
// locator signals completion through the callback it was built with.
type Locator interface {
	RequestFix()
	// Fix returns the last known fix.
	Fix() payload.Fix
}
