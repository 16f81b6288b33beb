package sensor

import (
	"github.com/sweeney/tracker-uplink/internal/payload"
)

// Collector is the data-collection subsystem: it samples the sensors into
// the current TrackerData and builds reports from it. It implements
// logic.Sensors and is used only from the dispatcher's goroutine.
type Collector struct {
	battery Battery
	accel   Accelerometer
	env     Environmental
	locator Locator

	data payload.TrackerData
}

// NewCollector creates a Collector. accel and env may be nil.
func NewCollector(battery Battery, accel Accelerometer, env Environmental, locator Locator) *Collector {
	return &Collector{battery: battery, accel: accel, env: env, locator: locator}
}

// StartEnvironment wakes the environmental sensor.
func (c *Collector) StartEnvironment() error {
	if c.env == nil {
		return nil
	}
	return c.env.Start()
}

// RequestLocation starts a fix attempt.
func (c *Collector) RequestLocation() {
	c.locator.RequestFix()
}

// ReadEnvironment samples the environmental sensor.
func (c *Collector) ReadEnvironment() error {
	if c.env == nil {
		return nil
	}
	env, err := c.env.Read()
	if err != nil {
		return err
	}
	c.data.Env = env
	return nil
}

// ReadMotion samples the accelerometer.
func (c *Collector) ReadMotion() error {
	if c.accel == nil {
		return nil
	}
	acc, err := c.accel.Read()
	if err != nil {
		return err
	}
	c.data.Accel = acc
	return nil
}

// ReadBattery samples the battery and returns millivolts.
func (c *Collector) ReadBattery() (int, error) {
	mv, err := c.battery.ReadMillivolts()
	if err != nil {
		return 0, err
	}
	c.data.BatteryMillivolts = mv
	return mv, nil
}

// Report builds a report from the latest samples and the last known fix.
func (c *Collector) Report(long bool) []byte {
	c.data.Fix = c.locator.Fix()
	return payload.Build(c.data, long)
}

// Data returns the latest samples.
func (c *Collector) Data() payload.TrackerData {
	return c.data
}
