package sensor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sweeney/tracker-uplink/internal/payload"
)

// DefaultBatteryPath is the power-supply attribute reporting microvolts.
const DefaultBatteryPath = "/sys/class/power_supply/battery/voltage_now"

const standardGravity = 9.80665

// SysfsBattery reads a power_supply voltage_now attribute (µV).
type SysfsBattery struct {
	Path string
}

// ReadMillivolts returns the battery voltage in millivolts.
func (b SysfsBattery) ReadMillivolts() (int, error) {
	uv, err := readInt(b.Path)
	if err != nil {
		return 0, fmt.Errorf("read battery: %w", err)
	}
	return int(uv / 1000), nil
}

// IIOAccelerometer reads an industrial-I/O accelerometer directory,
// e.g. /sys/bus/iio/devices/iio:device0.
type IIOAccelerometer struct {
	Dir string
}

// Read returns the current acceleration in milli-g.
func (a IIOAccelerometer) Read() (payload.Acceleration, error) {
	scale, err := readFloat(filepath.Join(a.Dir, "in_accel_scale"))
	if err != nil {
		return payload.Acceleration{}, fmt.Errorf("read accel scale: %w", err)
	}

	var axes [3]int
	for i, axis := range []string{"x", "y", "z"} {
		raw, err := readInt(filepath.Join(a.Dir, "in_accel_"+axis+"_raw"))
		if err != nil {
			return payload.Acceleration{}, fmt.Errorf("read accel %s: %w", axis, err)
		}
		// scale is m/s² per LSB
		axes[i] = int(float64(raw) * scale / standardGravity * 1000)
	}
	return payload.Acceleration{X: axes[0], Y: axes[1], Z: axes[2]}, nil
}

// IIOEnvironment reads an industrial-I/O environmental sensor directory
// (BME680-class: temperature, humidity, pressure, gas resistance).
type IIOEnvironment struct {
	Dir string
}

// Start checks the sensor is present. IIO sensors sample on read.
func (e IIOEnvironment) Start() error {
	if _, err := os.Stat(e.Dir); err != nil {
		return fmt.Errorf("environment sensor: %w", err)
	}
	return nil
}

// Read returns the current environment. A missing gas channel reads as 0.
func (e IIOEnvironment) Read() (payload.Environment, error) {
	var env payload.Environment

	milliC, err := readFloat(filepath.Join(e.Dir, "in_temp_input"))
	if err != nil {
		return env, fmt.Errorf("read temperature: %w", err)
	}
	env.Temperature = milliC / 1000

	milliRH, err := readFloat(filepath.Join(e.Dir, "in_humidityrelative_input"))
	if err != nil {
		return env, fmt.Errorf("read humidity: %w", err)
	}
	env.Humidity = milliRH / 1000

	kPa, err := readFloat(filepath.Join(e.Dir, "in_pressure_input"))
	if err != nil {
		return env, fmt.Errorf("read pressure: %w", err)
	}
	env.Pressure = kPa * 10

	ohms, err := readFloat(filepath.Join(e.Dir, "in_resistance_input"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return env, fmt.Errorf("read gas resistance: %w", err)
	default:
		env.Gas = ohms / 1000
	}

	return env, nil
}

func readInt(path string) (int64, error) {
	s, err := readAttr(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func readFloat(path string) (float64, error) {
	s, err := readAttr(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func readAttr(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
