// Package payload assembles the tracker report in its fixed uplink layout.
//
// The layout is a sequence of Cayenne LPP records (channel, type, value):
//
//	ch 1 GPS        0x88  lat, lon ×10000 and alt ×100, 3 bytes each, signed
//	ch 2 battery    0x02  volts ×100, 2 bytes signed
//	ch 3 accel      0x71  x, y, z in milli-g, 2 bytes each, signed
//	ch 4 temp       0x67  °C ×10, 2 bytes signed            (long only)
//	ch 5 humidity   0x68  %RH ×2, 1 byte                    (long only)
//	ch 6 barometer  0x73  hPa ×10, 2 bytes                  (long only)
//	ch 7 gas        0x02  kΩ ×100, 2 bytes signed           (long only)
//
// All multi-byte values are big-endian. Out-of-range values are clamped and
// NaN readings encode as 0.
package payload

import (
	"encoding/binary"
	"math"
)

// Report lengths in bytes.
const (
	ShortLen = 23
	LongLen  = 38
)

const (
	chGPS      = 1
	chBattery  = 2
	chAccel    = 3
	chTemp     = 4
	chHumidity = 5
	chPressure = 6
	chGas      = 7

	typeAnalog      = 0x02
	typeTemperature = 0x67
	typeHumidity    = 0x68
	typeAccel       = 0x71
	typePressure    = 0x73
	typeGPS         = 0x88
)

// Fix is a location fix.
type Fix struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Altitude  float64 // metres
	Valid     bool
}

// Acceleration is an accelerometer sample in milli-g.
type Acceleration struct {
	X, Y, Z int
}

// Environment is an environmental sensor sample.
type Environment struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
	Pressure    float64 // hPa
	Gas         float64 // kΩ
}

// TrackerData is the latest value of everything a report carries.
type TrackerData struct {
	Fix               Fix
	Accel             Acceleration
	Env               Environment
	BatteryMillivolts int
}

// Build encodes d. The long variant appends the environmental records.
func Build(d TrackerData, long bool) []byte {
	size := ShortLen
	if long {
		size = LongLen
	}
	buf := make([]byte, 0, size)

	buf = append(buf, chGPS, typeGPS)
	buf = put24(buf, scale(d.Fix.Latitude, 10000))
	buf = put24(buf, scale(d.Fix.Longitude, 10000))
	buf = put24(buf, scale(d.Fix.Altitude, 100))

	buf = append(buf, chBattery, typeAnalog)
	buf = putInt16(buf, scale(float64(d.BatteryMillivolts)/1000, 100))

	buf = append(buf, chAccel, typeAccel)
	buf = putInt16(buf, int64(d.Accel.X))
	buf = putInt16(buf, int64(d.Accel.Y))
	buf = putInt16(buf, int64(d.Accel.Z))

	if !long {
		return buf
	}

	buf = append(buf, chTemp, typeTemperature)
	buf = putInt16(buf, scale(d.Env.Temperature, 10))

	buf = append(buf, chHumidity, typeHumidity)
	buf = append(buf, byte(clamp(scale(d.Env.Humidity, 2), 0, math.MaxUint8)))

	buf = append(buf, chPressure, typePressure)
	buf = binary.BigEndian.AppendUint16(buf, uint16(clamp(scale(d.Env.Pressure, 10), 0, math.MaxUint16)))

	buf = append(buf, chGas, typeAnalog)
	buf = putInt16(buf, scale(d.Env.Gas, 100))

	return buf
}

// scale converts v to fixed point. NaN encodes as 0 and values beyond the
// int64 range saturate, so clamp sees every non-finite reading.
func scale(v, factor float64) int64 {
	f := math.Round(v * factor)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func putInt16(buf []byte, v int64) []byte {
	return binary.BigEndian.AppendUint16(buf, uint16(int16(clamp(v, math.MinInt16, math.MaxInt16))))
}

const (
	minInt24 = -1 << 23
	maxInt24 = 1<<23 - 1
)

func put24(buf []byte, v int64) []byte {
	u := uint32(int32(clamp(v, minInt24, maxInt24)))
	return append(buf, byte(u>>16), byte(u>>8), byte(u))
}
