package payload

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() TrackerData {
	return TrackerData{
		Fix:               Fix{Latitude: 52.52, Longitude: -0.1278, Altitude: 35.5, Valid: true},
		Accel:             Acceleration{X: 12, Y: -980, Z: 3},
		Env:               Environment{Temperature: 21.4, Humidity: 45.5, Pressure: 1013.2, Gas: 52.25},
		BatteryMillivolts: 4100,
	}
}

func TestBuildShort(t *testing.T) {
	b := Build(sample(), false)
	require.Len(t, b, ShortLen)

	want := []byte{
		chGPS, typeGPS,
		0x08, 0x03, 0x90, // 525200
		0xFF, 0xFB, 0x02, // -1278
		0x00, 0x0D, 0xDE, // 3550
		chBattery, typeAnalog, 0x01, 0x9A, // 410
		chAccel, typeAccel, 0x00, 0x0C, 0xFC, 0x2C, 0x00, 0x03,
	}
	assert.Equal(t, want, b)
}

func TestBuildLong(t *testing.T) {
	b := Build(sample(), true)
	require.Len(t, b, LongLen)

	// The long report starts with the short one.
	assert.Equal(t, Build(sample(), false), b[:ShortLen])

	tail := b[ShortLen:]
	want := []byte{
		chTemp, typeTemperature, 0x00, 0xD6, // 214
		chHumidity, typeHumidity, 0x5B, // 91
		chPressure, typePressure, 0x27, 0x94, // 10132
		chGas, typeAnalog, 0x14, 0x69, // 5225
	}
	assert.Equal(t, want, tail)
}

func TestBuildClampsOutOfRange(t *testing.T) {
	d := sample()
	d.Env.Humidity = 200 // ×2 = 400 > 255
	d.Env.Gas = 1000     // ×100 = 100000 > int16
	d.Env.Pressure = -5  // negative
	d.Fix.Altitude = 1e6 // ×100 > int24
	b := Build(d, true)

	assert.Equal(t, []byte{0x7F, 0xFF, 0xFF}, b[8:11], "altitude clamps to max int24")
	assert.Equal(t, byte(0xFF), b[ShortLen+6], "humidity clamps to 255")
	assert.Equal(t, []byte{0x00, 0x00}, b[ShortLen+9:ShortLen+11], "pressure clamps to 0")
	assert.Equal(t, []byte{0x7F, 0xFF}, b[ShortLen+13:ShortLen+15], "gas clamps to max int16")
}

func TestBuildNonFiniteReadings(t *testing.T) {
	d := sample()
	d.Fix.Latitude = math.NaN()
	d.Fix.Longitude = math.Inf(-1)
	d.Env.Temperature = math.NaN()
	d.Env.Humidity = math.Inf(1)
	d.Env.Pressure = math.Inf(-1)
	d.Env.Gas = math.Inf(1)
	b := Build(d, true)
	require.Len(t, b, LongLen)

	assert.Equal(t, []byte{0x00, 0x00, 0x00}, b[2:5], "NaN latitude encodes as 0")
	assert.Equal(t, []byte{0x80, 0x00, 0x00}, b[5:8], "-Inf longitude clamps to min int24")
	assert.Equal(t, []byte{0x00, 0x00}, b[ShortLen+2:ShortLen+4], "NaN temperature encodes as 0")
	assert.Equal(t, byte(0xFF), b[ShortLen+6], "+Inf humidity clamps to 255")
	assert.Equal(t, []byte{0x00, 0x00}, b[ShortLen+9:ShortLen+11], "-Inf pressure clamps to 0")
	assert.Equal(t, []byte{0x7F, 0xFF}, b[ShortLen+13:ShortLen+15], "+Inf gas clamps to max int16")
}

func TestBuildZeroValue(t *testing.T) {
	b := Build(TrackerData{}, false)
	require.Len(t, b, ShortLen)
	for i, c := range b {
		switch i {
		case 0, 1, 11, 12, 15, 16:
			continue // channel/type bytes
		}
		assert.Zerof(t, c, "byte %d", i)
	}
}
