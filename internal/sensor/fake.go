package sensor

import (
	"errors"

	"github.com/sweeney/tracker-uplink/internal/payload"
)

// FakeBattery returns scripted readings. Each call consumes the next one;
// the last is repeated.
type FakeBattery struct {
	Millivolts []int
	index      int
	// ReadError, if set, will be returned by ReadMillivolts.
	ReadError error
}

// ReadMillivolts returns the next scripted reading.
func (f *FakeBattery) ReadMillivolts() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Millivolts) == 0 {
		return 0, errors.New("no readings configured")
	}
	mv := f.Millivolts[f.index]
	if f.index < len(f.Millivolts)-1 {
		f.index++
	}
	return mv, nil
}

// FakeAccelerometer returns a fixed sample.
type FakeAccelerometer struct {
	Value     payload.Acceleration
	ReadError error
}

// Read returns Value.
func (f *FakeAccelerometer) Read() (payload.Acceleration, error) {
	if f.ReadError != nil {
		return payload.Acceleration{}, f.ReadError
	}
	return f.Value, nil
}

// FakeEnvironmental returns a fixed sample and counts Start calls.
type FakeEnvironmental struct {
	Value     payload.Environment
	Starts    int
	ReadError error
}

// Start counts the call.
func (f *FakeEnvironmental) Start() error {
	f.Starts++
	return nil
}

// Read returns Value.
func (f *FakeEnvironmental) Read() (payload.Environment, error) {
	if f.ReadError != nil {
		return payload.Environment{}, f.ReadError
	}
	return f.Value, nil
}

// FakeLocator counts requests and calls OnRequest synchronously, if set.
type FakeLocator struct {
	Current   payload.Fix
	Requests  int
	OnRequest func()
}

// RequestFix counts the request.
func (f *FakeLocator) RequestFix() {
	f.Requests++
	if f.OnRequest != nil {
		f.OnRequest()
	}
}

// Fix returns Current.
func (f *FakeLocator) Fix() payload.Fix {
	return f.Current
}
