package logic

import "time"

// fakeRadio returns scripted results and records every payload it was given.
type fakeRadio struct {
	results  []SendResult
	index    int
	payloads [][]byte
	// gate, if set, is checked on every Send to catch sends while busy.
	gate          *Gate
	sentWhileBusy int
}

func (r *fakeRadio) Send(payload []byte) SendResult {
	if r.gate != nil && r.gate.Busy() {
		r.sentWhileBusy++
	}
	r.payloads = append(r.payloads, payload)
	if len(r.results) == 0 {
		return SendAccepted
	}
	res := r.results[r.index]
	if r.index < len(r.results)-1 {
		r.index++
	}
	return res
}

type fakeSensors struct {
	millivolts  []int
	index       int
	batteryErr  error
	envStarts   int
	envReads    int
	motionReads int
	fixRequests int
	reports     []bool
}

func (s *fakeSensors) StartEnvironment() error { s.envStarts++; return nil }
func (s *fakeSensors) RequestLocation()        { s.fixRequests++ }
func (s *fakeSensors) ReadEnvironment() error  { s.envReads++; return nil }
func (s *fakeSensors) ReadMotion() error       { s.motionReads++; return nil }

func (s *fakeSensors) ReadBattery() (int, error) {
	if s.batteryErr != nil {
		return 0, s.batteryErr
	}
	if len(s.millivolts) == 0 {
		return 3700, nil
	}
	mv := s.millivolts[s.index]
	if s.index < len(s.millivolts)-1 {
		s.index++
	}
	return mv, nil
}

func (s *fakeSensors) Report(long bool) []byte {
	s.reports = append(s.reports, long)
	if long {
		return make([]byte, 38)
	}
	return make([]byte, 23)
}

type fakeTimers struct {
	restarts   []time.Duration
	arms       []time.Duration
	stops      int
	armed      bool
	armedUntil time.Duration
}

func (t *fakeTimers) RestartCycle(interval time.Duration) {
	t.restarts = append(t.restarts, interval)
}

func (t *fakeTimers) ArmDebounce(wait time.Duration) {
	t.arms = append(t.arms, wait)
	t.armed = true
	t.armedUntil = wait
}

func (t *fakeTimers) StopDebounce() {
	t.stops++
	t.armed = false
}

type fakeObserver struct {
	messages []string
}

func (o *fakeObserver) Notify(msg string) { o.messages = append(o.messages, msg) }

type fakeResetter struct {
	resets int
}

func (r *fakeResetter) Reset() { r.resets++ }

type fakeHost struct {
	inputs []string
	onData func([]byte)
}

func (h *fakeHost) HandleHost(data []byte) {
	h.inputs = append(h.inputs, string(data))
	if h.onData != nil {
		h.onData(data)
	}
}

type fixture struct {
	d        *Dispatcher
	radio    *fakeRadio
	sensors  *fakeSensors
	timers   *fakeTimers
	observer *fakeObserver
	resetter *fakeResetter
	host     *fakeHost
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		radio:    &fakeRadio{},
		sensors:  &fakeSensors{},
		timers:   &fakeTimers{},
		observer: &fakeObserver{},
		resetter: &fakeResetter{},
		host:     &fakeHost{},
	}
	f.d = NewDispatcher(cfg, Deps{
		Radio:    f.radio,
		Sensors:  f.sensors,
		Timers:   f.timers,
		Resetter: f.resetter,
		Observer: f.observer,
		Host:     f.host,
	})
	f.radio.gate = f.d.state.Gate
	return f
}

func (f *fixture) deliver(now time.Time, events ...Event) {
	for _, ev := range events {
		f.d.Handle(ev)
	}
	f.d.Drain(now)
}
