package logic

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Config holds the Dispatcher's policy settings.
type Config struct {
	// ReportInterval is the periodic cycle length. 0 disables the periodic
	// timer and motion debouncing.
	ReportInterval time.Duration
	// HasEnv selects the long report and enables the environmental sensor.
	HasEnv bool

	LowThreshold      int
	HighThreshold     int
	FailureThreshold  int
	ProtectedInterval time.Duration
}

// DefaultConfig returns the standard policy for the given report interval.
func DefaultConfig(reportInterval time.Duration, hasEnv bool) Config {
	return Config{
		ReportInterval:    reportInterval,
		HasEnv:            hasEnv,
		LowThreshold:      LowThreshold,
		HighThreshold:     HighThreshold,
		FailureThreshold:  FailureThreshold,
		ProtectedInterval: ProtectedInterval,
	}
}

// Deps are the Dispatcher's collaborators. Observer and Host may be nil.
type Deps struct {
	Radio    Radio
	Sensors  Sensors
	Timers   Timers
	Resetter Resetter
	Observer Observer
	Host     HostHandler
}

// State is the scheduling state. Only the Dispatcher mutates it.
type State struct {
	Register Register
	Gate     *Gate
	Guard    *BatteryGuard
	Debounce *Debouncer
	LastSend time.Time
}

// Dispatcher is the single consumer of scheduling events. All policy
// decisions happen here; producers only deliver Events.
type Dispatcher struct {
	cfg  Config
	deps Deps

	state State

	sendOK    bool
	joinOK    bool
	downlink  []byte
	hostInput [][]byte

	stats          Stats
	resetRequested bool
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config, deps Deps) *Dispatcher {
	return &Dispatcher{
		cfg:  cfg,
		deps: deps,
		state: State{
			Gate:     NewGate(cfg.FailureThreshold),
			Guard:    NewBatteryGuard(cfg.LowThreshold, cfg.HighThreshold),
			Debounce: NewDebouncer(cfg.ReportInterval),
		},
	}
}

// SetHost replaces the host channel handler.
func (d *Dispatcher) SetHost(h HostHandler) {
	d.deps.Host = h
}

// Handle records a delivered event. Its data is kept until the kind is
// handled; a repeated kind before then is coalesced.
func (d *Dispatcher) Handle(ev Event) {
	switch ev.Kind {
	case KindUplinkSendCompleted:
		d.sendOK = ev.Success
	case KindJoinCompleted:
		d.joinOK = ev.Success
	case KindUplinkDataReceived:
		d.downlink = ev.Data
	case KindHostDataReceived:
		d.hostInput = append(d.hostInput, ev.Data)
	}
	d.Raise(ev.Kind)
}

// Raise marks k as pending. It must be called from the Dispatcher's goroutine,
// for example from a HostHandler.
func (d *Dispatcher) Raise(k Kind) {
	d.state.Register.Raise(k)
}

// Pending reports whether k is pending.
func (d *Dispatcher) Pending(k Kind) bool {
	return d.state.Register.IsPending(k)
}

// Drain handles every pending kind in priority order, repeating until none
// remain. It stops early once a reset has been requested.
func (d *Dispatcher) Drain(now time.Time) {
	for d.state.Register.Any() && !d.resetRequested {
		for _, k := range Priority {
			if !d.state.Register.IsPending(k) {
				continue
			}
			d.handle(k, now)
			d.state.Register.Consume(k)
			d.stats.Handled[k]++
			if d.resetRequested {
				return
			}
		}
	}
}

func (d *Dispatcher) handle(k Kind, now time.Time) {
	switch k {
	case KindCycleDue:
		d.handleCycleDue(now)
	case KindLocationReady:
		d.handleLocationReady(now)
	case KindMotionTriggered:
		d.handleMotion(now)
	case KindUplinkDataReceived:
		d.handleDownlink()
	case KindUplinkSendCompleted:
		d.handleSendCompleted()
	case KindJoinCompleted:
		d.handleJoinCompleted()
	case KindHostDataReceived:
		d.handleHostData()
	}
}

func (d *Dispatcher) handleCycleDue(now time.Time) {
	if d.state.Gate.Busy() {
		// The expiry that raised this cycle is spent, so a skipped cycle
		// must not leave debounce_active without an armed timer.
		d.clearDebounce()
		d.stats.Skipped++
		d.notify("uplink cycle not finished, skip this event")
		return
	}
	d.stats.Cycles++

	if d.cfg.HasEnv && !d.state.Guard.Protected() {
		if err := d.deps.Sensors.StartEnvironment(); err != nil {
			log.Printf("dispatcher: start environment sensor: %v", err)
		}
	}

	// Protected cycles send below without waiting for this fix, so the
	// location in that report may be stale.
	d.deps.Sensors.RequestLocation()

	if d.cfg.HasEnv {
		if err := d.deps.Sensors.ReadEnvironment(); err != nil {
			log.Printf("dispatcher: read environment sensor: %v", err)
		}
	}
	if err := d.deps.Sensors.ReadMotion(); err != nil {
		log.Printf("dispatcher: read motion sensor: %v", err)
	}

	mv, err := d.deps.Sensors.ReadBattery()
	if err != nil {
		log.Printf("dispatcher: read battery: %v", err)
	} else {
		d.observeBattery(mv / 10)
	}

	d.state.LastSend = now
	d.clearDebounce()

	if d.state.Guard.Protected() {
		d.attemptSend()
	}
}

func (d *Dispatcher) observeBattery(level int) {
	switch d.state.Guard.Observe(level) {
	case TransitionEntered:
		d.deps.Timers.RestartCycle(d.cfg.ProtectedInterval)
		d.notify(fmt.Sprintf("battery protection activated (level=%d)", level))
	case TransitionExited:
		d.deps.Timers.RestartCycle(d.cfg.ReportInterval)
		d.notify(fmt.Sprintf("battery protection deactivated (level=%d)", level))
	}
}

func (d *Dispatcher) handleLocationReady(now time.Time) {
	if d.cfg.HasEnv {
		if err := d.deps.Sensors.ReadEnvironment(); err != nil {
			log.Printf("dispatcher: read environment sensor: %v", err)
		}
	}
	d.state.LastSend = now
	d.clearDebounce()
	d.attemptSend()
}

func (d *Dispatcher) handleMotion(now time.Time) {
	d.notify("motion triggered")

	dec := d.state.Debounce.Motion(now, d.state.LastSend)
	switch dec.Action {
	case ActionSendNow:
		d.state.LastSend = now
		d.Raise(KindCycleDue)
	case ActionArm:
		elapsed := now.Sub(d.state.LastSend)
		d.deps.Timers.ArmDebounce(dec.Wait)
		d.stats.DebounceArmed++
		d.notify(fmt.Sprintf("only %ds since last report, send delayed by %ds",
			int64(elapsed/time.Second), int64(dec.Wait/time.Second)))
	case ActionCoalesce:
		d.stats.Coalesced++
		log.Printf("dispatcher: delayed send already armed, motion coalesced")
	}

	if d.cfg.ReportInterval != 0 {
		d.deps.Timers.RestartCycle(d.interval())
	}
}

func (d *Dispatcher) handleDownlink() {
	data := d.downlink
	d.downlink = nil
	d.stats.Downlinks++
	log.Printf("dispatcher: received downlink (%d bytes)", len(data))
	d.notify(hexDump(data))
}

func (d *Dispatcher) handleSendCompleted() {
	ok := d.sendOK
	if ok {
		d.stats.Completed++
		d.notify("uplink cycle finished ACK")
	} else {
		d.stats.Failed++
		d.notify("uplink cycle failed NAK")
	}

	if d.state.Gate.Complete(ok) {
		d.stats.Resets++
		d.resetRequested = true
		log.Printf("dispatcher: %d consecutive uplink failures, resetting", d.cfg.FailureThreshold)
		if d.deps.Resetter != nil {
			d.deps.Resetter.Reset()
		}
	}
}

func (d *Dispatcher) handleJoinCompleted() {
	if d.joinOK {
		d.stats.Joined = true
		d.notify("joined network")
		return
	}
	d.stats.JoinFailures++
	d.notify("join network failed")
}

func (d *Dispatcher) handleHostData() {
	input := d.hostInput
	d.hostInput = nil
	if d.deps.Host == nil {
		log.Printf("dispatcher: host data dropped, no handler (%d items)", len(input))
		return
	}
	for _, data := range input {
		d.deps.Host.HandleHost(data)
	}
}

// attemptSend hands the report to the radio unless an uplink is in flight.
func (d *Dispatcher) attemptSend() {
	if d.state.Gate.Busy() {
		d.stats.Skipped++
		d.notify("uplink in flight, report not sent")
		return
	}

	long := d.cfg.HasEnv
	if long {
		log.Printf("dispatcher: long packet")
	} else {
		log.Printf("dispatcher: short packet")
	}
	report := d.deps.Sensors.Report(long)

	switch result := d.deps.Radio.Send(report); result {
	case SendAccepted:
		d.state.Gate.Accept()
		d.stats.Accepted++
		d.notify("packet enqueued")
	case SendRadioBusy:
		d.stats.RadioBusy++
		d.notify("radio is busy")
	case SendRejected:
		d.stats.Rejected++
		d.notify("packet error, too big to send with current data rate")
	default:
		log.Printf("dispatcher: unknown send result %d", result)
	}
}

func (d *Dispatcher) clearDebounce() {
	if d.state.Debounce.Active() {
		d.deps.Timers.StopDebounce()
		d.state.Debounce.Clear()
	}
}

// interval returns the periodic interval currently in effect.
func (d *Dispatcher) interval() time.Duration {
	if d.state.Guard.Protected() {
		return d.cfg.ProtectedInterval
	}
	return d.cfg.ReportInterval
}

func (d *Dispatcher) notify(msg string) {
	log.Printf("dispatcher: %s", msg)
	if d.deps.Observer != nil {
		d.deps.Observer.Notify(msg)
	}
}

// ResetRequested reports whether the failure threshold forced a reset.
func (d *Dispatcher) ResetRequested() bool {
	return d.resetRequested
}

// Interval returns the periodic interval currently in effect.
func (d *Dispatcher) Interval() time.Duration {
	return d.interval()
}

// Stats returns a snapshot of the Dispatcher's counters and state.
func (d *Dispatcher) Stats() Stats {
	s := d.stats
	s.Busy = d.state.Gate.Busy()
	s.ConsecutiveFailures = d.state.Gate.Failures()
	s.Protected = d.state.Guard.Protected()
	s.BatteryLevel = d.state.Guard.LastLevel()
	s.DebounceActive = d.state.Debounce.Active()
	s.LastSend = d.state.LastSend
	return s
}

func hexDump(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}
