// Package logic contains the uplink scheduling policy for the tracker.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"errors"
	"time"
)

// Kind identifies one pending trigger in the Register.
type Kind uint8

const (
	KindCycleDue Kind = iota
	KindLocationReady
	KindMotionTriggered
	KindUplinkDataReceived
	KindUplinkSendCompleted
	KindJoinCompleted
	KindHostDataReceived

	// NumKinds is the number of distinct kinds.
	NumKinds int = iota
)

// Priority is the fixed order in which pending kinds are handled.
var Priority = [NumKinds]Kind{
	KindCycleDue,
	KindLocationReady,
	KindMotionTriggered,
	KindUplinkDataReceived,
	KindUplinkSendCompleted,
	KindJoinCompleted,
	KindHostDataReceived,
}

// String returns the kind name as used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindCycleDue:
		return "CYCLE_DUE"
	case KindLocationReady:
		return "LOCATION_READY"
	case KindMotionTriggered:
		return "MOTION_TRIGGERED"
	case KindUplinkDataReceived:
		return "UPLINK_DATA_RECEIVED"
	case KindUplinkSendCompleted:
		return "UPLINK_SEND_COMPLETED"
	case KindJoinCompleted:
		return "JOIN_COMPLETED"
	case KindHostDataReceived:
		return "HOST_DATA_RECEIVED"
	default:
		return "UNKNOWN"
	}
}

// Event is a typed signal delivered by a producer (timer, interrupt,
// radio callback, host channel) to the Dispatcher.
type Event struct {
	Kind    Kind
	Success bool   // UplinkSendCompleted, JoinCompleted
	Data    []byte // UplinkDataReceived, HostDataReceived
}

// CycleDue requests a new sample-and-send cycle.
func CycleDue() Event { return Event{Kind: KindCycleDue} }

// LocationReady signals that a location fix attempt has finished.
func LocationReady() Event { return Event{Kind: KindLocationReady} }

// MotionTriggered signals an accelerometer interrupt.
func MotionTriggered() Event { return Event{Kind: KindMotionTriggered} }

// DataReceived carries a downlink payload.
func DataReceived(data []byte) Event {
	return Event{Kind: KindUplinkDataReceived, Data: data}
}

// SendCompleted reports the outcome of an accepted uplink.
func SendCompleted(success bool) Event {
	return Event{Kind: KindUplinkSendCompleted, Success: success}
}

// JoinCompleted reports the outcome of a network join.
func JoinCompleted(success bool) Event {
	return Event{Kind: KindJoinCompleted, Success: success}
}

// HostData carries one unit of input from the host/data channel.
func HostData(data []byte) Event {
	return Event{Kind: KindHostDataReceived, Data: data}
}

// SendResult is the synchronous outcome of handing a payload to the radio.
type SendResult uint8

const (
	// SendAccepted means the radio enqueued the payload; completion follows
	// later as an UplinkSendCompleted event.
	SendAccepted SendResult = iota + 1
	// SendRadioBusy is transient; nothing changes and the next cycle retries.
	SendRadioBusy
	// SendRejected means the payload is too large for the current data rate.
	SendRejected
)

func (r SendResult) String() string {
	switch r {
	case SendAccepted:
		return "ACCEPTED"
	case SendRadioBusy:
		return "RADIO_BUSY"
	case SendRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Scheduling policy constants.
const (
	// LowThreshold and HighThreshold are battery levels in 10 mV units.
	LowThreshold  = 290
	HighThreshold = 410

	// ProtectedInterval is the periodic interval while battery protection is active.
	ProtectedInterval = time.Hour

	// FailureThreshold is the number of consecutive failed uplinks that
	// forces a device reset.
	FailureThreshold = 10

	// DefaultMinInterval is the motion spacing used when the report interval is 0.
	DefaultMinInterval = 30 * time.Second
)

// ErrResetRequested is returned by the run loop after the Dispatcher asked
// for a device reset.
var ErrResetRequested = errors.New("device reset requested")

// Radio is the radio/MAC collaborator.
type Radio interface {
	// Send hands a payload to the radio and reports the enqueue outcome.
	Send(payload []byte) SendResult
}

// Sensors is the data-collection subsystem. It owns the report bytes.
type Sensors interface {
	// StartEnvironment wakes the environmental sensor for a new measurement.
	StartEnvironment() error
	// RequestLocation starts a fix attempt. Completion arrives as LocationReady.
	RequestLocation()
	// ReadEnvironment samples the environmental sensor into the report.
	ReadEnvironment() error
	// ReadMotion samples the accelerometer into the report.
	ReadMotion() error
	// ReadBattery samples the battery into the report and returns millivolts.
	ReadBattery() (int, error)
	// Report builds the long or short report payload.
	Report(long bool) []byte
}

// Timers controls the Periodic Cycle Timer and the Debounce Timer.
type Timers interface {
	// RestartCycle stops the periodic timer and restarts it with interval.
	// An interval of 0 leaves it stopped.
	RestartCycle(interval time.Duration)
	// ArmDebounce (re)arms the single-shot debounce timer.
	ArmDebounce(wait time.Duration)
	// StopDebounce disarms the debounce timer.
	StopDebounce()
}

// Observer receives best-effort diagnostic text.
type Observer interface {
	Notify(msg string)
}

// Resetter performs the device reset of last resort.
type Resetter interface {
	Reset()
}

// HostHandler consumes host/data channel input.
type HostHandler interface {
	HandleHost(data []byte)
}

// Stats is a point-in-time view of the Dispatcher's state and counters.
type Stats struct {
	Handled             [NumKinds]int
	Cycles              int
	Skipped             int
	Accepted            int
	RadioBusy           int
	Rejected            int
	Completed           int
	Failed              int
	ConsecutiveFailures int
	Busy                bool
	Protected           bool
	BatteryLevel        int
	DebounceActive      bool
	DebounceArmed       int
	Coalesced           int
	LastSend            time.Time
	Joined              bool
	JoinFailures        int
	Downlinks           int
	Resets              int
}
