package logic

import "time"

// Action is what to do with a motion trigger.
type Action int

const (
	ActionSendNow Action = iota
	ActionArm
	ActionCoalesce
)

func (a Action) String() string {
	switch a {
	case ActionSendNow:
		return "SEND_NOW"
	case ActionArm:
		return "ARM"
	case ActionCoalesce:
		return "COALESCE"
	default:
		return "UNKNOWN"
	}
}

// Decision is the outcome of Debouncer.Motion. Wait is set for ActionArm.
type Decision struct {
	Action Action
	Wait   time.Duration
}

// Debouncer enforces the minimum spacing between motion-triggered sends.
type Debouncer struct {
	minInterval time.Duration
	enabled     bool
	active      bool
}

// MinInterval derives the motion spacing from the report interval:
// half the interval, or DefaultMinInterval when the interval is 0.
func MinInterval(reportInterval time.Duration) time.Duration {
	if reportInterval <= 0 {
		return DefaultMinInterval
	}
	return reportInterval / 2
}

// NewDebouncer creates a debouncer for the given report interval.
// A zero interval disables debouncing.
func NewDebouncer(reportInterval time.Duration) *Debouncer {
	return &Debouncer{
		minInterval: MinInterval(reportInterval),
		enabled:     reportInterval > 0,
	}
}

// Motion decides how to handle a motion trigger at now given the last send.
// ActionArm marks the debouncer active; the caller arms the timer for Wait.
func (d *Debouncer) Motion(now, lastSend time.Time) Decision {
	elapsed := now.Sub(lastSend)
	if !d.enabled || elapsed >= d.minInterval {
		return Decision{Action: ActionSendNow}
	}
	if d.active {
		return Decision{Action: ActionCoalesce}
	}
	wait := d.minInterval - elapsed
	if wait <= 0 || wait > d.minInterval {
		// now is before lastSend
		wait = d.minInterval
	}
	d.active = true
	return Decision{Action: ActionArm, Wait: wait}
}

// Active reports whether a deferred send is armed.
func (d *Debouncer) Active() bool {
	return d.active
}

// Clear marks no deferred send as armed.
func (d *Debouncer) Clear() {
	d.active = false
}

// MinSpacing returns the configured minimum spacing.
func (d *Debouncer) MinSpacing() time.Duration {
	return d.minInterval
}
