// Package status provides a thread-safe view of the tracker daemon for the
// HTTP status page, the metrics collector and lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	DeviceID       string
	ReportInterval time.Duration
	HasEnv         bool
	Broker         string
	DataRate       int
	HTTPAddr       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Stats         logic.Stats
	Interval      time.Duration // periodic interval in effect
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Connection reports the broker connection state.
type Connection interface {
	IsConnected() bool
}

// Tracker holds mutable daemon state behind an RWMutex.
// The run loop writes it; HTTP handlers and the metrics collector read it.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	conn Connection
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Interval:  cfg.ReportInterval,
			Config:    cfg,
		},
	}
}

// Update records the dispatcher's stats and the interval in effect.
// Called from runLoop after every drain.
func (t *Tracker) Update(stats logic.Stats, interval time.Duration) {
	t.mu.Lock()
	t.snap.Stats = stats
	t.snap.Interval = interval
	t.mu.Unlock()
}

// TrackConnection makes every Snapshot read the connection state from c
// instead of the last value given to SetMQTTConnected.
func (t *Tracker) TrackConnection(c Connection) {
	t.mu.Lock()
	t.conn = c
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	conn := t.conn
	t.mu.RUnlock()
	if conn != nil {
		s.MQTTConnected = conn.IsConnected()
	}
	s.Now = time.Now()
	return s
}
