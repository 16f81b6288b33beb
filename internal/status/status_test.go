package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

func testConfig() Config {
	return Config{
		DeviceID:       "tracker-1",
		ReportInterval: 90 * time.Second,
		Broker:         "tcp://localhost:1883",
		DataRate:       3,
		HTTPAddr:       ":8080",
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Interval != 90*time.Second {
		t.Errorf("Interval: got %v, want configured interval", snap.Interval)
	}
	if snap.Config.DeviceID != "tracker-1" {
		t.Errorf("Config.DeviceID: got %q", snap.Config.DeviceID)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	var st logic.Stats
	st.Accepted = 4
	st.Protected = true
	st.Handled[logic.KindMotionTriggered] = 2
	tr.Update(st, time.Hour)

	snap := tr.Snapshot()
	if snap.Stats.Accepted != 4 || !snap.Stats.Protected {
		t.Errorf("stats not stored: %+v", snap.Stats)
	}
	if snap.Interval != time.Hour {
		t.Errorf("Interval: got %v, want 1h", snap.Interval)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

type fakeConnection struct {
	mu        sync.Mutex
	connected bool
}

func (c *fakeConnection) set(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *fakeConnection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func TestTrackConnectionReadsLiveState(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	conn := &fakeConnection{}
	tr.TrackConnection(conn)

	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false before connect")
	}

	// No Update between connection changes.
	conn.set(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("connect not visible until the next update")
	}
	conn.set(false)
	tr.SetMQTTConnected(true)
	if tr.Snapshot().MQTTConnected {
		t.Error("tracked connection should win over a stale stored flag")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Now().Add(-5 * time.Minute)
	tr := NewTracker(start, Config{})

	up := tr.Snapshot().Uptime()
	if up < 5*time.Minute || up > 5*time.Minute+time.Second {
		t.Errorf("Uptime: got %v, want ~5m", up)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var st logic.Stats
	st.Cycles = 1
	tr.Update(st, 0)

	snap := tr.Snapshot()
	st.Cycles = 99
	tr.Update(st, 0)

	if snap.Stats.Cycles != 1 {
		t.Error("snapshot should not change after later updates")
	}
}

func fixedSnapshot() Snapshot {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var st logic.Stats
	st.Joined = true
	st.BatteryLevel = 370
	st.Cycles = 3
	st.Accepted = 2
	st.Completed = 1
	st.Busy = true
	st.DebounceArmed = 1
	st.Handled[logic.KindCycleDue] = 3
	st.LastSend = start.Add(3 * time.Minute)
	return Snapshot{
		Stats:         st,
		Interval:      90 * time.Second,
		StartTime:     start,
		Now:           start.Add(5*time.Minute + 500*time.Millisecond),
		MQTTConnected: true,
		Config:        testConfig(),
	}
}

func TestFormatJSON(t *testing.T) {
	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(fixedSnapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := parsed.Status

	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON should not carry event/reason")
	}
	if s.DeviceID != "tracker-1" || !s.Joined || !s.Busy {
		t.Errorf("unexpected identity/state: %+v", s)
	}
	if s.BatteryLevel != 370 {
		t.Errorf("battery_level: got %d", s.BatteryLevel)
	}
	if s.UptimeSeconds != 300 {
		t.Errorf("uptime_seconds: got %d, want 300", s.UptimeSeconds)
	}
	if s.IntervalSeconds != 90 {
		t.Errorf("interval_seconds: got %d", s.IntervalSeconds)
	}
	if s.LastSend != "2026-01-01T12:03:00Z" {
		t.Errorf("last_send: got %q", s.LastSend)
	}
	if s.Uplinks.Cycles != 3 || s.Uplinks.Accepted != 2 || s.Uplinks.Completed != 1 {
		t.Errorf("uplinks: %+v", s.Uplinks)
	}
	if s.Motion.Armed != 1 {
		t.Errorf("motion: %+v", s.Motion)
	}
	if s.Events["CYCLE_DUE"] != 3 || len(s.Events) != logic.NumKinds {
		t.Errorf("events_handled: %v", s.Events)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("mqtt: %+v", s.MQTT)
	}
}

func TestFormatJSONOmitsZeroLastSend(t *testing.T) {
	snap := fixedSnapshot()
	snap.Stats.LastSend = time.Time{}

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := parsed["status"]["last_send"]; ok {
		t.Error("last_send should be omitted before the first report")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(fixedSnapshot(), "SHUTDOWN", "RESET"), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "RESET" {
		t.Errorf("event/reason: got %q/%q", parsed.Status.Event, parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(FormatStatusEvent(fixedSnapshot(), "STARTUP", ""), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := parsed["status"]["reason"]; ok {
		t.Error("reason should be omitted for startup")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			var st logic.Stats
			st.Cycles = i
			tr.Update(st, time.Duration(i)*time.Second)
			tr.SetMQTTConnected(i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = tr.Snapshot()
			_ = FormatJSON(tr.Snapshot())
		}()
	}
	wg.Wait()
}
