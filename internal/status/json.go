package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string         `json:"event,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	DeviceID        string         `json:"device_id"`
	Joined          bool           `json:"joined"`
	Busy            bool           `json:"busy"`
	Protected       bool           `json:"battery_protected"`
	BatteryLevel    int            `json:"battery_level"`
	IntervalSeconds int64          `json:"interval_seconds"`
	UptimeSeconds   int64          `json:"uptime_seconds"`
	StartTime       string         `json:"start_time"`
	Timestamp       string         `json:"timestamp"`
	LastSend        string         `json:"last_send,omitempty"`
	MQTT            MQTTStatus     `json:"mqtt"`
	Uplinks         UplinkCounts   `json:"uplinks"`
	Motion          MotionCounts   `json:"motion"`
	Events          map[string]int `json:"events_handled"`
	Config          ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// UplinkCounts are the send outcome counters.
type UplinkCounts struct {
	Cycles              int `json:"cycles"`
	Accepted            int `json:"accepted"`
	Completed           int `json:"completed"`
	Failed              int `json:"failed"`
	RadioBusy           int `json:"radio_busy"`
	Rejected            int `json:"rejected"`
	Skipped             int `json:"skipped"`
	ConsecutiveFailures int `json:"consecutive_failures"`
	Downlinks           int `json:"downlinks"`
}

// MotionCounts report the debounce state.
type MotionCounts struct {
	DebounceActive bool `json:"debounce_active"`
	Armed          int  `json:"armed"`
	Coalesced      int  `json:"coalesced"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ReportIntervalSeconds int64  `json:"report_interval_seconds"`
	HasEnv                bool   `json:"has_env"`
	Broker                string `json:"broker"`
	DataRate              int    `json:"data_rate"`
	HTTPAddr              string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	st := snap.Stats

	events := make(map[string]int, logic.NumKinds)
	for _, k := range logic.Priority {
		events[k.String()] = st.Handled[k]
	}

	inner := StatusInner{
		DeviceID:        snap.Config.DeviceID,
		Joined:          st.Joined,
		Busy:            st.Busy,
		Protected:       st.Protected,
		BatteryLevel:    st.BatteryLevel,
		IntervalSeconds: int64(snap.Interval / time.Second),
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Uplinks: UplinkCounts{
			Cycles:              st.Cycles,
			Accepted:            st.Accepted,
			Completed:           st.Completed,
			Failed:              st.Failed,
			RadioBusy:           st.RadioBusy,
			Rejected:            st.Rejected,
			Skipped:             st.Skipped,
			ConsecutiveFailures: st.ConsecutiveFailures,
			Downlinks:           st.Downlinks,
		},
		Motion: MotionCounts{
			DebounceActive: st.DebounceActive,
			Armed:          st.DebounceArmed,
			Coalesced:      st.Coalesced,
		},
		Events: events,
		Config: ConfigJSON{
			ReportIntervalSeconds: int64(snap.Config.ReportInterval / time.Second),
			HasEnv:                snap.Config.HasEnv,
			Broker:                snap.Config.Broker,
			DataRate:              snap.Config.DataRate,
			HTTPAddr:              snap.Config.HTTPAddr,
		},
	}
	if !st.LastSend.IsZero() {
		inner.LastSend = st.LastSend.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
