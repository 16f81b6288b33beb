// Package mqtt carries the tracker's uplink traffic over MQTT, with
// abstraction for testing. The broker stands in for the LoRaWAN network:
// an uplink publish is a transmission, its acknowledgement is the TX
// completion, a subscription delivers downlinks and the connection is the join.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicPrefix is the root of every tracker topic.
const TopicPrefix = "tracker/"

// Topics are the per-device MQTT topics.
type Topics struct {
	Uplink   string
	Downlink string
	System   string
	Diag     string
}

// TopicsFor returns the topics for deviceID.
func TopicsFor(deviceID string) Topics {
	base := TopicPrefix + deviceID
	return Topics{
		Uplink:   base + "/up",
		Downlink: base + "/down",
		System:   base + "/system",
		Diag:     base + "/diag",
	}
}

// Publisher publishes system lifecycle events.
type Publisher interface {
	// PublishSystem sends a system lifecycle event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT", "RESET" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload represents the MQTT message payload for system events
// that don't carry a full status snapshot (LWT).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// UplinkMessage is the envelope published for each transmission.
// Payload is base64 in JSON.
type UplinkMessage struct {
	DeviceID  string `json:"device_id"`
	FCnt      uint32 `json:"f_cnt"`
	FPort     uint8  `json:"f_port"`
	DataRate  int    `json:"data_rate"`
	Payload   []byte `json:"frm_payload"`
	Timestamp string `json:"timestamp"`
}

// DownlinkMessage is the envelope expected on the downlink topic.
type DownlinkMessage struct {
	FPort   uint8  `json:"f_port"`
	Payload []byte `json:"frm_payload"`
}

// FormatUplink creates the JSON envelope for an uplink.
func FormatUplink(msg UplinkMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeDownlink extracts the application payload from a downlink message.
// Anything that is not a DownlinkMessage envelope is taken as raw payload.
func DecodeDownlink(b []byte) []byte {
	var msg DownlinkMessage
	if err := json.Unmarshal(b, &msg); err != nil || msg.Payload == nil {
		return b
	}
	return msg.Payload
}

// maxPayload is the EU868 maximum application payload per data rate.
var maxPayload = [...]int{51, 51, 51, 115, 242, 242, 242, 242}

// MaxPayload returns the largest payload accepted at dataRate.
// Unknown data rates get the most conservative limit.
func MaxPayload(dataRate int) int {
	if dataRate < 0 || dataRate >= len(maxPayload) {
		return maxPayload[0]
	}
	return maxPayload[dataRate]
}
