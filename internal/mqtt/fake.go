package mqtt

import (
	"sync"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// FakePublisher records published system events for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Events returns a copy of the recorded system events.
func (f *FakePublisher) Events() []SystemEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SystemEvent(nil), f.SystemEvents...)
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishSystemError = nil
	f.Connected = false
}

// FakeRadio is a logic.Radio returning scripted results. Completions are
// not generated; tests deliver them as events.
type FakeRadio struct {
	mu sync.Mutex

	// Results are returned in order; the last is repeated. Empty means ACCEPTED.
	Results []logic.SendResult
	index   int

	// Payloads contains every payload passed to Send.
	Payloads [][]byte
}

// Send records payload and returns the next scripted result.
func (f *FakeRadio) Send(payload []byte) logic.SendResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Payloads = append(f.Payloads, payload)
	if len(f.Results) == 0 {
		return logic.SendAccepted
	}
	res := f.Results[f.index]
	if f.index < len(f.Results)-1 {
		f.index++
	}
	return res
}

// Sent returns the number of Send calls.
func (f *FakeRadio) Sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Payloads)
}
