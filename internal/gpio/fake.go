package gpio

import "sync"

// FakeLine is a test double that raises interrupts on demand.
type FakeLine struct {
	mu       sync.Mutex
	onMotion func()
	// Edges counts Trigger calls delivered to the handler.
	Edges int
	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeLine creates a FakeLine calling onMotion for each Trigger.
func NewFakeLine(onMotion func()) *FakeLine {
	return &FakeLine{onMotion: onMotion}
}

// Trigger simulates one rising edge. It is a no-op after Close.
func (f *FakeLine) Trigger() {
	f.mu.Lock()
	if f.Closed {
		f.mu.Unlock()
		return
	}
	f.Edges++
	h := f.onMotion
	f.mu.Unlock()
	if h != nil {
		h()
	}
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
