// Package timer provides the Periodic Cycle Timer and the Debounce Timer.
// Expiry delivers a CycleDue event through the sink; it never touches
// scheduling state directly.
package timer

import (
	"sync"
	"time"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// Scheduler owns the two timers. It implements logic.Timers.
type Scheduler struct {
	sink func(logic.Event)

	mu          sync.Mutex
	interval    time.Duration
	cycle       *time.Timer
	cycleGen    uint64
	debounce    *time.Timer
	debounceGen uint64
	stopped     bool
}

// New creates a Scheduler delivering expiries to sink. Both timers start stopped.
func New(sink func(logic.Event)) *Scheduler {
	return &Scheduler{sink: sink}
}

// RestartCycle stops the periodic timer and, for a positive interval,
// starts it again so that it fires every interval.
func (s *Scheduler) RestartCycle(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopCycleLocked()
	s.interval = interval
	if interval <= 0 {
		return
	}
	s.scheduleCycleLocked(s.cycleGen)
}

// Interval returns the periodic interval last set, 0 when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) stopCycleLocked() {
	if s.cycle != nil {
		s.cycle.Stop()
		s.cycle = nil
	}
	s.cycleGen++
}

func (s *Scheduler) scheduleCycleLocked(gen uint64) {
	s.cycle = time.AfterFunc(s.interval, func() { s.fireCycle(gen) })
}

func (s *Scheduler) fireCycle(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.cycleGen {
		s.mu.Unlock()
		return
	}
	s.scheduleCycleLocked(gen)
	s.mu.Unlock()
	s.sink(logic.CycleDue())
}

// ArmDebounce stops any pending debounce expiry and arms a new one after wait.
// At most one expiry is ever pending.
func (s *Scheduler) ArmDebounce(wait time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopDebounceLocked()
	gen := s.debounceGen
	s.debounce = time.AfterFunc(wait, func() { s.fireDebounce(gen) })
}

// StopDebounce disarms the debounce timer.
func (s *Scheduler) StopDebounce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopDebounceLocked()
}

func (s *Scheduler) stopDebounceLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.debounceGen++
}

func (s *Scheduler) fireDebounce(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.debounceGen {
		s.mu.Unlock()
		return
	}
	s.debounce = nil
	s.mu.Unlock()
	s.sink(logic.CycleDue())
}

// Stop disarms both timers permanently.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCycleLocked()
	s.stopDebounceLocked()
	s.stopped = true
}
