package sensor

import (
	"sync"
	"time"

	"github.com/sweeney/tracker-uplink/internal/payload"
)

// StaticLocator reports a configured position after a simulated
// time-to-fix. It stands in for a GNSS receiver on boards without one.
type StaticLocator struct {
	position payload.Fix
	fixTime  time.Duration
	onReady  func()

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
	last    payload.Fix
}

// NewStaticLocator creates a locator that calls onReady fixTime after each
// RequestFix. onReady must not block.
func NewStaticLocator(position payload.Fix, fixTime time.Duration, onReady func()) *StaticLocator {
	position.Valid = true
	return &StaticLocator{position: position, fixTime: fixTime, onReady: onReady}
}

// RequestFix starts a fix attempt. A request while one is pending is ignored.
func (l *StaticLocator) RequestFix() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending {
		return
	}
	l.pending = true
	l.timer = time.AfterFunc(l.fixTime, l.complete)
}

func (l *StaticLocator) complete() {
	l.mu.Lock()
	if !l.pending {
		l.mu.Unlock()
		return
	}
	l.pending = false
	l.timer = nil
	l.last = l.position
	l.mu.Unlock()
	if l.onReady != nil {
		l.onReady()
	}
}

// Fix returns the last completed fix. It is invalid until the first fix.
func (l *StaticLocator) Fix() payload.Fix {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Stop cancels a pending fix attempt.
func (l *StaticLocator) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.pending = false
}
