package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

func newTestScheduler(t *testing.T) (*Scheduler, chan logic.Event) {
	t.Helper()
	events := make(chan logic.Event, 16)
	s := New(func(ev logic.Event) { events <- ev })
	t.Cleanup(s.Stop)
	return s, events
}

func expectEvent(t *testing.T, events <-chan logic.Event, within time.Duration) logic.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(within):
		t.Fatalf("no event within %v", within)
		return logic.Event{}
	}
}

func expectNone(t *testing.T, events <-chan logic.Event, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %s", ev.Kind)
	case <-time.After(wait):
	}
}

func TestCycleFiresRepeatedly(t *testing.T) {
	s, events := newTestScheduler(t)
	s.RestartCycle(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		ev := expectEvent(t, events, time.Second)
		assert.Equal(t, logic.KindCycleDue, ev.Kind)
	}
	assert.Equal(t, 10*time.Millisecond, s.Interval())
}

func TestCycleZeroIntervalStops(t *testing.T) {
	s, events := newTestScheduler(t)
	s.RestartCycle(10 * time.Millisecond)
	expectEvent(t, events, time.Second)

	s.RestartCycle(0)
	// Drain an expiry that may have raced the restart.
	time.Sleep(20 * time.Millisecond)
	for len(events) > 0 {
		<-events
	}
	expectNone(t, events, 50*time.Millisecond)
	assert.Equal(t, time.Duration(0), s.Interval())
}

func TestDebounceFiresOnce(t *testing.T) {
	s, events := newTestScheduler(t)
	s.ArmDebounce(10 * time.Millisecond)

	ev := expectEvent(t, events, time.Second)
	require.Equal(t, logic.KindCycleDue, ev.Kind)
	expectNone(t, events, 50*time.Millisecond)
}

func TestDebounceRearmReplaces(t *testing.T) {
	s, events := newTestScheduler(t)
	s.ArmDebounce(20 * time.Millisecond)
	s.ArmDebounce(30 * time.Millisecond)

	expectEvent(t, events, time.Second)
	expectNone(t, events, 80*time.Millisecond)
}

func TestDebounceStop(t *testing.T) {
	s, events := newTestScheduler(t)
	s.ArmDebounce(20 * time.Millisecond)
	s.StopDebounce()

	expectNone(t, events, 60*time.Millisecond)
}

func TestStopIsPermanent(t *testing.T) {
	s, events := newTestScheduler(t)
	s.Stop()
	s.RestartCycle(5 * time.Millisecond)
	s.ArmDebounce(5 * time.Millisecond)

	expectNone(t, events, 40*time.Millisecond)
}
