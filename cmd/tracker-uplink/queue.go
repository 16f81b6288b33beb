package main

import (
	"sync/atomic"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// flagKinds carry no data beyond the outcome kept in joinOK. A producer
// raising one sets its bit and never blocks; repeats before the run loop
// wakes coalesce into the bit.
var flagKinds = []logic.Kind{
	logic.KindCycleDue,
	logic.KindLocationReady,
	logic.KindMotionTriggered,
	logic.KindJoinCompleted,
}

func isFlagKind(k logic.Kind) bool {
	for _, f := range flagKinds {
		if f == k {
			return true
		}
	}
	return false
}

// eventQueue carries producer events to the run loop. Flag kinds go through
// an atomic bitset plus a one-slot wake channel. Data-carrying kinds are
// queued in order and delivery blocks while the queue is full.
type eventQueue struct {
	flags  atomic.Uint32
	joinOK atomic.Bool
	wake   chan struct{}
	data   chan logic.Event
	done   <-chan struct{}
}

func newEventQueue(size int, done <-chan struct{}) *eventQueue {
	return &eventQueue{
		wake: make(chan struct{}, 1),
		data: make(chan logic.Event, size),
		done: done,
	}
}

// Deliver is the producers' sink. Data-carrying events are dropped once
// done is closed.
func (q *eventQueue) Deliver(ev logic.Event) {
	if !isFlagKind(ev.Kind) {
		select {
		case q.data <- ev:
		case <-q.done:
		}
		return
	}

	if ev.Kind == logic.KindJoinCompleted {
		q.joinOK.Store(ev.Success)
	}
	bit := uint32(1) << ev.Kind
	for {
		old := q.flags.Load()
		if old&bit != 0 || q.flags.CompareAndSwap(old, old|bit) {
			break
		}
	}
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// collect hands every queued event to handle without blocking: first the
// data queue in arrival order, then the raised flags.
func (q *eventQueue) collect(handle func(logic.Event)) {
queued:
	for {
		select {
		case ev := <-q.data:
			handle(ev)
		default:
			break queued
		}
	}

	bits := q.flags.Swap(0)
	for _, k := range flagKinds {
		if bits&(uint32(1)<<k) == 0 {
			continue
		}
		ev := logic.Event{Kind: k}
		if k == logic.KindJoinCompleted {
			ev.Success = q.joinOK.Load()
		}
		handle(ev)
	}
}
