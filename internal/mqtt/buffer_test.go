package mqtt

import (
	"testing"
)

func pushN(rb *ringBuffer, from, to int) {
	for i := from; i < to; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(4)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferOrder(t *testing.T) {
	rb := newRingBuffer(8)
	pushN(rb, 0, 5)
	if rb.len() != 5 {
		t.Fatalf("len: got %d, want 5", rb.len())
	}

	got := rb.drainAll()
	for i, m := range got {
		if m.payload[0] != byte(i) {
			t.Errorf("item %d: got payload %d", i, m.payload[0])
		}
	}
	if rb.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", rb.len())
	}
}

func TestRingBufferOverflowKeepsNewest(t *testing.T) {
	rb := newRingBuffer(3)
	pushN(rb, 0, 7)

	if rb.dropped != 4 {
		t.Errorf("dropped: got %d, want 4", rb.dropped)
	}
	got := rb.drainAll()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, m := range got {
		if want := byte(i + 4); m.payload[0] != want {
			t.Errorf("item %d: got %d, want %d", i, m.payload[0], want)
		}
	}
	if rb.dropped != 0 {
		t.Error("drain should clear the dropped count")
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	rb := newRingBuffer(3)
	pushN(rb, 0, 5)
	rb.drainAll()

	pushN(rb, 10, 12)
	got := rb.drainAll()
	if len(got) != 2 || got[0].payload[0] != 10 || got[1].payload[0] != 11 {
		t.Errorf("unexpected second cycle contents: %v", got)
	}
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	rb := newRingBuffer(0)
	pushN(rb, 0, 2)
	got := rb.drainAll()
	if len(got) != 1 || got[0].payload[0] != 1 {
		t.Errorf("capacity 0 should hold the newest message, got %v", got)
	}
}
