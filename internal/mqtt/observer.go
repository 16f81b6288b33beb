package mqtt

import "sync"

// DefaultBacklog is the number of diagnostics kept while disconnected.
const DefaultBacklog = 32

// Observer publishes diagnostic text to the device's diag topic. It
// implements logic.Observer. Publishing is fire-and-forget: Notify never
// waits for the broker. Messages produced while disconnected are kept in a
// bounded backlog and flushed, oldest first, on the next Notify after
// reconnection.
type Observer struct {
	client transport
	topic  string

	mu      sync.Mutex
	backlog *ringBuffer
}

// NewObserver creates an Observer keeping at most backlog messages while offline.
func NewObserver(client transport, topic string, backlog int) *Observer {
	return &Observer{client: client, topic: topic, backlog: newRingBuffer(backlog)}
}

// Notify publishes msg, or keeps it for later while disconnected.
func (o *Observer) Notify(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	m := bufferedMsg{topic: o.topic, payload: []byte(msg)}
	if !o.client.IsConnectionOpen() {
		o.backlog.push(m)
		return
	}
	for _, old := range o.backlog.drainAll() {
		o.client.Publish(old.topic, old.qos, old.retained, old.payload)
	}
	o.client.Publish(m.topic, m.qos, m.retained, m.payload)
}

// Pending returns the number of backlogged messages.
func (o *Observer) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.backlog.len()
}
