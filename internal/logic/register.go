package logic

// Register is the set of pending event kinds. A kind raised twice before it
// is consumed is pending once.
//
// Register is owned by the Dispatcher and is not safe for concurrent use.
// Producers in other goroutines deliver Events over a channel instead.
type Register struct {
	bits uint16
}

// Raise marks k as pending.
func (r *Register) Raise(k Kind) {
	r.bits |= 1 << k
}

// Consume clears k. Call only after k has been fully handled.
func (r *Register) Consume(k Kind) {
	r.bits &^= 1 << k
}

// IsPending reports whether k is pending.
func (r *Register) IsPending(k Kind) bool {
	return r.bits&(1<<k) != 0
}

// Any reports whether any kind is pending.
func (r *Register) Any() bool {
	return r.bits != 0
}

// Pending returns the pending kinds in priority order.
func (r *Register) Pending() []Kind {
	var out []Kind
	for _, k := range Priority {
		if r.IsPending(k) {
			out = append(out, k)
		}
	}
	return out
}
