package logic

// Gate tracks the single in-flight uplink and consecutive failures.
type Gate struct {
	busy      bool
	failures  int
	threshold int
}

// NewGate creates a gate that requests a reset after threshold
// consecutive failed completions.
func NewGate(threshold int) *Gate {
	return &Gate{threshold: threshold}
}

// Busy reports whether an accepted uplink is awaiting completion.
func (g *Gate) Busy() bool {
	return g.busy
}

// Failures returns the consecutive failure count.
func (g *Gate) Failures() int {
	return g.failures
}

// Accept marks an uplink as in flight.
func (g *Gate) Accept() {
	g.busy = true
}

// Complete releases the gate and updates the failure count. It returns true
// when the failure threshold has been reached; the count restarts from zero.
// This is the only way busy is cleared.
func (g *Gate) Complete(success bool) (reset bool) {
	g.busy = false
	if success {
		g.failures = 0
		return false
	}
	g.failures++
	if g.threshold > 0 && g.failures >= g.threshold {
		g.failures = 0
		return true
	}
	return false
}
