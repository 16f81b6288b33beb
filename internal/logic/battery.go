package logic

// Transition is the result of feeding one battery reading to the guard.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionEntered
	TransitionExited
)

func (t Transition) String() string {
	switch t {
	case TransitionEntered:
		return "ENTERED"
	case TransitionExited:
		return "EXITED"
	default:
		return "NONE"
	}
}

// BatteryGuard is a hysteresis state machine over the battery level.
// Protection starts below low and ends only above high.
type BatteryGuard struct {
	low       int
	high      int
	protected bool
	lastLevel int
}

// NewBatteryGuard creates a guard with the given thresholds (low < high).
func NewBatteryGuard(low, high int) *BatteryGuard {
	return &BatteryGuard{low: low, high: high}
}

// Observe records a battery level and returns the mode transition, if any.
func (g *BatteryGuard) Observe(level int) Transition {
	g.lastLevel = level
	switch {
	case !g.protected && level < g.low:
		g.protected = true
		return TransitionEntered
	case g.protected && level > g.high:
		g.protected = false
		return TransitionExited
	}
	return TransitionNone
}

// Protected reports whether battery protection is active.
func (g *BatteryGuard) Protected() bool {
	return g.protected
}

// LastLevel returns the most recent level passed to Observe.
func (g *BatteryGuard) LastLevel() int {
	return g.lastLevel
}
