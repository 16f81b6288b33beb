package console

import (
	"fmt"
	"strings"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// Handler interprets host input. It implements logic.HostHandler and runs
// on the dispatcher's goroutine, so Raise and Stats may touch dispatcher state.
type Handler struct {
	// Raise marks a kind pending in the dispatcher.
	Raise func(logic.Kind)
	// Stats returns the dispatcher's current stats.
	Stats func() logic.Stats
	// Out receives command output.
	Out logic.Observer
}

// HandleHost runs one command line.
func (h *Handler) HandleHost(data []byte) {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "help", "?":
		h.print(helpText)
	case "send", "s":
		h.Raise(logic.KindCycleDue)
		h.print("report requested")
	case "motion", "m":
		h.Raise(logic.KindMotionTriggered)
	case "status", "st":
		h.print(formatStats(h.Stats()))
	default:
		h.print(fmt.Sprintf("unknown command: %s (type 'help' for commands)", cmd))
	}
}

func (h *Handler) print(msg string) {
	if h.Out != nil {
		h.Out.Notify(msg)
	}
}

const helpText = `commands:
  send     request a report now
  motion   simulate a motion interrupt
  status   show uplink state
  help     show this help`

func formatStats(s logic.Stats) string {
	return fmt.Sprintf("joined=%v busy=%v failures=%d protected=%v battery=%d accepted=%d ack=%d nak=%d debounce=%v",
		s.Joined, s.Busy, s.ConsecutiveFailures, s.Protected, s.BatteryLevel,
		s.Accepted, s.Completed, s.Failed, s.DebounceActive)
}
