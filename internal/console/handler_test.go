package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

type recorder struct {
	messages []string
}

func (r *recorder) Notify(msg string) { r.messages = append(r.messages, msg) }

func newHandler() (*Handler, *[]logic.Kind, *recorder) {
	var raised []logic.Kind
	out := &recorder{}
	h := &Handler{
		Raise: func(k logic.Kind) { raised = append(raised, k) },
		Stats: func() logic.Stats {
			return logic.Stats{Joined: true, Accepted: 3, BatteryLevel: 370}
		},
		Out: out,
	}
	return h, &raised, out
}

func TestHandlerSend(t *testing.T) {
	h, raised, out := newHandler()
	h.HandleHost([]byte("send"))

	assert.Equal(t, []logic.Kind{logic.KindCycleDue}, *raised)
	assert.Equal(t, []string{"report requested"}, out.messages)
}

func TestHandlerMotion(t *testing.T) {
	h, raised, _ := newHandler()
	h.HandleHost([]byte("  MOTION  "))

	assert.Equal(t, []logic.Kind{logic.KindMotionTriggered}, *raised)
}

func TestHandlerStatus(t *testing.T) {
	h, raised, out := newHandler()
	h.HandleHost([]byte("status"))

	assert.Empty(t, *raised)
	require.Len(t, out.messages, 1)
	assert.Contains(t, out.messages[0], "joined=true")
	assert.Contains(t, out.messages[0], "accepted=3")
	assert.Contains(t, out.messages[0], "battery=370")
}

func TestHandlerUnknownAndEmpty(t *testing.T) {
	h, raised, out := newHandler()
	h.HandleHost([]byte("reboot now"))
	h.HandleHost([]byte("   "))

	assert.Empty(t, *raised)
	assert.Equal(t, []string{"unknown command: reboot (type 'help' for commands)"}, out.messages)
}

func TestHandlerHelpWithoutOutput(t *testing.T) {
	h, _, _ := newHandler()
	h.Out = nil
	assert.NotPanics(t, func() { h.HandleHost([]byte("help")) })
}

var (
	_ logic.HostHandler = (*Handler)(nil)
	_ logic.Observer    = (*Console)(nil)
)
