package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// transport is the part of paho.Client the radio and observer use.
type transport interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	IsConnectionOpen() bool
}

// RadioConfig configures a Radio.
type RadioConfig struct {
	DeviceID string
	Topic    string
	FPort    uint8
	DataRate int
	// ConfirmTimeout bounds the wait for the broker's acknowledgement.
	ConfirmTimeout time.Duration
}

// Radio sends reports as QoS 1 publishes. It implements logic.Radio.
// Completion is reported through the sink as an UplinkSendCompleted event.
type Radio struct {
	client transport
	cfg    RadioConfig
	sink   func(logic.Event)
	now    func() time.Time

	mu       sync.Mutex
	inFlight bool
	fcnt     uint32
}

// NewRadio creates a Radio publishing through client.
func NewRadio(client transport, cfg RadioConfig, sink func(logic.Event)) *Radio {
	return &Radio{client: client, cfg: cfg, sink: sink, now: time.Now}
}

// Send enqueues payload. It returns SendRejected when the payload exceeds
// the data rate's limit and SendRadioBusy while a publish is outstanding or
// the connection is down.
func (r *Radio) Send(payload []byte) logic.SendResult {
	if len(payload) > MaxPayload(r.cfg.DataRate) {
		return logic.SendRejected
	}

	r.mu.Lock()
	if r.inFlight || !r.client.IsConnectionOpen() {
		r.mu.Unlock()
		return logic.SendRadioBusy
	}
	r.inFlight = true
	fcnt := r.fcnt
	r.fcnt++
	r.mu.Unlock()

	msg, err := FormatUplink(UplinkMessage{
		DeviceID:  r.cfg.DeviceID,
		FCnt:      fcnt,
		FPort:     r.cfg.FPort,
		DataRate:  r.cfg.DataRate,
		Payload:   payload,
		Timestamp: r.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		r.release()
		log.Printf("radio: format uplink: %v", err)
		return logic.SendRejected
	}

	// QoS 1: the PUBACK is the network's confirmation
	token := r.client.Publish(r.cfg.Topic, 1, false, msg)
	go r.await(token, fcnt)
	return logic.SendAccepted
}

func (r *Radio) await(token paho.Token, fcnt uint32) {
	var err error
	if !token.WaitTimeout(r.cfg.ConfirmTimeout) {
		err = fmt.Errorf("no confirmation within %v", r.cfg.ConfirmTimeout)
	} else {
		err = token.Error()
	}
	r.release()

	if err != nil {
		log.Printf("radio: uplink %d failed: %v", fcnt, err)
		r.sink(logic.SendCompleted(false))
		return
	}
	r.sink(logic.SendCompleted(true))
}

func (r *Radio) release() {
	r.mu.Lock()
	r.inFlight = false
	r.mu.Unlock()
}

// FrameCounter returns the next uplink frame counter.
func (r *Radio) FrameCounter() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fcnt
}
