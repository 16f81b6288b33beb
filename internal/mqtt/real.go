package mqtt

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// ClientConfig configures the broker connection.
type ClientConfig struct {
	Broker   string
	DeviceID string
	// JoinTimeout bounds the wait for the first connection before a failed
	// join is reported. The client keeps retrying in the background.
	JoinTimeout time.Duration
}

// Client owns the connection to an actual MQTT broker. Radio, Observer and
// PublishSystem all share it. Connection and downlink callbacks are
// delivered to the sink as events.
type Client struct {
	client      paho.Client
	topics      Topics
	sink        func(logic.Event)
	joinTimeout time.Duration
}

// NewClient creates a client for the given broker. It does not connect; call Join.
func NewClient(cfg ClientConfig, sink func(logic.Event)) *Client {
	c := &Client{
		topics:      TopicsFor(cfg.DeviceID),
		sink:        sink,
		joinTimeout: cfg.JoinTimeout,
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "LWT",
	})

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.DeviceID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(c.topics.System, will, 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	c.client = paho.NewClient(opts)
	return c
}

// Join starts connecting. Success is reported as JoinCompleted(true) on
// every (re)connection; a first connection that does not complete within
// the join timeout is reported as JoinCompleted(false).
func (c *Client) Join() {
	token := c.client.Connect()
	go func() {
		if !token.WaitTimeout(c.joinTimeout) {
			log.Printf("mqtt: join timeout after %v", c.joinTimeout)
			c.sink(logic.JoinCompleted(false))
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: join failed: %v", err)
			c.sink(logic.JoinCompleted(false))
		}
	}()
}

func (c *Client) onConnect(pc paho.Client) {
	token := pc.Subscribe(c.topics.Downlink, 1, func(_ paho.Client, msg paho.Message) {
		c.sink(logic.DataReceived(DecodeDownlink(msg.Payload())))
	})
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("mqtt: subscribe %s: timeout", c.topics.Downlink)
	} else if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe %s: %v", c.topics.Downlink, err)
	}
	c.sink(logic.JoinCompleted(true))
}

// Topics returns the device's topics.
func (c *Client) Topics() Topics {
	return c.topics
}

// Radio returns a Radio publishing uplinks on this connection.
func (c *Client) Radio(cfg RadioConfig) *Radio {
	cfg.Topic = c.topics.Uplink
	return NewRadio(c.client, cfg, c.sink)
}

// Observer returns a diagnostic Observer on this connection.
func (c *Client) Observer(backlog int) *Observer {
	return NewObserver(c.client, c.topics.Diag, backlog)
}

// IsConnected reports whether the connection is up.
func (c *Client) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (c *Client) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	token := c.client.Publish(c.topics.System, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
