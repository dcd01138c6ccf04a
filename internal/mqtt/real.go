package mqtt

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sweeney/boilerstat/internal/logic"
)

// Options configures a RealClient.
type Options struct {
	Broker       string
	ClientID     string // a random suffix is appended to avoid session collisions
	ReadingTopic string
	ControlTopic string
	SystemTopic  string

	// OnControl receives raw control-topic payloads.
	OnControl func(payload []byte)
	// OnConnectionChange is called after connect and after connection loss.
	OnConnectionChange func(connected bool)
}

// RealClient publishes to an actual MQTT broker and subscribes to the
// control topic on every (re)connect.
type RealClient struct {
	client paho.Client
	opts   Options
}

// UniqueClientID appends a short random suffix to base.
func UniqueClientID(base string) string {
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

// NewRealClient creates a client for the given broker. It does not connect;
// call Connect.
func NewRealClient(opts Options) *RealClient {
	c := &RealClient{opts: opts}

	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(UniqueClientID(opts.ClientID)).
		SetCleanSession(true).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOrderMatters(false).
		SetBinaryWill(opts.SystemTopic, WillPayload(time.Now()), 1, true)

	po.SetOnConnectHandler(c.onConnect)
	po.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Printf("mqtt: connection lost: %v", err)
		c.notify(false)
	})

	c.client = paho.NewClient(po)
	return c
}

// Connect starts connecting in the background. Retries until the broker is
// reachable; session readiness is reported through IsConnected.
func (c *RealClient) Connect() {
	token := c.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("mqtt: connect to %s: %v", c.opts.Broker, err)
		}
	}()
}

func (c *RealClient) onConnect(client paho.Client) {
	log.Printf("mqtt: connected to %s", c.opts.Broker)

	token := client.Subscribe(c.opts.ControlTopic, 0, func(_ paho.Client, m paho.Message) {
		if c.opts.OnControl != nil {
			c.opts.OnControl(m.Payload())
		}
	})
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: subscribe %s: timeout", c.opts.ControlTopic)
	} else if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe %s: %v", c.opts.ControlTopic, err)
	} else {
		log.Printf("mqtt: subscribed to %s", c.opts.ControlTopic)
	}

	c.notify(true)
}

func (c *RealClient) notify(connected bool) {
	if c.opts.OnConnectionChange != nil {
		c.opts.OnConnectionChange(connected)
	}
}

// IsConnected reports whether the MQTT session is open.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// PublishReading sends a reading to the broker.
func (c *RealClient) PublishReading(r logic.Reading) error {
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	payload, err := FormatReading(r)
	if err != nil {
		return fmt.Errorf("format reading: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	token := c.client.Publish(c.opts.ReadingTopic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	token := c.client.Publish(c.opts.SystemTopic, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}

	return nil
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
