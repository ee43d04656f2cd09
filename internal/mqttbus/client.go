package mqttbus

import (
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Message is one inbound payload from a subscribed topic.
type Message struct {
	Topic   string
	Payload string
}

// Config selects the broker and client identity.
type Config struct {
	BrokerURL      string
	ClientID       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	ReconnectMax   time.Duration
}

// DefaultConfig returns conservative connection tuning; the broker URL
// and client ID must still be filled in.
func DefaultConfig() Config {
	return Config{
		KeepAlive:      30 * time.Second,
		ConnectTimeout: 5 * time.Second,
		ReconnectMax:   30 * time.Second,
	}
}

// Client wraps the paho MQTT client with the connection policy both
// daemons share: connecting never blocks the caller's loop, a lost or
// absent broker is retried in the background, and publishes are
// fire-and-forget at QoS 0. While disconnected, publishes are dropped
// and the daemon keeps running on local input alone.
type Client struct {
	cli    mqtt.Client
	logger *slog.Logger
	inbox  chan Message
}

// New builds a client subscribed to the given topics. Subscriptions are
// (re)established from the on-connect callback so they survive broker
// restarts. Inbound messages arrive on Inbox; when the inbox backs up,
// newest messages are dropped rather than blocking the network loop.
func New(cfg Config, topics []string, logger *slog.Logger) *Client {
	c := &Client{
		logger: logger,
		inbox:  make(chan Message, 64),
	}

	onMessage := func(_ mqtt.Client, m mqtt.Message) {
		select {
		case c.inbox <- Message{Topic: m.Topic(), Payload: string(m.Payload())}:
		default:
			logger.Warn("mqtt inbox full, dropping message", "topic", m.Topic())
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetKeepAlive(cfg.KeepAlive).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetMaxReconnectInterval(cfg.ReconnectMax)

	opts.SetOnConnectHandler(func(cli mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.BrokerURL, "client_id", cfg.ClientID)
		for _, topic := range topics {
			tok := cli.Subscribe(topic, 0, onMessage)
			go func() {
				tok.Wait()
				if err := tok.Error(); err != nil {
					logger.Error("mqtt subscribe failed", "topic", topic, "error", err)
				} else {
					logger.Info("mqtt subscribed", "topic", topic)
				}
			}()
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost, retrying", "error", err)
	})

	c.cli = mqtt.NewClient(opts)
	return c
}

// Start begins connecting in the background. With connect retry enabled
// the token only completes on success, so it is watched from a goroutine
// instead of blocking startup on an unreachable broker.
func (c *Client) Start() {
	tok := c.cli.Connect()
	go func() {
		tok.Wait()
		if err := tok.Error(); err != nil {
			c.logger.Error("mqtt connect failed", "error", err)
		}
	}()
}

// Inbox delivers messages from all subscribed topics.
func (c *Client) Inbox() <-chan Message { return c.inbox }

// Publish sends payload at QoS 0 without waiting for delivery. Dropped
// silently (with a debug line) while the broker is unreachable.
func (c *Client) Publish(topic, payload string) {
	if !c.cli.IsConnectionOpen() {
		c.logger.Debug("mqtt not connected, dropping publish", "topic", topic, "payload", payload)
		return
	}
	c.cli.Publish(topic, 0, false, payload)
	c.logger.Debug("mqtt published", "topic", topic, "payload", payload)
}

// Close disconnects from the broker, allowing a short drain for any
// in-flight packets.
func (c *Client) Close() {
	c.cli.Disconnect(250)
}
