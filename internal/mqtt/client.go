package mqtt

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability/metrics"
)

// client implements Client on top of paho.
type client struct {
	config         Config
	internalClient paho.Client
	mu             sync.Mutex
	metrics        *metrics.MQTTMetrics
	log            logger.Logger
}

// NewClient validates cfg and returns an unconnected client. m may be nil.
func NewClient(cfg Config, m *metrics.MQTTMetrics) (Client, error) {
	u, err := url.Parse(cfg.Broker)
	if err != nil || u.Host == "" {
		return nil, errors.Newf("invalid broker URL %q", cfg.Broker).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.QoS > 2 {
		return nil, errors.Newf("qos must be 0, 1 or 2, got %d", cfg.QoS).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return &client{
		config:  cfg,
		metrics: m,
		log:     GetLogger().With(logger.String("broker", u.Redacted())),
	}, nil
}

// Connect establishes the broker connection. paho keeps retrying in the background after a
// timeout, so a later publish may still succeed.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient != nil && c.internalClient.IsConnected() {
		return nil
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(c.config.ReconnectDelay)
	opts.SetMaxReconnectInterval(5 * time.Minute)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.internalClient = paho.NewClient(opts)
	token := c.internalClient.Connect()

	timer := time.NewTimer(c.config.ConnectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		return c.connectError(fmt.Errorf("connection timeout after %s", c.config.ConnectTimeout))
	case <-ctx.Done():
		return c.connectError(ctx.Err())
	}
	if err := token.Error(); err != nil {
		return c.connectError(fmt.Errorf("connection error: %w", err))
	}
	return nil
}

func (c *client) connectError(err error) error {
	if c.metrics != nil {
		c.metrics.IncrementErrors()
	}
	return errors.New(err).
		Component("mqtt").
		Category(errors.CategoryMQTTConnection).
		Context("operation", "connect").
		Build()
}

// Publish sends payload to topic and waits for the broker acknowledgement.
func (c *client) Publish(ctx context.Context, topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient == nil || !c.internalClient.IsConnected() {
		return c.publishError(topic, fmt.Errorf("not connected to MQTT broker"))
	}

	var timer *metrics.PublishTimer
	if c.metrics != nil {
		timer = c.metrics.StartPublishTimer()
	}

	token := c.internalClient.Publish(topic, c.config.QoS, c.config.Retain, payload)
	wait := time.NewTimer(c.config.PublishTimeout)
	defer wait.Stop()

	select {
	case <-token.Done():
	case <-wait.C:
		return c.publishError(topic, fmt.Errorf("publish timeout"))
	case <-ctx.Done():
		return c.publishError(topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return c.publishError(topic, err)
	}

	if c.metrics != nil {
		timer.ObserveDuration()
		c.metrics.IncrementMessagesDelivered()
		c.metrics.ObserveMessageSize(float64(len(payload)))
	}
	c.log.Debug("published", logger.String("topic", topic), logger.Int("bytes", len(payload)))
	return nil
}

func (c *client) publishError(topic string, err error) error {
	if c.metrics != nil {
		c.metrics.IncrementErrors()
	}
	return errors.New(err).
		Component("mqtt").
		Category(errors.CategoryMQTTPublish).
		Context("topic", topic).
		Build()
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection and stops paho's reconnect loop.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.internalClient == nil {
		return
	}
	c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
	c.internalClient = nil
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(false)
	}
}

func (c *client) onConnect(paho.Client) {
	c.log.Info("connected to MQTT broker")
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(true)
	}
}

func (c *client) onConnectionLost(_ paho.Client, err error) {
	c.log.Warn("connection to MQTT broker lost", logger.Error(err))
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(false)
		c.metrics.IncrementErrors()
	}
}
