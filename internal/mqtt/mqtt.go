// Package mqtt publishes annotator notifications to an MQTT broker.
package mqtt

import (
	"context"
	"time"

	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/logger"
)

// GetLogger returns the mqtt package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("mqtt")
}

// Client defines the MQTT operations the publisher needs.
type Client interface {
	// Connect connects to the broker, giving up when ctx ends or the connect timeout passes.
	Connect(ctx context.Context) error

	// Publish sends payload to topic with the configured QoS and retain flag.
	Publish(ctx context.Context, topic string, payload []byte) error

	// IsConnected reports whether the broker connection is up.
	IsConnected() bool

	// Disconnect closes the connection and stops reconnecting.
	Disconnect()
}

// Config holds the configuration for the MQTT client.
type Config struct {
	Broker            string
	ClientID          string
	Username          string
	Password          string
	QoS               byte
	Retain            bool // true to retain messages at the broker
	ReconnectDelay    time.Duration
	ConnectTimeout    time.Duration
	PublishTimeout    time.Duration
	DisconnectTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable default values.
func DefaultConfig() Config {
	return Config{
		ClientID:          "callscope",
		QoS:               1,
		ReconnectDelay:    5 * time.Second,
		ConnectTimeout:    10 * time.Second,
		PublishTimeout:    10 * time.Second,
		DisconnectTimeout: 250 * time.Millisecond,
	}
}

// ConfigFromSettings maps the mqtt settings section onto a client Config.
func ConfigFromSettings(s *conf.Settings) Config {
	cfg := DefaultConfig()
	m := s.MQTT
	cfg.Broker = m.Broker
	if m.ClientID != "" {
		cfg.ClientID = m.ClientID
	}
	cfg.Username = m.Username
	cfg.Password = m.Password
	cfg.QoS = byte(m.QoS)
	cfg.Retain = m.Retain
	if m.ConnectTimeout > 0 {
		cfg.ConnectTimeout = m.ConnectTimeout
	}
	return cfg
}
