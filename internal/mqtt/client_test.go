package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/observability/metrics"
)

func TestConfigFromSettings(t *testing.T) {
	s := conf.Defaults()
	s.MQTT.Broker = "tcp://broker:1883"
	s.MQTT.ClientID = "scope-1"
	s.MQTT.QoS = 2
	s.MQTT.Retain = true

	cfg := ConfigFromSettings(s)
	assert.Equal(t, "tcp://broker:1883", cfg.Broker)
	assert.Equal(t, "scope-1", cfg.ClientID)
	assert.Equal(t, byte(2), cfg.QoS)
	assert.True(t, cfg.Retain)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name   string
		broker string
		qos    byte
	}{
		{"empty broker", "", 1},
		{"no host", "tcp://", 1},
		{"bad qos", "tcp://localhost:1883", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Broker = tt.broker
			cfg.QoS = tt.qos
			_, err := NewClient(cfg, nil)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
		})
	}
}

func TestPublishWithoutConnection(t *testing.T) {
	m, err := metrics.NewMQTTMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Broker = "tcp://localhost:1883"
	c, err := NewClient(cfg, m)
	require.NoError(t, err)

	assert.False(t, c.IsConnected())
	err = c.Publish(context.Background(), "t/expand", []byte("{}"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTPublish))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Errors), 0)

	c.Disconnect()
}

func TestConnectHonoursContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Broker = "tcp://127.0.0.1:1"
	cfg.ConnectTimeout = 5 * time.Second
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = c.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTConnection))
}
