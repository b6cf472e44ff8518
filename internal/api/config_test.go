package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/conf"
)

func TestConfigFromSettings(t *testing.T) {
	settings := conf.Defaults()
	settings.WebServer.Host = "0.0.0.0"
	settings.WebServer.Port = 9000

	cfg := ConfigFromSettings(settings)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.False(t, cfg.Debug)

	cfg.Host = ""
	assert.Equal(t, ":9000", cfg.Address())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no port", func(c *Config) { c.Port = "" }},
		{"no read timeout", func(c *Config) { c.ReadTimeout = 0 }},
		{"no heartbeat", func(c *Config) { c.HeartbeatInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	env := newTestEnv(t)
	env.server.config.Host = "127.0.0.1"
	env.server.config.Port = "0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
