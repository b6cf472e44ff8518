// Package api provides the HTTP host for annotator sessions: a JSON API, an SSE
// notification stream and a websocket pointer channel.
package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/logger"
)

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// Default constants for the HTTP server.
const (
	DefaultReadTimeout       = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultBodyLimit         = "1M"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host string // Host to bind to (empty for all interfaces)
	Port string // Port to listen on

	AllowedOrigins []string // CORS allowed origins

	ReadTimeout     time.Duration // Maximum duration for reading request headers and body
	IdleTimeout     time.Duration // Maximum time to wait for next request
	ShutdownTimeout time.Duration // Maximum time to wait for graceful shutdown

	// HeartbeatInterval is the SSE heartbeat and websocket ping period.
	HeartbeatInterval time.Duration

	BodyLimit string // Maximum request body size (e.g., "1M")

	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:              "",
		Port:              "8089",
		AllowedOrigins:    []string{"*"},
		ReadTimeout:       DefaultReadTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		HeartbeatInterval: DefaultHeartbeatInterval,
		BodyLimit:         DefaultBodyLimit,
	}
}

// ConfigFromSettings creates a Config from the application settings.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()
	cfg.Host = settings.WebServer.Host
	cfg.Port = strconv.Itoa(settings.WebServer.Port)
	cfg.Debug = settings.WebServer.Debug || settings.Debug
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive")
	}
	return nil
}

// Address returns the full address string for the server to listen on.
func (c *Config) Address() string {
	if c.Host == "" {
		return ":" + c.Port
	}
	return c.Host + ":" + c.Port
}
