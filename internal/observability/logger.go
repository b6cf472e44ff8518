// Package observability provides Prometheus metrics functionality for monitoring callscope.
package observability

import "github.com/tphakala/callscope/internal/logger"

// GetLogger returns the observability package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
