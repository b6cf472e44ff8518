// Package conf provides configuration management for callscope.
package conf

import "github.com/tphakala/callscope/internal/logger"

// GetLogger returns the config package logger. It is fetched from the global logger on each
// call so it follows a central logger installed after package init.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
