package replay

import "github.com/tphakala/callscope/internal/logger"

// GetLogger returns the replay package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("replay")
}
