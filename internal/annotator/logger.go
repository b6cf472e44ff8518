package annotator

import "github.com/tphakala/callscope/internal/logger"

// GetLogger returns the annotator package logger
func GetLogger() logger.Logger {
	return logger.Global().Module("annotator")
}
