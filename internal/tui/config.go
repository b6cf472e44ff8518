// Package tui is a terminal host for the annotator engine. Terminal cells are mapped to
// pixels so mouse input drives the same gestures as a graphical viewer.
package tui

import (
	"fmt"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/logger"
)

// GetLogger returns the tui package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("tui")
}

// Config controls the terminal mapping and the initial view.
type Config struct {
	CellWidth  float64 // pixels per column
	CellHeight float64 // pixels per row
	Duration   float64 // seconds
	Zoom       float64 // initial pixels per second
	ZoomStep   float64 // multiplier for + and -
	ScrollStep float64 // pixels per arrow key
	Annotator  annotator.Config
}

// DefaultConfig matches the conf defaults.
func DefaultConfig() Config {
	return Config{
		CellWidth:  10,
		CellHeight: 20,
		Duration:   10,
		Zoom:       100,
		ZoomStep:   1.25,
		ScrollStep: 40,
		Annotator:  annotator.DefaultConfig(),
	}
}

// ConfigFromSettings builds a Config from the tui and annotator sections.
func ConfigFromSettings(s *conf.Settings) Config {
	return Config{
		CellWidth:  s.TUI.CellWidth,
		CellHeight: s.TUI.CellHeight,
		Duration:   s.TUI.Duration,
		Zoom:       s.TUI.Zoom,
		ZoomStep:   s.TUI.ZoomStep,
		ScrollStep: s.TUI.ScrollStep,
		Annotator:  s.ToAnnotatorConfig(),
	}
}

// Validate rejects mappings that cannot produce a usable view.
func (c Config) Validate() error {
	switch {
	case c.CellWidth <= 0 || c.CellHeight <= 0:
		return fmt.Errorf("cell size must be positive, got %gx%g", c.CellWidth, c.CellHeight)
	case c.Duration <= 0:
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	case c.Zoom <= 0:
		return fmt.Errorf("zoom must be positive, got %g", c.Zoom)
	case c.ZoomStep <= 1:
		return fmt.Errorf("zoom step must be greater than 1, got %g", c.ZoomStep)
	case c.ScrollStep <= 0:
		return fmt.Errorf("scroll step must be positive, got %g", c.ScrollStep)
	}
	return c.Annotator.Validate()
}
