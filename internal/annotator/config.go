package annotator

import (
	"fmt"
	"maps"
	"slices"

	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/viewport"
)

// Config holds every threshold the engine consults. Pixel values are in rendered pixels,
// frequencies in kHz and durations in seconds unless the name says otherwise.
type Config struct {
	RenderHeight float64 // pixels spanned by the full frequency range
	MinFreq      float64
	MaxFreq      float64

	EdgeThreshold    float64 // resize band inside each selection edge
	MinGesturePixels float64 // draws at or below this extent are discarded
	MarkerTolerance  float64 // kHz distance that toggles an existing marker off
	MaxMarkers       int

	ShortSelectionMs float64 // selections at or below this get a tooltip
	MinDuration      float64
	MinBandwidth     float64

	ScrollbarBand   float64 // reserved band height in expanded layout
	LabelFlipMargin float64
	LabelOffset     float64
	TooltipGap      float64
	TooltipWidth    float64
	TooltipHeight   float64
	AffordanceSize  float64

	PersistentLinesEnabled bool
}

// DefaultConfig returns the stock viewer thresholds.
func DefaultConfig() Config {
	return Config{
		RenderHeight:           800,
		MinFreq:                10,
		MaxFreq:                128,
		EdgeThreshold:          5,
		MinGesturePixels:       3,
		MarkerTolerance:        1,
		MaxMarkers:             5,
		ShortSelectionMs:       100,
		MinDuration:            0.001,
		MinBandwidth:           0.1,
		ScrollbarBand:          20,
		LabelFlipMargin:        120,
		LabelOffset:            12,
		TooltipGap:             10,
		TooltipWidth:           140,
		TooltipHeight:          80,
		AffordanceSize:         14,
		PersistentLinesEnabled: true,
	}
}

// Validate checks that the thresholds describe a usable engine.
func (c *Config) Validate() error {
	var problems []string

	if !viewport.Finite(c.RenderHeight) || c.RenderHeight <= 0 {
		problems = append(problems, fmt.Sprintf("render height must be positive, got %v", c.RenderHeight))
	}
	if err := validateFrequencyRange(c.MinFreq, c.MaxFreq); err != nil {
		problems = append(problems, err.Error())
	}
	nonNegative := map[string]float64{
		"edge threshold":     c.EdgeThreshold,
		"min gesture pixels": c.MinGesturePixels,
		"marker tolerance":   c.MarkerTolerance,
		"short selection ms": c.ShortSelectionMs,
		"scrollbar band":     c.ScrollbarBand,
		"label flip margin":  c.LabelFlipMargin,
		"label offset":       c.LabelOffset,
		"tooltip gap":        c.TooltipGap,
		"tooltip width":      c.TooltipWidth,
		"tooltip height":     c.TooltipHeight,
		"affordance size":    c.AffordanceSize,
	}
	for _, name := range slices.Sorted(maps.Keys(nonNegative)) {
		if v := nonNegative[name]; !viewport.Finite(v) || v < 0 {
			problems = append(problems, fmt.Sprintf("%s must be a non-negative number, got %v", name, v))
		}
	}
	if !viewport.Finite(c.MinDuration) || c.MinDuration <= 0 {
		problems = append(problems, fmt.Sprintf("min duration must be positive, got %v", c.MinDuration))
	}
	if !viewport.Finite(c.MinBandwidth) || c.MinBandwidth <= 0 {
		problems = append(problems, fmt.Sprintf("min bandwidth must be positive, got %v", c.MinBandwidth))
	}
	if c.MaxMarkers < 0 {
		problems = append(problems, fmt.Sprintf("max markers must not be negative, got %d", c.MaxMarkers))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Newf("invalid annotator config: %v", problems).
		Component("annotator").
		Category(errors.CategoryConfiguration).
		Context("problems", len(problems)).
		Build()
}

func validateFrequencyRange(minFreq, maxFreq float64) error {
	switch {
	case !viewport.Finite(minFreq) || !viewport.Finite(maxFreq):
		return fmt.Errorf("frequency range must be finite, got %v..%v", minFreq, maxFreq)
	case minFreq >= maxFreq:
		return fmt.Errorf("min frequency %.1f must be below max frequency %.1f", minFreq, maxFreq)
	}
	return nil
}
