package annotator

import (
	"slices"

	"github.com/tphakala/callscope/internal/viewport"
)

// FrequencyRange is the displayed frequency span in kHz.
type FrequencyRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Frame is a render snapshot. Selection, tooltip and provisional geometry is in content
// space; subtract ScrollLeft to draw in the viewport. The crosshair is in viewport space.
type Frame struct {
	State                  string              `json:"state"`
	Target                 *Target             `json:"target,omitempty"`
	Cursor                 Cursor              `json:"cursor"`
	Crosshair              Crosshair           `json:"crosshair"`
	Provisional            *viewport.PixelRect `json:"provisional,omitempty"`
	Selections             []SelectionView     `json:"selections"`
	Markers                []MarkerView        `json:"markers"`
	PersistentLinesEnabled bool                `json:"persistentLinesEnabled"`
	FrequencyRange         FrequencyRange      `json:"frequencyRange"`
	ContentWidth           float64             `json:"contentWidth"`
	ScrollLeft             float64             `json:"scrollLeft"`
	ViewportWidth          float64             `json:"viewportWidth"`
	ViewportHeight         float64             `json:"viewportHeight"`
	ScrollbarBand          float64             `json:"scrollbarBand"`
}

// Frame returns a snapshot the caller may keep and modify.
func (e *Engine) Frame() Frame {
	width, height := e.host.ViewportSize()
	f := Frame{
		State:                  e.state.Name(),
		Cursor:                 e.cursor,
		Crosshair:              e.crosshair,
		Selections:             make([]SelectionView, len(e.views)),
		Markers:                slices.Clone(e.markerViews),
		PersistentLinesEnabled: e.persistentLines,
		FrequencyRange:         FrequencyRange{Min: e.minFreq, Max: e.maxFreq},
		ContentWidth:           e.view().ActualWidth(),
		ScrollLeft:             e.host.ScrollLeft(),
		ViewportWidth:          width,
		ViewportHeight:         height,
		ScrollbarBand:          e.band(),
	}
	if f.Markers == nil {
		f.Markers = []MarkerView{}
	}
	for i := range e.views {
		f.Selections[i] = cloneView(e.views[i])
	}

	switch s := e.state.(type) {
	case Drawing:
		r := viewport.Normalize(s.Anchor, s.Current)
		f.Provisional = &r
	case Suppressed:
		t := s.Target
		f.Target = &t
	case Resizing:
		f.Cursor = s.Edges.Cursor()
	}
	return f
}

func cloneView(sv SelectionView) SelectionView {
	if sv.Tooltip != nil {
		tip := *sv.Tooltip
		tip.Lines = slices.Clone(tip.Lines)
		sv.Tooltip = &tip
	}
	if sv.Expand != nil {
		r := *sv.Expand
		sv.Expand = &r
	}
	if sv.Close != nil {
		r := *sv.Close
		sv.Close = &r
	}
	return sv
}
