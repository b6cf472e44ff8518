package annotator

import (
	"math"

	"github.com/tphakala/callscope/internal/viewport"
)

// Marker is a persistent horizontal reference line.
type Marker struct {
	Frequency float64 `json:"frequency" yaml:"frequency"`
}

// MarkerView is a projected marker. It spans the full viewport width at Y, independent
// of zoom and scroll.
type MarkerView struct {
	Frequency float64 `json:"frequency"`
	Y         float64 `json:"y"`
}

type markerResult int

const (
	markerAdded markerResult = iota
	markerRemoved
	markerRejected
)

// registry is the capped marker set.
type registry struct {
	markers []Marker
}

// toggle removes the first marker within tolerance of freq, otherwise adds one if
// capacity allows.
func (r *registry) toggle(freq, tolerance float64, capacity int) (markerResult, Marker) {
	for i, m := range r.markers {
		if math.Abs(m.Frequency-freq) < tolerance {
			r.markers = append(r.markers[:i], r.markers[i+1:]...)
			return markerRemoved, m
		}
	}
	if len(r.markers) >= capacity {
		return markerRejected, Marker{}
	}
	m := Marker{Frequency: freq}
	r.markers = append(r.markers, m)
	return markerAdded, m
}

func (r *registry) project(v viewport.View) []MarkerView {
	views := make([]MarkerView, 0, len(r.markers))
	for _, m := range r.markers {
		views = append(views, MarkerView{Frequency: m.Frequency, Y: math.Round(v.FreqToPixel(m.Frequency))})
	}
	return views
}
