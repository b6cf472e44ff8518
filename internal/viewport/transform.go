// Package viewport maps between the pixel space of a rendered spectrogram and its
// time/frequency domain space.
//
// All functions are pure. A View is a snapshot of the current view parameters and is meant
// to be rebuilt from the host on every use, so conversions always run against the live
// zoom, scroll and frequency range.
package viewport

import "math"

// View holds the parameters a transform is evaluated against.
type View struct {
	Duration     float64 // seconds
	ZoomLevel    float64 // pixels per second
	RenderHeight float64 // pixels covering the full frequency span
	MinFreq      float64 // kHz
	MaxFreq      float64 // kHz
	ScrollLeft   float64 // horizontal scroll offset in pixels
}

// Rect is a region of interest in domain space.
type Rect struct {
	StartTime float64 `json:"startTime" yaml:"start_time"` // seconds
	EndTime   float64 `json:"endTime" yaml:"end_time"`     // seconds
	FreqLow   float64 `json:"freqLow" yaml:"freq_low"`     // kHz
	FreqHigh  float64 `json:"freqHigh" yaml:"freq_high"`   // kHz
}

// PixelRect is a rectangle in content pixel space (scroll already applied).
type PixelRect struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// ActualWidth is the rendered width of the whole recording in pixels.
func (v View) ActualWidth() float64 {
	return v.Duration * v.ZoomLevel
}

// FreqSpan is the displayed frequency range in kHz.
func (v View) FreqSpan() float64 {
	return v.MaxFreq - v.MinFreq
}

// Valid reports whether conversions against v produce finite results.
func (v View) Valid() bool {
	for _, f := range []float64{v.Duration, v.ZoomLevel, v.RenderHeight, v.MinFreq, v.MaxFreq, v.ScrollLeft} {
		if !Finite(f) {
			return false
		}
	}
	return v.Duration > 0 && v.ZoomLevel > 0 && v.RenderHeight > 0 && v.MaxFreq > v.MinFreq
}

// FreqValid reports whether the frequency axis alone is usable. Frequency conversions
// do not depend on duration, zoom or scroll.
func (v View) FreqValid() bool {
	for _, f := range []float64{v.RenderHeight, v.MinFreq, v.MaxFreq} {
		if !Finite(f) {
			return false
		}
	}
	return v.RenderHeight > 0 && v.MaxFreq > v.MinFreq
}

// ContentX converts a viewport-relative x into content space by adding the scroll offset.
func (v View) ContentX(viewportX float64) float64 {
	return viewportX + v.ScrollLeft
}

// TimeToPixel returns the content-space x of time t.
func (v View) TimeToPixel(t float64) float64 {
	return (t / v.Duration) * v.ActualWidth()
}

// PixelToTime returns the time at content-space x.
func (v View) PixelToTime(x float64) float64 {
	return (x / v.ActualWidth()) * v.Duration
}

// FreqToPixel returns the y of frequency f. The axis is inverted: y=0 is MaxFreq.
func (v View) FreqToPixel(f float64) float64 {
	return (1 - (f-v.MinFreq)/v.FreqSpan()) * v.RenderHeight
}

// PixelToFreq returns the frequency at y.
func (v View) PixelToFreq(y float64) float64 {
	return (1-y/v.RenderHeight)*v.FreqSpan() + v.MinFreq
}

// ToPixels projects a domain rect into content pixel space.
func (v View) ToPixels(r Rect) PixelRect {
	left := v.TimeToPixel(r.StartTime)
	top := v.FreqToPixel(r.FreqHigh)
	return PixelRect{
		Left:   left,
		Top:    top,
		Width:  v.TimeToPixel(r.EndTime) - left,
		Height: v.FreqToPixel(r.FreqLow) - top,
	}
}

// ToDomain maps a content-space pixel rect back to domain space. FreqHigh comes from the
// top edge and FreqLow from the bottom edge.
func (v View) ToDomain(p PixelRect) Rect {
	return Rect{
		StartTime: v.PixelToTime(p.Left),
		EndTime:   v.PixelToTime(p.Left + p.Width),
		FreqLow:   v.PixelToFreq(p.Top + p.Height),
		FreqHigh:  v.PixelToFreq(p.Top),
	}
}

// Duration returns the length of r in seconds.
func (r Rect) Duration() float64 { return r.EndTime - r.StartTime }

// Bandwidth returns the frequency extent of r in kHz.
func (r Rect) Bandwidth() float64 { return r.FreqHigh - r.FreqLow }

// Finite reports whether all values of r are finite.
func (r Rect) Finite() bool {
	return Finite(r.StartTime) && Finite(r.EndTime) && Finite(r.FreqLow) && Finite(r.FreqHigh)
}

// Contains reports whether p lies inside the rect, edges included.
func (p PixelRect) Contains(pt Point) bool {
	return pt.X >= p.Left && pt.X <= p.Left+p.Width && pt.Y >= p.Top && pt.Y <= p.Top+p.Height
}

// Right returns the x of the right edge.
func (p PixelRect) Right() float64 { return p.Left + p.Width }

// Bottom returns the y of the bottom edge.
func (p PixelRect) Bottom() float64 { return p.Top + p.Height }

// Normalize builds the rect spanned by two corner points.
func Normalize(a, b Point) PixelRect {
	return PixelRect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Finite reports whether both coordinates of p are finite.
func (p Point) Finite() bool {
	return Finite(p.X) && Finite(p.Y)
}
