package session

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *View)
		wantErr bool
	}{
		{"ok", func(*View) {}, false},
		{"zero zoom is tolerated", func(v *View) { v.Zoom = 0 }, false},
		{"negative height", func(v *View) { v.Height = -1 }, true},
		{"infinite duration", func(v *View) { v.Duration = math.Inf(1) }, true},
		{"nan scroll", func(v *View) { v.Scroll = math.NaN() }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testView()
			tt.mutate(&v)
			if tt.wantErr {
				assert.Error(t, v.Validate())
			} else {
				assert.NoError(t, v.Validate())
			}
		})
	}
}

func TestViewApply(t *testing.T) {
	scroll := 120.0
	expanded := true
	v := testView().Apply(ViewUpdate{Scroll: &scroll, Expanded: &expanded})

	assert.InDelta(t, 120, v.Scroll, 0)
	assert.True(t, v.Expanded)
	assert.InDelta(t, 500, v.Zoom, 0, "nil fields are untouched")
}

func TestHostView(t *testing.T) {
	v := testView()
	h := hostView{view: &v}
	v.Zoom = 250

	assert.InDelta(t, 250, h.ZoomLevel(), 0, "reads are live")
	w, ht := h.ViewportSize()
	assert.InDelta(t, 1000, w, 0)
	assert.InDelta(t, 800, ht, 0)
}
