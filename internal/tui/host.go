package tui

// host is the terminal's view state. Only the bubbletea update loop touches it.
type host struct {
	duration float64
	zoom     float64
	scroll   float64
	width    float64
	height   float64
	expanded bool
}

func (h *host) Duration() float64                     { return h.duration }
func (h *host) ZoomLevel() float64                    { return h.zoom }
func (h *host) ScrollLeft() float64                   { return h.scroll }
func (h *host) ViewportSize() (width, height float64) { return h.width, h.height }
func (h *host) ExpandedLayout() bool                  { return h.expanded }

func (h *host) contentWidth() float64 {
	return h.duration * h.zoom
}

// clampScroll keeps the viewport inside the content.
func (h *host) clampScroll() {
	maxScroll := h.contentWidth() - h.width
	if h.scroll > maxScroll {
		h.scroll = maxScroll
	}
	if h.scroll < 0 {
		h.scroll = 0
	}
}
