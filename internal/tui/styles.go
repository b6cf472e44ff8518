package tui

import "github.com/charmbracelet/lipgloss"

// layer orders what a cell shows; later layers draw over earlier ones.
type layer int

const (
	layerBackground layer = iota
	layerMarker
	layerSelection
	layerLabel
	layerProvisional
	layerTooltip
	layerAffordance
	layerCrosshair
	layerReadout
	layerCount
)

type styles struct {
	layers    [layerCount]lipgloss.Style
	statusBar lipgloss.Style
	help      lipgloss.Style
}

func defaultStyles() styles {
	var s styles
	s.layers[layerBackground] = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	s.layers[layerMarker] = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	s.layers[layerSelection] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	s.layers[layerLabel] = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	s.layers[layerProvisional] = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	s.layers[layerTooltip] = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("24"))
	s.layers[layerAffordance] = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("31")).Bold(true)
	s.layers[layerCrosshair] = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	s.layers[layerReadout] = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	s.statusBar = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237"))
	s.help = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return s
}
