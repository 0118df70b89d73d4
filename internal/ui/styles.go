package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. Single accent color, muted support colors.
const (
	ColorAccent   = "45"  // cyan accent for version ids and scores
	ColorWhite    = "255" // headers, page paths
	ColorGray     = "245" // secondary text, snippets
	ColorDarkGray = "238" // separators
	ColorRed      = "196" // errors
	ColorYellow   = "220" // warnings
)

// Styles holds the render styles for terminal output.
type Styles struct {
	Header  lipgloss.Style
	Path    lipgloss.Style
	Score   lipgloss.Style
	Stream  lipgloss.Style
	Snippet lipgloss.Style
	Dim     lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns styled components for terminal mode.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Path:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent)),
		Stream:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Snippet: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
	}
}

// NoColorStyles returns unstyled components for plain mode (pipes, CI).
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Path:    lipgloss.NewStyle(),
		Score:   lipgloss.NewStyle(),
		Stream:  lipgloss.NewStyle(),
		Snippet: lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
	}
}
