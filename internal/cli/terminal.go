package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles used for human-readable output.
type Styles struct {
	Document lipgloss.Style
	Heading  lipgloss.Style
	Keyword  lipgloss.Style
	Freq     lipgloss.Style
	None     lipgloss.Style
	Error    lipgloss.Style
	Label    lipgloss.Style
}

// NewStyles builds styles for w. Colors are dropped automatically when w
// is not a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Document: r.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}),
		Heading: r.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}),
		Keyword: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#56949f", Dark: "#31748f"}),
		Freq: r.NewStyle().Faint(true),
		None: r.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
		Error: r.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
		Label: r.NewStyle().Faint(true).Width(12),
	}
}
