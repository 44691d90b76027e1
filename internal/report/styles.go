package report

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#A78BFA") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#F87171") // Red
	mutedColor     = lipgloss.Color("#9CA3AF") // Gray
	borderColor    = lipgloss.Color("#6B7280") // Gray
)

// styles are bound to one renderer so that colour can be switched off per
// output.
type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	number   lipgloss.Style
	good     lipgloss.Style
	warn     lipgloss.Style
	bad      lipgloss.Style
	notice   lipgloss.Style
	border   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(primaryColor),
		subtitle: r.NewStyle().Foreground(mutedColor).Italic(true),
		header:   r.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1),
		cell:     r.NewStyle().Padding(0, 1),
		number:   r.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		good:     r.NewStyle().Padding(0, 1).Align(lipgloss.Right).Foreground(secondaryColor),
		warn:     r.NewStyle().Padding(0, 1).Align(lipgloss.Right).Foreground(warningColor),
		bad:      r.NewStyle().Padding(0, 1).Align(lipgloss.Right).Foreground(errorColor),
		notice:   r.NewStyle().Bold(true).Foreground(warningColor),
		border:   r.NewStyle().Foreground(borderColor),
	}
}
