package style

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("#7C3AED")
	Green   = lipgloss.Color("#10B981")
	Red     = lipgloss.Color("#EF4444")
	Yellow  = lipgloss.Color("#F59E0B")
	Dim     = lipgloss.Color("#6B7280")
	White   = lipgloss.Color("#F9FAFB")

	// Text styles
	Bold = lipgloss.NewStyle().Bold(true).Foreground(White)

	Watching = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Alert    = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Warning  = lipgloss.NewStyle().Foreground(Yellow)

	DimText = lipgloss.NewStyle().Foreground(Dim)

	// Status indicators
	DotWatching = Watching.Render("●")
	DotAlert    = Alert.Render("●")

	// Header / banner
	Banner = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	ErrorBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Red).
		Foreground(Red).
		Padding(0, 1)
)

// StatusDot picks the indicator for a watchdog status string.
func StatusDot(status string) string {
	if status == "watching" {
		return DotWatching
	}
	return DotAlert
}
