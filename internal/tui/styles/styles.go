package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Status colors
	StatusIdle      = lipgloss.Color("#9CA3AF") // Gray
	StatusRunning   = lipgloss.Color("#10B981") // Green
	StatusPaused    = lipgloss.Color("#60A5FA") // Blue
	StatusCompleted = lipgloss.Color("#A78BFA") // Purple
	StatusError     = lipgloss.Color("#F87171") // Red

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1)

	// Status badge styles
	StatusBadge = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			MarginRight(1)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	// Output area
	OutputArea = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor)

	// Iteration heading inside the output area
	RoundTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// Participant label above a response
	ResponseAuthor = lipgloss.NewStyle().
			Bold(true).
			Foreground(BlueColor)

	// Merged consensus block
	Consensus = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(SecondaryColor).
			PaddingLeft(1)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Error message
	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Warning message
	WarningMsg = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)
)

// StatusColor returns the color for a given session status
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "idle":
		return StatusIdle
	case "running":
		return StatusRunning
	case "paused":
		return StatusPaused
	case "completed":
		return StatusCompleted
	case "error":
		return StatusError
	default:
		return MutedColor
	}
}

// StatusIcon returns an icon for a given session status
func StatusIcon(status string) string {
	switch status {
	case "idle":
		return "○"
	case "running":
		return "●"
	case "paused":
		return "⏸"
	case "completed":
		return "✓"
	case "error":
		return "✗"
	default:
		return "●"
	}
}
