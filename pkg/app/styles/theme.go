package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Primary    = lipgloss.Color("#FF6B9D")
	Secondary  = lipgloss.Color("#C792EA")
	Success    = lipgloss.Color("#C3E88D")
	Warning    = lipgloss.Color("#FFCB6B")
	Error      = lipgloss.Color("#F07178")
	Info       = lipgloss.Color("#82AAFF")
	Muted      = lipgloss.Color("#546E7A")
	Surface    = lipgloss.Color("#37474F")
	Foreground = lipgloss.Color("#EEFFFF")

	RoundedBorder = lipgloss.RoundedBorder()
	ThickBorder   = lipgloss.ThickBorder()
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(Foreground)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 2)

	ActiveCardStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Primary).
			Padding(0, 2)

	// Catalog status badges.
	OnGoingStyle = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	CompletedStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	// Export progress.
	StatusDownloading = lipgloss.NewStyle().
				Foreground(Info).
				Bold(true)

	StatusCompleted = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(Muted)

	// Pagination buttons.
	PageStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	CurrentPageStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Background(Surface).
				Bold(true).
				Padding(0, 1)

	// Filter chips.
	ActiveFilterStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Background(Surface).
				Padding(0, 1)

	InactiveFilterStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Padding(0, 1)

	GenreStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)

	InputStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(RoundedBorder).
				BorderForeground(Primary).
				Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)
)

// StatusStyle picks the badge for a catalog status or an export status.
func StatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "ongoing", "downloading", "processing":
		return OnGoingStyle
	case "completed", "complete":
		return CompletedStyle
	case "error":
		return StatusError
	default:
		return MutedStyle
	}
}

// FilterStyle renders a filter chip highlighted while it is set.
func FilterStyle(active bool) lipgloss.Style {
	if active {
		return ActiveFilterStyle
	}
	return InactiveFilterStyle
}
