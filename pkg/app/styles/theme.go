package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/comicmerge/pkg/data"
)

var (
	// Color palette
	Primary    = lipgloss.Color("#FFB86C")
	Secondary  = lipgloss.Color("#8BE9FD")
	Success    = lipgloss.Color("#50FA7B")
	Warning    = lipgloss.Color("#F1FA8C")
	Error      = lipgloss.Color("#FF5555")
	Info       = lipgloss.Color("#BD93F9")
	Muted      = lipgloss.Color("#6272A4")
	Foreground = lipgloss.Color("#F8F8F2")

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

	CardStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 2)

	ActiveCardStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Primary).
			Padding(0, 2)

	StatusWorking = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	StatusDone = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(Muted)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Background(lipgloss.Color("#44475A")).
			Padding(0, 2).
			Bold(true)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Padding(0, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)
)

// PhaseStyle picks a status style for a progress phase.
func PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case data.PhaseValidating, data.PhaseReading, data.PhaseExtracting, data.PhaseWriting:
		return StatusWorking
	case data.PhaseDone:
		return StatusDone
	case data.PhaseFailed, data.PhaseCancelled:
		return StatusError
	default:
		return MutedStyle
	}
}
