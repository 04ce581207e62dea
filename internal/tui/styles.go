package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/surge-downloader/trtool/internal/tui/colors"
)

// Re-export colors from colors package
var (
	ColorNeonPurple = colors.NeonPurple
	ColorNeonPink   = colors.NeonPink
	ColorNeonCyan   = colors.NeonCyan
	ColorGray       = colors.Gray
	ColorLightGray  = colors.LightGray
	ColorWhite      = colors.White
	ColorStateFail  = colors.StateFail
	ColorStateWarn  = colors.StateWarn
	ColorStatePass  = colors.StatePass
	ColorStateInfo  = colors.StateInfo
)

// Progress bar color constants
const (
	ProgressStart = colors.ProgressStart
	ProgressEnd   = colors.ProgressEnd
)

// === Text Styles ===
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorNeonCyan).
			Bold(true)

	// Section headings inside a view ("Files:", "Announce List:")
	SectionStyle = lipgloss.NewStyle().
			Foreground(ColorStateInfo).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorNeonCyan)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorLightGray)

	HashStyle = lipgloss.NewStyle().
			Foreground(ColorNeonPink).
			Bold(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(ColorStatePass).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(ColorStateFail).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorStateWarn)

	// Standard pane border around the piece map
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// ConfigureColor disables styling when noColor is set or NO_COLOR is present.
func ConfigureColor(noColor bool) {
	if noColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ColorEnabled reports whether styles currently emit colour.
func ColorEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}
