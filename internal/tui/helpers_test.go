package tui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var ansiEscapeRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func stripANSI(s string) string {
	return ansiEscapeRE.ReplaceAllString(s, "")
}
