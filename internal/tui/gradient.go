package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GradientLines colours each line along a vertical gradient between two hex
// colours. Lines are returned unchanged when either colour is invalid.
func GradientLines(lines []string, startColor, endColor string) []string {
	height := len(lines)
	if height == 0 {
		return lines
	}

	startRGB, err := hexToRGB(startColor)
	if err != nil {
		return lines
	}
	endRGB, err := hexToRGB(endColor)
	if err != nil {
		return lines
	}

	out := make([]string, height)
	for i, line := range lines {
		// Interpolation factor t in [0, 1]; a single line uses startColor
		t := 0.0
		if height > 1 {
			t = float64(i) / float64(height-1)
		}

		r := uint8(math.Round(lerp(float64(startRGB.r), float64(endRGB.r), t)))
		g := uint8(math.Round(lerp(float64(startRGB.g), float64(endRGB.g), t)))
		b := uint8(math.Round(lerp(float64(startRGB.b), float64(endRGB.b), t)))

		color := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
		out[i] = lipgloss.NewStyle().Foreground(color).Render(line)
	}
	return out
}

// ApplyGradient applies a vertical gradient to a multi-line string
func ApplyGradient(text, startColor, endColor string) string {
	return strings.Join(GradientLines(strings.Split(text, "\n"), startColor, endColor), "\n")
}

type rgb struct {
	r, g, b uint8
}

func hexToRGB(hex string) (rgb, error) {
	hex = strings.TrimPrefix(hex, "#")

	// Handle short hex (e.g., "FFF")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) != 6 {
		return rgb{}, fmt.Errorf("invalid hex color: %s", hex)
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, err
	}

	return rgb{
		r: uint8(val >> 16),
		g: uint8((val >> 8) & 0xFF),
		b: uint8(val & 0xFF),
	}, nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
