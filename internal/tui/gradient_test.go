package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToRGB(t *testing.T) {
	c, err := hexToRGB("#ff7900")
	require.NoError(t, err)
	assert.Equal(t, rgb{0xff, 0x79, 0x00}, c)

	c, err = hexToRGB("fff")
	require.NoError(t, err)
	assert.Equal(t, rgb{0xff, 0xff, 0xff}, c)

	_, err = hexToRGB("#12345")
	assert.Error(t, err)
	_, err = hexToRGB("#gggggg")
	assert.Error(t, err)
}

func TestGradientLines_PreservesText(t *testing.T) {
	lines := []string{"├── a", "└── b"}
	out := GradientLines(lines, ProgressStart, ProgressEnd)

	require.Len(t, out, 2)
	for i := range lines {
		assert.Equal(t, lines[i], stripANSI(out[i]))
	}
}

func TestGradientLines_InvalidColorIsNoop(t *testing.T) {
	lines := []string{"x"}
	assert.Equal(t, lines, GradientLines(lines, "nope", ProgressEnd))
	assert.Equal(t, "a\nb", stripANSI(ApplyGradient("a\nb", ProgressStart, ProgressEnd)))
}

func TestConfigureColor_NoColor(t *testing.T) {
	ConfigureColor(true)
	assert.False(t, ColorEnabled())
}
