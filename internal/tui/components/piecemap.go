package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/surge-downloader/trtool/internal/tui/colors"
)

const (
	PassedBlock = "■"
	FailedBlock = "✗"
)

// PieceMapModel visualizes verification results as a grid of blocks. When
// there are more pieces than cells, each cell covers a run of pieces and
// fails if any piece in the run failed.
type PieceMapModel struct {
	Results []bool
	Width   int // UI render width (columns * 2)
	MaxRows int
}

func NewPieceMapModel(results []bool, width, maxRows int) PieceMapModel {
	return PieceMapModel{
		Results: results,
		Width:   width,
		MaxRows: maxRows,
	}
}

// Cells downsamples Results to at most Columns()*MaxRows entries.
func (m PieceMapModel) Cells() []bool {
	n := len(m.Results)
	if n == 0 {
		return nil
	}
	rows := m.MaxRows
	if rows < 1 {
		rows = 1
	}
	target := m.Columns() * rows
	if target > n {
		target = n
	}

	cells := make([]bool, target)
	for i := 0; i < target; i++ {
		// Map cell i to source range [start, end)
		start := i * n / target
		end := (i + 1) * n / target
		if end <= start {
			end = start + 1
		}
		ok := true
		for j := start; j < end && j < n; j++ {
			if !m.Results[j] {
				ok = false
				break
			}
		}
		cells[i] = ok
	}
	return cells
}

// Columns is the number of blocks per row. Each block takes two characters.
func (m PieceMapModel) Columns() int {
	cols := m.Width / 2
	if cols < 1 {
		cols = 1
	}
	return cols
}

// View renders the grid
func (m PieceMapModel) View() string {
	cells := m.Cells()
	if len(cells) == 0 {
		return ""
	}

	passedStyle := lipgloss.NewStyle().Foreground(colors.StatePass)
	failedStyle := lipgloss.NewStyle().Foreground(colors.StateFail)
	cols := m.Columns()

	var s strings.Builder
	for i, ok := range cells {
		if i > 0 && i%cols == 0 {
			s.WriteRune('\n')
		} else if i > 0 {
			s.WriteRune(' ')
		}
		if ok {
			s.WriteString(passedStyle.Render(PassedBlock))
		} else {
			s.WriteString(failedStyle.Render(FailedBlock))
		}
	}
	return s.String()
}
