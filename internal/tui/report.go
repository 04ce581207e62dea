package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/surge-downloader/trtool/internal/torrent"
	"github.com/surge-downloader/trtool/internal/tui/components"
	"github.com/surge-downloader/trtool/internal/utils"
)

// PieceMapRows bounds the height of the piece map in the verify view.
const PieceMapRows = 8

// RenderReport summarises a verification. A positive width adds a piece map
// when anything failed.
func RenderReport(rep *torrent.Report, width int) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Verification Result:"))
	b.WriteString("\n")
	b.WriteString(summaryLine("Pieces:", rep.PieceSummary))
	b.WriteString(summaryLine("Files:", rep.FileSummary))

	if rep.FileSummary.Failed == 0 && rep.PieceSummary.Failed == 0 {
		b.WriteString(PassStyle.Render("All files are OK."))
		b.WriteString("\n")
		return b.String()
	}

	if rep.FileSummary.Failed > 0 {
		b.WriteString("\n")
		b.WriteString(FailStyle.Render("Some files failed verification:"))
		b.WriteString("\n")
		for _, f := range rep.FileResults {
			if f.Passed {
				continue
			}
			fmt.Fprintf(&b, "- %s (%d [%s])", f.Path, f.Length, utils.ConvertBytesToHumanReadable(f.Length))
			if f.Known {
				b.WriteString(WarnStyle.Render(" [missing or size mismatch]"))
			}
			b.WriteString("\n")
		}
	}

	if failed := rep.FailedPieces(); len(failed) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Failed pieces: "))
		b.WriteString(FormatRanges(failed))
		b.WriteString("\n")

		if width > 4 {
			m := components.NewPieceMapModel(rep.PieceResults, width-4, PieceMapRows)
			b.WriteString(PaneStyle.Render(m.View()))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func summaryLine(label string, s torrent.Summary) string {
	return fmt.Sprintf("%-7s %8d total = %8d passed + %8d failed\n", label, s.Total, s.Passed, s.Failed)
}

// FormatRanges renders ascending indices compactly, e.g. "1-3, 7, 9-10".
func FormatRanges(idx []int) string {
	var parts []string
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && idx[j+1] == idx[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(idx[i]))
		} else {
			parts = append(parts, strconv.Itoa(idx[i])+"-"+strconv.Itoa(idx[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}
