package tui

import (
	"fmt"
	"strings"

	"github.com/surge-downloader/trtool/internal/torrent"
	"github.com/surge-downloader/trtool/internal/utils"
)

// MaxAnnounceLines caps how many announce URLs the info view prints.
const MaxAnnounceLines = 20

const labelWidth = 15

func field(b *strings.Builder, label, value string) {
	b.WriteString("  ")
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label+":")))
	b.WriteString(ValueStyle.Render(value))
	b.WriteString("\n")
}

func sizeWithHuman(n int64) string {
	return fmt.Sprintf("%d [%s]", n, utils.ConvertBytesToHumanReadable(n))
}

// RenderInfo describes a parsed torrent: identity, trackers, metadata
// and the file tree.
func RenderInfo(meta *torrent.TorrentMeta) string {
	var b strings.Builder
	info := meta.Info

	b.WriteString(TitleStyle.Render("Torrent Info:"))
	b.WriteString("\n")
	field(&b, "Name", info.Name)
	b.WriteString("  ")
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "Hash:")))
	b.WriteString(HashStyle.Render(meta.HexHash()))
	b.WriteString("\n")
	field(&b, "Total size", sizeWithHuman(info.TotalLength()))
	field(&b, "Piece length", sizeWithHuman(info.PieceLength))
	field(&b, "Pieces", utils.FormatCount(int64(info.NumPieces())))
	field(&b, "Private", fmt.Sprintf("%t", info.Private))

	renderTrackers(&b, meta)

	if meta.Comment != "" {
		field(&b, "Comment", meta.Comment)
	}
	if meta.CreatedBy != "" {
		field(&b, "Created by", meta.CreatedBy)
	}
	if meta.CreationDate != nil {
		d := meta.CreationDate.UTC()
		field(&b, "Creation date", fmt.Sprintf("%d [%s UTC]", d.Unix(), d.Format("2006-01-02 15:04:05")))
	}
	if meta.Encoding != "" {
		field(&b, "Encoding", meta.Encoding)
	}

	if info.IsSingleFile() {
		field(&b, "Length", sizeWithHuman(info.Files[0].Length))
	} else {
		b.WriteString("  ")
		b.WriteString(SectionStyle.Render(fmt.Sprintf("Files (%d):", len(info.Files))))
		b.WriteString("\n")
		lines := TreeLines(info.Files)
		if ColorEnabled() {
			lines = GradientLines(lines, ProgressStart, ProgressEnd)
		}
		for _, line := range lines {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderTrackers(b *strings.Builder, meta *torrent.TorrentMeta) {
	if len(meta.AnnounceList) == 0 {
		if meta.Announce != "" {
			field(b, "Announce", meta.Announce)
		}
		return
	}

	b.WriteString("  ")
	b.WriteString(SectionStyle.Render("Announce List:"))
	b.WriteString("\n")

	width := 1
	if len(meta.AnnounceList) >= 10 {
		width = 2
	}
	shown := 0
	for tier, urls := range meta.AnnounceList {
		for _, u := range urls {
			if shown == MaxAnnounceLines {
				b.WriteString("    ")
				b.WriteString(DimStyle.Render(fmt.Sprintf("Truncated at %d announces...", MaxAnnounceLines)))
				b.WriteString("\n")
				return
			}
			fmt.Fprintf(b, "    %s %s\n", DimStyle.Render(fmt.Sprintf("Tier %0*d:", width, tier)), u)
			shown++
		}
	}
}

// RenderMagnet describes a magnet link, which carries no piece data.
func RenderMagnet(m *torrent.Magnet) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Magnet Info:"))
	b.WriteString("\n")
	if m.DisplayName != "" {
		field(&b, "Name", m.DisplayName)
	}
	b.WriteString("  ")
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "Hash:")))
	b.WriteString(HashStyle.Render(fmt.Sprintf("%x", m.InfoHash)))
	b.WriteString("\n")
	if len(m.Trackers) > 0 {
		b.WriteString("  ")
		b.WriteString(SectionStyle.Render("Trackers:"))
		b.WriteString("\n")
		for i, tr := range m.Trackers {
			if i == MaxAnnounceLines {
				b.WriteString("    ")
				b.WriteString(DimStyle.Render(fmt.Sprintf("Truncated at %d announces...", MaxAnnounceLines)))
				b.WriteString("\n")
				break
			}
			b.WriteString("    " + tr + "\n")
		}
	}
	return b.String()
}
