package torrent

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/surge-downloader/trtool/internal/engine/types"
)

// FileEntry is one payload file. Path is relative to the content root and
// is empty only for the sole entry of a single-file torrent.
type FileEntry struct {
	Path   []string
	Length int64
}

type Info struct {
	Name        string
	PieceLength int64
	Pieces      [][types.HashSize]byte
	Files       []FileEntry
	Private     bool
}

func (i Info) TotalLength() int64 {
	var total int64
	for _, f := range i.Files {
		total += f.Length
	}
	return total
}

// IsSingleFile reports whether the info dictionary uses the "length" form.
func (i Info) IsSingleFile() bool {
	return len(i.Files) == 1 && len(i.Files[0].Path) == 0
}

func (i Info) NumPieces() int {
	return len(i.Pieces)
}

// DisplayPath names file idx the way users see it: the torrent name for a
// single-file torrent, otherwise the slash-joined relative path.
func (i Info) DisplayPath(idx int) string {
	if idx < 0 || idx >= len(i.Files) {
		return ""
	}
	if len(i.Files[idx].Path) == 0 {
		return i.Name
	}
	return strings.Join(i.Files[idx].Path, "/")
}

type TorrentMeta struct {
	Announce     string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	Encoding     string
	CreationDate *time.Time
	Info         Info
	InfoHash     [types.HashSize]byte
	InfoBytes    []byte
}

// HexHash returns the lowercase hex info hash.
func (m *TorrentMeta) HexHash() string {
	return hex.EncodeToString(m.InfoHash[:])
}

// Trackers returns every announce URL once, tiers flattened in order,
// falling back to Announce when no announce-list is present.
func (m *TorrentMeta) Trackers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tier := range m.AnnounceList {
		for _, u := range tier {
			if u != "" && !seen[u] {
				seen[u] = true
				out = append(out, u)
			}
		}
	}
	if len(out) == 0 && m.Announce != "" {
		out = append(out, m.Announce)
	}
	return out
}
