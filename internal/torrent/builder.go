package torrent

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/surge-downloader/trtool/internal/engine/types"
	"github.com/surge-downloader/trtool/internal/torrent/bencode"
	"github.com/surge-downloader/trtool/internal/utils"
	"github.com/surge-downloader/trtool/internal/walk"
)

type BuildOptions struct {
	PieceLength    int64
	Private        bool
	AnnounceGroups [][]string
	Comment        string
	CreationDate   *time.Time
	CreatedBy      string
	Encoding       string
	Workers        int
	Progress       types.ProgressFunc
}

// Built is the outcome of a successful build. Bytes is the complete
// encoded metainfo and Meta is what ParseTorrent returns for it.
type Built struct {
	Meta  *TorrentMeta
	Bytes []byte
}

// ValidatePieceLength accepts powers of two within the supported bounds.
func ValidatePieceLength(n int64) error {
	if n < types.MinPieceLength || n > types.MaxPieceLength || n&(n-1) != 0 {
		return &PieceSizeError{Got: n, Min: types.MinPieceLength, Max: types.MaxPieceLength}
	}
	return nil
}

// PieceLengthFromExponent returns 2^exp for exp in [14, 27].
func PieceLengthFromExponent(exp int) (int64, error) {
	if exp < types.MinPieceExponent || exp > types.MaxPieceExponent {
		var got int64
		if exp >= 0 && exp < 63 {
			got = int64(1) << exp
		}
		return 0, &PieceSizeError{Got: got, Min: types.MinPieceLength, Max: types.MaxPieceLength}
	}
	return int64(1) << exp, nil
}

// Build hashes files, taken as one stream in the given order, and encodes the
// resulting metainfo. A single entry with an empty Path produces a
// single-file torrent.
func Build(ctx context.Context, name string, files []FileEntry, opener Opener, opts BuildOptions) (*Built, error) {
	if err := ValidatePieceLength(opts.PieceLength); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, malformed("name", "must not be empty")
	}
	single := len(files) == 1 && len(files[0].Path) == 0
	if !single {
		for i, f := range files {
			if len(f.Path) == 0 {
				return nil, malformed("files", "entry %d has an empty path", i)
			}
		}
	}

	files = slices.Clone(files)
	layout, err := NewFileLayout(files, opts.PieceLength)
	if err != nil {
		return nil, err
	}
	info := Info{
		Name:        name,
		PieceLength: opts.PieceLength,
		Files:       files,
		Private:     opts.Private,
	}

	start := time.Now()
	n := layout.NumPieces()
	slots := make([][types.HashSize]byte, n)

	h := newHasher(info, layout, opener, &types.HashConfig{Workers: opts.Workers, Progress: opts.Progress})
	err = h.runAll(ctx, func(idx int, sum [types.HashSize]byte, readErr error) error {
		if readErr != nil {
			return readErr
		}
		slots[idx] = sum
		return nil
	})
	if err != nil {
		utils.Debug("build: %s failed: %v", name, err)
		return nil, cancelled(err)
	}
	info.Pieces = slots
	utils.Debug("build: %s hashed %d pieces (%d bytes) in %s", name, n, layout.TotalLength, time.Since(start))

	data, err := encodeMetainfo(info, opts)
	if err != nil {
		return nil, err
	}
	meta, err := ParseTorrent(data)
	if err != nil {
		return nil, fmt.Errorf("re-reading built torrent: %w", err)
	}
	return &Built{Meta: meta, Bytes: data}, nil
}

// BuildFromPath walks root and builds a torrent named after its base name.
// The opener defaults to the local filesystem rooted at root.
func BuildFromPath(ctx context.Context, lister walk.Lister, root string, mode walk.Mode, opener Opener, opts BuildOptions) (*Built, error) {
	if err := ValidatePieceLength(opts.PieceLength); err != nil {
		return nil, err
	}
	if lister == nil {
		lister = walk.OSLister{}
	}
	if opener == nil {
		opener = OSOpener{Root: root}
	}
	found, err := walk.Walk(ctx, lister, root, mode)
	if err != nil {
		return nil, err
	}
	files := make([]FileEntry, len(found))
	for i, f := range found {
		files[i] = FileEntry{Path: f.Path, Length: f.Size}
	}
	return Build(ctx, filepath.Base(filepath.Clean(root)), files, opener, opts)
}

func encodeInfo(info Info) map[string]any {
	pieces := make([]byte, 0, len(info.Pieces)*types.HashSize)
	for _, p := range info.Pieces {
		pieces = append(pieces, p[:]...)
	}
	d := map[string]any{
		"name":         info.Name,
		"piece length": info.PieceLength,
		"pieces":       pieces,
	}
	if info.Private {
		d["private"] = 1
	}
	if info.IsSingleFile() {
		d["length"] = info.Files[0].Length
		return d
	}
	files := make([]any, len(info.Files))
	for i, f := range info.Files {
		files[i] = map[string]any{
			"length": f.Length,
			"path":   f.Path,
		}
	}
	d["files"] = files
	return d
}

func encodeMetainfo(info Info, opts BuildOptions) ([]byte, error) {
	root := map[string]any{
		"info": encodeInfo(info),
	}
	if groups := normalizeGroups(opts.AnnounceGroups); len(groups) > 0 {
		root["announce"] = groups[0][0]
		root["announce-list"] = groups
	}
	if opts.Comment != "" {
		root["comment"] = opts.Comment
	}
	if opts.CreatedBy != "" {
		root["created by"] = opts.CreatedBy
	}
	if opts.CreationDate != nil {
		root["creation date"] = opts.CreationDate.Unix()
	}
	if opts.Encoding != "" {
		root["encoding"] = opts.Encoding
	}
	return bencode.EncodeAny(root)
}

// normalizeGroups drops empty URLs and the tiers they leave empty.
func normalizeGroups(groups [][]string) [][]string {
	var out [][]string
	for _, tier := range groups {
		var kept []string
		for _, u := range tier {
			if u != "" {
				kept = append(kept, u)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}
