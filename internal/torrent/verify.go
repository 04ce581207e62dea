package torrent

import (
	"context"
	"fmt"
	"time"

	"github.com/surge-downloader/trtool/internal/engine/types"
	"github.com/surge-downloader/trtool/internal/utils"
)

// ExtraBytesPolicy decides what a file longer than recorded means.
type ExtraBytesPolicy uint8

const (
	// ExtraBytesIgnore judges the file on the recorded prefix only.
	ExtraBytesIgnore ExtraBytesPolicy = iota
	// ExtraBytesFail treats any surplus like a size mismatch.
	ExtraBytesFail
)

func ParseExtraBytesPolicy(s string) (ExtraBytesPolicy, error) {
	switch s {
	case "", "ignore":
		return ExtraBytesIgnore, nil
	case "fail":
		return ExtraBytesFail, nil
	}
	return 0, fmt.Errorf("unknown extra bytes policy %q (want ignore or fail)", s)
}

func (p ExtraBytesPolicy) String() string {
	if p == ExtraBytesFail {
		return "fail"
	}
	return "ignore"
}

type VerifyOptions struct {
	Workers    int
	Progress   types.ProgressFunc
	ExtraBytes ExtraBytesPolicy
}

// FileResult is the verdict for one recorded file. FirstPiece and LastPiece
// are inclusive and meaningful only when HasPieces is set.
type FileResult struct {
	Path       string
	Length     int64
	FirstPiece int
	LastPiece  int
	HasPieces  bool
	Passed     bool
	// Known is set when the file was missing or had the wrong size, so its
	// pieces were failed without being read.
	Known bool
}

type Summary struct {
	Total  int
	Passed int
	Failed int
}

type Report struct {
	PieceResults []bool
	FileResults  []FileResult
	PieceSummary Summary
	FileSummary  Summary
}

// FailedPieces lists failed piece indices in ascending order.
func (r *Report) FailedPieces() []int {
	var out []int
	for i, ok := range r.PieceResults {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

// OK reports whether every piece and file passed.
func (r *Report) OK() bool {
	return r.PieceSummary.Failed == 0 && r.FileSummary.Failed == 0
}

// Verify checks the files under root against the hashes recorded in meta.
// For a single-file torrent root is the file itself, otherwise it is the
// directory holding the torrent's files. A nil opener reads from the local
// filesystem.
func Verify(ctx context.Context, meta *TorrentMeta, root string, opener Opener, opts VerifyOptions) (*Report, error) {
	if opener == nil {
		opener = OSOpener{Root: root}
	}
	info := meta.Info

	if _, isDir, err := opener.Stat(nil); err != nil {
		return nil, &IOError{Path: root, Err: fmt.Errorf("%w: %w", ErrRootInaccessible, err)}
	} else if isDir == info.IsSingleFile() {
		utils.Debug("verify: root %s has unexpected kind (dir=%v)", root, isDir)
	}

	layout, err := NewFileLayout(info.Files, info.PieceLength)
	if err != nil {
		return nil, malformed("files", "%v", err)
	}
	n := layout.NumPieces()
	if n != len(info.Pieces) {
		return nil, malformed("pieces", "%d hashes for %d pieces", len(info.Pieces), n)
	}

	start := time.Now()
	files := make([]FileResult, len(info.Files))
	skip := make([]bool, n)
	for i, f := range info.Files {
		res := FileResult{Path: info.DisplayPath(i), Length: f.Length}
		res.FirstPiece, res.LastPiece, res.HasPieces = layout.FilePieces(i)

		size, isDir, err := opener.Stat(f.Path)
		switch {
		case err != nil || isDir:
			res.Known = true
		case size < f.Length:
			res.Known = true
		case size > f.Length && opts.ExtraBytes == ExtraBytesFail:
			res.Known = true
		}
		if res.Known {
			utils.Debug("verify: %s missing or size mismatch", res.Path)
			if res.HasPieces {
				for p := res.FirstPiece; p <= res.LastPiece; p++ {
					skip[p] = true
				}
			}
		}
		files[i] = res
	}

	h := newHasher(info, layout, opener, &types.HashConfig{Workers: opts.Workers, Progress: opts.Progress})
	var indices []int
	for p := 0; p < n; p++ {
		if skip[p] {
			h.skip(p)
			continue
		}
		indices = append(indices, p)
	}

	pieces := make([]bool, n)
	err = h.run(ctx, indices, func(idx int, sum [types.HashSize]byte, readErr error) error {
		if readErr != nil {
			utils.Debug("verify: piece %d unreadable: %v", idx, readErr)
			return nil
		}
		pieces[idx] = sum == info.Pieces[idx]
		return nil
	})
	if err != nil {
		return nil, cancelled(err)
	}

	report := &Report{PieceResults: pieces, FileResults: files}
	for i := range files {
		f := &files[i]
		f.Passed = !f.Known
		if f.Passed && f.HasPieces {
			for p := f.FirstPiece; p <= f.LastPiece; p++ {
				if !pieces[p] {
					f.Passed = false
					break
				}
			}
		}
		report.FileSummary.Total++
		if f.Passed {
			report.FileSummary.Passed++
		} else {
			report.FileSummary.Failed++
		}
	}
	for _, ok := range pieces {
		report.PieceSummary.Total++
		if ok {
			report.PieceSummary.Passed++
		} else {
			report.PieceSummary.Failed++
		}
	}

	utils.Debug("verify: %s %d/%d pieces passed, %d/%d files passed in %s", info.Name,
		report.PieceSummary.Passed, n, report.FileSummary.Passed, len(files), time.Since(start))
	return report, nil
}
