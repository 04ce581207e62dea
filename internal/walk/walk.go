// Package walk enumerates a file tree into the ordered file list a torrent's
// piece stream is built from.
package walk

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/surge-downloader/trtool/internal/utils"
)

type Mode uint8

const (
	// ModeDefault keeps whatever order the Lister returns. Not portable.
	ModeDefault Mode = iota
	// ModeAlphabetical sorts the full file set by relative path.
	ModeAlphabetical
	// ModeBreadthFirstAlphabetical is a depth-first, files-first order: a
	// directory's own files come first, alphabetically, then each subdirectory
	// is walked in full, also alphabetically. Despite the name it does not
	// finish one depth before starting the next; ModeBreadthFirstLevel does.
	ModeBreadthFirstAlphabetical
	// ModeBreadthFirstLevel emits every file at depth 0, then depth 1, and so on.
	ModeBreadthFirstLevel
	// ModeFileSize sorts by size ascending, then by path.
	ModeFileSize
)

var (
	ErrWalk        = errors.New("walk failed")
	ErrInvalidMode = errors.New("invalid walk mode")
	ErrCancelled   = errors.New("operation cancelled")
)

func ParseMode(n int) (Mode, error) {
	if n < int(ModeDefault) || n > int(ModeFileSize) {
		return 0, fmt.Errorf("%w: %d (want 0-4)", ErrInvalidMode, n)
	}
	return Mode(n), nil
}

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeAlphabetical:
		return "alphabetical"
	case ModeBreadthFirstAlphabetical:
		return "breadth-first-alphabetical"
	case ModeBreadthFirstLevel:
		return "breadth-first-level"
	case ModeFileSize:
		return "file-size"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// WalkError reports the path that could not be enumerated.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk %s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() []error {
	return []error{ErrWalk, e.Err}
}

// File is one regular file of the walk. Path is relative to the root and empty
// when the root itself is a file.
type File struct {
	Path []string
	Size int64
}

func (f File) RelPath() string {
	return strings.Join(f.Path, "/")
}

// Walk lists every regular file under root in the order mode prescribes.
// Any unreadable directory aborts the walk.
func Walk(ctx context.Context, lister Lister, root string, mode Mode) ([]File, error) {
	if mode > ModeFileSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	st, err := lister.Stat(root)
	if err != nil {
		return nil, &WalkError{Path: root, Err: err}
	}
	if !st.IsDir {
		return []File{{Size: st.Size}}, nil
	}

	var files []File
	if err := collect(ctx, lister, root, nil, &files); err != nil {
		return nil, err
	}
	order(files, mode)
	utils.Debug("walk: %s mode=%s files=%d", root, mode, len(files))
	return files, nil
}

func collect(ctx context.Context, lister Lister, dir string, prefix []string, out *[]File) error {
	if err := ctx.Err(); err != nil {
		return ErrCancelled
	}
	entries, err := lister.ReadDir(dir)
	if err != nil {
		return &WalkError{Path: dir, Err: err}
	}
	for _, e := range entries {
		rel := append(slices.Clip(prefix), e.Name)
		if e.IsDir {
			if err := collect(ctx, lister, filepath.Join(dir, e.Name), rel, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, File{Path: rel, Size: e.Size})
	}
	return nil
}

func order(files []File, mode Mode) {
	switch mode {
	case ModeAlphabetical:
		slices.SortStableFunc(files, func(a, b File) int {
			return slices.Compare(a.Path, b.Path)
		})
	case ModeBreadthFirstAlphabetical:
		slices.SortStableFunc(files, compareFilesFirst)
	case ModeBreadthFirstLevel:
		slices.SortStableFunc(files, func(a, b File) int {
			if len(a.Path) != len(b.Path) {
				return len(a.Path) - len(b.Path)
			}
			return slices.Compare(a.Path, b.Path)
		})
	case ModeFileSize:
		slices.SortStableFunc(files, func(a, b File) int {
			switch {
			case a.Size < b.Size:
				return -1
			case a.Size > b.Size:
				return 1
			}
			return slices.Compare(a.Path, b.Path)
		})
	}
}

// compareFilesFirst orders two paths so that, inside any shared directory,
// the files of that directory come before the contents of its subdirectories.
func compareFilesFirst(a, b File) int {
	n := min(len(a.Path), len(b.Path))
	for i := 0; i < n; i++ {
		aLeaf, bLeaf := i == len(a.Path)-1, i == len(b.Path)-1
		switch {
		case aLeaf && !bLeaf:
			return -1
		case !aLeaf && bLeaf:
			return 1
		}
		if c := strings.Compare(a.Path[i], b.Path[i]); c != 0 {
			return c
		}
	}
	return len(a.Path) - len(b.Path)
}
