package torrent

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// FileSpan is the part of one file that falls inside a piece.
type FileSpan struct {
	Index  int
	Offset int64
	Len    int64
}

// FileLayout maps the concatenated payload stream onto the file list.
type FileLayout struct {
	Files       []FileEntry
	PieceLength int64
	TotalLength int64

	// starts[i] is the stream offset of file i; starts[len(Files)] is the total.
	starts []int64
}

func NewFileLayout(files []FileEntry, pieceLength int64) (*FileLayout, error) {
	if pieceLength <= 0 {
		return nil, fmt.Errorf("invalid piece length %d", pieceLength)
	}
	starts := make([]int64, len(files)+1)
	for i, f := range files {
		if f.Length < 0 {
			return nil, fmt.Errorf("file %d: negative length", i)
		}
		if f.Length > math.MaxInt64-starts[i] {
			return nil, fmt.Errorf("file %d: total length overflows", i)
		}
		starts[i+1] = starts[i] + f.Length
	}
	return &FileLayout{
		Files:       files,
		PieceLength: pieceLength,
		TotalLength: starts[len(files)],
		starts:      starts,
	}, nil
}

func (fl *FileLayout) NumPieces() int {
	return int(pieceCount(fl.TotalLength, fl.PieceLength))
}

// pieceCount is ceil(total / pieceLength) without overflowing near MaxInt64.
func pieceCount(total, pieceLength int64) int64 {
	n := total / pieceLength
	if total%pieceLength != 0 {
		n++
	}
	return n
}

func (fl *FileLayout) PieceSize(pieceIndex int) int64 {
	n := fl.NumPieces()
	if pieceIndex < 0 || pieceIndex >= n {
		return 0
	}
	if pieceIndex == n-1 {
		return fl.TotalLength - int64(pieceIndex)*fl.PieceLength
	}
	return fl.PieceLength
}

// PieceSpans resolves a piece into per-file ranges in stream order.
// Zero-length files never appear.
func (fl *FileLayout) PieceSpans(pieceIndex int) []FileSpan {
	size := fl.PieceSize(pieceIndex)
	if size == 0 {
		return nil
	}
	start := int64(pieceIndex) * fl.PieceLength
	end := start + size

	// First file whose end lies beyond start.
	i := sort.Search(len(fl.Files), func(i int) bool { return fl.starts[i+1] > start })

	var spans []FileSpan
	for off := start; off < end && i < len(fl.Files); i++ {
		fileEnd := fl.starts[i+1]
		if fileEnd <= off {
			continue
		}
		n := min(end, fileEnd) - off
		spans = append(spans, FileSpan{Index: i, Offset: off - fl.starts[i], Len: n})
		off += n
	}
	return spans
}

// FilePieces returns the inclusive range of pieces overlapping file i.
// ok is false for zero-length files, which overlap nothing.
func (fl *FileLayout) FilePieces(i int) (first, last int, ok bool) {
	if i < 0 || i >= len(fl.Files) || fl.Files[i].Length == 0 {
		return 0, 0, false
	}
	first = int(fl.starts[i] / fl.PieceLength)
	last = int((fl.starts[i+1] - 1) / fl.PieceLength)
	return first, last, true
}

// RangeReader is a positional reader over one payload file.
type RangeReader interface {
	io.ReaderAt
	io.Closer
}

// Opener gives the hasher access to payload files by their torrent path.
// An empty path names the root itself.
type Opener interface {
	Open(path []string) (RangeReader, error)
	Stat(path []string) (size int64, isDir bool, err error)
}

// OSOpener resolves torrent paths under Root on the local filesystem.
type OSOpener struct {
	Root string
}

func (o OSOpener) Resolve(path []string) string {
	return filepath.Join(append([]string{o.Root}, path...)...)
}

func (o OSOpener) Open(path []string) (RangeReader, error) {
	f, err := os.Open(o.Resolve(path))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (o OSOpener) Stat(path []string) (int64, bool, error) {
	fi, err := os.Stat(o.Resolve(path))
	if err != nil {
		return 0, false, err
	}
	return fi.Size(), fi.IsDir(), nil
}

// readSpan fills buf from one file span, treating a short read as an error.
func readSpan(opener Opener, f FileEntry, span FileSpan, buf []byte) error {
	r, err := opener.Open(f.Path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	n, err := r.ReadAt(buf[:span.Len], span.Offset)
	if int64(n) == span.Len {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
