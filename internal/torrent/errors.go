package torrent

import (
	"context"
	"errors"
	"fmt"

	"github.com/surge-downloader/trtool/internal/torrent/bencode"
	"github.com/surge-downloader/trtool/internal/walk"
)

var (
	ErrMalformedBencode     = bencode.ErrMalformed
	ErrMalformedTorrent     = errors.New("malformed torrent")
	ErrUnsupportedPieceSize = errors.New("unsupported piece size")
	ErrIO                   = errors.New("i/o error")
	ErrRootInaccessible     = errors.New("root path inaccessible")
	ErrOutputExists         = errors.New("output file already exists")
	ErrWalk                 = walk.ErrWalk
	ErrCancelled            = walk.ErrCancelled
)

// MalformedTorrentError names the metainfo field that failed validation.
type MalformedTorrentError struct {
	Field  string
	Reason string
}

func (e *MalformedTorrentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed torrent: %s", e.Reason)
	}
	return fmt.Sprintf("malformed torrent: %s: %s", e.Field, e.Reason)
}

func (e *MalformedTorrentError) Unwrap() error { return ErrMalformedTorrent }

func malformed(field, format string, args ...any) error {
	return &MalformedTorrentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type PieceSizeError struct {
	Got int64
	Min int64
	Max int64
}

func (e *PieceSizeError) Error() string {
	return fmt.Sprintf("unsupported piece size %d: must be a power of two between %d and %d", e.Got, e.Min, e.Max)
}

func (e *PieceSizeError) Unwrap() error { return ErrUnsupportedPieceSize }

// IOError wraps a filesystem failure with the path it happened on.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// cancelled maps context errors onto ErrCancelled and leaves others alone.
func cancelled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCancelled
	}
	return err
}
