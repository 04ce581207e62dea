package torrent

import (
	"context"
	"crypto/sha1"
	"sync"

	"github.com/surge-downloader/trtool/internal/engine/concurrent"
	"github.com/surge-downloader/trtool/internal/engine/types"
)

// pieceDone receives the digest of one piece, or the read error that
// prevented hashing it. A non-nil return aborts the run.
type pieceDone func(idx int, sum [types.HashSize]byte, readErr error) error

type hasher struct {
	info     Info
	layout   *FileLayout
	opener   Opener
	workers  int
	progress *types.ProgressState
	bufs     sync.Pool
}

func newHasher(info Info, layout *FileLayout, opener Opener, cfg *types.HashConfig) *hasher {
	h := &hasher{
		info:     info,
		layout:   layout,
		opener:   opener,
		workers:  cfg.GetWorkers(),
		progress: types.NewProgressState(info.Name, int64(layout.NumPieces())),
	}
	if cfg != nil && cfg.Progress != nil {
		h.progress.OnProgress(cfg.Progress)
	}
	// Buffers grow to the largest piece actually hashed, never to the
	// declared piece length.
	h.bufs.New = func() any { return new([]byte) }
	return h
}

// run hashes the given pieces on the worker pool. Each index is handed to
// exactly one worker, so callbacks writing to slot idx never race.
func (h *hasher) run(ctx context.Context, indices []int, done pieceDone) error {
	return h.finish(concurrent.RunPieces(ctx, h.workers, indices, h.pieceFunc(done)))
}

// runAll hashes every piece of the layout.
func (h *hasher) runAll(ctx context.Context, done pieceDone) error {
	return h.finish(concurrent.RunRange(ctx, h.workers, h.layout.NumPieces(), h.pieceFunc(done)))
}

func (h *hasher) pieceFunc(done pieceDone) concurrent.PieceFunc {
	return func(ctx context.Context, idx int) error {
		sum, readErr := h.hashPiece(idx)
		if err := done(idx, sum, readErr); err != nil {
			return err
		}
		h.progress.Advance(idx)
		return nil
	}
}

func (h *hasher) finish(err error) error {
	if err != nil {
		h.progress.SetError(err)
	}
	return err
}

// skip counts piece idx as finished without reading it.
func (h *hasher) skip(idx int) {
	h.progress.Advance(idx)
}

func (h *hasher) hashPiece(idx int) ([types.HashSize]byte, error) {
	bp := h.bufs.Get().(*[]byte)
	defer h.bufs.Put(bp)

	size := h.layout.PieceSize(idx)
	if int64(cap(*bp)) < size {
		*bp = make([]byte, size)
	}
	buf := (*bp)[:size]
	var off int64
	for _, span := range h.layout.PieceSpans(idx) {
		f := h.layout.Files[span.Index]
		if err := readSpan(h.opener, f, span, buf[off:]); err != nil {
			return [types.HashSize]byte{}, &IOError{Path: h.info.DisplayPath(span.Index), Err: err}
		}
		off += span.Len
	}
	return sha1.Sum(buf), nil
}
