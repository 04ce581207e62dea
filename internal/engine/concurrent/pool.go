package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/surge-downloader/trtool/internal/utils"
)

// PieceFunc processes one piece. Returning an error stops the whole run.
type PieceFunc func(ctx context.Context, idx int) error

// RunPieces feeds indices to at most workers goroutines and waits for them.
// The first error returned by fn cancels the remaining work and is returned.
// If ctx is cancelled, no new pieces are dispatched and ctx.Err() is returned.
func RunPieces(ctx context.Context, workers int, indices []int, fn PieceFunc) error {
	q := NewPieceQueue()
	q.PushMultiple(indices)
	q.Close()
	return drain(ctx, workers, len(indices), q, fn)
}

// RunRange is RunPieces over every index in [0, n).
func RunRange(ctx context.Context, workers, n int, fn PieceFunc) error {
	q := NewPieceQueue()
	q.PushRange(0, n)
	q.Close()
	return drain(ctx, workers, n, q, fn)
}

func drain(ctx context.Context, workers, n int, q *PieceQueue, fn PieceFunc) error {
	if n <= 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	utils.Debug("pool: %d pieces on %d workers", n, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				idx, ok := q.Pop()
				if !ok {
					return nil
				}
				if err := fn(gctx, idx); err != nil {
					return err
				}
			}
		})
	}

	err := g.Wait()
	if left := q.DrainRemaining(); len(left) > 0 {
		utils.Debug("pool: stopped with %d pieces undispatched", len(left))
	}
	if err != nil {
		// Prefer the caller's cancellation over the derived context error.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return ctx.Err()
}
