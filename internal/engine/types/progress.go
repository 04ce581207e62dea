package types

import (
	"sync"
	"sync/atomic"
	"time"
)

// ProgressFunc is called once per completed piece with that piece's index
// and the piece count. Pieces finish in any order, and the function may be
// invoked from several goroutines at once.
type ProgressFunc func(index, total int)

type ProgressState struct {
	ID        string
	Completed atomic.Int64
	total     atomic.Int64
	StartTime time.Time
	Done      atomic.Bool
	Error     atomic.Pointer[error]

	mu       sync.Mutex // Protects listener
	listener ProgressFunc
}

func NewProgressState(id string, total int64) *ProgressState {
	ps := &ProgressState{
		ID:        id,
		StartTime: time.Now(),
	}
	ps.total.Store(total)
	return ps
}

// OnProgress registers fn to be called after every Advance.
func (ps *ProgressState) OnProgress(fn ProgressFunc) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.listener = fn
}

// Advance marks piece idx as finished.
func (ps *ProgressState) Advance(idx int) {
	done := ps.Completed.Add(1)
	total := ps.total.Load()
	ps.mu.Lock()
	fn := ps.listener
	ps.mu.Unlock()
	if fn != nil {
		fn(idx, int(total))
	}
	if done >= total {
		ps.Done.Store(true)
	}
}

// Observe records one completion reported by another ProgressState's
// listener. The index only identifies the piece and is not used as a count.
func (ps *ProgressState) Observe(index, total int) {
	ps.total.Store(int64(total))
	done := ps.Completed.Add(1)
	if total > 0 && done >= int64(total) {
		ps.Done.Store(true)
	}
}

func (ps *ProgressState) SetError(err error) {
	ps.Error.Store(&err)
}

func (ps *ProgressState) GetError() error {
	if e := ps.Error.Load(); e != nil {
		return *e
	}
	return nil
}

func (ps *ProgressState) GetProgress() (completed int64, total int64, elapsed time.Duration) {
	return ps.Completed.Load(), ps.total.Load(), time.Since(ps.StartTime)
}

// Fraction returns completion in [0, 1]. An empty run counts as complete.
func (ps *ProgressState) Fraction() float64 {
	total := ps.total.Load()
	if total <= 0 {
		return 1
	}
	f := float64(ps.Completed.Load()) / float64(total)
	if f > 1 {
		f = 1
	}
	return f
}
