package concurrent

import (
	"sync"
)

// PieceQueue is a thread-safe FIFO of piece indices shared by hashing workers
type PieceQueue struct {
	pieces []int
	head   int
	mu     sync.Mutex
	cond   *sync.Cond
	done   bool
}

func NewPieceQueue() *PieceQueue {
	q := &PieceQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *PieceQueue) PushMultiple(indices []int) {
	q.mu.Lock()
	q.pieces = append(q.pieces, indices...)
	q.cond.Broadcast()
	q.mu.Unlock()
}

// PushRange queues every index in [start, end).
func (q *PieceQueue) PushRange(start, end int) {
	if end <= start {
		return
	}
	q.mu.Lock()
	for i := start; i < end; i++ {
		q.pieces = append(q.pieces, i)
	}
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Pop blocks until a piece is available or the queue is closed and drained.
func (q *PieceQueue) Pop() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pieces)-q.head == 0 && !q.done {
		q.cond.Wait()
	}

	if len(q.pieces)-q.head == 0 {
		return 0, false
	}

	idx := q.pieces[q.head]
	q.head++
	if q.head > len(q.pieces)/2 {
		q.pieces = q.pieces[q.head:]
		q.head = 0
	}
	return idx, true
}

func (q *PieceQueue) Close() {
	q.mu.Lock()
	q.done = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// DrainRemaining empties the queue and returns the pieces nobody picked up
func (q *PieceQueue) DrainRemaining() []int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.pieces) {
		return nil
	}

	remaining := make([]int, len(q.pieces)-q.head)
	copy(remaining, q.pieces[q.head:])
	q.pieces = nil
	q.head = 0
	return remaining
}
