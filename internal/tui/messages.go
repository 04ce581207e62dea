package tui

import "time"

// HashProgressMsg carries a progress snapshot for one hashing run.
type HashProgressMsg struct {
	ID      string
	Done    int64
	Total   int64
	Rate    float64 // pieces per second, smoothed
	Elapsed time.Duration
}

// HashCompleteMsg is sent once every piece has been hashed.
type HashCompleteMsg struct {
	ID      string
	Total   int64
	Elapsed time.Duration
}

// HashErrorMsg is sent when the run fails.
type HashErrorMsg struct {
	ID  string
	Err error
}
