package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/surge-downloader/trtool/internal/engine/types"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	RateSmoothingAlpha  = 0.3 // EMA smoothing factor
)

type ProgressReporter struct {
	state        *types.ProgressState
	pollInterval time.Duration
	lastRate     float64
}

func NewProgressReporter(state *types.ProgressState) *ProgressReporter {
	return &ProgressReporter{
		state:        state,
		pollInterval: DefaultPollInterval,
	}
}

// PollCmd returns a tea.Cmd that polls the progress state after the interval
func (r *ProgressReporter) PollCmd() tea.Cmd {
	return tea.Tick(r.pollInterval, func(time.Time) tea.Msg {
		return r.snapshot()
	})
}

func (r *ProgressReporter) snapshot() tea.Msg {
	if err := r.state.GetError(); err != nil {
		return HashErrorMsg{ID: r.state.ID, Err: err}
	}

	done, total, elapsed := r.state.GetProgress()
	if elapsed < 0 {
		elapsed = 0
	}

	if r.state.Done.Load() {
		if total < done {
			total = done
		}
		return HashCompleteMsg{ID: r.state.ID, Total: total, Elapsed: elapsed}
	}

	var instant float64
	if elapsed.Seconds() > 0 && done > 0 {
		instant = float64(done) / elapsed.Seconds()
	}
	if r.lastRate == 0 {
		r.lastRate = instant
	} else {
		r.lastRate = RateSmoothingAlpha*instant + (1-RateSmoothingAlpha)*r.lastRate
	}

	return HashProgressMsg{
		ID:      r.state.ID,
		Done:    done,
		Total:   total,
		Rate:    r.lastRate,
		Elapsed: elapsed,
	}
}
