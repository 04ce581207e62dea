package tui

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/surge-downloader/trtool/internal/engine/types"
)

func TestProgressReporter_PollCmd_EmitsComplete(t *testing.T) {
	ps := types.NewProgressState("build-1", 0)
	ps.StartTime = time.Now().Add(-200 * time.Millisecond)
	for i := 0; i < 7; i++ {
		ps.Observe(i, 7)
	}

	r := NewProgressReporter(ps)
	r.pollInterval = time.Millisecond

	msg := r.PollCmd()()
	complete, ok := msg.(HashCompleteMsg)
	if !ok {
		t.Fatalf("expected HashCompleteMsg, got %T", msg)
	}
	if complete.ID != "build-1" {
		t.Fatalf("unexpected id: %s", complete.ID)
	}
	if complete.Total != 7 {
		t.Fatalf("expected total=7, got %d", complete.Total)
	}
	if complete.Elapsed < 200*time.Millisecond {
		t.Fatalf("expected elapsed from start time, got %s", complete.Elapsed)
	}
}

func TestProgressReporter_PollCmd_EmitsError(t *testing.T) {
	ps := types.NewProgressState("verify-err", 100)
	ps.SetError(errors.New("disk gone"))

	r := NewProgressReporter(ps)
	r.pollInterval = time.Millisecond

	msg := r.PollCmd()()
	errMsg, ok := msg.(HashErrorMsg)
	if !ok {
		t.Fatalf("expected HashErrorMsg, got %T", msg)
	}
	if errMsg.ID != "verify-err" || errMsg.Err == nil || errMsg.Err.Error() != "disk gone" {
		t.Fatalf("unexpected error message: %+v", errMsg)
	}
}

func TestProgressReporter_PollCmd_RateEMA(t *testing.T) {
	ps := types.NewProgressState("rate", 1000)

	r := NewProgressReporter(ps)
	r.pollInterval = time.Millisecond

	ps.StartTime = time.Now().Add(-2 * time.Second)
	ps.Completed.Store(200) // ~100 pieces/s

	msg1 := r.PollCmd()()
	p1, ok := msg1.(HashProgressMsg)
	if !ok {
		t.Fatalf("expected HashProgressMsg, got %T", msg1)
	}
	if p1.ID != "rate" || p1.Done != 200 || p1.Total != 1000 {
		t.Fatalf("unexpected progress payload: %+v", p1)
	}
	if p1.Rate <= 0 {
		t.Fatalf("expected positive rate, got %f", p1.Rate)
	}

	ps.StartTime = time.Now().Add(-2 * time.Second)
	ps.Completed.Store(400) // ~200 pieces/s

	p2, ok := r.PollCmd()().(HashProgressMsg)
	if !ok {
		t.Fatal("expected HashProgressMsg")
	}

	want := RateSmoothingAlpha*200 + (1-RateSmoothingAlpha)*100
	if math.Abs(p2.Rate-want) > 20 { // allow timing jitter
		t.Fatalf("unexpected EMA rate: got=%f want~=%f", p2.Rate, want)
	}
}
