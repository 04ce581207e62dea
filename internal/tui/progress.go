package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/surge-downloader/trtool/internal/engine/types"
	"github.com/surge-downloader/trtool/internal/utils"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
	maxBarWidth     = 60
)

// ProgressModel renders a single hashing run as a progress bar.
type ProgressModel struct {
	label    string
	reporter *ProgressReporter
	bar      progress.Model

	done    int64
	total   int64
	rate    float64
	elapsed time.Duration

	finished    bool
	interrupted bool
	err         error
}

func NewProgressModel(label string, state *types.ProgressState) ProgressModel {
	bar := progress.New(
		progress.WithGradient(ProgressStart, ProgressEnd),
		progress.WithoutPercentage(),
	)
	bar.Width = defaultBarWidth

	return ProgressModel{
		label:    label,
		reporter: NewProgressReporter(state),
		bar:      bar,
	}
}

// Interrupted reports whether the user asked to stop the run.
func (m ProgressModel) Interrupted() bool {
	return m.interrupted
}

func (m ProgressModel) Init() tea.Cmd {
	return m.reporter.PollCmd()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		w := msg.Width - len(m.label) - 30
		if w < minBarWidth {
			w = minBarWidth
		}
		if w > maxBarWidth {
			w = maxBarWidth
		}
		m.bar.Width = w
		return m, nil

	case HashProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.rate = msg.Rate
		m.elapsed = msg.Elapsed
		return m, m.reporter.PollCmd()

	case HashCompleteMsg:
		m.finished = true
		m.done = msg.Total
		m.total = msg.Total
		m.elapsed = msg.Elapsed
		return m, tea.Quit

	case HashErrorMsg:
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) fraction() float64 {
	if m.finished {
		return 1
	}
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render(m.label))
	b.WriteString(" ")
	b.WriteString(m.bar.ViewAs(m.fraction()))
	b.WriteString(" ")
	b.WriteString(ValueStyle.Render(fmt.Sprintf("[%d/%d]", m.done, m.total)))

	switch {
	case m.err != nil:
		b.WriteString(" " + FailStyle.Render("failed"))
	case m.interrupted:
		b.WriteString(" " + WarnStyle.Render("interrupted"))
	case m.finished:
		b.WriteString(" " + DimStyle.Render("in "+m.elapsed.Round(10*time.Millisecond).String()))
	case m.rate > 0:
		b.WriteString(" " + DimStyle.Render(fmt.Sprintf("%.1f pieces/s", m.rate)))
	}
	b.WriteString("\n")
	return b.String()
}

// RunWithProgress runs work while a progress program draws state to out.
// Quitting the program cancels the context handed to work. The error
// returned is always the one produced by work.
func RunWithProgress(ctx context.Context, label string, state *types.ProgressState, out io.Writer, work func(context.Context) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	p := tea.NewProgram(NewProgressModel(label, state), opts...)

	errCh := make(chan error, 1)
	go func() {
		err := work(ctx)
		if err != nil {
			state.SetError(err)
		}
		state.Done.Store(true)
		errCh <- err
	}()

	final, runErr := p.Run()
	if runErr != nil {
		utils.Debug("progress: program exited: %v", runErr)
	}
	if m, ok := final.(ProgressModel); ok && m.Interrupted() {
		cancel()
	}
	return <-errCh
}
