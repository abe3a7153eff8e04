package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devtoy/cli/internal/export"
)

type (
	startMsg  struct{ total int }
	resultMsg struct{ result export.Result }
	doneMsg   struct{}
)

// progressModel renders a progress bar while articles are exported
type progressModel struct {
	bar         progress.Model
	cancel      context.CancelFunc
	total       int
	done        int
	failed      int
	finished    bool
	interrupted bool
}

func newProgressModel(cancel context.CancelFunc) progressModel {
	return progressModel{
		bar:    progress.New(progress.WithDefaultGradient()),
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m.total = msg.total
		return m, nil

	case resultMsg:
		m.done++
		if msg.result.Err != nil {
			m.failed++
		}
		return m, tea.Println(formatResult(msg.result))

	case doneMsg:
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.interrupted {
			// Unstarted tasks are skipped; running formatters are killed.
			m.interrupted = true
			m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-20, 10), 60)
		return m, nil
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}
	status := fmt.Sprintf("%d/%d", m.done, m.total)
	if m.failed > 0 {
		status += styleFail.Render(fmt.Sprintf(" (%d failed)", m.failed))
	}
	if m.interrupted {
		status += styleDim.Render(" cancelling...")
	}
	return m.bar.ViewAs(m.percent()) + " " + status + "\n"
}

// runWithProgress runs the download while a progress bar tracks it
func runWithProgress(ctx context.Context, d *export.Downloader, dir string) (*export.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(cancel))
	d.OnStart = func(total int) { p.Send(startMsg{total: total}) }
	d.OnResult = func(res export.Result) { p.Send(resultMsg{result: res}) }

	var (
		report      *export.Report
		downloadErr error
		finished    = make(chan struct{})
	)
	go func() {
		defer close(finished)
		report, downloadErr = d.Download(ctx, dir)
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-finished
		return nil, fmt.Errorf("progress display failed: %w", err)
	}
	<-finished

	return report, downloadErr
}
