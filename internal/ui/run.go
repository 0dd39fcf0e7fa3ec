package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/ampwatch/internal/logging"
	"github.com/muurk/ampwatch/internal/pipeline"
)

// RunMonitor processes r with proc while showing the monitor full screen.
//
// The processor's own observer keeps receiving outcomes. The monitor stays open
// after the input ends until the user quits, and the returned Stats are what the
// monitor saw. Extra program options (e.g. tea.WithInputTTY when the capture
// arrives on stdin) are appended to the defaults.
func RunMonitor(ctx context.Context, proc *pipeline.Processor, r io.Reader, opts MonitorOptions, teaOpts ...tea.ProgramOption) (pipeline.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewMonitorModel(opts), append([]tea.ProgramOption{tea.WithAltScreen()}, teaOpts...)...)

	run := *proc
	run.Observer = pipeline.Observers{NewFeed(p)}
	if proc.Observer != nil {
		run.Observer = pipeline.Observers{proc.Observer, NewFeed(p)}
	}

	go func() {
		_, err := run.Run(ctx, r)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		p.Send(DoneMsg{Err: err})
	}()

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	final, err := p.Run()
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("monitor failed: %w", err)
	}

	m, ok := final.(MonitorModel)
	if !ok {
		return pipeline.Stats{}, fmt.Errorf("monitor returned unexpected model %T", final)
	}
	done, runErr := m.Done()
	logging.Debug("Monitor closed",
		zap.Bool("input_finished", done),
		zap.Int("lines", m.Stats().Lines),
	)
	return m.Stats(), runErr
}
