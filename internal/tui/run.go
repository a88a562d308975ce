package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
)

const eventBuffer = 256

// Run renders progress for work on out until it finishes or the user
// interrupts it. Interrupting cancels the context passed to work. The error
// returned by work is returned.
func Run(ctx context.Context, bus *eventbus.EventBus, out io.Writer, opts Options, work func(ctx context.Context) error) error {
	fwdCtx, stopForward := context.WithCancel(ctx)
	defer stopForward()

	workCtx, cancelWork := context.WithCancel(ctx)
	defer cancelWork()

	events := make(chan tea.Msg, eventBuffer)
	Forward(fwdCtx, bus, events)

	p := tea.NewProgram(New(opts, events, cancelWork), tea.WithOutput(out), tea.WithContext(ctx))

	done := make(chan error, 1)
	go func() {
		err := work(workCtx)
		done <- err
		p.Send(workDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancelWork()
		<-done
		return err
	}

	cancelWork()
	return <-done
}
