package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
)

// Forward subscribes to the events the progress view renders and pushes
// them onto ch until ctx ends. Sends block while ch is full.
func Forward(ctx context.Context, bus *eventbus.EventBus, ch chan<- tea.Msg) {
	send := func(msg tea.Msg) {
		if ctx.Err() != nil {
			return
		}
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	}

	bus.SubscribeScanStarted(func(p eventbus.ScanStartedPayload) { send(p) })
	bus.SubscribeTaskChanged(func(p eventbus.TaskChangedPayload) { send(p) })
	bus.SubscribeTotalChanged(func(p eventbus.TotalChangedPayload) { send(p) })
	bus.SubscribeScanFinished(func(p eventbus.ScanFinishedPayload) { send(p) })
	bus.SubscribeCleanStarted(func(p eventbus.CleanStartedPayload) { send(p) })
	bus.SubscribeCleanFinished(func(p eventbus.CleanFinishedPayload) { send(p) })
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) { send(p) })
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
