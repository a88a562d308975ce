package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_DeliversTyped(t *testing.T) {
	bus := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan ScanStartedPayload, 1)
	bus.SubscribeScanStarted(func(p ScanStartedPayload) { got <- p })
	go bus.Start(ctx)

	bus.PublishScanStarted(ScanStartedPayload{RunID: "r1", Tasks: 4})

	select {
	case p := <-got:
		assert.Equal(t, 4, p.Tasks)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := New(1)

	var mu sync.Mutex
	var dropped []Event
	bus.OnDrop(func(e Event, _ any) {
		mu.Lock()
		dropped = append(dropped, e)
		mu.Unlock()
	})

	// Not started: the second publish cannot be buffered.
	bus.PublishScanStarted(ScanStartedPayload{})
	bus.PublishScanFinished(ScanFinishedPayload{})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Event{EventScanFinished}, dropped)
}

func TestEventBus_RecoversSubscriberPanic(t *testing.T) {
	bus := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	panicked := make(chan any, 1)
	bus.OnPanic(func(_ Event, _ any, r any) { panicked <- r })

	delivered := make(chan struct{}, 1)
	bus.SubscribeTotalChanged(func(TotalChangedPayload) { panic("boom") })
	bus.SubscribeTotalChanged(func(TotalChangedPayload) { delivered <- struct{}{} })
	go bus.Start(ctx)

	bus.PublishTotalChanged(TotalChangedPayload{})

	select {
	case r := <-panicked:
		assert.Equal(t, "boom", r)
	case <-time.After(time.Second):
		t.Fatal("panic hook not called")
	}

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second subscriber not called")
	}
}

func TestEventBus_DrainsOnStop(t *testing.T) {
	bus := New(8)

	var n int
	bus.SubscribeTaskChanged(func(TaskChangedPayload) { n++ })

	for range 3 {
		bus.PublishTaskChanged(TaskChangedPayload{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Start(ctx)

	require.Equal(t, 3, n)
}

func TestEventBus_NilPublishIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NotPanics(t, func() { bus.PublishScanStarted(ScanStartedPayload{}) })
}
