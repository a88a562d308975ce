package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus fans published payloads out to subscribers on a single dispatch
// goroutine. Publishing never blocks; when the buffer is full the event is
// dropped and OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size. Start must be called for
// subscribers to receive anything.
func New(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled. Events still buffered when
// ctx ends are delivered before Start returns.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case env := <-bus.ch:
			bus.dispatch(env)
		case <-ctx.Done():
			for {
				select {
				case env := <-bus.ch:
					bus.dispatch(env)
				default:
					return
				}
			}
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

// subscribeTyped adapts a typed handler to the untyped dispatch table.
func subscribeTyped[T any](bus *EventBus, event Event, fn func(T)) {
	bus.subscribe(event, func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

func (bus *EventBus) PublishScanStarted(p ScanStartedPayload) {
	bus.send(EventScanStarted, p)
}

func (bus *EventBus) PublishTaskChanged(p TaskChangedPayload) {
	bus.send(EventTaskChanged, p)
}

func (bus *EventBus) PublishTotalChanged(p TotalChangedPayload) {
	bus.send(EventTotalChanged, p)
}

func (bus *EventBus) PublishScanFinished(p ScanFinishedPayload) {
	bus.send(EventScanFinished, p)
}

func (bus *EventBus) PublishCleanStarted(p CleanStartedPayload) {
	bus.send(EventCleanStarted, p)
}

func (bus *EventBus) PublishCleanFinished(p CleanFinishedPayload) {
	bus.send(EventCleanFinished, p)
}

func (bus *EventBus) PublishHistoryChanged(p HistoryChangedPayload) {
	bus.send(EventHistoryChanged, p)
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeScanStarted(fn func(ScanStartedPayload)) {
	subscribeTyped(bus, EventScanStarted, fn)
}

func (bus *EventBus) SubscribeTaskChanged(fn func(TaskChangedPayload)) {
	subscribeTyped(bus, EventTaskChanged, fn)
}

func (bus *EventBus) SubscribeTotalChanged(fn func(TotalChangedPayload)) {
	subscribeTyped(bus, EventTotalChanged, fn)
}

func (bus *EventBus) SubscribeScanFinished(fn func(ScanFinishedPayload)) {
	subscribeTyped(bus, EventScanFinished, fn)
}

func (bus *EventBus) SubscribeCleanStarted(fn func(CleanStartedPayload)) {
	subscribeTyped(bus, EventCleanStarted, fn)
}

func (bus *EventBus) SubscribeCleanFinished(fn func(CleanFinishedPayload)) {
	subscribeTyped(bus, EventCleanFinished, fn)
}

func (bus *EventBus) SubscribeHistoryChanged(fn func(HistoryChangedPayload)) {
	subscribeTyped(bus, EventHistoryChanged, fn)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribeTyped(bus, EventNotificationPublished, fn)
}
