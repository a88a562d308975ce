package eventbus

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/hay-kot/rnclean/internal/core/history"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeScanFinished(func(p ScanFinishedPayload) {
		switch {
		case p.Canceled:
			r.notifyf(LevelWarning, "scan canceled")
		case p.Failed > 0:
			r.notifyf(LevelWarning, "scan found %s reclaimable, %d task(s) failed", humanize.IBytes(p.TotalFound), p.Failed)
		default:
			r.notifyf(LevelInfo, "scan found %s reclaimable", humanize.IBytes(p.TotalFound))
		}
	})

	r.bus.SubscribeCleanFinished(func(p CleanFinishedPayload) {
		if p.PersistErr != nil {
			r.notifyf(LevelError, "cleaned %s but failed to save history: %v", humanize.IBytes(p.SpaceCleaned), p.PersistErr)
			return
		}

		level := LevelInfo
		if p.Status != history.StatusSuccess {
			level = LevelWarning
		}
		r.notifyf(level, "cleaned %s across %d file(s) with %d error(s)",
			humanize.IBytes(p.SpaceCleaned), p.FilesDeleted, p.Errors)
	})
}

func (r *NotificationRouter) notifyf(level Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
