// Package eventbus provides a typed publish/subscribe event bus that carries
// scan and clean progress from the orchestrator to presentation layers.
package eventbus

import (
	"time"

	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/core/task"
)

// Event names a payload type on the bus.
type Event string

const (
	// Keep list sorted A-Z
	EventCleanFinished         Event = "clean.finished"
	EventCleanStarted          Event = "clean.started"
	EventHistoryChanged        Event = "history.changed"
	EventNotificationPublished Event = "notification.published"
	EventScanFinished          Event = "scan.finished"
	EventScanStarted           Event = "scan.started"
	EventTaskChanged           Event = "task.changed"
	EventTotalChanged          Event = "total.changed"
)

// ScanStartedPayload is emitted after every task has been reset to pending.
type ScanStartedPayload struct {
	RunID string
	Tasks int
}

// TaskChangedPayload is emitted on every task state transition.
type TaskChangedPayload struct {
	RunID string
	Index int
	ID    string
	Name  string
	State task.State
}

// TotalChangedPayload carries the running reclaimable total after a task
// settles during a scan, and the running freed total during a clean.
type TotalChangedPayload struct {
	RunID      string
	Done       int
	Of         int
	TotalFound uint64
	Freed      uint64
}

// ScanFinishedPayload is emitted once per scan, including cancelled scans.
type ScanFinishedPayload struct {
	RunID      string
	TotalFound uint64
	Failed     int
	Duration   time.Duration
	Canceled   bool
}

// CleanStartedPayload is emitted once the eligible task set is chosen.
type CleanStartedPayload struct {
	RunID    string
	Tasks    int
	Recovery bool
}

// CleanFinishedPayload is emitted after the session record is written.
type CleanFinishedPayload struct {
	RunID        string
	RecordID     int64
	SpaceCleaned uint64
	FilesDeleted uint64
	Errors       int
	Type         history.Type
	Status       history.Status
	PersistErr   error
}

// HistoryChangedPayload is emitted whenever the recent-history and stats
// views are reloaded.
type HistoryChangedPayload struct {
	Recent []history.Record
	Stats  history.Stats
}

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// NotificationPublishedPayload is a user-facing message derived from domain
// events.
type NotificationPublishedPayload struct {
	Level   Level
	Message string
}
