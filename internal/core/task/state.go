package task

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle position of a single task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScanning  Status = "scanning"
	StatusFound     Status = "found"
	StatusCleaning  Status = "cleaning"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// IsActive reports whether the status represents in-flight work.
func (s Status) IsActive() bool {
	return s == StatusScanning || s == StatusCleaning
}

// ErrInvalidTransition is returned when a transition is not allowed from the
// current status.
var ErrInvalidTransition = errors.New("invalid task transition")

// State is the mutable, per-task half of the state table. Transitions never
// modify the receiver; they return the next value.
type State struct {
	Status      Status    `json:"status"`
	Size        uint64    `json:"size"`
	Items       []Item    `json:"items,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	Err         string    `json:"error,omitempty"`
}

// NewState returns the initial pending state.
func NewState(now time.Time) State {
	return State{Status: StatusPending, LastUpdated: now}
}

// Eligible reports whether the task should be cleaned under the strict rule.
func (s State) Eligible() bool {
	return s.Status == StatusFound && len(s.Items) > 0
}

// HasItems reports whether any items are still held.
func (s State) HasItems() bool {
	return len(s.Items) > 0
}

// DeletableTargets returns the paths of items flagged deletable, in order.
func (s State) DeletableTargets() []string {
	var out []string
	for _, it := range s.Items {
		if it.Deletable {
			out = append(out, it.Path)
		}
	}
	return out
}

// DeletableItems returns the items flagged deletable, in order.
func (s State) DeletableItems() []Item {
	var out []Item
	for _, it := range s.Items {
		if it.Deletable {
			out = append(out, it)
		}
	}
	return out
}

func (s State) invalid(to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
}

// Reset returns the task to pending with no items from any status.
func (s State) Reset(now time.Time) State {
	return NewState(now)
}

// BeginScan moves pending to scanning.
func (s State) BeginScan(now time.Time) (State, error) {
	if s.Status != StatusPending {
		return s, s.invalid(StatusScanning)
	}
	return State{Status: StatusScanning, LastUpdated: now}, nil
}

// FinishScan records probe results. A positive total leaves the task found,
// while an empty or zero-sized result completes it.
func (s State) FinishScan(items []Item, now time.Time) (State, error) {
	if s.Status != StatusScanning {
		return s, s.invalid(StatusFound)
	}

	size := TotalSize(items)
	if size == 0 {
		return State{Status: StatusCompleted, LastUpdated: now}, nil
	}

	cp := make([]Item, len(items))
	copy(cp, items)
	return State{
		Status:      StatusFound,
		Size:        size,
		Items:       cp,
		LastUpdated: now,
	}, nil
}

// FailScan moves scanning to error.
func (s State) FailScan(cause error, now time.Time) (State, error) {
	if s.Status != StatusScanning {
		return s, s.invalid(StatusError)
	}
	next := s
	next.Status = StatusError
	next.Err = errString(cause)
	next.LastUpdated = now
	return next, nil
}

// BeginClean moves found to cleaning. When recovery is set any status other
// than an active one is accepted as long as items are still held.
func (s State) BeginClean(now time.Time, recovery bool) (State, error) {
	switch {
	case s.Status == StatusFound && s.HasItems():
	case recovery && s.HasItems() && !s.Status.IsActive():
	default:
		return s, s.invalid(StatusCleaning)
	}
	next := s
	next.Status = StatusCleaning
	next.Err = ""
	next.LastUpdated = now
	return next, nil
}

// FinishClean completes a cleaning task and drops its items. Per-item failures
// do not change the outcome.
func (s State) FinishClean(now time.Time) (State, error) {
	if s.Status != StatusCleaning {
		return s, s.invalid(StatusCompleted)
	}
	return State{Status: StatusCompleted, LastUpdated: now}, nil
}

// FailClean moves cleaning to error. Items are kept.
func (s State) FailClean(cause error, now time.Time) (State, error) {
	if s.Status != StatusCleaning {
		return s, s.invalid(StatusError)
	}
	next := s
	next.Status = StatusError
	next.Err = errString(cause)
	next.LastUpdated = now
	return next, nil
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
