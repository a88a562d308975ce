// Package history defines cleaning session history domain types and interfaces.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	// DefaultPageSize bounds a plain history read.
	DefaultPageSize = 50
	// ExportLimit bounds an export read.
	ExportLimit = 1000
	// RecentLimit is the size of the recent-history view kept by the orchestrator.
	RecentLimit = 5
	// DefaultDeepThreshold is the number of cleaned tasks above which a
	// session is classified deep.
	DefaultDeepThreshold = 5
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("history record not found")

// Type classifies a cleaning session by breadth.
type Type string

const (
	TypeQuick  Type = "quick"
	TypeDeep   Type = "deep"
	TypeCustom Type = "custom"
)

// ParseType accepts quick, deep or custom.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeQuick, TypeDeep, TypeCustom:
		return t, nil
	}
	return "", fmt.Errorf("unknown session type %q, expected quick, deep or custom", s)
}

// Status classifies a cleaning session by outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Record is one completed cleaning session. Records are never mutated once
// inserted.
type Record struct {
	ID           int64     `json:"id"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	SpaceCleaned uint64    `json:"space_cleaned"`
	FilesDeleted uint64    `json:"files_deleted"`
	Duration     int64     `json:"duration"`
	Type         Type      `json:"type"`
	Status       Status    `json:"status"`
	Errors       string    `json:"errors,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stamp fills the date, time and created-at fields from t.
func (r *Record) Stamp(t time.Time) {
	r.Date = t.Format(DateLayout)
	r.Time = t.Format(TimeLayout)
	r.CreatedAt = t
}

// ErrorList splits the joined error string back into entries.
func (r Record) ErrorList() []string {
	if r.Errors == "" {
		return nil
	}
	return strings.Split(r.Errors, errorSeparator)
}

// Stats is recomputed from the full record set on every read.
type Stats struct {
	TotalSpaceCleaned uint64  `json:"total_space_cleaned"`
	TotalFilesDeleted uint64  `json:"total_files_deleted"`
	TotalSessions     int64   `json:"total_sessions"`
	AvgDuration       float64 `json:"avg_duration"`
}

// Store persists cleaning history. List and ListAll return newest first.
type Store interface {
	Insert(ctx context.Context, r Record) (int64, error)
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	ListByType(ctx context.Context, t Type, limit int) ([]Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	Stats(ctx context.Context) (Stats, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// ClassifyType derives the session type from the number of tasks cleaned.
func ClassifyType(cleanedTasks, threshold int, custom bool) Type {
	switch {
	case custom:
		return TypeCustom
	case cleanedTasks > threshold:
		return TypeDeep
	default:
		return TypeQuick
	}
}

// ClassifyStatus derives the session status from collected errors.
func ClassifyStatus(errs []string) Status {
	if len(errs) > 0 {
		return StatusWarning
	}
	return StatusSuccess
}

const errorSeparator = "; "

// JoinErrors flattens errs into the stored form.
func JoinErrors(errs []string) string {
	return strings.Join(errs, errorSeparator)
}
