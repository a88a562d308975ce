package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/data/db"
)

// HistoryStore implements history.Store using SQLite.
type HistoryStore struct {
	db          *db.DB
	exportLimit int
}

var _ history.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a new SQLite-backed history store. exportLimit caps
// ListAll; a non-positive value uses history.ExportLimit.
func NewHistoryStore(db *db.DB, exportLimit int) *HistoryStore {
	if exportLimit <= 0 {
		exportLimit = history.ExportLimit
	}
	return &HistoryStore{db: db, exportLimit: exportLimit}
}

// Insert stores a record and returns its assigned id. A zero CreatedAt is
// stamped with the current time.
func (s *HistoryStore) Insert(ctx context.Context, r history.Record) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.Stamp(time.Now())
	}

	var errs sql.NullString
	if r.Errors != "" {
		errs = sql.NullString{String: r.Errors, Valid: true}
	}

	id, err := s.db.Queries().InsertHistory(ctx, db.InsertHistoryParams{
		Date:         r.Date,
		Time:         r.Time,
		SpaceCleaned: int64(r.SpaceCleaned),
		FilesDeleted: int64(r.FilesDeleted),
		Duration:     r.Duration,
		Type:         string(r.Type),
		Status:       string(r.Status),
		Errors:       errs,
		CreatedAt:    r.CreatedAt.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert history record: %w", err)
	}

	return id, nil
}

// Get returns one record. Returns history.ErrNotFound if not found.
func (s *HistoryStore) Get(ctx context.Context, id int64) (history.Record, error) {
	row, err := s.db.Queries().GetHistory(ctx, id)
	if IsNotFoundError(err) {
		return history.Record{}, history.ErrNotFound
	}
	if err != nil {
		return history.Record{}, fmt.Errorf("failed to get history record: %w", err)
	}
	return rowToRecord(row), nil
}

// List returns up to limit records, newest first. A non-positive limit uses
// history.DefaultPageSize.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]history.Record, error) {
	rows, err := s.db.Queries().ListHistory(ctx, pageLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return rowsToRecords(rows), nil
}

// ListByType returns up to limit records of one session type, newest first.
func (s *HistoryStore) ListByType(ctx context.Context, t history.Type, limit int) ([]history.Record, error) {
	rows, err := s.db.Queries().ListHistoryByType(ctx, string(t), pageLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s history: %w", t, err)
	}
	return rowsToRecords(rows), nil
}

func pageLimit(limit int) int64 {
	if limit <= 0 {
		return history.DefaultPageSize
	}
	return int64(limit)
}

// ListAll returns the records for export, newest first.
func (s *HistoryStore) ListAll(ctx context.Context) ([]history.Record, error) {
	return s.List(ctx, s.exportLimit)
}

// Stats aggregates over every stored record.
func (s *HistoryStore) Stats(ctx context.Context) (history.Stats, error) {
	row, err := s.db.Queries().HistoryStats(ctx)
	if err != nil {
		return history.Stats{}, fmt.Errorf("failed to compute history stats: %w", err)
	}

	return history.Stats{
		TotalSpaceCleaned: uint64(row.TotalSpaceCleaned),
		TotalFilesDeleted: uint64(row.TotalFilesDeleted),
		TotalSessions:     row.TotalSessions,
		AvgDuration:       row.AvgDuration,
	}, nil
}

// Delete removes a record by id. Returns history.ErrNotFound if not found.
func (s *HistoryStore) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Queries().DeleteHistory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	if n == 0 {
		return history.ErrNotFound
	}
	return nil
}

// DeleteAll removes every record.
func (s *HistoryStore) DeleteAll(ctx context.Context) error {
	if err := s.db.Queries().DeleteAllHistory(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func rowsToRecords(rows []db.CleaningHistory) []history.Record {
	records := make([]history.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}
	return records
}

// rowToRecord converts a db.CleaningHistory to a history.Record.
func rowToRecord(row db.CleaningHistory) history.Record {
	return history.Record{
		ID:           row.ID,
		Date:         row.Date,
		Time:         row.Time,
		SpaceCleaned: uint64(row.SpaceCleaned),
		FilesDeleted: uint64(row.FilesDeleted),
		Duration:     row.Duration,
		Type:         history.Type(row.Type),
		Status:       history.Status(row.Status),
		Errors:       row.Errors.String,
		CreatedAt:    time.Unix(0, row.CreatedAt),
	}
}
