package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements used by the stores.
type Queries struct {
	db DBTX
}

// New binds a query set to a connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a query set bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// CleaningHistory is a row of the cleaning_history table.
type CleaningHistory struct {
	ID           int64
	Date         string
	Time         string
	SpaceCleaned int64
	FilesDeleted int64
	Duration     int64
	Type         string
	Status       string
	Errors       sql.NullString
	CreatedAt    int64
}

// Setting is a row of the settings table.
type Setting struct {
	ID        int64
	Key       string
	Value     string
	UpdatedAt int64
}

// HistoryStatsRow is the aggregate over cleaning_history.
type HistoryStatsRow struct {
	TotalSpaceCleaned int64
	TotalFilesDeleted int64
	TotalSessions     int64
	AvgDuration       float64
}

const insertHistory = `
INSERT INTO cleaning_history (date, time, space_cleaned, files_deleted, duration, type, status, errors, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertHistoryParams struct {
	Date         string
	Time         string
	SpaceCleaned int64
	FilesDeleted int64
	Duration     int64
	Type         string
	Status       string
	Errors       sql.NullString
	CreatedAt    int64
}

func (q *Queries) InsertHistory(ctx context.Context, arg InsertHistoryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertHistory,
		arg.Date,
		arg.Time,
		arg.SpaceCleaned,
		arg.FilesDeleted,
		arg.Duration,
		arg.Type,
		arg.Status,
		arg.Errors,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const historyColumns = `id, date, time, space_cleaned, files_deleted, duration, type, status, errors, created_at`

func scanHistory(row interface{ Scan(...any) error }) (CleaningHistory, error) {
	var i CleaningHistory
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Time,
		&i.SpaceCleaned,
		&i.FilesDeleted,
		&i.Duration,
		&i.Type,
		&i.Status,
		&i.Errors,
		&i.CreatedAt,
	)
	return i, err
}

func (q *Queries) queryHistory(ctx context.Context, query string, args ...any) ([]CleaningHistory, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []CleaningHistory
	for rows.Next() {
		i, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getHistory = `SELECT ` + historyColumns + ` FROM cleaning_history WHERE id = ?`

func (q *Queries) GetHistory(ctx context.Context, id int64) (CleaningHistory, error) {
	return scanHistory(q.db.QueryRowContext(ctx, getHistory, id))
}

const listHistory = `
SELECT ` + historyColumns + `
FROM cleaning_history
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListHistory(ctx context.Context, limit int64) ([]CleaningHistory, error) {
	return q.queryHistory(ctx, listHistory, limit)
}

const listHistoryByType = `
SELECT ` + historyColumns + `
FROM cleaning_history
WHERE type = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListHistoryByType(ctx context.Context, typ string, limit int64) ([]CleaningHistory, error) {
	return q.queryHistory(ctx, listHistoryByType, typ, limit)
}

const historyStats = `
SELECT
    CAST(COALESCE(SUM(space_cleaned), 0) AS INTEGER),
    CAST(COALESCE(SUM(files_deleted), 0) AS INTEGER),
    COUNT(*),
    CAST(COALESCE(AVG(duration), 0) AS REAL)
FROM cleaning_history
`

func (q *Queries) HistoryStats(ctx context.Context) (HistoryStatsRow, error) {
	row := q.db.QueryRowContext(ctx, historyStats)
	var i HistoryStatsRow
	err := row.Scan(
		&i.TotalSpaceCleaned,
		&i.TotalFilesDeleted,
		&i.TotalSessions,
		&i.AvgDuration,
	)
	return i, err
}

const deleteHistory = `DELETE FROM cleaning_history WHERE id = ?`

func (q *Queries) DeleteHistory(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteHistory, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAllHistory = `DELETE FROM cleaning_history`

func (q *Queries) DeleteAllHistory(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllHistory)
	return err
}

const getSetting = `SELECT id, key, value, updated_at FROM settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := q.db.QueryRowContext(ctx, getSetting, key)
	var i Setting
	err := row.Scan(&i.ID, &i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const upsertSetting = `
INSERT INTO settings (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

type UpsertSettingParams struct {
	Key       string
	Value     string
	UpdatedAt int64
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

const listSettings = `SELECT id, key, value, updated_at FROM settings ORDER BY key`

func (q *Queries) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := q.db.QueryContext(ctx, listSettings)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Setting
	for rows.Next() {
		var i Setting
		if err := rows.Scan(&i.ID, &i.Key, &i.Value, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSetting = `DELETE FROM settings WHERE key = ?`

func (q *Queries) DeleteSetting(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteSetting, key)
	return err
}
