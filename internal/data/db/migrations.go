package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// schemaStep is one forward-only schema change, read from
// migrations/NNNN_name.sql.
type schemaStep struct {
	Version int
	Name    string
	SQL     string
}

func loadSchema() ([]schemaStep, error) {
	files, err := doublestar.Glob(schemaFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}

	steps := make([]schemaStep, 0, len(files))
	for _, file := range files {
		version, name, err := parseStepName(path.Base(file))
		if err != nil {
			return nil, fmt.Errorf("schema file %q: %w", path.Base(file), err)
		}
		body, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		steps = append(steps, schemaStep{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(steps, func(a, b schemaStep) int { return a.Version - b.Version })
	for i := 1; i < len(steps); i++ {
		if steps[i].Version == steps[i-1].Version {
			return nil, fmt.Errorf("schema version %04d is defined twice", steps[i].Version)
		}
	}
	return steps, nil
}

// parseStepName splits "0002_settings.sql" into 2 and "settings".
func parseStepName(file string) (int, string, error) {
	base, ok := strings.CutSuffix(file, ".sql")
	if !ok {
		return 0, "", fmt.Errorf("missing .sql suffix")
	}
	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("expected NNNN_name.sql")
	}
	version, err := strconv.Atoi(num)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("version %q must be a positive integer", num)
	}
	return version, name, nil
}

// migrateUp brings conn to the newest schema. Each step runs in its own
// transaction together with its schema_migrations row.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	steps, err := loadSchema()
	if err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := schemaVersion(ctx, conn)
	if err != nil {
		return err
	}

	for _, step := range steps {
		if step.Version <= current {
			continue
		}
		log.Debug().Int("version", step.Version).Str("name", step.Name).Msg("applying schema step")
		if err := applyStep(ctx, conn, step); err != nil {
			return fmt.Errorf("schema %04d (%s): %w", step.Version, step.Name, err)
		}
	}
	return nil
}

func applyStep(ctx context.Context, conn *sql.DB, step schemaStep) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		step.Version, step.Name, time.Now().UnixNano(),
	); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}

func schemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// SchemaVersion returns the newest applied schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return schemaVersion(ctx, db.conn)
}
