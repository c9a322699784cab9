// Package store handles SQLite persistence of export history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/platemap/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so exported_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for export history. Grid contents are never stored.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			id TEXT PRIMARY KEY,
			exported_at TEXT NOT NULL,
			plate_type INTEGER NOT NULL,
			format TEXT NOT NULL,
			labels TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			location TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_exports_exported_at ON exports(exported_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertExport records a completed export.
func (s *Store) InsertExport(ctx context.Context, rec model.ExportRecord) error {
	labels, err := json.Marshal(rec.Labels)
	if err != nil {
		return fmt.Errorf("failed to encode labels: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exports (id, exported_at, plate_type, format, labels, row_count, location)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.ExportedAt.UTC().Format(timeLayout),
		rec.PlateType,
		rec.Format,
		string(labels),
		rec.RowCount,
		rec.Location,
	)
	return err
}

// ListExports returns the most recent exports, newest first. limit <= 0 lists all.
func (s *Store) ListExports(ctx context.Context, limit int) ([]model.ExportRecord, error) {
	query := `SELECT id, exported_at, plate_type, format, labels, row_count, location
		FROM exports
		ORDER BY exported_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ExportRecord
	for rows.Next() {
		var rec model.ExportRecord
		var exportedAt, labels string
		if err := rows.Scan(&rec.ID, &exportedAt, &rec.PlateType, &rec.Format, &labels, &rec.RowCount, &rec.Location); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, exportedAt)
		if err != nil {
			return nil, err
		}
		rec.ExportedAt = parsed
		if err := json.Unmarshal([]byte(labels), &rec.Labels); err != nil {
			return nil, fmt.Errorf("failed to decode labels for export %s: %w", rec.ID, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
