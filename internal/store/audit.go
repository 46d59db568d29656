// ABOUTME: Export audit trail entity and store methods
// ABOUTME: Records who exported which format and how many entries it contained

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportFormat is the file format an export was produced in.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportRecord is one row of the export audit trail.
type ExportRecord struct {
	ID        string // UUID v4
	UserID    string
	Format    ExportFormat
	RowCount  int
	FileName  string
	CreatedAt time.Time
}

// ExportLog records and lists exports.
type ExportLog interface {
	RecordExport(ctx context.Context, rec *ExportRecord) error
	ListExports(ctx context.Context, limit int) ([]*ExportRecord, error)
}

var _ ExportLog = (*SQLiteStore)(nil)

// exportTimeLayout is fixed width so created_at sorts correctly as text.
const exportTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	defaultExportListLimit = 20
	maxExportListLimit     = 500
)

// RecordExport appends an entry to the export audit trail.
// Generates ID and CreatedAt if not set.
func (s *SQLiteStore) RecordExport(ctx context.Context, rec *ExportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO export_log (id, user_id, format, row_count, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.Format),
		rec.RowCount,
		rec.FileName,
		rec.CreatedAt.UTC().Format(exportTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting export record: %w", err)
	}

	s.logger.Debug("recorded export", "id", rec.ID, "user_id", rec.UserID, "format", rec.Format, "rows", rec.RowCount)
	return nil
}

// ListExports returns the most recent exports, newest first.
func (s *SQLiteStore) ListExports(ctx context.Context, limit int) ([]*ExportRecord, error) {
	if limit <= 0 {
		limit = defaultExportListLimit
	}
	if limit > maxExportListLimit {
		limit = maxExportListLimit
	}

	query := `
		SELECT id, user_id, format, row_count, file_name, created_at
		FROM export_log
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying export log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var format, createdAtStr string

		if err := rows.Scan(&rec.ID, &rec.UserID, &format, &rec.RowCount, &rec.FileName, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning export record: %w", err)
		}

		rec.Format = ExportFormat(format)
		rec.CreatedAt, err = time.Parse(exportTimeLayout, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating export log: %w", err)
	}

	return records, nil
}
