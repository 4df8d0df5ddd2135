// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion outcomes and AI audit entries in a
// SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/file-converter/pkg/types"
)

const (
	dbFile       = "history.db"
	defaultLimit = 50
)

// Store manages the history database.
type Store struct {
	db      *sql.DB
	dataDir string
	now     func() time.Time
}

// NewStore opens or creates dataDir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("history data directory not set")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input TEXT NOT NULL,
			output TEXT,
			source_ext TEXT NOT NULL,
			target_ext TEXT NOT NULL,
			mode TEXT,
			status TEXT NOT NULL,
			error TEXT,
			bytes INTEGER,
			duration_ms INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_route ON conversions(source_ext, target_ext)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created ON conversions(created_at)`,
		`CREATE TABLE IF NOT EXISTS audits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			total_pages INTEGER,
			total_blocks INTEGER,
			payload TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts a conversion outcome. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (input, output, source_ext, target_ext, mode, status, error, bytes, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Input, rec.Output, rec.SourceExt, rec.TargetExt, rec.Mode,
		string(rec.Status), rec.Error, rec.Bytes, rec.Duration.Milliseconds(),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording conversion: %w", err)
	}
	return nil
}

// RecordAudit stores an AI audit entry with its payload as JSON.
func (s *Store) RecordAudit(ctx context.Context, entry types.AuditEntry) error {
	payload, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("marshaling audit payload: %w", err)
	}
	created := entry.Timestamp
	if created.IsZero() {
		created = s.now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audits (created_at, total_pages, total_blocks, payload) VALUES (?, ?, ?, ?)`,
		created.UTC().Format(time.RFC3339Nano), entry.TotalPages, entry.TotalBlocks, string(payload),
	)
	if err != nil {
		return fmt.Errorf("recording audit: %w", err)
	}
	return nil
}

// QueryOptions filters List and the exports.
type QueryOptions struct {
	// Source and Target filter by extension, without the dot.
	Source string
	Target string

	Status types.ConversionStatus

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// List returns conversions matching opts, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.ConversionRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, input, output, source_ext, target_ext, mode, status, error, bytes, duration_ms, created_at
		FROM conversions WHERE 1=1`)
	if opts.Source != "" {
		qb.WriteString(` AND source_ext = ?`)
		args = append(args, normalizeExt(opts.Source))
	}
	if opts.Target != "" {
		qb.WriteString(` AND target_ext = ?`)
		args = append(args, normalizeExt(opts.Target))
	}
	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}
	qb.WriteString(` ORDER BY created_at DESC, id DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []types.ConversionRecord
	for rows.Next() {
		var (
			rec                  types.ConversionRecord
			output, mode, errMsg sql.NullString
			bytes, durationMS    sql.NullInt64
			status, created      string
		)
		if err := rows.Scan(&rec.ID, &rec.Input, &output, &rec.SourceExt, &rec.TargetExt,
			&mode, &status, &errMsg, &bytes, &durationMS, &created); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Output = output.String
		rec.Mode = mode.String
		rec.Status = types.ConversionStatus(status)
		rec.Error = errMsg.String
		rec.Bytes = bytes.Int64
		rec.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RouteStats summarises the conversions of one source→target route.
type RouteStats struct {
	Source      string        `json:"source" yaml:"source"`
	Target      string        `json:"target" yaml:"target"`
	Total       int           `json:"total" yaml:"total"`
	Failed      int           `json:"failed" yaml:"failed"`
	Bytes       int64         `json:"bytes" yaml:"bytes"`
	AvgDuration time.Duration `json:"avg_duration" yaml:"avg_duration"`
}

// Stats returns per-route counts ordered by volume.
func (s *Store) Stats(ctx context.Context) ([]RouteStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_ext, target_ext, COUNT(*),
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
			COALESCE(SUM(bytes), 0), COALESCE(AVG(duration_ms), 0)
		FROM conversions
		GROUP BY source_ext, target_ext
		ORDER BY COUNT(*) DESC, source_ext, target_ext`,
		string(types.ConversionFailed),
	)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var out []RouteStats
	for rows.Next() {
		var (
			st    RouteStats
			avgMS float64
		)
		if err := rows.Scan(&st.Source, &st.Target, &st.Total, &st.Failed, &st.Bytes, &avgMS); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		st.AvgDuration = time.Duration(avgMS * float64(time.Millisecond))
		out = append(out, st)
	}
	return out, rows.Err()
}

// AuditCount returns the number of recorded AI audit entries.
func (s *Store) AuditCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting audits: %w", err)
	}
	return n, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
