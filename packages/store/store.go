// Package store keeps a history of benchmark runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/mcbench/packages/bench"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	started_at TEXT NOT NULL,
	csv_path   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	seq              INTEGER NOT NULL,
	response_time_ms REAL NOT NULL,
	dns_lookup_ms    REAL NOT NULL,
	tcp_handshake_ms REAL NOT NULL,
	ttfb_ms          REAL NOT NULL,
	prepare_ms       REAL NOT NULL,
	response_size_kb REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// Run is a stored run with its record count
type Run struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	StartedAt time.Time `json:"started_at"`
	CSVPath   string    `json:"csv_path"`
	Requests  int       `json:"requests"`
}

// Store is a SQLite-backed run history. It satisfies bench.History.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens (creating if needed) the database behind connectionString
// and applies the schema.
func Open(connectionString string) (*Store, error) {
	driver, dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers anyway; one connection keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, queryTimeout: 30 * time.Second}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun stores a new run
func (s *Store) BeginRun(ctx context.Context, run bench.RunInfo) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, url, started_at, csv_path) VALUES (?, ?, ?, ?)`,
		run.ID, run.URL, run.StartedAt.UTC().Format(time.RFC3339Nano), run.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// RecordResult stores one record of a run started with BeginRun
func (s *Store) RecordResult(ctx context.Context, runID string, r bench.Record) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (run_id, seq, response_time_ms, dns_lookup_ms, tcp_handshake_ms, ttfb_ms, prepare_ms, response_size_kb)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Seq, r.ResponseTimeMs, r.DNSLookupMs, r.TCPHandshakeMs, r.TTFBMs, r.PrepareMs, r.ResponseSizeKB)
	if err != nil {
		return fmt.Errorf("failed to save record %d: %w", r.Seq, err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := `SELECT r.id, r.url, r.started_at, r.csv_path, COUNT(rec.seq)
		FROM runs r LEFT JOIN records rec ON rec.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var started string
		if err := rows.Scan(&run.ID, &run.URL, &started, &run.CSVPath, &run.Requests); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q: %w", run.ID, started, err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Records returns the records of a run in request order
func (s *Store) Records(ctx context.Context, runID string) ([]bench.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, response_time_ms, dns_lookup_ms, tcp_handshake_ms, ttfb_ms, prepare_ms, response_size_kb
		 FROM records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := make([]bench.Record, 0)
	for rows.Next() {
		var r bench.Record
		if err := rows.Scan(&r.Seq, &r.ResponseTimeMs, &r.DNSLookupMs, &r.TCPHandshakeMs, &r.TTFBMs, &r.PrepareMs, &r.ResponseSizeKB); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// parseConnectionString parses a connection string into driver and DSN
// Supported formats:
// - sqlite://path/to/history.db
// - sqlite:./history.db
func parseConnectionString(connStr string) (driver string, dsn string, err error) {
	connStr = strings.TrimSpace(connStr)

	if strings.HasPrefix(connStr, "sqlite://") {
		dsn = strings.TrimPrefix(connStr, "sqlite://")
	} else if strings.HasPrefix(connStr, "sqlite:") {
		dsn = strings.TrimPrefix(connStr, "sqlite:")
	} else {
		u, err := url.Parse(connStr)
		if err != nil {
			return "", "", fmt.Errorf("invalid connection string: %w", err)
		}
		return "", "", fmt.Errorf("unsupported database scheme: %q", u.Scheme)
	}

	if dsn == "" {
		return "", "", fmt.Errorf("invalid connection string: missing path")
	}
	return "sqlite3", dsn, nil
}
