// Package store persists comparison run history in SQLite. Each run records
// what was compared, which labels changed, and where the output files went,
// so regressions can be traced back across evaluation cycles.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	baseline TEXT NOT NULL,
	result_sets TEXT NOT NULL,
	labels TEXT NOT NULL,
	changed_labels TEXT NOT NULL,
	sort_metric TEXT NOT NULL,
	only_diff INTEGER NOT NULL DEFAULT 0,
	json_outfile TEXT,
	html_outfile TEXT
);
`

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// Run is one recorded comparison.
type Run struct {
	ID            int64
	CreatedAt     string
	Baseline      string
	ResultSets    []string
	Labels        []string
	ChangedLabels []string
	SortMetric    string
	OnlyDiff      bool
	JSONOutfile   string
	HTMLOutfile   string
}

// SqlStore keeps run history in a SQLite database.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if count == 0 {
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != currentSchemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// SaveRun records a completed comparison and returns its row ID.
func (s *SqlStore) SaveRun(run Run) (int64, error) {
	sets, err := json.Marshal(run.ResultSets)
	if err != nil {
		return 0, fmt.Errorf("encode result sets: %w", err)
	}
	labels, err := json.Marshal(run.Labels)
	if err != nil {
		return 0, fmt.Errorf("encode labels: %w", err)
	}
	changed, err := json.Marshal(run.ChangedLabels)
	if err != nil {
		return 0, fmt.Errorf("encode changed labels: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt == "" {
		createdAt = nowUTC()
	}
	onlyDiff := 0
	if run.OnlyDiff {
		onlyDiff = 1
	}

	res, err := s.db.Exec(
		`INSERT INTO runs(created_at, baseline, result_sets, labels, changed_labels,
			sort_metric, only_diff, json_outfile, html_outfile)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt, run.Baseline, string(sets), string(labels), string(changed),
		run.SortMetric, onlyDiff, run.JSONOutfile, run.HTMLOutfile,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *SqlStore) ListRuns(limit int) ([]Run, error) {
	q := `SELECT id, created_at, baseline, result_sets, labels, changed_labels,
		sort_metric, only_diff, json_outfile, html_outfile
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var sets, labels, changed string
		var onlyDiff int
		var jsonOut, htmlOut sql.NullString
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Baseline, &sets, &labels, &changed,
			&r.SortMetric, &onlyDiff, &jsonOut, &htmlOut); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := decodeList(sets, &r.ResultSets); err != nil {
			return nil, fmt.Errorf("run %d result sets: %w", r.ID, err)
		}
		if err := decodeList(labels, &r.Labels); err != nil {
			return nil, fmt.Errorf("run %d labels: %w", r.ID, err)
		}
		if err := decodeList(changed, &r.ChangedLabels); err != nil {
			return nil, fmt.Errorf("run %d changed labels: %w", r.ID, err)
		}
		r.OnlyDiff = onlyDiff != 0
		r.JSONOutfile = nullStr(jsonOut)
		r.HTMLOutfile = nullStr(htmlOut)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func decodeList(data string, dst *[]string) error {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), dst)
}
