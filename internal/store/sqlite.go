// Package store holds the SQLite-backed durable state: the append-only
// geocode cache and the pipeline run ledger. Geography is stable, so cache
// entries never expire.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Store wraps one SQLite database holding both durable tables.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at dsn and configures WAL mode.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	name      TEXT PRIMARY KEY,
	lat       REAL NOT NULL,
	lon       REAL NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	stage       TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	processed   INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_stage ON runs(stage);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetCoords returns the cached coordinates for name.
func (s *Store) GetCoords(ctx context.Context, name string) (lat, lon float64, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT lat, lon FROM geocode_cache WHERE name = ?`, name)
	switch err := row.Scan(&lat, &lon); err {
	case nil:
		return lat, lon, true, nil
	case sql.ErrNoRows:
		return 0, 0, false, nil
	default:
		return 0, 0, false, eris.Wrapf(err, "store: get coords %s", name)
	}
}

// PutCoords records the coordinates for name. Re-inserting an existing name
// overwrites it; callers treat the table as append-only in practice.
func (s *Store) PutCoords(ctx context.Context, name string, lat, lon float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO geocode_cache (name, lat, lon) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET lat = excluded.lat, lon = excluded.lon`,
		name, lat, lon)
	return eris.Wrapf(err, "store: put coords %s", name)
}

// CachedNames returns every name in the geocode cache.
func (s *Store) CachedNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM geocode_cache ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "store: cached names")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "store: scan cached name")
		}
		names = append(names, name)
	}
	return names, eris.Wrap(rows.Err(), "store: cached names iterate")
}

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)

// Run is one ledger row for a pipeline stage invocation.
type Run struct {
	ID         string     `json:"id"`
	Stage      string     `json:"stage"`
	Status     string     `json:"status"`
	Processed  int        `json:"processed"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// StartRun opens a ledger row for stage and returns its id.
func (s *Store) StartRun(ctx context.Context, stage string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		id, stage, RunStatusRunning, time.Now().UTC())
	if err != nil {
		return "", eris.Wrapf(err, "store: start run %s", stage)
	}
	return id, nil
}

// FinishRun closes the ledger row with final counts.
func (s *Store) FinishRun(ctx context.Context, id, status string, processed, failed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, processed = ?, failed = ?, finished_at = ? WHERE id = ?`,
		status, processed, failed, time.Now().UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "store: finish run %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: run %s not found", id)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stage, status, processed, failed, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Stage, &r.Status, &r.Processed, &r.Failed, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "store: list runs iterate")
}
