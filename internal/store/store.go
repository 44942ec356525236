// Package store is the SQLite inventory of cached application archives:
// which (env, org, app) archives the fetcher has placed in the cache
// directory, at which released version, and whether the fetch succeeded.
// The loader treats it as the authoritative list of loadable records.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Deployment status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Deployment is one row of the inventory.
type Deployment struct {
	Env       string
	Org       string
	App       string
	Version   string
	CommitSHA string
	Status    string
	FetchedAt time.Time
}

// Key returns the archive base name for the deployment.
func (d Deployment) Key() string {
	return fmt.Sprintf("%s-%s-%s", d.Env, d.Org, d.App)
}

// Store is the SQLite data access layer for the inventory.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the inventory schema. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS deployments (
  env         TEXT NOT NULL,
  org         TEXT NOT NULL,
  app         TEXT NOT NULL,
  version     TEXT,
  commit_sha  TEXT,
  status      TEXT NOT NULL,
  fetched_at  TIMESTAMP,
  PRIMARY KEY (env, org, app)
);
`

// Upsert inserts or replaces the deployment row for (env, org, app).
func (s *Store) Upsert(d *Deployment) error {
	_, err := s.db.Exec(
		`INSERT INTO deployments (env, org, app, version, commit_sha, status, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(env, org, app) DO UPDATE SET
		   version = excluded.version,
		   commit_sha = excluded.commit_sha,
		   status = excluded.status,
		   fetched_at = excluded.fetched_at`,
		d.Env, d.Org, d.App, d.Version, d.CommitSHA, d.Status, d.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert deployment %s: %w", d.Key(), err)
	}
	return nil
}

// SetStatus updates only the status of an existing row.
func (s *Store) SetStatus(env, org, app, status string) error {
	_, err := s.db.Exec(
		`UPDATE deployments SET status = ? WHERE env = ? AND org = ? AND app = ?`,
		status, env, org, app,
	)
	if err != nil {
		return fmt.Errorf("set status %s-%s-%s: %w", env, org, app, err)
	}
	return nil
}

// Deployments lists the inventory ordered by (env, org, app) so loads are
// deterministic. When onlySucceeded is set, failed fetches are excluded.
func (s *Store) Deployments(onlySucceeded bool) ([]Deployment, error) {
	query := `SELECT env, org, app, version, commit_sha, status, fetched_at
	          FROM deployments`
	if onlySucceeded {
		query += ` WHERE status = ?`
	}
	query += ` ORDER BY env, org, app`

	var (
		rows *sql.Rows
		err  error
	)
	if onlySucceeded {
		rows, err = s.db.Query(query, StatusSuccess)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var out []Deployment
	for rows.Next() {
		var d Deployment
		var version, sha sql.NullString
		var fetched sql.NullTime
		if err := rows.Scan(&d.Env, &d.Org, &d.App, &version, &sha, &d.Status, &fetched); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		d.Version = version.String
		d.CommitSHA = sha.String
		d.FetchedAt = fetched.Time
		out = append(out, d)
	}
	return out, rows.Err()
}
