// Package store persists batch results to Postgres or SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/recordprep/internal/batch"
)

// Supported drivers.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Store holds the database connection
type Store struct {
	db     *sql.DB
	driver string
	log    *zap.Logger
}

// Open connects to the database and checks it is reachable.
func Open(ctx context.Context, driver, dsn string, maxConns int, log *zap.Logger) (*Store, error) {
	if driver != Postgres && driver != SQLite {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == SQLite {
		// One writer at a time, and an in-memory database lives on a single
		// connection.
		db.SetMaxOpenConns(1)
	} else if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns / 2)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(db, driver, log), nil
}

// New wraps an open database.
func New(db *sql.DB, driver string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, driver: driver, log: log.Named("store")}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the result tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == Postgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id        TEXT PRIMARY KEY,
			mode          TEXT NOT NULL,
			started_at    TIMESTAMP NOT NULL,
			duration_ms   BIGINT NOT NULL,
			total_files   INTEGER NOT NULL,
			failed_files  INTEGER NOT NULL,
			total_rows    INTEGER NOT NULL,
			qualified     INTEGER NOT NULL,
			disqualified  INTEGER NOT NULL,
			summary       TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS address_records (
			id                      %s,
			run_id                  TEXT NOT NULL REFERENCES runs(run_id),
			first_name              TEXT,
			last_name               TEXT,
			street_address          TEXT,
			city                    TEXT,
			state                   TEXT,
			zip_code                TEXT,
			us_qualified            BOOLEAN NOT NULL,
			qualification_errors    TEXT,
			qualification_warnings  TEXT,
			qualification_score     REAL NOT NULL,
			source_file             TEXT NOT NULL,
			source_row_number       INTEGER NOT NULL
		)`, id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS name_records (
			id                  %s,
			run_id              TEXT NOT NULL REFERENCES runs(run_id),
			first_name          TEXT,
			last_name           TEXT,
			middle_name         TEXT,
			title               TEXT,
			suffix              TEXT,
			name_quality_score  REAL NOT NULL,
			name_quality_issues TEXT,
			name_valid          BOOLEAN NOT NULL,
			source_file         TEXT NOT NULL,
			source_row_number   INTEGER NOT NULL
		)`, id),
		`CREATE INDEX IF NOT EXISTS idx_address_records_run ON address_records(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_name_records_run ON name_records(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

const insertAddress = `INSERT INTO address_records (
	run_id, first_name, last_name, street_address, city, state, zip_code,
	us_qualified, qualification_errors, qualification_warnings, qualification_score,
	source_file, source_row_number
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertName = `INSERT INTO name_records (
	run_id, first_name, last_name, middle_name, title, suffix,
	name_quality_score, name_quality_issues, name_valid,
	source_file, source_row_number
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveAddressResult stores the run summary and every address row in one
// transaction.
func (s *Store) SaveAddressResult(ctx context.Context, res batch.AddressResult) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertRun(ctx, tx, res.Summary); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, s.rebind(insertAddress))
		if err != nil {
			return fmt.Errorf("failed to prepare address insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range res.Rows {
			_, err := stmt.ExecContext(ctx,
				res.Summary.RunID, r.FirstName, r.LastName, r.Street, r.City, r.State, r.Zip,
				r.Qualified, strings.Join(r.Errors, "; "), strings.Join(r.Warnings, "; "), r.Result.Score,
				r.SourceFile, r.SourceRow,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s row %d: %w", r.SourceFile, r.SourceRow, err)
			}
		}
		s.log.Info("saved address run",
			zap.String("run_id", res.Summary.RunID),
			zap.Int("rows", len(res.Rows)))
		return nil
	})
}

// SaveNameResult stores the run summary and every name row in one
// transaction.
func (s *Store) SaveNameResult(ctx context.Context, res batch.NameResult) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertRun(ctx, tx, res.Summary); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, s.rebind(insertName))
		if err != nil {
			return fmt.Errorf("failed to prepare name insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range res.Rows {
			_, err := stmt.ExecContext(ctx,
				res.Summary.RunID, r.First, r.Last, r.Middle, r.Title, r.Suffix,
				r.NameQuality.Score, r.IssuesText(), r.Valid,
				r.SourceFile, r.SourceRow,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s row %d: %w", r.SourceFile, r.SourceRow, err)
			}
		}
		s.log.Info("saved name run",
			zap.String("run_id", res.Summary.RunID),
			zap.Int("rows", len(res.Rows)))
		return nil
	})
}

// LoadSummary returns the stored summary of a run. It returns sql.ErrNoRows
// (wrapped) when the run is unknown.
func (s *Store) LoadSummary(ctx context.Context, runID string) (batch.Summary, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT summary FROM runs WHERE run_id = ?`), runID).Scan(&raw)
	if err != nil {
		return batch.Summary{}, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	var sum batch.Summary
	if err := json.Unmarshal([]byte(raw), &sum); err != nil {
		return batch.Summary{}, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return sum, nil
}

func (s *Store) insertRun(ctx context.Context, tx *sql.Tx, sum batch.Summary) error {
	if sum.RunID == "" {
		return fmt.Errorf("summary has no run id")
	}
	raw, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO runs (
		run_id, mode, started_at, duration_ms, total_files, failed_files,
		total_rows, qualified, disqualified, summary
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		sum.RunID, string(sum.Mode), sum.StartedAt.UTC(), sum.Duration.Milliseconds(),
		sum.TotalFiles, sum.Failed, sum.TotalRows, sum.Qualified, sum.Disqualified, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", sum.RunID, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
