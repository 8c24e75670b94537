package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordprep/internal/batch"
	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/schema"
	"github.com/recordprep/internal/validation"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, SQLite, ":memory:", 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func count(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow(query, args...).Scan(&n))
	return n
}

func addressResult(runID string) batch.AddressResult {
	return batch.AddressResult{
		Rows: []batch.AddressRow{
			{
				Address:    normalize.Address{FirstName: "John", LastName: "Smith", Street: "1 Main St", City: "Boston", State: "MA", Zip: "02108"},
				Result:     validation.Result{Qualified: true, Score: 1},
				SourceFile: "in.csv",
				SourceRow:  1,
			},
			{
				Address:    normalize.Address{Street: "9 Elm St", City: "Reno", State: "ZZ", Zip: "89501"},
				Result:     validation.Result{Errors: []string{validation.ErrInvalidState}, Score: 0.75},
				SourceFile: "in.csv",
				SourceRow:  2,
			},
		},
		Summary: batch.Summary{
			RunID:     runID,
			Mode:      schema.AddressMode,
			StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			TotalRows: 2,
			Qualified: 1,
		},
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := openMemory(t)
	assert.NoError(t, s.EnsureSchema(context.Background()))
}

func TestSaveAddressResult(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAddressResult(ctx, addressResult("run-a")))
	assert.Equal(t, 1, count(t, s, `SELECT COUNT(*) FROM runs`))
	assert.Equal(t, 2, count(t, s, `SELECT COUNT(*) FROM address_records WHERE run_id = ?`, "run-a"))
	assert.Equal(t, 1, count(t, s, `SELECT COUNT(*) FROM address_records WHERE us_qualified`))

	var errs string
	require.NoError(t, s.DB().QueryRow(`SELECT qualification_errors FROM address_records WHERE source_row_number = 2`).Scan(&errs))
	assert.Equal(t, validation.ErrInvalidState, errs)

	sum, err := s.LoadSummary(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, schema.AddressMode, sum.Mode)
	assert.Equal(t, 2, sum.TotalRows)
}

func TestSaveRollsBackOnDuplicateRun(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAddressResult(ctx, addressResult("run-a")))
	assert.Error(t, s.SaveAddressResult(ctx, addressResult("run-a")))
	assert.Equal(t, 2, count(t, s, `SELECT COUNT(*) FROM address_records`))
}

func TestSaveRequiresRunID(t *testing.T) {
	s := openMemory(t)
	assert.Error(t, s.SaveAddressResult(context.Background(), addressResult("")))
	assert.Equal(t, 0, count(t, s, `SELECT COUNT(*) FROM address_records`))
}

func TestSaveNameResult(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	res := batch.NameResult{
		Rows: []batch.NameRow{{
			Name:        normalize.Name{First: "Ada", Last: "Lovelace"},
			NameQuality: validation.NameQuality{Score: 1, Valid: true},
			SourceFile:  "people.csv",
			SourceRow:   1,
		}},
		Summary: batch.Summary{RunID: "run-n", Mode: schema.NameMode, StartedAt: time.Now()},
	}

	require.NoError(t, s.SaveNameResult(ctx, res))
	var issues string
	require.NoError(t, s.DB().QueryRow(`SELECT name_quality_issues FROM name_records WHERE run_id = ?`, "run-n").Scan(&issues))
	assert.Equal(t, validation.NoIssues, issues)
}

func TestLoadSummaryUnknownRun(t *testing.T) {
	s := openMemory(t)
	_, err := s.LoadSummary(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRebind(t *testing.T) {
	pg := New(nil, Postgres, nil)
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind("SELECT a FROM t WHERE b = ? AND c = ?"))

	lite := New(nil, SQLite, nil)
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn", 0, nil)
	assert.Error(t, err)
}
