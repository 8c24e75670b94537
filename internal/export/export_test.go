package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordprep/internal/batch"
	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/schema"
	"github.com/recordprep/internal/table"
	"github.com/recordprep/internal/validation"
)

func addressResult() batch.AddressResult {
	good := batch.AddressRow{
		Address:    normalize.Address{FirstName: "John", LastName: "Smith", Street: "1 Main St", City: "Boston", State: "MA", Zip: "02108"},
		Result:     validation.Result{Qualified: true, Errors: []string{}, Warnings: []string{}, Score: 1},
		SourceFile: "in.csv",
		SourceRow:  1,
	}
	bad := batch.AddressRow{
		Address:    normalize.Address{Street: "PO Box 9", City: "Reno", State: "ZZ", Zip: "1234"},
		Result:     validation.Result{Errors: []string{validation.ErrInvalidState, validation.ErrZipFormat}, Warnings: []string{validation.WarnPOBox}, Score: 0.45},
		SourceFile: "in.csv",
		SourceRow:  3,
	}
	return batch.AddressResult{
		Rows:         []batch.AddressRow{good, bad},
		Qualified:    []batch.AddressRow{good},
		Disqualified: []batch.AddressRow{bad},
		Summary:      batch.Summary{RunID: "run-1", Mode: schema.AddressMode, TotalRows: 2, Qualified: 1, Disqualified: 1},
	}
}

func TestAddressRecord(t *testing.T) {
	res := addressResult()
	assert.Equal(t, []string{
		"", "", "PO Box 9", "Reno", "ZZ", "1234", "false",
		"Invalid state code; Invalid ZIP code format", "PO Box address",
		"0.45", "in.csv", "3",
	}, AddressRecord(res.Rows[1]))
	assert.Len(t, AddressRecord(res.Rows[0]), len(AddressHeader))
}

func TestNameRecord(t *testing.T) {
	row := batch.NameRow{
		Name:        normalize.Name{First: "Jane", Last: "Doe", Title: "Dr"},
		NameQuality: validation.NameQuality{Score: 1, Issues: []string{}, Valid: true},
		SourceFile:  "people.csv",
		SourceRow:   2,
	}
	assert.Equal(t, []string{
		"Jane", "Doe", "", "Dr", "", "1.00", validation.NoIssues, "true", "people.csv", "2",
	}, NameRecord(row))
}

func TestWriteAddressesCSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewWriter(dir, CSV).WriteAddresses(addressResult())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "standardized_addresses.csv"),
		filepath.Join(dir, "qualified_addresses.csv"),
		filepath.Join(dir, "disqualified_addresses.csv"),
		filepath.Join(dir, "summary.json"),
	}, paths)

	all, err := table.ReadCSV(paths[0])
	require.NoError(t, err)
	assert.Equal(t, AddressHeader, all.Columns)
	assert.Len(t, all.Rows, 2)

	qualified, err := table.ReadCSV(paths[1])
	require.NoError(t, err)
	require.Len(t, qualified.Rows, 1)
	assert.Equal(t, "John", qualified.Rows[0][0])

	data, err := os.ReadFile(paths[3])
	require.NoError(t, err)
	var sum batch.Summary
	require.NoError(t, json.Unmarshal(data, &sum))
	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, 2, sum.TotalRows)
}

func TestWriteAddressesXLSX(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewWriter(dir, XLSX).WriteAddresses(addressResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "disqualified_addresses.xlsx"), paths[2])

	got, err := table.ReadXLSX(paths[2])
	require.NoError(t, err)
	assert.Equal(t, AddressHeader, got.Columns)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, AddressRecord(addressResult().Disqualified[0]), got.Rows[0])
}

func TestWriteNames(t *testing.T) {
	dir := t.TempDir()
	res := batch.NameResult{
		Rows: []batch.NameRow{{
			Name:        normalize.Name{First: "Ada", Last: "Lovelace"},
			NameQuality: validation.NameQuality{Score: 1, Valid: true},
			SourceFile:  "n.csv",
			SourceRow:   1,
		}},
		Summary: batch.Summary{Mode: schema.NameMode},
	}
	paths, err := NewWriter(dir, "").WriteNames(res)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	got, err := table.ReadCSV(paths[0])
	require.NoError(t, err)
	assert.Equal(t, NameHeader, got.Columns)
	assert.Equal(t, []string{"Ada", "Lovelace", "", "", "", "1.00", "No issues", "true", "n.csv", "1"}, got.Rows[0])
}

func TestWriteCSVQuotesSeparators(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []string{"a", "b"}, [][]string{{"1 Main St, Apt 4", "x"}}))
	assert.Equal(t, "a,b\n\"1 Main St, Apt 4\",x\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": CSV, "CSV": CSV, "xlsx": XLSX, "Excel": XLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("parquet")
	assert.Error(t, err)
}
