package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr string
	}{
		{
			name:  "well formed",
			table: Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}, {"3"}}},
		},
		{
			name:    "no columns",
			table:   Table{},
			wantErr: "no columns",
		},
		{
			name:    "blank column",
			table:   Table{Columns: []string{"a", "  "}},
			wantErr: "blank name",
		},
		{
			name:    "duplicate column ignoring case",
			table:   Table{Columns: []string{"City", "city "}},
			wantErr: "duplicate column",
		},
		{
			name:    "row longer than header",
			table:   Table{Columns: []string{"a"}, Rows: [][]string{{"1", "2"}}},
			wantErr: "row 1 has 2 cells",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecordGet(t *testing.T) {
	tbl := Table{Columns: []string{"first", "city", "zip"}, Rows: [][]string{{"Ann", "Austin"}}}
	rec := tbl.Record(0)

	assert.Equal(t, "Ann", rec.Get("first"))
	assert.Equal(t, "Austin", rec.Get("city"))
	assert.Equal(t, "", rec.Get("zip"), "short row reads as empty")
	assert.Equal(t, "", rec.Get("unknown"))
	assert.Equal(t, "", rec.Get(""))
	assert.Equal(t, []string{"first", "city", "zip"}, rec.Columns())
}

func TestValues(t *testing.T) {
	tbl := Table{
		Columns: []string{"name", "address"},
		Rows: [][]string{
			{"a", ""},
			{"b", " 1 Main St "},
			{"c", "2 Elm St"},
			{"d", "3 Oak Ave"},
		},
	}
	assert.Equal(t, []string{"1 Main St", "2 Elm St"}, tbl.Values("address", 2))
	assert.Len(t, tbl.Values("address", 0), 3)
	assert.Nil(t, tbl.Values("missing", 5))
}

func TestDecodeCSV(t *testing.T) {
	input := "\ufefffname,lname,addr\nJohn,Smith,\"1 Main St, Apt 2\"\n,,\nJane,Doe\n"
	tbl, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"fname", "lname", "addr"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2, "blank rows are skipped")
	assert.Equal(t, "1 Main St, Apt 2", tbl.Rows[0][2])
	assert.Equal(t, []string{"Jane", "Doe"}, tbl.Rows[1])
}

func TestDecodeCSVEmpty(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestReadFileCSVAndXLSX(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("city,state\nAustin,TX\n"), 0o644))
	tbl, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "people.csv", tbl.Label)
	assert.Equal(t, [][]string{{"Austin", "TX"}}, tbl.Rows)

	xlsxPath := filepath.Join(dir, "people.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"city", "state"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Reno", "NV"}))
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	tbl, err = ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, "people.xlsx", tbl.Label)
	assert.Equal(t, []string{"city", "state"}, tbl.Columns)
	assert.Equal(t, [][]string{{"Reno", "NV"}}, tbl.Rows)
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
