// Package export writes standardised records and run summaries to disk as
// CSV, XLSX and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/recordprep/internal/batch"
)

// Format is an output file format for record sheets.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "csv", "xlsx" or "excel" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// AddressHeader is the column order of address exports.
var AddressHeader = []string{
	"first_name", "last_name", "street_address", "city", "state", "zip_code",
	"us_qualified", "qualification_errors", "qualification_warnings",
	"qualification_score", "source_file", "source_row_number",
}

// NameHeader is the column order of name exports.
var NameHeader = []string{
	"first_name", "last_name", "middle_name", "title", "suffix",
	"name_quality_score", "name_quality_issues", "name_valid",
	"source_file", "source_row_number",
}

// AddressRecord flattens an address row in AddressHeader order.
func AddressRecord(r batch.AddressRow) []string {
	return []string{
		r.FirstName, r.LastName, r.Street, r.City, r.State, r.Zip,
		strconv.FormatBool(r.Qualified),
		strings.Join(r.Errors, "; "),
		strings.Join(r.Warnings, "; "),
		strconv.FormatFloat(r.Result.Score, 'f', 2, 64),
		r.SourceFile,
		strconv.Itoa(r.SourceRow),
	}
}

// NameRecord flattens a name row in NameHeader order.
func NameRecord(r batch.NameRow) []string {
	return []string{
		r.First, r.Last, r.Middle, r.Title, r.Suffix,
		strconv.FormatFloat(r.NameQuality.Score, 'f', 2, 64),
		r.IssuesText(),
		strconv.FormatBool(r.Valid),
		r.SourceFile,
		strconv.Itoa(r.SourceRow),
	}
}

func addressRecords(rows []batch.AddressRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = AddressRecord(r)
	}
	return out
}

func nameRecords(rows []batch.NameRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = NameRecord(r)
	}
	return out
}

// Output file base names.
const (
	AddressesFile    = "standardized_addresses"
	QualifiedFile    = "qualified_addresses"
	DisqualifiedFile = "disqualified_addresses"
	NamesFile        = "standardized_names"
	SummaryFile      = "summary.json"
)

// Writer writes batch results into a directory.
type Writer struct {
	dir    string
	format Format
}

// NewWriter creates a writer for dir. The directory is created on first
// write.
func NewWriter(dir string, format Format) *Writer {
	if format == "" {
		format = CSV
	}
	return &Writer{dir: dir, format: format}
}

// WriteAddresses writes every row, the qualified and disqualified subsets
// and the summary. It returns the paths written.
func (w *Writer) WriteAddresses(res batch.AddressResult) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	sheets := []struct {
		name string
		rows []batch.AddressRow
	}{
		{AddressesFile, res.Rows},
		{QualifiedFile, res.Qualified},
		{DisqualifiedFile, res.Disqualified},
	}
	var paths []string
	for _, s := range sheets {
		path, err := w.writeSheet(s.name, AddressHeader, addressRecords(s.rows))
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	path, err := w.writeSummary(res.Summary)
	if err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

// WriteNames writes every name row and the summary.
func (w *Writer) WriteNames(res batch.NameResult) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	sheet, err := w.writeSheet(NamesFile, NameHeader, nameRecords(res.Rows))
	if err != nil {
		return nil, err
	}
	summary, err := w.writeSummary(res.Summary)
	if err != nil {
		return []string{sheet}, err
	}
	return []string{sheet, summary}, nil
}

func (w *Writer) writeSheet(name string, header []string, rows [][]string) (string, error) {
	path := filepath.Join(w.dir, name+"."+string(w.format))
	var err error
	switch w.format {
	case XLSX:
		err = WriteXLSX(path, name, header, rows)
	default:
		err = writeCSVFile(path, header, rows)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) writeSummary(s batch.Summary) (string, error) {
	path := filepath.Join(w.dir, SummaryFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	if err := WriteSummary(f, s); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSummary encodes s as indented JSON.
func WriteSummary(w io.Writer, s batch.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteCSV writes a header row followed by rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()
	return WriteCSV(file, header, rows)
}

// WriteXLSX writes header and rows to a single-sheet workbook at path.
func WriteXLSX(path, sheetName string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names are limited to 31 characters.
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	for i := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
