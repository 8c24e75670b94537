package batch

import (
	"fmt"
	"time"

	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/schema"
	"github.com/recordprep/internal/validation"
)

// AddressRow is one standardised address record with its verdict and
// provenance.
type AddressRow struct {
	normalize.Address
	validation.Result
	SourceFile string `json:"source_file"`
	SourceRow  int    `json:"source_row_number"`
}

// NameRow is one standardised name record with its quality assessment and
// provenance.
type NameRow struct {
	normalize.Name
	validation.NameQuality
	SourceFile string `json:"source_file"`
	SourceRow  int    `json:"source_row_number"`
}

// TableFailure records a table that could not be processed. Other tables in
// the batch are unaffected.
type TableFailure struct {
	Label    string `json:"file"`
	Position int    `json:"position"`
	Message  string `json:"error"`

	err error
}

func (f *TableFailure) Error() string {
	return fmt.Sprintf("table %d (%s): %s", f.Position, f.Label, f.Message)
}

// Unwrap returns the underlying error, including its captured stack.
func (f *TableFailure) Unwrap() error { return f.err }

// File statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// FileSummary describes what happened to one input table.
type FileSummary struct {
	Label  string `json:"file"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	InputRows     int `json:"input_rows"`
	OutputRows    int `json:"output_rows"`
	RemovedNoData int `json:"removed_no_data"`
	// Qualified counts qualified addresses, or valid names in name mode.
	Qualified    int `json:"qualified"`
	Disqualified int `json:"disqualified"`

	Mapping        map[string]string `json:"mapping,omitempty"`
	Decisions      []schema.Decision `json:"decisions,omitempty"`
	CombinedParsed bool              `json:"combined_parsed"`
	ParseFallbacks int               `json:"parse_fallbacks"`
	Notes          []string          `json:"notes,omitempty"`
}

// ReasonCount is one bucket of a reason histogram.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Summary aggregates a batch run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Mode       schema.Mode   `json:"mode"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Files      []FileSummary `json:"files"`
	TotalFiles int           `json:"total_files"`
	Succeeded  int           `json:"successful_files"`
	Failed     int           `json:"failed_files"`

	TotalRows     int     `json:"total_rows"`
	Qualified     int     `json:"qualified"`
	Disqualified  int     `json:"disqualified"`
	QualifiedRate float64 `json:"qualified_rate"`
	RemovedNoData int     `json:"removed_no_data"`
	AverageScore  float64 `json:"average_score"`

	FilesWithCombined int                       `json:"files_with_combined"`
	MappingPatterns   map[string]map[string]int `json:"column_mapping_patterns"`
	TopErrors         []ReasonCount             `json:"top_errors,omitempty"`
	TopWarnings       []ReasonCount             `json:"top_warnings,omitempty"`
	TopIssues         []ReasonCount             `json:"top_issues,omitempty"`
	CommonNotes       []ReasonCount             `json:"common_notes,omitempty"`
}

// AddressResult is the output of an address batch.
type AddressResult struct {
	Rows         []AddressRow    `json:"rows"`
	Qualified    []AddressRow    `json:"-"`
	Disqualified []AddressRow    `json:"-"`
	Failures     []*TableFailure `json:"failures,omitempty"`
	Summary      Summary         `json:"summary"`
}

// NameResult is the output of a name batch.
type NameResult struct {
	Rows     []NameRow       `json:"rows"`
	Failures []*TableFailure `json:"failures,omitempty"`
	Summary  Summary         `json:"summary"`
}
