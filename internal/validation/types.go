package validation

import (
	"fmt"
	"strings"
)

// Address qualification errors. The wording is stable so reasons can be
// counted across files.
const (
	ErrMissingStreet   = "Missing street address"
	ErrShortStreet     = "Street address too short"
	ErrMissingCity     = "Missing city"
	ErrShortCity       = "City name too short"
	ErrCityCharacters  = "City contains invalid characters"
	ErrMissingState    = "Missing state"
	ErrStateLength     = "State must be a 2-letter code"
	ErrInvalidState    = "Invalid state code"
	ErrMissingZip      = "Missing ZIP code"
	ErrZipFormat       = "Invalid ZIP code format"
	ErrZipZeros        = "Invalid ZIP code (00000)"
	ErrPOBoxNotAllowed = "PO Box addresses are not accepted"
)

// Address qualification warnings.
const (
	WarnPOBox         = "PO Box address"
	WarnBusiness      = "Possible business address"
	WarnNoHouseNumber = "Street address has no house number"
)

// Name quality issues.
const (
	IssueMissingFirst    = "Missing first name"
	IssueMissingLast     = "Missing last name"
	IssueShortFirst      = "Very short first name"
	IssueShortLast       = "Very short last name"
	IssueFirstCharacters = "Invalid characters in first name"
	IssueLastCharacters  = "Invalid characters in last name"
)

// NoIssues is how an empty issue list is rendered in flat output.
const NoIssues = "No issues"

// Result is the verdict on one cleaned address record.
type Result struct {
	Qualified bool     `json:"us_qualified"`
	Errors    []string `json:"qualification_errors"`
	Warnings  []string `json:"qualification_warnings"`
	Score     float64  `json:"qualification_score"`
}

func (r Result) String() string {
	if r.Qualified {
		return fmt.Sprintf("QUALIFIED (%.2f)", r.Score)
	}
	return fmt.Sprintf("DISQUALIFIED (%.2f): %s", r.Score, strings.Join(r.Errors, "; "))
}

// NameQuality is the quality assessment of one cleaned name.
type NameQuality struct {
	Score  float64  `json:"name_quality_score"`
	Issues []string `json:"name_quality_issues"`
	Valid  bool     `json:"name_valid"`
}

// IssuesText joins the issues for flat output, or returns NoIssues.
func (q NameQuality) IssuesText() string {
	if len(q.Issues) == 0 {
		return NoIssues
	}
	return strings.Join(q.Issues, "; ")
}

// Rules holds the configurable parts of qualification.
type Rules struct {
	// RejectPOBoxes turns the PO Box warning into a disqualifying error.
	RejectPOBoxes bool `yaml:"reject_po_boxes"`
}
