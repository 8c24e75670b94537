// Package validation decides whether cleaned address records are well formed
// enough to send for deliverability verification, and scores the quality of
// cleaned person names. Every rule is deterministic and reports a fixed
// message.
package validation

import (
	"math"
	"regexp"
	"strings"

	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/observe"
)

const (
	errorPenalty   = 0.25
	warningPenalty = 0.05

	missingFirstPenalty = 0.5
	missingLastPenalty  = 0.3
	shortNamePenalty    = 0.1
	badCharsPenalty     = 0.2

	// NameValidThreshold is the lowest name score considered valid.
	NameValidThreshold = 0.5
)

var (
	zipShape      = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	allowedChars  = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
	poBoxPattern  = regexp.MustCompile(`(?i)\b(p\.?\s*o\.?\s*box|post\s+office\s+box)\b`)
	businessWords = regexp.MustCompile(`(?i)\b(suite|ste|llc|inc|corp|corporation|company|ltd|plaza|tower|bldg|building|business\s+park|industrial)\b`)
)

// Qualifier evaluates records against the qualification rules.
type Qualifier struct {
	rules Rules
	obs   observe.Observer
}

// NewQualifier creates a qualifier.
func NewQualifier(rules Rules, obs observe.Observer) *Qualifier {
	return &Qualifier{rules: rules, obs: observe.OrNop(obs)}
}

// QualifyAddress evaluates a cleaned address record. Errors are reported in
// field order: street, city, state, ZIP.
func (q *Qualifier) QualifyAddress(a normalize.Address, at observe.Where) Result {
	errs := make([]string, 0, 4)
	warnings := make([]string, 0, 2)

	switch {
	case a.Street == "":
		errs = append(errs, ErrMissingStreet)
	case len(a.Street) < 3:
		errs = append(errs, ErrShortStreet)
	}

	switch {
	case a.City == "":
		errs = append(errs, ErrMissingCity)
	case len(a.City) < 2:
		errs = append(errs, ErrShortCity)
	case !allowedChars.MatchString(a.City):
		errs = append(errs, ErrCityCharacters)
	}

	switch {
	case a.State == "":
		errs = append(errs, ErrMissingState)
	case len(a.State) != 2:
		errs = append(errs, ErrStateLength)
	case !normalize.IsStateCode(a.State):
		errs = append(errs, ErrInvalidState)
	}

	switch {
	case a.Zip == "":
		errs = append(errs, ErrMissingZip)
	case !zipShape.MatchString(a.Zip):
		errs = append(errs, ErrZipFormat)
	case strings.HasPrefix(a.Zip, "00000"):
		errs = append(errs, ErrZipZeros)
	}

	if poBoxPattern.MatchString(a.Street) {
		if q.rules.RejectPOBoxes {
			errs = append(errs, ErrPOBoxNotAllowed)
		} else {
			warnings = append(warnings, WarnPOBox)
		}
	}
	if businessWords.MatchString(a.Street) || businessWords.MatchString(a.LastName) {
		warnings = append(warnings, WarnBusiness)
	}
	if a.Street != "" && !strings.ContainsAny(a.Street, "0123456789") {
		warnings = append(warnings, WarnNoHouseNumber)
	}

	score := 1.0 - errorPenalty*float64(len(errs)) - warningPenalty*float64(len(warnings))
	r := Result{
		Qualified: len(errs) == 0,
		Errors:    errs,
		Warnings:  warnings,
		Score:     clampRound(score),
	}
	q.obs.Observe(observe.Event{
		Kind:      observe.RecordQualified,
		Table:     at.Table,
		Row:       at.Row,
		Qualified: r.Qualified,
		Reasons:   r.Errors,
	})
	return r
}

// QualifyName scores a cleaned name. The score starts at 1 and loses 0.5 for
// a missing first name, 0.3 for a missing last name, 0.1 for each name
// shorter than two characters and 0.2 for each name with disallowed
// characters.
func (q *Qualifier) QualifyName(n normalize.Name, at observe.Where) NameQuality {
	score := 1.0
	issues := make([]string, 0, 2)

	check := func(value, missing, short, chars string, missingPenalty float64) {
		switch {
		case value == "":
			issues = append(issues, missing)
			score -= missingPenalty
			return
		case len(value) < 2:
			issues = append(issues, short)
			score -= shortNamePenalty
		}
		if !allowedChars.MatchString(value) {
			issues = append(issues, chars)
			score -= badCharsPenalty
		}
	}
	check(n.First, IssueMissingFirst, IssueShortFirst, IssueFirstCharacters, missingFirstPenalty)
	check(n.Last, IssueMissingLast, IssueShortLast, IssueLastCharacters, missingLastPenalty)

	nq := NameQuality{Score: clampRound(score), Issues: issues}
	nq.Valid = nq.Score >= NameValidThreshold
	q.obs.Observe(observe.Event{
		Kind:      observe.RecordQualified,
		Table:     at.Table,
		Row:       at.Row,
		Qualified: nq.Valid,
		Reasons:   nq.Issues,
	})
	return nq
}

func clampRound(score float64) float64 {
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*100) / 100
}
