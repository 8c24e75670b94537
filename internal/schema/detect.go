package schema

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/observe"
	"github.com/recordprep/internal/table"
)

// Mode selects which canonical record a table is standardised into.
type Mode string

const (
	AddressMode Mode = "address"
	NameMode    Mode = "name"
)

// DefaultSampleSize is the number of non-empty values inspected per
// candidate column.
const DefaultSampleSize = 10

var (
	fiveDigits   = regexp.MustCompile(`\d{5}`)
	nameCharset  = regexp.MustCompile(`^[A-Za-z\s\-'.]+$`)
	letterTokens = regexp.MustCompile(`[A-Za-z]+`)
)

// Detector finds columns that hold a complete address or full name as one
// free-text value.
type Detector struct {
	sampleSize int
	obs        observe.Observer
}

// NewDetector creates a detector. sampleSize <= 0 selects DefaultSampleSize.
func NewDetector(sampleSize int, obs observe.Observer) *Detector {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Detector{sampleSize: sampleSize, obs: observe.OrNop(obs)}
}

// Detect inspects t and records any combined column on m.
//
// In address mode it runs when no street column was found, or when a street
// column was found but city, state and ZIP were not; in the second case only
// the street column itself is tested and, if it holds whole addresses, it is
// moved from street to the combined slot. It also looks for a full-name
// column when neither first nor last name was mapped. In name mode it runs
// when first or last name is missing.
func (d *Detector) Detect(t table.Table, m *Mapping, mode Mode) {
	switch mode {
	case AddressMode:
		d.detectAddress(t, m)
		if !m.Has(FirstName) && !m.Has(LastName) {
			d.detectName(t, m)
		}
	case NameMode:
		if !m.Has(FirstName) || !m.Has(LastName) {
			d.detectName(t, m)
		}
	}
}

func (d *Detector) detectAddress(t table.Table, m *Mapping) {
	streetCol, hasStreet := m.Column(Street)
	if hasStreet {
		if m.Has(City) || m.Has(State) || m.Has(Zip) {
			return
		}
		if d.anyPositive(t, streetCol, IsCombinedAddress) {
			delete(m.Fields, Street)
			d.bind(t.Label, m, &m.CombinedAddress, streetCol, Street, City, State, Zip)
		}
		return
	}
	for _, col := range d.candidates(t, m, addressKeywords) {
		if d.anyPositive(t, col, IsCombinedAddress) {
			d.bind(t.Label, m, &m.CombinedAddress, col, Street, City, State, Zip)
			return
		}
	}
}

func (d *Detector) detectName(t table.Table, m *Mapping) {
	for _, col := range d.candidates(t, m, nameKeywords) {
		if d.anyPositive(t, col, IsCombinedName) {
			d.bind(t.Label, m, &m.CombinedName, col, FirstName, LastName, MiddleName, Title, Suffix)
			return
		}
	}
}

// bind records column as combined and marks the decisions of the fields it
// will supply, unless they are already served by another column.
func (d *Detector) bind(label string, m *Mapping, slot *string, column string, fields ...string) {
	*slot = column
	for i, dec := range m.Decisions {
		for _, f := range fields {
			if dec.Field == f && (dec.Method == MethodUnmapped || dec.Column == column) {
				m.Decisions[i] = Decision{Field: f, Column: column, Method: MethodCombined}
			}
		}
	}
	d.obs.Observe(observe.Event{
		Kind:   observe.CombinedDetected,
		Table:  label,
		Field:  fields[0],
		Column: column,
		Method: string(MethodCombined),
	})
}

// candidates returns unbound columns whose header contains a keyword, in
// column order.
func (d *Detector) candidates(t table.Table, m *Mapping, keywords []string) []string {
	var out []string
	for _, col := range t.Columns {
		if m.Bound(col) {
			continue
		}
		if containsAny(underscoreKey(foldHeader(col)), keywords) {
			out = append(out, col)
		}
	}
	return out
}

func (d *Detector) anyPositive(t table.Table, column string, classify func(string) bool) bool {
	for _, v := range t.Values(column, d.sampleSize) {
		if classify(v) {
			return true
		}
	}
	return false
}

// IsCombinedAddress reports whether v looks like a whole address: it has a
// digit, a ZIP-shaped run or a state code, and either four or more words or
// comma-separated parts.
func IsCombinedAddress(v string) bool {
	if !strings.ContainsFunc(v, unicode.IsDigit) {
		return false
	}
	if !fiveDigits.MatchString(v) && !hasStateToken(v) {
		return false
	}
	if len(strings.Fields(v)) >= 4 {
		return true
	}
	segments := 0
	for _, s := range strings.Split(v, ",") {
		if strings.TrimSpace(s) != "" {
			segments++
		}
	}
	return strings.Contains(v, ",") && segments >= 2
}

func hasStateToken(v string) bool {
	for _, tok := range letterTokens.FindAllString(v, -1) {
		if len(tok) == 2 && normalize.IsStateCode(strings.ToUpper(tok)) {
			return true
		}
	}
	return false
}

// IsCombinedName reports whether v looks like a full person name.
func IsCombinedName(v string) bool {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", " "))
	if !nameCharset.MatchString(v) {
		return false
	}
	tokens := strings.Fields(v)
	alpha := 0
	for _, tok := range tokens {
		if strings.ContainsFunc(tok, unicode.IsLetter) {
			alpha++
		}
	}
	if alpha < 2 {
		return false
	}
	if len(v) > 10 && (v == strings.ToUpper(v) || v == strings.ToLower(v)) {
		return len(tokens[0]) >= 2 && len(tokens[1]) >= 2
	}
	return true
}
