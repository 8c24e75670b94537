// Package schema infers which source columns hold which canonical fields. It
// matches headers against prioritised synonym tables, exactly first and then
// fuzzily, and detects columns that hold a whole address or name as one
// free-text value.
package schema

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/recordprep/internal/observe"
)

// Method records how a canonical field was resolved.
type Method string

const (
	MethodExact    Method = "exact"
	MethodFuzzy    Method = "fuzzy"
	MethodCombined Method = "combined"
	MethodUnmapped Method = "unmapped"
)

// DefaultThreshold is the fuzzy score a header must beat to be bound.
const DefaultThreshold = 80.0

// Decision describes the resolution of one canonical field.
type Decision struct {
	Field  string  `json:"field"`
	Column string  `json:"column,omitempty"`
	Method Method  `json:"method"`
	Score  float64 `json:"score,omitempty"`
}

// Conflict lists source columns that matched a canonical field exactly but
// lost to a higher-priority column.
type Conflict struct {
	Field   string   `json:"field"`
	Chosen  string   `json:"chosen"`
	Ignored []string `json:"ignored"`
}

// Mapping binds canonical fields to source columns for one table. At most one
// column is bound per field and each column serves at most one field.
type Mapping struct {
	Fields          map[string]string `json:"fields"`
	CombinedAddress string            `json:"combined_address,omitempty"`
	CombinedName    string            `json:"combined_name,omitempty"`
	Conflicts       []Conflict        `json:"conflicts,omitempty"`
	Decisions       []Decision        `json:"decisions"`
}

// Column returns the source column bound to field, if any.
func (m Mapping) Column(field string) (string, bool) {
	c, ok := m.Fields[field]
	return c, ok
}

// Has reports whether field is bound.
func (m Mapping) Has(field string) bool {
	_, ok := m.Fields[field]
	return ok
}

// Bound reports whether column already serves a field or a combined value.
func (m Mapping) Bound(column string) bool {
	if column == m.CombinedAddress || column == m.CombinedName {
		return column != ""
	}
	for _, c := range m.Fields {
		if c == column {
			return true
		}
	}
	return false
}

// Notes returns one "Missing <field> column" note per canonical field that
// ended up with no source, in field order. address_line_2 is auxiliary and
// never noted.
func (m Mapping) Notes() []string {
	var out []string
	for _, d := range m.Decisions {
		if d.Method == MethodUnmapped && d.Field != AddressLine2 {
			out = append(out, fmt.Sprintf("Missing %s column", d.Field))
		}
	}
	return out
}

// Scorer returns the similarity of two normalised strings on a 0..100 scale.
type Scorer func(a, b string) float64

// LevenshteinScore is 100 * (1 - distance / longer length).
func LevenshteinScore(a, b string) float64 {
	maxLen := len([]rune(a))
	if n := len([]rune(b)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(maxLen))
}

// JaroWinklerScore is the Jaro-Winkler similarity scaled to 0..100.
func JaroWinklerScore(a, b string) float64 {
	return 100 * smetrics.JaroWinkler(a, b, 0.7, 4)
}

// ScorerByName resolves a configured scorer name.
func ScorerByName(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "levenshtein":
		return LevenshteinScore, nil
	case "jaro-winkler", "jarowinkler", "jaro_winkler":
		return JaroWinklerScore, nil
	}
	return nil, fmt.Errorf("unknown scorer %q", name)
}

// Options tunes the mapper.
type Options struct {
	Threshold float64
	Scorer    Scorer
}

// Mapper resolves headers against a synonym table.
type Mapper struct {
	table     []FieldSynonyms
	threshold float64
	score     Scorer
	obs       observe.Observer
}

// NewMapper creates a mapper. Zero options select the Levenshtein scorer and
// DefaultThreshold.
func NewMapper(table []FieldSynonyms, opts Options, obs observe.Observer) *Mapper {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Scorer == nil {
		opts.Scorer = LevenshteinScore
	}
	return &Mapper{table: table, threshold: opts.Threshold, score: opts.Scorer, obs: observe.OrNop(obs)}
}

// Fields returns the canonical fields the mapper resolves, in order.
func (m *Mapper) Fields() []string { return Fields(m.table) }

type header struct {
	folded string
	key    string
	bound  bool
}

// Map resolves columns for the table labelled label.
func (m *Mapper) Map(label string, columns []string) Mapping {
	headers := make([]header, len(columns))
	for i, c := range columns {
		f := foldHeader(c)
		headers[i] = header{folded: f, key: underscoreKey(f)}
	}

	result := Mapping{Fields: make(map[string]string)}
	decisions := make(map[string]Decision, len(m.table))

	// Exact pass over every field first so an exact header is never lost to
	// another field's fuzzy match.
	for _, fs := range m.table {
		chosen := -1
		var ignored []string
		for _, syn := range fs.Synonyms {
			for i := range headers {
				h := &headers[i]
				if h.bound || (h.folded != syn && h.key != syn) {
					continue
				}
				if chosen < 0 {
					chosen = i
					h.bound = true
				} else {
					ignored = append(ignored, columns[i])
				}
			}
		}
		if chosen < 0 {
			continue
		}
		result.Fields[fs.Field] = columns[chosen]
		decisions[fs.Field] = Decision{Field: fs.Field, Column: columns[chosen], Method: MethodExact, Score: 100}
		if len(ignored) > 0 {
			result.Conflicts = append(result.Conflicts, Conflict{Field: fs.Field, Chosen: columns[chosen], Ignored: ignored})
			for _, col := range ignored {
				m.obs.Observe(observe.Event{
					Kind:   observe.MappingConflict,
					Table:  label,
					Field:  fs.Field,
					Column: col,
					Method: string(MethodExact),
				})
			}
		}
	}

	for _, fs := range m.table {
		if _, ok := decisions[fs.Field]; ok {
			continue
		}
		best, bestScore := -1, 0.0
		for _, syn := range fs.Synonyms {
			for i, h := range headers {
				if h.bound || h.key == "" {
					continue
				}
				if s := m.score(h.key, syn); s > bestScore {
					best, bestScore = i, s
				}
			}
		}
		if best >= 0 && bestScore > m.threshold {
			headers[best].bound = true
			result.Fields[fs.Field] = columns[best]
			decisions[fs.Field] = Decision{Field: fs.Field, Column: columns[best], Method: MethodFuzzy, Score: round2(bestScore)}
			continue
		}
		decisions[fs.Field] = Decision{Field: fs.Field, Method: MethodUnmapped}
	}

	for _, fs := range m.table {
		d := decisions[fs.Field]
		result.Decisions = append(result.Decisions, d)
		m.obs.Observe(observe.Event{
			Kind:   observe.MappingDecided,
			Table:  label,
			Field:  d.Field,
			Column: d.Column,
			Method: string(d.Method),
			Score:  int(math.Round(d.Score)),
		})
	}
	return result
}

var separators = regexp.MustCompile(`[\s\-./]+`)

// foldHeader trims, lower-cases and strips diacritics.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// underscoreKey turns "first name", "first-name" and "first.name" into
// "first_name".
func underscoreKey(folded string) string {
	return strings.Trim(separators.ReplaceAllString(folded, "_"), "_")
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
