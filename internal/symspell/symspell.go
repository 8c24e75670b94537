// Package symspell implements Symmetric Delete spelling correction over a
// small fixed vocabulary. The cleaner uses it to recognise misspelled US state
// names ("Califronia", "Pensylvania") before mapping them to postal codes.
//
// Every term is indexed under all of its deletion variants within the maximum
// edit distance, so a lookup only has to generate the deletions of the input
// and intersect.
package symspell

import (
	"sort"
	"strings"
)

// Config holds the correction parameters.
type Config struct {
	// MaxEditDistance is the maximum Damerau-Levenshtein (optimal string
	// alignment) distance accepted for a correction.
	MaxEditDistance int

	// MinTermLength is the shortest input that will be corrected. Short
	// tokens such as two-letter codes are never corrected.
	MinTermLength int
}

// DefaultConfig is tuned for state names: one edit, five letters minimum.
func DefaultConfig() Config {
	return Config{MaxEditDistance: 1, MinTermLength: 5}
}

// Suggestion is a dictionary term close to the input.
type Suggestion struct {
	Term     string
	Distance int
}

// SymSpell is an immutable-after-build correction dictionary. Lookups are
// safe for concurrent use once all terms have been added.
type SymSpell struct {
	config  Config
	terms   map[string]bool
	deletes map[string][]string
}

// New creates an empty dictionary.
func New(config Config) *SymSpell {
	if config.MaxEditDistance <= 0 {
		config.MaxEditDistance = DefaultConfig().MaxEditDistance
	}
	return &SymSpell{
		config:  config,
		terms:   make(map[string]bool),
		deletes: make(map[string][]string),
	}
}

// Build returns a dictionary containing terms.
func Build(config Config, terms []string) *SymSpell {
	s := New(config)
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add indexes term and all its deletion variants.
func (s *SymSpell) Add(term string) {
	term = normalize(term)
	if term == "" || s.terms[term] {
		return
	}
	s.terms[term] = true
	for del := range deletions(term, s.config.MaxEditDistance) {
		s.deletes[del] = append(s.deletes[del], term)
	}
}

// Contains reports whether term is in the dictionary exactly.
func (s *SymSpell) Contains(term string) bool {
	return s.terms[normalize(term)]
}

// Lookup returns suggestions within the configured distance, nearest first
// and alphabetical among equals so results are deterministic.
func (s *SymSpell) Lookup(input string) []Suggestion {
	input = normalize(input)
	if len(input) < s.config.MinTermLength {
		return nil
	}
	if s.terms[input] {
		return []Suggestion{{Term: input}}
	}

	seen := make(map[string]bool)
	var out []Suggestion
	consider := func(term string) {
		if seen[term] {
			return
		}
		seen[term] = true
		if d := editDistance(input, term, s.config.MaxEditDistance); d >= 0 {
			out = append(out, Suggestion{Term: term, Distance: d})
		}
	}

	candidates := deletions(input, s.config.MaxEditDistance)
	candidates[input] = true
	for del := range candidates {
		for _, term := range s.deletes[del] {
			consider(term)
		}
		if s.terms[del] {
			consider(del)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// Correct returns the single best term for input. It refuses when two
// different terms tie at the best distance.
func (s *SymSpell) Correct(input string) (string, bool) {
	sug := s.Lookup(input)
	if len(sug) == 0 {
		return "", false
	}
	if len(sug) > 1 && sug[1].Distance == sug[0].Distance {
		return "", false
	}
	return sug[0].Term, true
}

// Len returns the number of terms.
func (s *SymSpell) Len() int { return len(s.terms) }

func normalize(term string) string {
	return strings.ToUpper(strings.Join(strings.Fields(term), " "))
}

func deletions(term string, distance int) map[string]bool {
	out := make(map[string]bool)
	var walk func(string, int)
	walk = func(t string, d int) {
		if d <= 0 || len(t) <= 1 {
			return
		}
		for i := 0; i < len(t); i++ {
			del := t[:i] + t[i+1:]
			if !out[del] {
				out[del] = true
				walk(del, d-1)
			}
		}
	}
	walk(term, distance)
	return out
}

// editDistance is the optimal string alignment distance between a and b, or
// -1 once it is known to exceed max.
func editDistance(a, b string, max int) int {
	if abs(len(a)-len(b)) > max {
		return -1
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prevPrev := make([]int, len(a)+1)
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		rowMin := j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				curr[i] = min(curr[i], prevPrev[i-2]+cost)
			}
			rowMin = min(rowMin, curr[i])
		}
		if rowMin > max {
			return -1
		}
		prevPrev, prev, curr = prev, curr, prevPrev
	}

	if prev[len(a)] > max {
		return -1
	}
	return prev[len(a)]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
