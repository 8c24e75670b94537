package parse

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/observe"
)

const maxFirstNameLen = 50

// NameParts are the canonical fields of a person name.
type NameParts struct {
	First  string `json:"first_name"`
	Middle string `json:"middle_name"`
	Last   string `json:"last_name"`
	Title  string `json:"title"`
	Suffix string `json:"suffix"`
}

var nameChars = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)

// Valid reports whether the first name is present, at most 50 characters,
// and the first and last names use only letters, spaces, hyphens,
// apostrophes and periods. Accented letters are folded to ASCII before the
// check, so "José García" is valid.
func (n NameParts) Valid() bool {
	first, last := unidecode.Unidecode(n.First), unidecode.Unidecode(n.Last)
	if first == "" || len(first) > maxFirstNameLen || !nameChars.MatchString(first) {
		return false
	}
	return last == "" || nameChars.MatchString(last)
}

// NameResult is the outcome of parsing one full-name string.
type NameResult struct {
	NameParts
	Strategy string `json:"strategy"`
}

// Fallback reports whether no structured strategy succeeded.
func (r NameResult) Fallback() bool { return r.Strategy == StrategyFallback }

// ExternalNameParser is an optional structured name parser consulted before
// the rule-based tokenizer.
type ExternalNameParser interface {
	ParseName(text string) (NameParts, error)
}

// particles join the following token into a compound surname.
var particles = map[string]bool{
	"van": true, "von": true, "de": true, "del": true, "della": true, "di": true, "da": true,
	"le": true, "la": true, "du": true, "mac": true, "mc": true, "o": true, "st": true,
}

// NameParser splits full-name strings.
type NameParser struct {
	external ExternalNameParser
	obs      observe.Observer

	disallowed *regexp.Regexp
}

// NewNameParser creates a parser. external may be nil.
func NewNameParser(external ExternalNameParser, obs observe.Observer) *NameParser {
	return &NameParser{
		external:   external,
		obs:        observe.OrNop(obs),
		disallowed: regexp.MustCompile(`[^\p{L}\p{N}_\s\-'.]`),
	}
}

// Parse decomposes text.
func (p *NameParser) Parse(text string, at Where) NameResult {
	text = normalize.Text(text)

	if p.external != nil {
		parts, err := p.external.ParseName(text)
		valid := err == nil && parts.Valid()
		p.attempted(at, StrategyExternal, valid)
		if valid {
			return NameResult{NameParts: parts, Strategy: StrategyExternal}
		}
	}

	parts := p.byRules(text)
	valid := parts.Valid()
	p.attempted(at, StrategyRules, valid)
	if valid {
		return NameResult{NameParts: parts, Strategy: StrategyRules}
	}

	parts = p.fallback(text)
	p.attempted(at, StrategyFallback, parts.Valid())
	return NameResult{NameParts: parts, Strategy: StrategyFallback}
}

func (p *NameParser) attempted(at Where, strategy string, valid bool) {
	p.obs.Observe(observe.Event{
		Kind:     observe.StrategyAttempted,
		Table:    at.Table,
		Row:      at.Row,
		Parser:   "name",
		Strategy: strategy,
		Valid:    valid,
	})
}

func (p *NameParser) tokens(s string) []string {
	return strings.Fields(p.disallowed.ReplaceAllString(s, " "))
}

func (p *NameParser) byRules(text string) NameParts {
	var parts NameParts
	before, after, hasComma := strings.Cut(text, ",")
	lead, tail := p.tokens(before), p.tokens(after)

	// "John Smith, Jr." is a suffix after a comma, not "Last, First".
	if hasComma && len(tail) > 0 && allSuffixes(tail) && len(lead) > 1 {
		for i, tok := range tail {
			tail[i] = strings.TrimSuffix(tok, ".")
		}
		parts.Suffix = strings.Join(tail, " ")
		hasComma, tail = false, nil
	}

	if !hasComma || len(lead) == 0 || len(tail) == 0 {
		all := append(lead, tail...)
		parts.Title, all = takeTitle(all)
		if parts.Suffix == "" {
			parts.Suffix, all = takeSuffix(all)
		}
		assignOrdered(&parts, all)
		return parts
	}

	// [Title] Last, [Title] First Middle [Suffix]
	parts.Title, lead = takeTitle(lead)
	if parts.Title == "" {
		parts.Title, tail = takeTitle(tail)
	}
	parts.Suffix, tail = takeSuffix(tail)
	if parts.Suffix == "" {
		parts.Suffix, lead = takeSuffix(lead)
	}
	parts.Last = strings.Join(lead, " ")
	parts.First = tail[0]
	parts.Middle = strings.Join(tail[1:], " ")
	return parts
}

// assignOrdered fills parts from tokens written first name first.
func assignOrdered(parts *NameParts, t []string) {
	switch n := len(t); {
	case n == 0:
	case n == 1:
		parts.First = t[0]
	case n == 2:
		parts.First, parts.Last = t[0], t[1]
	case n == 3:
		parts.First, parts.Middle, parts.Last = t[0], t[1], t[2]
	default:
		start := n - 1
		for start > 1 && particles[strings.ToLower(strings.TrimSuffix(t[start-1], "."))] {
			start--
		}
		parts.First = t[0]
		parts.Middle = strings.Join(t[1:start], " ")
		parts.Last = strings.Join(t[start:], " ")
	}
}

func (p *NameParser) fallback(text string) NameParts {
	t := p.tokens(strings.ReplaceAll(text, ",", " "))
	var parts NameParts
	if len(t) == 0 {
		return parts
	}
	parts.First = t[0]
	if len(t) >= 2 {
		parts.Last = t[len(t)-1]
		parts.Middle = strings.Join(t[1:len(t)-1], " ")
	}
	return parts
}

// takeTitle removes a leading honorific when another token remains.
func takeTitle(t []string) (string, []string) {
	if len(t) > 1 && normalize.IsTitle(t[0]) {
		return strings.TrimSuffix(t[0], "."), t[1:]
	}
	return "", t
}

// takeSuffix removes a trailing suffix when another token remains.
func takeSuffix(t []string) (string, []string) {
	if n := len(t); n > 1 && normalize.IsSuffix(t[n-1]) {
		return strings.TrimSuffix(t[n-1], "."), t[:n-1]
	}
	return "", t
}

func allSuffixes(t []string) bool {
	for _, tok := range t {
		if !normalize.IsSuffix(tok) {
			return false
		}
	}
	return true
}
