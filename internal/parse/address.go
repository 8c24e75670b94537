// Package parse decomposes one free-text value (a whole address or a full
// person name) into canonical parts. Each parser tries an ordered list of
// strategies and keeps the first valid result; the last strategy never fails.
package parse

import (
	"errors"
	"regexp"
	"strings"

	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/observe"
)

// Strategy names reported on results and events.
const (
	StrategyExternal   = "external"
	StrategyPattern    = "pattern"
	StrategyComma      = "comma"
	StrategyWhitespace = "whitespace"
	StrategyRules      = "rules"
	StrategyFallback   = "fallback"
)

// AddressParts are the canonical address fields extracted from free text.
type AddressParts struct {
	Street string `json:"street_address"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip_code"`
}

// Valid reports whether the parts are a usable decomposition: a street of at
// least three characters plus at least one of city, state or ZIP.
func (a AddressParts) Valid() bool {
	return len(a.Street) >= 3 && (a.City != "" || a.State != "" || a.Zip != "")
}

// AddressResult is the outcome of parsing one address string.
type AddressResult struct {
	AddressParts
	Strategy string `json:"strategy"`
}

// Fallback reports whether no structured strategy succeeded.
func (r AddressResult) Fallback() bool { return r.Strategy == StrategyFallback }

// ErrLibpostalUnavailable is returned by NewLibpostal in builds without the
// libpostal tag.
var ErrLibpostalUnavailable = errors.New("built without libpostal support (rebuild with -tags libpostal)")

// ExternalAddressParser is an optional structured address parser consulted
// before the built-in strategies.
type ExternalAddressParser interface {
	ParseAddress(text string) (AddressParts, error)
}

// Where identifies the record being parsed in emitted events.
type Where = observe.Where

var (
	zipPattern   = regexp.MustCompile(`\b\d{5}(?:-?\d{4})?\b`)
	zipToken     = regexp.MustCompile(`^\d{5}(?:-?\d{4})?$`)
	unitPrefixes = map[string]bool{"APT": true, "APARTMENT": true, "UNIT": true, "STE": true, "SUITE": true, "#": true, "FL": true, "FLOOR": true, "RM": true, "ROOM": true}
	directionals = map[string]bool{"N": true, "S": true, "E": true, "W": true, "NE": true, "NW": true, "SE": true, "SW": true}
	streetTypes  = map[string]bool{
		"ST": true, "STREET": true, "AVE": true, "AV": true, "AVENUE": true, "RD": true, "ROAD": true,
		"BLVD": true, "BOULEVARD": true, "DR": true, "DRIVE": true, "LN": true, "LANE": true,
		"CT": true, "COURT": true, "PL": true, "PLACE": true, "WAY": true, "PKWY": true, "PARKWAY": true,
		"CIR": true, "CIRCLE": true, "TER": true, "TERRACE": true, "HWY": true, "HIGHWAY": true,
		"TRL": true, "TRAIL": true, "SQ": true, "SQUARE": true, "LOOP": true, "ALY": true, "ALLEY": true,
	}
)

// AddressParser splits whole-address strings.
type AddressParser struct {
	external ExternalAddressParser
	obs      observe.Observer

	// street, city, ST 12345 and street, city ST 12345
	commaState *regexp.Regexp
	spaceState *regexp.Regexp
}

// NewAddressParser creates a parser. external may be nil.
func NewAddressParser(external ExternalAddressParser, obs observe.Observer) *AddressParser {
	return &AddressParser{
		external:   external,
		obs:        observe.OrNop(obs),
		commaState: regexp.MustCompile(`(?i)^(.+?),\s*([^,]+?),\s*([A-Z]{2})\.?,?\s+(\d{5}(?:-?\d{4})?)$`),
		spaceState: regexp.MustCompile(`(?i)^(.+?),\s*([^,]+?)\s+([A-Z]{2})\.?,?\s+(\d{5}(?:-?\d{4})?)$`),
	}
}

// Parse decomposes text. The result is never empty for non-blank input: when
// every strategy fails the whole string becomes the street.
func (p *AddressParser) Parse(text string, at Where) AddressResult {
	text = normalize.Text(text)

	type strategy struct {
		name string
		run  func(string) (AddressParts, bool)
	}
	strategies := []strategy{
		{StrategyExternal, p.viaExternal},
		{StrategyPattern, p.byPattern},
		{StrategyComma, p.byComma},
		{StrategyWhitespace, p.byWhitespace},
	}
	for _, s := range strategies {
		if s.name == StrategyExternal && p.external == nil {
			continue
		}
		parts, ok := s.run(text)
		valid := ok && parts.Valid()
		p.attempted(at, s.name, valid)
		if valid {
			return AddressResult{AddressParts: parts, Strategy: s.name}
		}
	}

	parts := p.fallback(text)
	p.attempted(at, StrategyFallback, parts.Valid())
	return AddressResult{AddressParts: parts, Strategy: StrategyFallback}
}

func (p *AddressParser) attempted(at Where, strategy string, valid bool) {
	p.obs.Observe(observe.Event{
		Kind:     observe.StrategyAttempted,
		Table:    at.Table,
		Row:      at.Row,
		Parser:   "address",
		Strategy: strategy,
		Valid:    valid,
	})
}

func (p *AddressParser) viaExternal(text string) (AddressParts, bool) {
	if p.external == nil || text == "" {
		return AddressParts{}, false
	}
	parts, err := p.external.ParseAddress(text)
	if err != nil {
		return AddressParts{}, false
	}
	if code, ok := normalize.ResolveState(parts.State); ok {
		parts.State = code
	}
	return parts, true
}

func (p *AddressParser) byPattern(text string) (AddressParts, bool) {
	for _, re := range []*regexp.Regexp{p.commaState, p.spaceState} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		state := strings.ToUpper(m[3])
		if !normalize.IsStateCode(state) {
			continue
		}
		return AddressParts{
			Street: strings.TrimSpace(m[1]),
			City:   strings.TrimSpace(m[2]),
			State:  state,
			Zip:    m[4],
		}, true
	}
	return AddressParts{}, false
}

func (p *AddressParser) byComma(text string) (AddressParts, bool) {
	var segments []string
	for _, s := range strings.Split(text, ",") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	switch n := len(segments); {
	case n < 2:
		return AddressParts{}, false
	case n == 2:
		parts := AddressParts{Street: segments[0]}
		rest, zip := extractZip(segments[1])
		parts.Zip = zip
		parts.City, parts.State = splitTrailingState(strings.Fields(rest))
		return parts, true
	default:
		parts := AddressParts{
			Street: strings.Join(segments[:n-2], ", "),
			City:   segments[n-2],
		}
		rest, zip := extractZip(segments[n-1])
		parts.Zip = zip
		if code, ok := normalize.ResolveState(rest); ok {
			parts.State = code
		} else {
			parts.State = rest
		}
		return parts, true
	}
}

func (p *AddressParser) byWhitespace(text string) (AddressParts, bool) {
	tokens := strings.Fields(strings.ReplaceAll(text, ",", " "))
	if len(tokens) < 2 {
		return AddressParts{}, false
	}

	var parts AddressParts
	for i := len(tokens) - 1; i >= 0; i-- {
		if zipToken.MatchString(tokens[i]) {
			parts.Zip = tokens[i]
			tokens = append(tokens[:i:i], tokens[i+1:]...)
			break
		}
	}

	var city string
	city, parts.State = splitTrailingState(tokens)
	tokens = strings.Fields(city)
	if len(tokens) == 0 {
		return AddressParts{}, false
	}

	cut := streetBoundary(tokens)
	if cut < 0 {
		cut = 1
		if len(tokens) >= 3 {
			cut = 2
		}
	}
	parts.Street = strings.Join(tokens[:cut], " ")
	parts.City = strings.Join(tokens[cut:], " ")
	return parts, true
}

// streetBoundary returns the number of leading tokens that form the street
// when a street-type word (St, Ave, Rd, ...) appears before the last token,
// or -1. Directionals and a unit designator with its number that follow the
// street type stay with the street.
func streetBoundary(tokens []string) int {
	at := -1
	for i := 1; i < len(tokens)-1; i++ {
		if streetTypes[strings.ToUpper(strings.TrimSuffix(tokens[i], "."))] {
			at = i
		}
	}
	if at < 0 {
		return -1
	}
	cut := at + 1
	for cut < len(tokens)-1 {
		up := strings.ToUpper(strings.TrimSuffix(tokens[cut], "."))
		switch {
		case directionals[up]:
			cut++
		case unitPrefixes[up] && cut+1 < len(tokens)-1:
			cut += 2
		case strings.HasPrefix(up, "#") && len(up) > 1:
			cut++
		default:
			return cut
		}
	}
	return cut
}

func (p *AddressParser) fallback(text string) AddressParts {
	parts := AddressParts{Street: text}
	if zips := zipPattern.FindAllString(text, -1); len(zips) > 0 {
		parts.Zip = zips[len(zips)-1]
	}
	tokens := strings.Fields(strings.ReplaceAll(text, ",", " "))
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := strings.ToUpper(strings.Trim(tokens[i], "."))
		if len(tok) == 2 && normalize.IsStateCode(tok) {
			parts.State = tok
			break
		}
	}
	if parts.State == "" {
		_, parts.State = splitTrailingState(tokens)
	}
	return parts
}

// extractZip removes the last ZIP-shaped run from s.
func extractZip(s string) (rest, zip string) {
	locs := zipPattern.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(s), ""
	}
	loc := locs[len(locs)-1]
	return normalize.Text(s[:loc[0]] + " " + s[loc[1]:]), s[loc[0]:loc[1]]
}

// splitTrailingState looks for a state at the end of tokens: a two-letter
// code in any case, else the last two or last one words naming a state. It
// returns the remaining text and the state code.
func splitTrailingState(tokens []string) (rest, state string) {
	n := len(tokens)
	if n == 0 {
		return "", ""
	}
	last := strings.Trim(tokens[n-1], ".")
	if len(last) == 2 {
		if code := strings.ToUpper(last); normalize.IsStateCode(code) {
			return strings.Join(tokens[:n-1], " "), code
		}
	}
	for _, k := range []int{2, 1} {
		if n < k {
			continue
		}
		if code, ok := normalize.StateCodeForName(strings.Join(tokens[n-k:], " ")); ok {
			return strings.Join(tokens[:n-k], " "), code
		}
	}
	return strings.Join(tokens, " "), ""
}
