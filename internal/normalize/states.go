package normalize

import (
	"sort"
	"strings"

	"github.com/recordprep/internal/symspell"
)

// stateNames maps postal codes to full names for the 50 states and DC, the
// set accepted for qualification.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// nameToCode maps uppercase full names (and a few common aliases) to codes.
var nameToCode = func() map[string]string {
	m := make(map[string]string, len(stateNames)+4)
	for code, name := range stateNames {
		m[strings.ToUpper(name)] = code
	}
	m["WASHINGTON DC"] = "DC"
	m["WASHINGTON D C"] = "DC"
	m["D C"] = "DC"
	return m
}()

var stateDictionary = func() *symspell.SymSpell {
	names := make([]string, 0, len(stateNames))
	for _, name := range stateNames {
		names = append(names, name)
	}
	return symspell.Build(symspell.DefaultConfig(), names)
}()

// IsStateCode reports whether code is one of the 50 state codes or DC.
// The comparison is case-sensitive: callers uppercase first when they mean to.
func IsStateCode(code string) bool {
	_, ok := stateNames[code]
	return ok
}

// StateCodeForName resolves a full state name, in any case and with any
// spacing or periods, to its code.
func StateCodeForName(name string) (string, bool) {
	key := strings.ToUpper(strings.Join(strings.Fields(strings.ReplaceAll(name, ".", " ")), " "))
	code, ok := nameToCode[key]
	return code, ok
}

// ResolveState turns a state token or name into a code: a 2-letter code in
// any case, or a full name. Misspellings are not corrected here.
func ResolveState(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if up := strings.ToUpper(s); IsStateCode(up) {
		return up, true
	}
	return StateCodeForName(s)
}

// CorrectStateName resolves a near-miss spelling of a full state name
// through the symspell dictionary.
func CorrectStateName(name string) (string, bool) {
	term, ok := stateDictionary.Correct(name)
	if !ok {
		return "", false
	}
	return StateCodeForName(term)
}

// StateName returns the full name for a state code.
func StateName(code string) (string, bool) {
	name, ok := stateNames[code]
	return name, ok
}

// StateCodes returns all accepted codes in alphabetical order.
func StateCodes() []string {
	out := make([]string, 0, len(stateNames))
	for code := range stateNames {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
