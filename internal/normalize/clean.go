// Package normalize canonicalises values after mapping and parsing: it trims
// and collapses whitespace, resolves US state names to postal codes, shapes
// ZIP codes and cases person names.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

var (
	zipFive    = regexp.MustCompile(`^\d{5}$`)
	zipNine    = regexp.MustCompile(`^\d{9}$`)
	zipPlus4   = regexp.MustCompile(`^\d{5}-\d{4}$`)
	nonZipChar = regexp.MustCompile(`[^\d-]`)
)

// Address is a canonical address record before qualification.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street    string `json:"street_address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip_code"`
}

// Name is a canonical person name.
type Name struct {
	First  string `json:"first_name"`
	Last   string `json:"last_name"`
	Middle string `json:"middle_name"`
	Title  string `json:"title"`
	Suffix string `json:"suffix"`
}

// Options controls optional cleaning steps.
type Options struct {
	// Transliterate converts non-ASCII letters in names to ASCII
	// ("José" becomes "Jose") before casing.
	Transliterate bool `yaml:"transliterate"`
	// CorrectStates fixes single-edit misspellings of full state names.
	CorrectStates bool `yaml:"correct_states"`
}

// DefaultOptions enables every cleaning step.
func DefaultOptions() Options {
	return Options{Transliterate: true, CorrectStates: true}
}

// Cleaner applies the cleaning rules. It holds no mutable state and is safe
// for concurrent use.
type Cleaner struct {
	opts Options
}

// NewCleaner creates a cleaner.
func NewCleaner(opts Options) *Cleaner {
	return &Cleaner{opts: opts}
}

// Text trims s and collapses internal whitespace runs to one space.
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanAddress returns a cleaned copy of a.
func (c *Cleaner) CleanAddress(a Address) Address {
	return Address{
		FirstName: c.PersonName(a.FirstName),
		LastName:  c.PersonName(a.LastName),
		Street:    Text(a.Street),
		City:      Text(a.City),
		State:     c.State(a.State),
		Zip:       Zip(a.Zip),
	}
}

// CleanName returns a cleaned copy of n.
func (c *Cleaner) CleanName(n Name) Name {
	out := Name{
		First:  c.PersonName(n.First),
		Last:   c.PersonName(n.Last),
		Middle: c.PersonName(n.Middle),
	}
	if t := Text(n.Title); t != "" {
		out.Title = CanonicalTitle(c.ascii(t))
	}
	if s := Text(n.Suffix); s != "" {
		out.Suffix = CanonicalSuffix(c.ascii(s))
	}
	return out
}

// IsEmptyAddress reports whether every address field of a is blank. Such
// rows carry no address data and are dropped rather than disqualified.
func IsEmptyAddress(a Address) bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// PersonName collapses whitespace, optionally transliterates and title-cases.
func (c *Cleaner) PersonName(s string) string {
	s = Text(s)
	if s == "" {
		return ""
	}
	return TitleCase(c.ascii(s))
}

func (c *Cleaner) ascii(s string) string {
	if !c.opts.Transliterate || isASCII(s) {
		return s
	}
	return Text(unidecode.Unidecode(s))
}

// State resolves s to a two-letter code when it can. Unrecognised values are
// returned upper-cased so qualification can report them.
func (c *Cleaner) State(s string) string {
	s = strings.ToUpper(Text(s))
	if s == "" {
		return ""
	}
	if stripped := strings.ReplaceAll(s, ".", ""); len(stripped) == 2 && isLetters(stripped) {
		s = stripped
	}
	if IsStateCode(s) {
		return s
	}
	if code, ok := StateCodeForName(s); ok {
		return code
	}
	if c.opts.CorrectStates && countLetters(s) >= 5 {
		if code, ok := CorrectStateName(s); ok {
			return code
		}
	}
	return s
}

// Zip removes everything but digits and hyphens and formats five-digit,
// nine-digit and ZIP+4 shapes. Other shapes are returned stripped but
// otherwise unchanged.
func Zip(s string) string {
	s = nonZipChar.ReplaceAllString(s, "")
	switch {
	case zipFive.MatchString(s), zipPlus4.MatchString(s):
		return s
	case zipNine.MatchString(s):
		return s[:5] + "-" + s[5:]
	}
	return s
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
