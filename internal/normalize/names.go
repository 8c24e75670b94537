package normalize

import (
	"strings"
	"unicode"
)

// titles maps recognised honorifics (lowercase, no period) to their
// canonical abbreviation.
var titles = map[string]string{
	"mr": "Mr", "mister": "Mr",
	"mrs": "Mrs", "ms": "Ms", "miss": "Miss",
	"dr": "Dr", "doctor": "Dr",
	"prof": "Prof", "professor": "Prof",
	"rev": "Rev", "reverend": "Rev",
	"fr": "Fr", "father": "Fr",
	"sr": "Sr", "sister": "Sr",
	"br": "Br", "brother": "Br",
	"capt": "Capt", "captain": "Capt",
	"col": "Col", "colonel": "Col",
	"gen": "Gen", "general": "Gen",
	"lt": "Lt", "lieutenant": "Lt",
	"maj": "Maj", "major": "Maj",
	"hon": "Hon", "honorable": "Hon",
	"judge": "Judge", "senator": "Sen",
	"rep": "Rep", "representative": "Rep",
}

// suffixes maps generational and professional suffixes to canonical form.
var suffixes = map[string]string{
	"jr": "Jr", "junior": "Jr",
	"sr": "Sr", "senior": "Sr",
	"ii": "II", "second": "II",
	"iii": "III", "third": "III",
	"iv": "IV", "fourth": "IV",
	"i": "I", "v": "V", "vi": "VI", "vii": "VII", "viii": "VIII", "ix": "IX",
	"phd": "PhD", "md": "MD", "dds": "DDS", "dvm": "DVM", "jd": "JD",
	"esq": "Esq", "esquire": "Esq",
	"cpa": "CPA", "cfa": "CFA", "rn": "RN", "lpn": "LPN", "mba": "MBA",
}

func lookupKey(token string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(token), ".", ""))
}

// IsTitle reports whether token is a known honorific. A trailing period is
// ignored ("Dr." and "dr" both match).
func IsTitle(token string) bool {
	_, ok := titles[lookupKey(token)]
	return ok
}

// IsSuffix reports whether token is a known name suffix.
func IsSuffix(token string) bool {
	_, ok := suffixes[lookupKey(token)]
	return ok
}

// CanonicalTitle returns the canonical abbreviation for a known honorific,
// or the title-cased input.
func CanonicalTitle(s string) string {
	if v, ok := titles[lookupKey(s)]; ok {
		return v
	}
	return TitleCase(s)
}

// CanonicalSuffix returns the canonical form of a known suffix, or the
// title-cased input.
func CanonicalSuffix(s string) string {
	if v, ok := suffixes[lookupKey(s)]; ok {
		return v
	}
	return TitleCase(s)
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so letters after apostrophes and hyphens start a new
// word: "o'brien" becomes "O'Brien", "MARY-JANE" becomes "Mary-Jane".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && prevLetter:
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
