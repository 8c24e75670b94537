package schema

import "strings"

// Canonical field names.
const (
	FirstName    = "first_name"
	LastName     = "last_name"
	MiddleName   = "middle_name"
	Title        = "title"
	Suffix       = "suffix"
	Street       = "street_address"
	AddressLine2 = "address_line_2"
	City         = "city"
	State        = "state"
	Zip          = "zip_code"
)

// FieldSynonyms is the prioritised list of header spellings recognised for
// one canonical field. The first synonym has the highest priority.
type FieldSynonyms struct {
	Field    string   `yaml:"field"`
	Synonyms []string `yaml:"synonyms"`
}

// AddressSynonyms returns the address-mode table, in resolution order.
func AddressSynonyms() []FieldSynonyms {
	return []FieldSynonyms{
		{FirstName, []string{"first_name", "first", "fname", "given_name", "forename", "firstname", "first_nm"}},
		{LastName, []string{"last_name", "last", "lname", "surname", "family_name", "lastname", "last_nm"}},
		{Street, []string{
			"street_address", "street", "address", "addr", "address1", "street1", "street_addr",
			"street_line_1", "address_line_1", "addr1", "street_line1", "house_number", "street_name",
			"mailing_address",
		}},
		{AddressLine2, []string{
			"address2", "addr2", "street2", "address_line_2", "street_line_2",
			"address_2", "address_line2", "address_2_line", "street_address_2", "street_address2",
			"apt", "apartment", "unit", "suite", "ste", "floor", "fl",
		}},
		{City, []string{"city", "town", "municipality", "locality", "city_name"}},
		{State, []string{"state", "st", "state_code", "province", "region", "state_abbr"}},
		{Zip, []string{
			"zip_code", "zip", "zipcode", "postal_code", "postcode", "zip5", "zip_5",
			"postal", "mail_code", "zip4", "zip_4",
		}},
	}
}

// NameSynonyms returns the name-mode table, in resolution order.
func NameSynonyms() []FieldSynonyms {
	return []FieldSynonyms{
		{FirstName, []string{
			"first_name", "first", "fname", "given_name", "forename", "firstname", "first_nm",
			"f_name", "givenname", "christian_name", "personal_name",
		}},
		{LastName, []string{
			"last_name", "last", "lname", "surname", "family_name", "lastname", "last_nm",
			"l_name", "familyname", "sur_name",
		}},
		{MiddleName, []string{"middle_name", "middle", "mname", "middle_initial", "mi", "middle_nm"}},
		{Title, []string{"title", "prefix", "honorific", "salutation", "mr_mrs", "courtesy_title"}},
		{Suffix, []string{"suffix", "name_suffix", "generation", "jr_sr", "degree"}},
	}
}

// WithExtra appends extra synonyms (lower priority than the built-ins) to
// the named fields. Unknown fields are ignored. The input is not modified.
func WithExtra(base []FieldSynonyms, extra map[string][]string) []FieldSynonyms {
	out := make([]FieldSynonyms, len(base))
	for i, fs := range base {
		syns := append([]string(nil), fs.Synonyms...)
		seen := make(map[string]bool, len(syns))
		for _, s := range syns {
			seen[s] = true
		}
		for _, s := range extra[fs.Field] {
			s = underscoreKey(foldHeader(s))
			if s != "" && !seen[s] {
				seen[s] = true
				syns = append(syns, s)
			}
		}
		out[i] = FieldSynonyms{Field: fs.Field, Synonyms: syns}
	}
	return out
}

// Fields returns the canonical field names of a synonym table in order.
func Fields(table []FieldSynonyms) []string {
	out := make([]string, len(table))
	for i, fs := range table {
		out[i] = fs.Field
	}
	return out
}

var (
	addressKeywords = []string{"address", "addr", "full", "complete", "mailing", "location"}
	nameKeywords    = []string{"name", "full_nm", "nm", "person", "contact", "customer"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
