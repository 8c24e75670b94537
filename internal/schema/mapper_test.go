package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordprep/internal/observe"
)

func TestMapExact(t *testing.T) {
	m := NewMapper(AddressSynonyms(), Options{}, nil)

	got := m.Map("t.csv", []string{"First Name", "SURNAME", "Street-Address", "Apt", "Town", "St", "Postal.Code"})

	assert.Equal(t, map[string]string{
		FirstName:    "First Name",
		LastName:     "SURNAME",
		Street:       "Street-Address",
		AddressLine2: "Apt",
		City:         "Town",
		State:        "St",
		Zip:          "Postal.Code",
	}, got.Fields)
	assert.Empty(t, got.Conflicts)
	assert.Empty(t, got.Notes())
	for _, d := range got.Decisions {
		assert.Equal(t, MethodExact, d.Method, d.Field)
	}
}

func TestMapSecondAddressLine(t *testing.T) {
	m := NewMapper(AddressSynonyms(), Options{}, nil)
	for _, header := range []string{"Street Address 2", "street_address2", "Address 2", "address_2_line", "Address Line2"} {
		t.Run(header, func(t *testing.T) {
			got := m.Map("t.csv", []string{"Street Address", header, "City"})
			assert.Equal(t, "Street Address", got.Fields[Street])
			assert.Equal(t, header, got.Fields[AddressLine2])
		})
	}
}

func TestMapFoldsDiacritics(t *testing.T) {
	m := NewMapper(AddressSynonyms(), Options{}, nil)
	got := m.Map("t", []string{"Cíty", " Zíp "})
	assert.Equal(t, "Cíty", got.Fields[City])
	assert.Equal(t, " Zíp ", got.Fields[Zip])
}

func TestMapFuzzy(t *testing.T) {
	rec := &observe.Recorder{}
	m := NewMapper(AddressSynonyms(), Options{}, rec)

	got := m.Map("t", []string{"firs_name", "last_nme", "streetaddress", "cty"})

	assert.Equal(t, "firs_name", got.Fields[FirstName])
	assert.Equal(t, "last_nme", got.Fields[LastName])
	assert.Equal(t, "streetaddress", got.Fields[Street])
	assert.False(t, got.Has(City), "cty is 75 against city, not above the threshold")

	var first Decision
	for _, d := range got.Decisions {
		if d.Field == FirstName {
			first = d
		}
	}
	assert.Equal(t, MethodFuzzy, first.Method)
	assert.Equal(t, 90.0, first.Score)

	events := rec.OfKind(observe.MappingDecided)
	require.Len(t, events, len(AddressSynonyms()), "one event per canonical field")
	assert.Equal(t, FirstName, events[0].Field)
	assert.Equal(t, "fuzzy", events[0].Method)
}

func TestMapThresholdIsStrict(t *testing.T) {
	m := NewMapper(NameSynonyms(), Options{}, nil)
	// "name" is one edit from fname, lname and mname: exactly 80, which must not bind.
	got := m.Map("t", []string{"name"})
	assert.Empty(t, got.Fields)
}

func TestMapColumnBoundOnce(t *testing.T) {
	m := NewMapper(AddressSynonyms(), Options{}, nil)
	got := m.Map("t", []string{"address"})
	assert.Equal(t, map[string]string{Street: "address"}, got.Fields)
}

func TestMapConflictFirstSynonymWins(t *testing.T) {
	rec := &observe.Recorder{}
	m := NewMapper(AddressSynonyms(), Options{}, rec)

	got := m.Map("t", []string{"given_name", "first_name", "fname"})

	assert.Equal(t, "first_name", got.Fields[FirstName])
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, Conflict{Field: FirstName, Chosen: "first_name", Ignored: []string{"fname", "given_name"}}, got.Conflicts[0])
	assert.Len(t, rec.OfKind(observe.MappingConflict), 2)
}

func TestMapNotes(t *testing.T) {
	m := NewMapper(AddressSynonyms(), Options{}, nil)
	got := m.Map("t", []string{"street", "city"})
	assert.Equal(t, []string{
		"Missing first_name column",
		"Missing last_name column",
		"Missing state column",
		"Missing zip_code column",
	}, got.Notes())
}

func TestMapIsDeterministic(t *testing.T) {
	cols := []string{"Addr", "addr1", "Zip", "zip5", "City", "town", "fname", "FirstName", "st", "state"}
	m := NewMapper(AddressSynonyms(), Options{}, nil)
	want := m.Map("t", cols)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, m.Map("t", cols))
	}
}

func TestMapJaroWinkler(t *testing.T) {
	scorer, err := ScorerByName("jaro-winkler")
	require.NoError(t, err)
	m := NewMapper(AddressSynonyms(), Options{Scorer: scorer}, nil)

	got := m.Map("t", []string{"zipcod"})
	assert.Equal(t, "zipcod", got.Fields[Zip])

	_, err = ScorerByName("cosine")
	assert.Error(t, err)
}

func TestWithExtra(t *testing.T) {
	base := AddressSynonyms()
	extended := WithExtra(base, map[string][]string{City: {"Ciudad", "city"}, "unknown": {"x"}})

	m := NewMapper(extended, Options{}, nil)
	got := m.Map("t", []string{"ciudad"})
	assert.Equal(t, "ciudad", got.Fields[City])

	assert.NotContains(t, base[4].Synonyms, "ciudad", "base table is not modified")
	assert.Equal(t, Fields(base), Fields(extended))
}

func TestLevenshteinScore(t *testing.T) {
	assert.Equal(t, 100.0, LevenshteinScore("city", "city"))
	assert.Equal(t, 75.0, LevenshteinScore("cty", "city"))
	assert.Equal(t, 100.0, LevenshteinScore("", ""))
	assert.Equal(t, 0.0, LevenshteinScore("abc", "xyz"))
}

func TestUnderscoreKey(t *testing.T) {
	assert.Equal(t, "first_name", underscoreKey(foldHeader(" First Name ")))
	assert.Equal(t, "zip_code", underscoreKey(foldHeader("ZIP-Code")))
	assert.Equal(t, "mr_mrs", underscoreKey(foldHeader("Mr/Mrs")))
	assert.Equal(t, "address_line_1", underscoreKey(foldHeader("Address. Line 1")))
}
