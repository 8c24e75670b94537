package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	c := NewCleaner(DefaultOptions())

	tests := []struct {
		input string
		want  string
	}{
		{"CA", "CA"},
		{" ca ", "CA"},
		{"California", "CA"},
		{"new  york", "NY"},
		{"N.Y.", "NY"},
		{"D.C.", "DC"},
		{"Washington D.C.", "DC"},
		{"district of columbia", "DC"},
		{"Califronia", "CA"},
		{"Pensylvania", "PA"},
		{"ZZ", "ZZ"},
		{"Ontario", "ONTARIO"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.State(tt.input))
		})
	}
}

func TestStateWithoutCorrection(t *testing.T) {
	c := NewCleaner(Options{CorrectStates: false})
	assert.Equal(t, "CALIFRONIA", c.State("Califronia"))
	assert.Equal(t, "CA", c.State("california"))
}

func TestZip(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"12345", "12345"},
		{"123456789", "12345-6789"},
		{"12345-6789", "12345-6789"},
		{" 12345 ", "12345"},
		{"ZIP: 90210", "90210"},
		{"1234", "1234"},
		{"12345-67", "12345-67"},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Zip(tt.input))
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"john", "John"},
		{"SMITH", "Smith"},
		{"o'brien", "O'Brien"},
		{"mary-jane", "Mary-Jane"},
		{"van der berg", "Van Der Berg"},
		{"mcdonald", "Mcdonald"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleCase(tt.input))
		})
	}
}

func TestCleanName(t *testing.T) {
	c := NewCleaner(DefaultOptions())

	got := c.CleanName(Name{
		First:  "  josé ",
		Last:   "GARCÍA-LÓPEZ",
		Middle: "maría",
		Title:  "doctor",
		Suffix: "phd",
	})

	assert.Equal(t, Name{
		First:  "Jose",
		Last:   "Garcia-Lopez",
		Middle: "Maria",
		Title:  "Dr",
		Suffix: "PhD",
	}, got)
}

func TestCleanNameKeepsAccentsWhenTransliterationOff(t *testing.T) {
	c := NewCleaner(Options{})
	got := c.CleanName(Name{First: "josé"})
	assert.Equal(t, "José", got.First)
}

func TestCanonicalTitleAndSuffix(t *testing.T) {
	assert.Equal(t, "Mr", CanonicalTitle("mister"))
	assert.Equal(t, "Mrs", CanonicalTitle("MRS."))
	assert.Equal(t, "Sheikh", CanonicalTitle("sheikh"))

	assert.Equal(t, "Jr", CanonicalSuffix("junior"))
	assert.Equal(t, "III", CanonicalSuffix("iii"))
	assert.Equal(t, "Esq", CanonicalSuffix("Esquire"))
	assert.Equal(t, "PhD", CanonicalSuffix("Ph.D."))

	assert.True(t, IsTitle("Dr."))
	assert.False(t, IsTitle("John"))
	assert.True(t, IsSuffix("Jr."))
	assert.False(t, IsSuffix("Smith"))
}

func TestCleanAddress(t *testing.T) {
	c := NewCleaner(DefaultOptions())

	got := c.CleanAddress(Address{
		FirstName: " JOHN ",
		LastName:  "smith",
		Street:    "  123   Main St ",
		City:      "Springfield ",
		State:     "illinois",
		Zip:       "627019999",
	})

	assert.Equal(t, Address{
		FirstName: "John",
		LastName:  "Smith",
		Street:    "123 Main St",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62701-9999",
	}, got)
}

func TestCleanIsIdempotent(t *testing.T) {
	c := NewCleaner(DefaultOptions())

	addresses := []Address{
		{FirstName: "o'neil", Street: " 1 Elm  St", City: "new york", State: "new york", Zip: "100019999"},
		{Street: "PO Box 12", City: "Reno", State: "Nevadda", Zip: "8950"},
		{Street: "9 Oak", State: "ZZ", Zip: "abc-12"},
	}
	for _, a := range addresses {
		once := c.CleanAddress(a)
		assert.Equal(t, once, c.CleanAddress(once))
	}

	names := []Name{
		{First: "ÉMILE", Last: "zola", Title: "monsieur", Suffix: "third"},
		{First: "anne-marie", Last: "d'arcy", Title: "Dr."},
	}
	for _, n := range names {
		once := c.CleanName(n)
		assert.Equal(t, once, c.CleanName(once))
	}
}

func TestIsEmptyAddress(t *testing.T) {
	c := NewCleaner(DefaultOptions())
	assert.True(t, IsEmptyAddress(c.CleanAddress(Address{FirstName: "Ann", Street: "  ", Zip: " "})))
	assert.False(t, IsEmptyAddress(c.CleanAddress(Address{City: "Austin"})))
}

func TestResolveState(t *testing.T) {
	code, ok := ResolveState("tx")
	assert.True(t, ok)
	assert.Equal(t, "TX", code)

	code, ok = ResolveState("North Carolina")
	assert.True(t, ok)
	assert.Equal(t, "NC", code)

	_, ok = ResolveState("Main")
	assert.False(t, ok)

	assert.Len(t, StateCodes(), 51)
}
