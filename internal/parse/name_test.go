package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordprep/internal/observe"
)

func TestParseName(t *testing.T) {
	p := NewNameParser(nil, nil)

	tests := []struct {
		input string
		want  NameParts
	}{
		{"Cher", NameParts{First: "Cher"}},
		{"John Smith", NameParts{First: "John", Last: "Smith"}},
		{"Smith, John", NameParts{First: "John", Last: "Smith"}},
		{"John Michael Smith", NameParts{First: "John", Middle: "Michael", Last: "Smith"}},
		{"Smith, John Michael", NameParts{First: "John", Middle: "Michael", Last: "Smith"}},
		{"Dr. Jane Doe", NameParts{Title: "Dr", First: "Jane", Last: "Doe"}},
		{"Mr John Smith Jr.", NameParts{Title: "Mr", First: "John", Last: "Smith", Suffix: "Jr"}},
		{"John Smith, Jr.", NameParts{First: "John", Last: "Smith", Suffix: "Jr"}},
		{"Smith Jr., John", NameParts{First: "John", Last: "Smith", Suffix: "Jr"}},
		{"Smith, Dr. John", NameParts{Title: "Dr", First: "John", Last: "Smith"}},
		{"Dr. Smith, John", NameParts{Title: "Dr", First: "John", Last: "Smith"}},
		{"Mr Smith, John Michael", NameParts{Title: "Mr", First: "John", Middle: "Michael", Last: "Smith"}},
		{"José García", NameParts{First: "José", Last: "García"}},
		{"Núñez, María", NameParts{First: "María", Last: "Núñez"}},
		{"John Michael Paul Smith", NameParts{First: "John", Middle: "Michael Paul", Last: "Smith"}},
		{"Maria de la Cruz", NameParts{First: "Maria", Last: "de la Cruz"}},
		{"John Paul van Dyke", NameParts{First: "John", Middle: "Paul", Last: "van Dyke"}},
		{"Anna Maria Louisa Berg", NameParts{First: "Anna", Middle: "Maria Louisa", Last: "Berg"}},
		{"De La Cruz, Maria Elena", NameParts{First: "Maria", Middle: "Elena", Last: "De La Cruz"}},
		{"Mary-Jane O'Neil", NameParts{First: "Mary-Jane", Last: "O'Neil"}},
		{"John (Johnny) Smith", NameParts{First: "John", Middle: "Johnny", Last: "Smith"}},
		{"Jr", NameParts{First: "Jr"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input, Where{})
			assert.Equal(t, tt.want, got.NameParts)
			assert.Equal(t, StrategyRules, got.Strategy)
		})
	}
}

func TestParseNameFallback(t *testing.T) {
	p := NewNameParser(nil, nil)

	tests := []struct {
		input string
		want  NameParts
	}{
		{"John2 Smith", NameParts{First: "John2", Last: "Smith"}},
		{"R2 D2 C3", NameParts{First: "R2", Middle: "D2", Last: "C3"}},
		{"", NameParts{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input, Where{})
			assert.Equal(t, tt.want, got.NameParts)
			assert.True(t, got.Fallback())
		})
	}
}

func TestParseNameTooLong(t *testing.T) {
	p := NewNameParser(nil, nil)
	long := strings.Repeat("a", 51)
	got := p.Parse(long+" Smith", Where{})
	assert.True(t, got.Fallback())
	assert.Equal(t, long, got.First)
}

type fakeNames struct {
	parts NameParts
	err   error
}

func (f fakeNames) ParseName(string) (NameParts, error) { return f.parts, f.err }

func TestParseNameExternal(t *testing.T) {
	rec := &observe.Recorder{}
	p := NewNameParser(fakeNames{parts: NameParts{First: "Ada", Last: "Lovelace"}}, rec)

	got := p.Parse("whatever", Where{Table: "n.csv", Row: 1})
	assert.Equal(t, StrategyExternal, got.Strategy)
	assert.Equal(t, "Ada", got.First)

	events := rec.OfKind(observe.StrategyAttempted)
	require.Len(t, events, 1)
	assert.Equal(t, "name", events[0].Parser)
	assert.True(t, events[0].Valid)

	p = NewNameParser(fakeNames{err: errors.New("unavailable")}, nil)
	got = p.Parse("Ada Lovelace", Where{})
	assert.Equal(t, StrategyRules, got.Strategy)
	assert.Equal(t, "Lovelace", got.Last)
}

func TestNamePartsValid(t *testing.T) {
	assert.True(t, NameParts{First: "Ann"}.Valid())
	assert.True(t, NameParts{First: "Ann", Last: "O'Hara-Lee"}.Valid())
	assert.True(t, NameParts{First: "José", Last: "García"}.Valid())
	assert.False(t, NameParts{Last: "Lee"}.Valid())
	assert.False(t, NameParts{First: "Ann", Last: "L33"}.Valid())
}
