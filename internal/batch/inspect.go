package batch

import (
	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/observe"
	"github.com/recordprep/internal/parse"
	"github.com/recordprep/internal/validation"
)

// AddressInspection shows every stage applied to one address string.
type AddressInspection struct {
	Input         string              `json:"input"`
	Parsed        parse.AddressResult `json:"parsed"`
	Cleaned       normalize.Address   `json:"cleaned"`
	Qualification validation.Result   `json:"qualification"`
}

// NameInspection shows every stage applied to one full-name string.
type NameInspection struct {
	Input   string                 `json:"input"`
	Parsed  parse.NameResult       `json:"parsed"`
	Cleaned normalize.Name         `json:"cleaned"`
	Quality validation.NameQuality `json:"quality"`
}

// InspectAddress parses, cleans and qualifies one free-text address, the
// same way a combined address cell is handled in a table. Events carry
// the given table label and row 1.
func (s *Standardizer) InspectAddress(text, label string) AddressInspection {
	at := observe.Where{Table: label, Row: 1}
	parsed := s.addrParser.Parse(text, at)
	cleaned := s.cleaner.CleanAddress(normalize.Address{
		Street: parsed.Street,
		City:   parsed.City,
		State:  parsed.State,
		Zip:    parsed.Zip,
	})
	return AddressInspection{
		Input:         text,
		Parsed:        parsed,
		Cleaned:       cleaned,
		Qualification: s.qualifier.QualifyAddress(cleaned, at),
	}
}

// InspectName parses, cleans and scores one full name.
func (s *Standardizer) InspectName(text, label string) NameInspection {
	at := observe.Where{Table: label, Row: 1}
	parsed := s.nameParser.Parse(text, at)
	cleaned := s.cleaner.CleanName(normalize.Name{
		First:  parsed.First,
		Last:   parsed.Last,
		Middle: parsed.Middle,
		Title:  parsed.Title,
		Suffix: parsed.Suffix,
	})
	return NameInspection{
		Input:   text,
		Parsed:  parsed,
		Cleaned: cleaned,
		Quality: s.qualifier.QualifyName(cleaned, at),
	}
}
