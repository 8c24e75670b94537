//go:build libpostal

package parse

import (
	"errors"
	"strings"

	postal "github.com/openvenues/gopostal/parser"

	"github.com/recordprep/internal/normalize"
)

// LibpostalAvailable reports whether this binary was built with libpostal.
const LibpostalAvailable = true

type libpostalParser struct{}

// NewLibpostal returns an ExternalAddressParser backed by libpostal.
func NewLibpostal() (ExternalAddressParser, error) {
	return libpostalParser{}, nil
}

// ParseAddress maps libpostal's labelled components onto address parts.
func (libpostalParser) ParseAddress(text string) (AddressParts, error) {
	var house, road, unit, poBox string
	var parts AddressParts
	for _, comp := range postal.ParseAddress(text) {
		switch comp.Label {
		case "house_number":
			house = comp.Value
		case "road":
			road = comp.Value
		case "unit", "level":
			unit = strings.TrimSpace(unit + " " + comp.Value)
		case "po_box":
			poBox = comp.Value
		case "city":
			parts.City = normalize.TitleCase(comp.Value)
		case "suburb":
			if parts.City == "" {
				parts.City = normalize.TitleCase(comp.Value)
			}
		case "state":
			parts.State = comp.Value
		case "postcode":
			parts.Zip = comp.Value
		}
	}

	street := normalize.Text(house + " " + road + " " + unit)
	if street == "" {
		street = poBox
	}
	if street == "" {
		return AddressParts{}, errors.New("libpostal found no street")
	}
	// libpostal lower-cases its output
	parts.Street = normalize.TitleCase(street)
	if code, ok := normalize.ResolveState(parts.State); ok {
		parts.State = code
	}
	return parts, nil
}
