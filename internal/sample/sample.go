// Package sample generates synthetic input tables in the column layouts
// seen in real upstream exports, for demos and end-to-end tests.
package sample

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/table"
)

// Format names a column layout.
type Format string

const (
	Standard           Format = "standard"
	AlternativeColumns Format = "alternative_columns"
	SplitAddress       Format = "split_address"
	CombinedAddress    Format = "combined_address"
	Messy              Format = "messy"
	Business           Format = "business"
	FullName           Format = "full_name"
)

type generator func(g *gen, rows int) table.Table

var generators = map[Format]generator{
	Standard:           (*gen).standard,
	AlternativeColumns: (*gen).alternative,
	SplitAddress:       (*gen).split,
	CombinedAddress:    (*gen).combined,
	Messy:              (*gen).messy,
	Business:           (*gen).business,
	FullName:           (*gen).fullName,
}

// Formats lists every supported format in name order.
func Formats() []Format {
	out := make([]Format, 0, len(generators))
	for f := range generators {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Generate builds a table of rows records in format. The same seed always
// yields the same table; seed 0 draws a random seed.
func Generate(format Format, rows int, seed int64) (table.Table, error) {
	fn, ok := generators[format]
	if !ok {
		return table.Table{}, fmt.Errorf("unknown sample format %q", format)
	}
	if rows < 0 {
		return table.Table{}, fmt.Errorf("row count must not be negative, got %d", rows)
	}
	t := fn(&gen{f: gofakeit.New(seed), states: normalize.StateCodes()}, rows)
	t.Label = string(format) + ".csv"
	return t, nil
}

var (
	streetTypes = []string{"Street", "Avenue", "Road", "Drive", "Lane", "Way", "Court", "Boulevard", "Place"}
	units       = []string{"Apt 1A", "Unit 205", "Suite 300", "#4B", "Floor 2", "Apt B"}
)

type gen struct {
	f      *gofakeit.Faker
	states []string
}

type place struct {
	number, name, street, city, state, zip, plus4 string
}

func (g *gen) chance(p float64) bool { return g.f.Float64() < p }

func (g *gen) place() place {
	p := place{
		number: fmt.Sprint(g.f.Number(1, 9999)),
		name:   g.f.LastName() + " " + g.f.RandomString(streetTypes),
		// Some generated cities carry a slash ("Louisville/Jefferson").
		city:  strings.ReplaceAll(g.f.City(), "/", "-"),
		state: g.f.RandomString(g.states),
		zip:   g.f.Numerify("#####"),
	}
	if p.zip == "00000" {
		p.zip = "10001"
	}
	p.street = p.number + " " + p.name
	if g.chance(0.4) {
		p.plus4 = fmt.Sprint(g.f.Number(1000, 9999))
	}
	return p
}

func (p place) fullZip() string {
	if p.plus4 == "" {
		return p.zip
	}
	return p.zip + "-" + p.plus4
}

func (g *gen) withUnit(street string) string {
	if g.chance(0.3) {
		return street + " " + g.f.RandomString(units)
	}
	return street
}

func (g *gen) standard(rows int) table.Table {
	t := table.Table{Columns: []string{"first_name", "last_name", "street_address", "city", "state", "zip_code"}}
	for i := 0; i < rows; i++ {
		p := g.place()
		t.Rows = append(t.Rows, []string{g.f.FirstName(), g.f.LastName(), g.withUnit(p.street), p.city, p.state, p.fullZip()})
	}
	return t
}

func (g *gen) alternative(rows int) table.Table {
	t := table.Table{Columns: []string{"fname", "lname", "addr", "town", "st", "postal"}}
	for i := 0; i < rows; i++ {
		p := g.place()
		t.Rows = append(t.Rows, []string{g.f.FirstName(), g.f.LastName(), g.withUnit(p.street), p.city, p.state, p.fullZip()})
	}
	return t
}

func (g *gen) split(rows int) table.Table {
	t := table.Table{Columns: []string{
		"given_name", "family_name", "house_number", "street_name", "apartment",
		"city_name", "state_code", "zip5", "zip4",
	}}
	for i := 0; i < rows; i++ {
		p := g.place()
		apt := ""
		if g.chance(0.3) {
			apt = g.f.RandomString(units)
		}
		t.Rows = append(t.Rows, []string{g.f.FirstName(), g.f.LastName(), p.number, p.name, apt, p.city, p.state, p.zip, p.plus4})
	}
	return t
}

func (g *gen) combined(rows int) table.Table {
	t := table.Table{Columns: []string{"first", "last", "full_address", "customer_id"}}
	for i := 0; i < rows; i++ {
		p := g.place()
		street := g.withUnit(p.street)
		var full string
		switch g.f.Number(0, 2) {
		case 0:
			full = fmt.Sprintf("%s, %s, %s %s", street, p.city, p.state, p.fullZip())
		case 1:
			full = fmt.Sprintf("%s %s, %s %s", street, p.city, p.state, p.fullZip())
		default:
			full = fmt.Sprintf("%s, %s %s %s", street, p.city, p.state, p.fullZip())
		}
		t.Rows = append(t.Rows, []string{g.f.FirstName(), g.f.LastName(), full, fmt.Sprintf("CUST%d", 1000+i)})
	}
	return t
}

func (g *gen) messy(rows int) table.Table {
	t := table.Table{Columns: []string{"FirstName", "LastName", "StreetAddr", "City", "State", "PostalCode", "Notes"}}
	for i := 0; i < rows; i++ {
		p := g.place()
		first, last, street, city, state, zip := g.f.FirstName(), g.f.LastName(), p.street, p.city, p.state, p.zip
		if g.chance(0.2) {
			first = strings.ToUpper(first)
		}
		if g.chance(0.2) {
			last = strings.ToLower(last)
		}
		if g.chance(0.2) {
			city = strings.ToUpper(city)
		}
		switch {
		case g.chance(0.2):
			state = strings.ToLower(state)
		case g.chance(0.1):
			state = strings.ToLower(stateName(state))
		}
		if g.chance(0.3) {
			street = "  " + street + "  "
			city = "  " + city + "  "
		}
		street = g.withUnit(street)
		switch {
		case g.chance(0.3):
			zip = p.zip + p.plus4
		case g.chance(0.1):
			zip = zip[:3] + " " + zip[3:]
		}
		t.Rows = append(t.Rows, []string{first, last, street, city, state, zip, fmt.Sprintf("Record %d", i+1)})
	}
	return t
}

func (g *gen) business(rows int) table.Table {
	t := table.Table{Columns: []string{
		"contact_first", "contact_last", "company_name", "mailing_address",
		"municipality", "province", "postal", "business_type",
	}}
	for i := 0; i < rows; i++ {
		p := g.place()
		first, last, company := g.f.FirstName(), g.f.LastName(), g.f.Company()
		if g.chance(0.3) {
			first, last, company = "", company, ""
		}
		street := p.number + " " + g.f.RandomString([]string{"Business Park Dr", "Corporate Center", "Industrial Blvd", "Executive Plaza", "Commerce Way"})
		if g.chance(0.6) {
			street += fmt.Sprintf(" Suite %d", g.f.Number(100, 999))
		}
		t.Rows = append(t.Rows, []string{
			first, last, company, street, p.city, p.state, p.fullZip(),
			g.f.RandomString([]string{"Office", "Retail", "Warehouse", "Medical"}),
		})
	}
	return t
}

func (g *gen) fullName(rows int) table.Table {
	t := table.Table{Columns: []string{"full_name", "customer_id"}}
	for i := 0; i < rows; i++ {
		first, last := g.f.FirstName(), g.f.LastName()
		var name string
		switch g.f.Number(0, 4) {
		case 0:
			name = first + " " + last
		case 1:
			name = last + ", " + first
		case 2:
			name = first + " " + g.f.MiddleName() + " " + last
		case 3:
			name = g.f.NamePrefix() + " " + first + " " + last
		default:
			name = first + " " + last + " " + g.f.NameSuffix()
		}
		t.Rows = append(t.Rows, []string{name, fmt.Sprintf("CUST%d", 1000+i)})
	}
	return t
}

func stateName(code string) string {
	if name, ok := normalize.StateName(code); ok {
		return name
	}
	return code
}
