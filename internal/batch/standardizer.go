// Package batch runs whole tables through mapping, detection, parsing,
// cleaning and qualification and aggregates the outcome of a run.
package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/observe"
	"github.com/recordprep/internal/parse"
	"github.com/recordprep/internal/schema"
	"github.com/recordprep/internal/table"
	"github.com/recordprep/internal/validation"
)

// Options configures a Standardizer.
type Options struct {
	// Workers is the number of tables processed at once. Values below 1 mean
	// sequential processing.
	Workers int

	Threshold  float64
	Scorer     schema.Scorer
	SampleSize int

	ExtraAddressSynonyms map[string][]string
	ExtraNameSynonyms    map[string][]string

	Cleaning normalize.Options
	Rules    validation.Rules

	ExternalAddress parse.ExternalAddressParser
	ExternalName    parse.ExternalNameParser
}

// DefaultOptions returns sequential processing with the default mapper,
// cleaner and rules.
func DefaultOptions() Options {
	return Options{
		Workers:    1,
		Threshold:  schema.DefaultThreshold,
		Scorer:     schema.LevenshteinScore,
		SampleSize: schema.DefaultSampleSize,
		Cleaning:   normalize.DefaultOptions(),
	}
}

// Standardizer is safe for concurrent use; it holds no per-run state.
type Standardizer struct {
	workers    int
	addrMapper *schema.Mapper
	nameMapper *schema.Mapper
	detector   *schema.Detector
	addrParser *parse.AddressParser
	nameParser *parse.NameParser
	cleaner    *normalize.Cleaner
	qualifier  *validation.Qualifier
	obs        observe.Observer
	newRunID   func() string
	clock      func() time.Time
}

// New creates a Standardizer.
func New(opts Options, obs observe.Observer) *Standardizer {
	obs = observe.OrNop(obs)
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	mapOpts := schema.Options{Threshold: opts.Threshold, Scorer: opts.Scorer}
	return &Standardizer{
		workers:    opts.Workers,
		addrMapper: schema.NewMapper(schema.WithExtra(schema.AddressSynonyms(), opts.ExtraAddressSynonyms), mapOpts, obs),
		nameMapper: schema.NewMapper(schema.WithExtra(schema.NameSynonyms(), opts.ExtraNameSynonyms), mapOpts, obs),
		detector:   schema.NewDetector(opts.SampleSize, obs),
		addrParser: parse.NewAddressParser(opts.ExternalAddress, obs),
		nameParser: parse.NewNameParser(opts.ExternalName, obs),
		cleaner:    normalize.NewCleaner(opts.Cleaning),
		qualifier:  validation.NewQualifier(opts.Rules, obs),
		obs:        obs,
		newRunID:   newRunID,
		clock:      time.Now,
	}
}

// AddressParser returns the parser used for combined address columns.
func (s *Standardizer) AddressParser() *parse.AddressParser { return s.addrParser }

// NameParser returns the parser used for combined name columns.
func (s *Standardizer) NameParser() *parse.NameParser { return s.nameParser }

// Cleaner returns the cleaner applied to every record.
func (s *Standardizer) Cleaner() *normalize.Cleaner { return s.cleaner }

// Qualifier returns the qualifier applied to every record.
func (s *Standardizer) Qualifier() *validation.Qualifier { return s.qualifier }

type addressOutcome struct {
	rows []AddressRow
	file FileSummary
}

type nameOutcome struct {
	rows []NameRow
	file FileSummary
}

// StandardizeAddresses standardises every table into canonical address
// records. A table that cannot be processed is reported in Failures and does
// not affect the others.
func (s *Standardizer) StandardizeAddresses(ctx context.Context, tables []table.Table) AddressResult {
	started := s.clock()
	outcomes := make([]addressOutcome, len(tables))
	failures := s.forEachTable(ctx, tables, func(i int, t table.Table) (int, error) {
		out, err := s.addressTable(t)
		if err != nil {
			return 0, err
		}
		outcomes[i] = out
		return len(out.rows), nil
	})

	var res AddressResult
	files := make([]FileSummary, len(tables))
	for i, f := range failures {
		if f != nil {
			res.Failures = append(res.Failures, f)
			files[i] = failedFile(f)
			continue
		}
		files[i] = outcomes[i].file
		for _, row := range outcomes[i].rows {
			res.Rows = append(res.Rows, row)
			if row.Qualified {
				res.Qualified = append(res.Qualified, row)
			} else {
				res.Disqualified = append(res.Disqualified, row)
			}
		}
	}

	sum := s.newSummary(schema.AddressMode, started, files)
	errs, warnings := newHistogram(), newHistogram()
	var total float64
	for _, row := range res.Rows {
		errs.add(row.Errors...)
		warnings.add(row.Warnings...)
		total += row.Score
	}
	sum.TotalRows = len(res.Rows)
	sum.Qualified = len(res.Qualified)
	sum.Disqualified = len(res.Disqualified)
	sum.QualifiedRate = ratio(sum.Qualified, sum.TotalRows)
	sum.AverageScore = average(total, sum.TotalRows)
	sum.TopErrors = errs.sorted()
	sum.TopWarnings = warnings.sorted()
	res.Summary = sum
	return res
}

// StandardizeNames standardises every table into canonical name records.
func (s *Standardizer) StandardizeNames(ctx context.Context, tables []table.Table) NameResult {
	started := s.clock()
	outcomes := make([]nameOutcome, len(tables))
	failures := s.forEachTable(ctx, tables, func(i int, t table.Table) (int, error) {
		out, err := s.nameTable(t)
		if err != nil {
			return 0, err
		}
		outcomes[i] = out
		return len(out.rows), nil
	})

	var res NameResult
	files := make([]FileSummary, len(tables))
	for i, f := range failures {
		if f != nil {
			res.Failures = append(res.Failures, f)
			files[i] = failedFile(f)
			continue
		}
		files[i] = outcomes[i].file
		res.Rows = append(res.Rows, outcomes[i].rows...)
	}

	sum := s.newSummary(schema.NameMode, started, files)
	issues := newHistogram()
	var total float64
	for _, row := range res.Rows {
		issues.add(row.Issues...)
		total += row.NameQuality.Score
		if row.Valid {
			sum.Qualified++
		}
	}
	sum.TotalRows = len(res.Rows)
	sum.Disqualified = sum.TotalRows - sum.Qualified
	sum.QualifiedRate = ratio(sum.Qualified, sum.TotalRows)
	sum.AverageScore = average(total, sum.TotalRows)
	sum.TopIssues = issues.sorted()
	res.Summary = sum
	return res
}

// forEachTable runs process for every table with at most s.workers in
// flight and returns one failure slot per table, nil on success. Tables not
// started before ctx is done fail with the context error.
func (s *Standardizer) forEachTable(ctx context.Context, tables []table.Table, process func(int, table.Table) (int, error)) []*TableFailure {
	failures := make([]*TableFailure, len(tables))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range tables {
		i := i
		t := tables[i]
		if t.Label == "" {
			t.Label = fmt.Sprintf("table_%d", i+1)
		}
		if err := ctx.Err(); err != nil {
			failures[i] = s.fail(i, t.Label, err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = s.fail(i, t.Label, err)
				return nil
			}
			failures[i] = s.isolate(i, t, process)
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// isolate runs process for one table, turning returned errors and panics
// into a TableFailure.
func (s *Standardizer) isolate(i int, t table.Table, process func(int, table.Table) (int, error)) (failure *TableFailure) {
	start := s.clock()
	defer func() {
		if r := recover(); r != nil {
			failure = s.fail(i, t.Label, eris.Errorf("panic: %v", r))
		}
	}()
	rows, err := process(i, t)
	if err != nil {
		return s.fail(i, t.Label, err)
	}
	s.obs.Observe(observe.Event{
		Kind:     observe.TableCompleted,
		Table:    t.Label,
		Rows:     rows,
		Duration: s.clock().Sub(start),
	})
	return nil
}

func (s *Standardizer) fail(i int, label string, err error) *TableFailure {
	f := &TableFailure{
		Label:    label,
		Position: i + 1,
		Message:  err.Error(),
		err:      eris.Wrapf(err, "table %d (%s)", i+1, label),
	}
	s.obs.Observe(observe.Event{Kind: observe.TableFailed, Table: label, Err: f})
	return f
}

func (s *Standardizer) addressTable(t table.Table) (addressOutcome, error) {
	if err := t.Validate(); err != nil {
		return addressOutcome{}, err
	}
	m := s.addrMapper.Map(t.Label, t.Columns)
	s.detector.Detect(t, &m, schema.AddressMode)

	file := newFileSummary(t, m)
	var rows []AddressRow
	var badStates []string
	for i, rec := range t.Records() {
		at := observe.Where{Table: t.Label, Row: i + 1}
		a := normalize.Address{
			FirstName: get(rec, m, schema.FirstName),
			LastName:  get(rec, m, schema.LastName),
			Street:    get(rec, m, schema.Street),
			City:      get(rec, m, schema.City),
			State:     get(rec, m, schema.State),
			Zip:       get(rec, m, schema.Zip),
		}
		if line2 := strings.TrimSpace(get(rec, m, schema.AddressLine2)); line2 != "" {
			a.Street = strings.TrimSpace(a.Street + " " + line2)
		}

		if text := strings.TrimSpace(rec.Get(m.CombinedAddress)); text != "" {
			parsed := s.addrParser.Parse(text, at)
			file.CombinedParsed = true
			if parsed.Fallback() {
				file.ParseFallbacks++
			}
			fill(&a.Street, parsed.Street)
			fill(&a.City, parsed.City)
			fill(&a.State, parsed.State)
			fill(&a.Zip, parsed.Zip)
		}
		if text := strings.TrimSpace(rec.Get(m.CombinedName)); text != "" {
			parsed := s.nameParser.Parse(text, at)
			if parsed.Fallback() {
				file.ParseFallbacks++
			}
			fill(&a.FirstName, parsed.First)
			fill(&a.LastName, parsed.Last)
		}

		clean := s.cleaner.CleanAddress(a)
		if normalize.IsEmptyAddress(clean) {
			file.RemovedNoData++
			continue
		}
		verdict := s.qualifier.QualifyAddress(clean, at)
		if verdict.Qualified {
			file.Qualified++
		} else {
			file.Disqualified++
		}
		if hasAny(verdict.Errors, validation.ErrInvalidState, validation.ErrStateLength) {
			badStates = append(badStates, clean.State)
		}
		rows = append(rows, AddressRow{
			Address:    clean,
			Result:     verdict,
			SourceFile: t.Label,
			SourceRow:  i + 1,
		})
	}

	file.OutputRows = len(rows)
	if file.RemovedNoData > 0 {
		file.Notes = append(file.Notes, fmt.Sprintf("Removed %d rows with no address data", file.RemovedNoData))
	}
	if len(badStates) > 0 {
		file.Notes = append(file.Notes, fmt.Sprintf("Invalid state codes found: %s", strings.Join(uniqueSorted(badStates), ", ")))
	}
	return addressOutcome{rows: rows, file: file}, nil
}

func (s *Standardizer) nameTable(t table.Table) (nameOutcome, error) {
	if err := t.Validate(); err != nil {
		return nameOutcome{}, err
	}
	m := s.nameMapper.Map(t.Label, t.Columns)
	s.detector.Detect(t, &m, schema.NameMode)

	file := newFileSummary(t, m)
	rows := make([]NameRow, 0, len(t.Rows))
	for i, rec := range t.Records() {
		at := observe.Where{Table: t.Label, Row: i + 1}
		n := normalize.Name{
			First:  get(rec, m, schema.FirstName),
			Last:   get(rec, m, schema.LastName),
			Middle: get(rec, m, schema.MiddleName),
			Title:  get(rec, m, schema.Title),
			Suffix: get(rec, m, schema.Suffix),
		}
		if text := strings.TrimSpace(rec.Get(m.CombinedName)); text != "" {
			parsed := s.nameParser.Parse(text, at)
			file.CombinedParsed = true
			if parsed.Fallback() {
				file.ParseFallbacks++
			}
			fill(&n.First, parsed.First)
			fill(&n.Last, parsed.Last)
			fill(&n.Middle, parsed.Middle)
			fill(&n.Title, parsed.Title)
			fill(&n.Suffix, parsed.Suffix)
		}

		clean := s.cleaner.CleanName(n)
		quality := s.qualifier.QualifyName(clean, at)
		if quality.Valid {
			file.Qualified++
		} else {
			file.Disqualified++
		}
		rows = append(rows, NameRow{
			Name:        clean,
			NameQuality: quality,
			SourceFile:  t.Label,
			SourceRow:   i + 1,
		})
	}
	file.OutputRows = len(rows)
	return nameOutcome{rows: rows, file: file}, nil
}

func newFileSummary(t table.Table, m schema.Mapping) FileSummary {
	mapping := make(map[string]string, len(m.Fields)+2)
	for f, c := range m.Fields {
		mapping[f] = c
	}
	if m.CombinedAddress != "" {
		mapping["combined_address"] = m.CombinedAddress
	}
	if m.CombinedName != "" {
		mapping["combined_name"] = m.CombinedName
	}
	notes := m.Notes()
	for _, c := range m.Conflicts {
		notes = append(notes, fmt.Sprintf("Multiple columns match %s: using %s, ignoring %s", c.Field, c.Chosen, strings.Join(c.Ignored, ", ")))
	}
	return FileSummary{
		Label:     t.Label,
		Status:    StatusSuccess,
		InputRows: len(t.Rows),
		Mapping:   mapping,
		Decisions: m.Decisions,
		Notes:     notes,
	}
}

func failedFile(f *TableFailure) FileSummary {
	return FileSummary{Label: f.Label, Status: StatusFailed, Error: f.Message}
}

func (s *Standardizer) newSummary(mode schema.Mode, started time.Time, files []FileSummary) Summary {
	sum := Summary{
		RunID:           s.newRunID(),
		Mode:            mode,
		StartedAt:       started,
		Duration:        s.clock().Sub(started),
		Files:           files,
		TotalFiles:      len(files),
		MappingPatterns: make(map[string]map[string]int),
	}
	notes := newHistogram()
	for _, f := range files {
		if f.Status == StatusFailed {
			sum.Failed++
			continue
		}
		sum.Succeeded++
		sum.RemovedNoData += f.RemovedNoData
		if f.CombinedParsed {
			sum.FilesWithCombined++
		}
		for field, col := range f.Mapping {
			if sum.MappingPatterns[field] == nil {
				sum.MappingPatterns[field] = make(map[string]int)
			}
			sum.MappingPatterns[field][col]++
		}
		notes.add(f.Notes...)
	}
	sum.CommonNotes = notes.sorted()
	return sum
}

// get returns the trimmed value of the column bound to field.
func get(rec table.Record, m schema.Mapping, field string) string {
	col, ok := m.Column(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(rec.Get(col))
}

// fill sets *dst to v when *dst is empty.
func fill(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

func hasAny(list []string, wanted ...string) bool {
	for _, s := range list {
		for _, w := range wanted {
			if s == w {
				return true
			}
		}
	}
	return false
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
