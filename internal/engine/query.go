package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"povdash/internal/table"
)

// YearLabel renders a year the way the wide table names its columns.
// Integers, whole floats and strings are all accepted.
func YearLabel(year any) string {
	switch y := year.(type) {
	case string:
		return strings.TrimSpace(y)
	case int:
		return strconv.Itoa(y)
	case int64:
		return strconv.FormatInt(y, 10)
	case float64:
		if y == math.Trunc(y) {
			return strconv.FormatInt(int64(y), 10)
		}
		return strconv.FormatFloat(y, 'f', -1, 64)
	}
	return fmt.Sprint(year)
}

// PopulationFor returns the "Population, total" value of country in year from
// a wide table. The first matching row wins when several rows match.
func PopulationFor(t *table.Table, country string, year any) (float64, error) {
	col := YearLabel(year)
	if !t.Has(col) {
		return 0, fmt.Errorf("%w: no year column %q", ErrNotFound, col)
	}
	for i := 0; i < t.Len(); i++ {
		if !t.Match(i, ColCountryName, country) || !t.Match(i, ColIndicatorName, IndicatorPopulation) {
			continue
		}
		v, ok := t.Float(i, col)
		if !ok {
			return 0, fmt.Errorf("%w: no population value for %q in %s", ErrNotFound, country, col)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: no population rows for %q", ErrNotFound, country)
}

// TopN configures TopNByYear.
type TopN struct {
	N              int
	ExcludeRegions bool
	Regions        RegionSet
	NameColumn     string
}

// DefaultTopN returns the top-20, regions-excluded configuration.
func DefaultTopN(regions RegionSet) TopN {
	return TopN{N: 20, ExcludeRegions: true, Regions: regions, NameColumn: ColCountryName}
}

// TopNByYear returns at most N rows of a wide table ordered by descending
// value in the year column. Region aggregates are dropped when requested,
// rows without a value are dropped, and equal values keep their original order.
func TopNByYear(t *table.Table, year any, opts TopN) (*table.Table, error) {
	col := YearLabel(year)
	if !t.Has(col) {
		return nil, fmt.Errorf("%w: no year column %q", ErrNotFound, col)
	}
	if opts.N <= 0 {
		opts.N = 20
	}
	if opts.NameColumn == "" {
		opts.NameColumn = ColCountryName
	}
	if opts.ExcludeRegions && opts.Regions == nil {
		opts.Regions = NewRegionSet()
	}

	view := t.Filter(func(row int) bool {
		if t.IsNull(row, col) {
			return false
		}
		return !opts.ExcludeRegions || !opts.Regions.Contains(t.String(row, opts.NameColumn))
	})
	view = SortBy(view, col, false)
	if view.Len() > opts.N {
		rows := make([]int, opts.N)
		for i := range rows {
			rows[i] = i
		}
		view = view.Take(rows)
	}
	return view, nil
}

// NamedValue is one (name, value) pair read off a view.
type NamedValue struct {
	Name  string
	Value float64
}

// Pairs reads (name, value) pairs from a view in row order. Null values read as NaN.
func Pairs(view *table.Table, nameCol, valueCol string) []NamedValue {
	out := make([]NamedValue, view.Len())
	for i := range out {
		v, ok := view.Float(i, valueCol)
		if !ok {
			v = math.NaN()
		}
		out[i] = NamedValue{Name: view.String(i, nameCol), Value: v}
	}
	return out
}

// FilterOption tunes the row filters.
type FilterOption func(*filterConfig)

type filterConfig struct {
	dropNA []string
}

// DropNA drops rows holding a null in any of the given columns. Required before
// any numeric sort or aggregation over those columns.
func DropNA(cols ...string) FilterOption {
	return func(c *filterConfig) { c.dropNA = append(c.dropNA, cols...) }
}

func applyFilterOptions(opts []FilterOption) filterConfig {
	var cfg filterConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func hasNull(t *table.Table, row int, cols []string) bool {
	for _, c := range cols {
		if t.IsNull(row, c) {
			return true
		}
	}
	return false
}

// FilterByEquality keeps the rows whose column equals value.
func FilterByEquality(t *table.Table, col string, value any, opts ...FilterOption) *table.Table {
	cfg := applyFilterOptions(opts)
	return t.Filter(func(row int) bool {
		return t.Match(row, col, value) && !hasNull(t, row, cfg.dropNA)
	})
}

// FilterByMembership keeps the rows whose column equals any of values.
// Used for multi-select widgets (several countries or years at once).
func FilterByMembership[V any](t *table.Table, col string, values []V, opts ...FilterOption) *table.Table {
	cfg := applyFilterOptions(opts)
	return t.Filter(func(row int) bool {
		if hasNull(t, row, cfg.dropNA) {
			return false
		}
		for _, v := range values {
			if t.Match(row, col, v) {
				return true
			}
		}
		return false
	})
}

// DropNulls keeps the rows that have a value in every given column.
func DropNulls(t *table.Table, cols ...string) *table.Table {
	return t.Filter(func(row int) bool { return !hasNull(t, row, cols) })
}

// SortBy returns a view ordered by col. The sort is stable and nulls go last
// in both directions. Numeric columns compare numerically, others as text.
func SortBy(t *table.Table, col string, ascending bool) *table.Table {
	kind, _ := t.Kind(col)
	numeric := kind == table.Int || kind == table.Float

	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		na, nb := t.IsNull(ra, col), t.IsNull(rb, col)
		if na || nb {
			return !na && nb
		}
		if numeric {
			va, _ := t.Float(ra, col)
			vb, _ := t.Float(rb, col)
			if ascending {
				return va < vb
			}
			return va > vb
		}
		sa, sb := t.String(ra, col), t.String(rb, col)
		if ascending {
			return sa < sb
		}
		return sa > sb
	})
	return t.Take(rows)
}

// countryMetaColumns are the country-metadata columns merged into the long
// table after the indicator block.
var countryMetaColumns = map[string]struct{}{
	"Short Name": {}, "Table Name": {}, "Long Name": {}, "2-alpha code": {},
	"Currency Unit": {}, "Special Notes": {}, "Region": {}, "Income Group": {},
	"WB-2 code": {}, "National accounts base year": {}, "National accounts reference year": {},
	"SNA price valuation": {}, "Lending category": {}, "Other groups": {},
	"System of National Accounts": {}, "Alternative conversion factor": {},
	"PPP survey year": {}, "Balance of Payments Manual in use": {},
	"External debt Reporting status": {}, "System of trade": {},
	"Government Accounting concept": {}, "IMF data dissemination standard": {},
	"Latest population census": {}, "Latest household survey": {},
	"Source of most recent Income and expenditure data": {},
	"Vital registration complete": {}, "Latest agricultural census": {},
	"Latest industrial data": {}, "Latest trade data": {},
	"Latest water withdrawal data": {},
}

// IndicatorColumns lists the numeric indicator columns of a long table in
// file order. Identifier columns, the year and the country flag are left out,
// and the list stops at the first country-metadata column.
func IndicatorColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if _, meta := countryMetaColumns[c]; meta {
			break
		}
		if c == ColYear || c == ColIsCountry {
			continue
		}
		if k, _ := t.Kind(c); k == table.Float || k == table.Int {
			out = append(out, c)
		}
	}
	return out
}

// PovertyGapColumns lists the poverty-gap indicators in file order
// (the $1.90, $3.20 and $5.50 lines in the World Bank data).
func PovertyGapColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if strings.Contains(c, "Poverty gap") {
			out = append(out, c)
		}
	}
	return out
}
