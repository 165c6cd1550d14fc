package engine

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"povdash/internal/table"
)

// Output columns of ReshapeWideToLong.
const (
	ColCategory = "category"
	ColValue    = "value"
)

// ReshapeWideToLong pivots valueCols into (category, value) rows. Each input
// row yields one output row per value column, in the order of valueCols, with
// the idCols repeated. label maps a value column name to its category label;
// nil keeps the column name. Null values stay null.
func ReshapeWideToLong(t *table.Table, idCols, valueCols []string, label func(string) string) (*table.Table, error) {
	for _, c := range append(append([]string{}, idCols...), valueCols...) {
		if !t.Has(c) {
			return nil, fmt.Errorf("%w: %q", table.ErrColumnNotFound, c)
		}
	}
	if label == nil {
		label = func(s string) string { return s }
	}

	n := t.Len() * len(valueCols)
	rows := make([]int, 0, n)
	categories := make([]string, 0, n)
	values := make([]float64, 0, n)
	for r := 0; r < t.Len(); r++ {
		for _, c := range valueCols {
			rows = append(rows, r)
			categories = append(categories, label(c))
			v, ok := t.Float(r, c)
			if !ok {
				v = math.NaN()
			}
			values = append(values, v)
		}
	}

	ids, err := t.Take(rows).Select(idCols...)
	if err != nil {
		return nil, err
	}
	return ids.With(table.Strings(ColCategory, categories...), table.Floats(ColValue, values...))
}

var (
	incomeShareRe     = regexp.MustCompile(`^Income share held by (\w+) 20%$`)
	incomeSharePrefix = regexp.MustCompile(`^(\d+\s+)?Income share held by\s+`)
	quintileRank      = map[string]int{"lowest": 1, "second": 2, "third": 3, "fourth": 4, "highest": 5}
)

// IncomeShareColumns returns the five income-share quintile columns ordered
// from the lowest to the highest quintile, whatever their order in the file.
func IncomeShareColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if m := incomeShareRe.FindStringSubmatch(c); m != nil && quintileRank[m[1]] > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return quintileRank[incomeShareRe.FindStringSubmatch(out[i])[1]] <
			quintileRank[incomeShareRe.FindStringSubmatch(out[j])[1]]
	})
	return out
}

// IncomeShareLabel turns "Income share held by lowest 20%" (optionally with a
// leading ordinal token such as "1 ") into "Lowest 20%".
func IncomeShareLabel(col string) string {
	rest := incomeSharePrefix.ReplaceAllString(col, "")
	return cases.Title(language.English).String(strings.TrimSpace(rest))
}

// IncomeShare returns the long-form income-share distribution of one country:
// one row per (year, quintile) with the quintiles in lowest-to-highest order.
// Years missing any quintile are dropped.
func IncomeShare(long *table.Table, country string) (*table.Table, error) {
	cols := IncomeShareColumns(long)
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no income share columns", ErrNotFound)
	}
	view := FilterByEquality(long, ColCountryName, country, DropNA(cols...))
	return ReshapeWideToLong(view, []string{ColCountryName, ColYear}, cols, IncomeShareLabel)
}
