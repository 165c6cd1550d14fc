package dashboard

import (
	"fmt"
	"sort"
	"strconv"

	"povdash/internal/engine"
)

// Year option lists, by the widget family they feed.
const (
	YearsAll        = ""
	YearsGini       = "gini"
	YearsPoverty    = "poverty"
	YearsIncome     = "income"
	YearsPopulation = "population"
)

// ErrUnknownOptionSet is returned for an unsupported year list name.
var ErrUnknownOptionSet = fmt.Errorf("%w: option set", engine.ErrNotFound)

// CountryOptions lists the country dropdown entries in file order.
func (d *Dashboard) CountryOptions() []string {
	return engine.Distinct(d.data.Wide, engine.ColCountryName)
}

// GiniCountryOptions lists the economies with at least one GINI value.
func (d *Dashboard) GiniCountryOptions() []string {
	return engine.Distinct(engine.DropNulls(d.data.Long, engine.IndicatorGini), engine.ColCountryName)
}

// IndicatorOptions lists the indicators that can be mapped, plotted or clustered.
func (d *Dashboard) IndicatorOptions() []string {
	return engine.IndicatorColumns(d.data.Long)
}

// YearOptions lists the selectable years for one widget family.
func (d *Dashboard) YearOptions(set string) ([]int, error) {
	long := d.data.Long
	switch set {
	case YearsAll:
		return engine.Years(long, engine.ColYear), nil
	case YearsGini:
		return engine.Years(long, engine.ColYear, engine.IndicatorGini), nil
	case YearsPoverty:
		gaps := engine.PovertyGapColumns(long)
		if len(gaps) == 0 {
			return []int{}, nil
		}
		return engine.Years(countriesOnly(long), engine.ColYear, gaps...), nil
	case YearsIncome:
		cols := engine.IncomeShareColumns(long)
		if len(cols) == 0 {
			return []int{}, nil
		}
		return engine.Years(long, engine.ColYear, cols...), nil
	case YearsPopulation:
		var out []int
		for _, c := range d.data.Wide.Columns() {
			if y, err := strconv.Atoi(c); err == nil {
				out = append(out, y)
			}
		}
		sort.Ints(out)
		return out, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownOptionSet, set)
}
