// Package cluster groups countries by their indicator profile in one year:
// mean imputation, standardization, then a pluggable partitioning algorithm.
package cluster

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"povdash/internal/engine"
	"povdash/internal/table"
)

// ColCluster is the label column added to Result.View.
const ColCluster = "Cluster"

// Result is one clustering run. It is computed per request and never cached.
type Result struct {
	Countries  []string `json:"countries"`
	Codes      []string `json:"codes,omitempty"`
	Labels     []string `json:"labels"`
	Inertia    float64  `json:"inertia"`
	K          int      `json:"k"`
	Indicators []string `json:"indicators"`
	Year       int      `json:"year"`
	// NoData is set when the slice has no rows or an indicator has no value at all.
	NoData bool `json:"no_data"`

	// View is the clustered slice with a Cluster column, in Labels order.
	View *table.Table `json:"-"`
}

// Cluster partitions the countries of the long table t in the given year
// by the selected indicators.
func Cluster(t *table.Table, year int, indicators []string, k int, alg Algorithm) (*Result, error) {
	if len(indicators) == 0 {
		return nil, engine.ErrNoIndicatorsSelected
	}
	for _, ind := range indicators {
		if !t.Has(ind) {
			return nil, fmt.Errorf("%w: indicator %q", engine.ErrNotFound, ind)
		}
	}

	view := engine.FilterByEquality(t, engine.ColYear, year)
	if t.Has(engine.ColIsCountry) {
		view = view.Filter(func(row int) bool { return view.Bool(row, engine.ColIsCountry) })
	}

	res := &Result{K: k, Year: year, Indicators: append([]string(nil), indicators...)}
	if view.Len() == 0 || anyColumnAllNull(view, indicators) {
		res.NoData = true
		return res, nil
	}
	if k < 1 || k > view.Len() {
		return nil, fmt.Errorf("%w: %d clusters for %d countries", engine.ErrNoDataForCombination, k, view.Len())
	}

	features := standardize(impute(view, indicators))
	if alg == nil {
		alg = NewKMeans(0)
	}
	raw, inertia, err := alg.Fit(features, k)
	if err != nil {
		return nil, fmt.Errorf("cluster %d countries: %w", view.Len(), err)
	}

	res.Labels = renumber(raw)
	res.Inertia = inertia
	res.Countries = make([]string, view.Len())
	for i := range res.Countries {
		res.Countries[i] = view.String(i, engine.ColCountryName)
	}
	if view.Has(engine.ColCountryCode) {
		res.Codes = make([]string, view.Len())
		for i := range res.Codes {
			res.Codes[i] = view.String(i, engine.ColCountryCode)
		}
	}
	res.View, err = view.With(table.Strings(ColCluster, res.Labels...))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func anyColumnAllNull(view *table.Table, cols []string) bool {
	for _, c := range cols {
		allNull := true
		for i := 0; i < view.Len() && allNull; i++ {
			allNull = view.IsNull(i, c)
		}
		if allNull {
			return true
		}
	}
	return false
}

// impute returns the features row-major with nulls replaced by the column mean.
func impute(view *table.Table, cols []string) [][]float64 {
	out := make([][]float64, view.Len())
	for i := range out {
		out[i] = make([]float64, len(cols))
	}
	for j, c := range cols {
		present := make([]float64, 0, view.Len())
		for i := 0; i < view.Len(); i++ {
			if v, ok := view.Float(i, c); ok {
				present = append(present, v)
			}
		}
		mean := stat.Mean(present, nil)
		for i := range out {
			v, ok := view.Float(i, c)
			if !ok {
				v = mean
			}
			out[i][j] = v
		}
	}
	return out
}

// standardize scales every column to zero mean and unit population variance.
// Constant columns are only centered.
func standardize(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return x
	}
	col := make([]float64, len(x))
	for j := range x[0] {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		for i := range x {
			x[i][j] = (x[i][j] - mean) / std
		}
	}
	return x
}

// renumber relabels clusters in order of first appearance: "0", "1", ...
func renumber(raw []int) []string {
	ids := make(map[int]int)
	out := make([]string, len(raw))
	for i, l := range raw {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = strconv.Itoa(id)
	}
	return out
}
