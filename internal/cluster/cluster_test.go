package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"povdash/internal/engine"
	"povdash/internal/table"
)

type spy struct {
	calls int
	k     int
	rows  int
}

func (s *spy) Fit(features [][]float64, k int) ([]int, float64, error) {
	s.calls++
	s.k, s.rows = k, len(features)
	labels := make([]int, len(features))
	for i := range labels {
		labels[i] = (len(features) - i) % k
	}
	return labels, 1.5, nil
}

func fixture() *table.Table {
	return table.MustNew(
		table.Strings(engine.ColCountryName, "A", "B", "C", "D", "World", "E"),
		table.Strings(engine.ColCountryCode, "AAA", "BBB", "CCC", "DDD", "WLD", "EEE"),
		table.Ints(engine.ColYear, 2010, 2010, 2010, 2010, 2010, 2011),
		table.Bools(engine.ColIsCountry, true, true, true, true, false, true),
		table.Floats("gini", 30, 31, 60, 61, 40, 50),
		table.Floats("gap", 1, math.NaN(), 20, 21, 5, 6),
		table.Floats("empty", math.NaN(), math.NaN(), math.NaN(), math.NaN(), 3, 4),
	)
}

func TestNoIndicators(t *testing.T) {
	_, err := Cluster(fixture(), 2010, nil, 2, &spy{})
	assert.ErrorIs(t, err, engine.ErrNoIndicatorsSelected)
}

func TestAllNullIndicatorSkipsAlgorithm(t *testing.T) {
	s := &spy{}
	res, err := Cluster(fixture(), 2010, []string{"gini", "empty"}, 2, s)
	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Zero(t, s.calls)

	// no countries at all in that year
	res, err = Cluster(fixture(), 1990, []string{"gini"}, 2, s)
	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Zero(t, s.calls)
}

func TestBadK(t *testing.T) {
	for _, k := range []int{0, 5} {
		_, err := Cluster(fixture(), 2010, []string{"gini"}, k, &spy{})
		assert.ErrorIs(t, err, engine.ErrNoDataForCombination, "k=%d", k)
	}
}

func TestUnknownIndicator(t *testing.T) {
	_, err := Cluster(fixture(), 2010, []string{"nope"}, 2, &spy{})
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestClusterUsesCountriesOnlyAndRenumbers(t *testing.T) {
	s := &spy{}
	res, err := Cluster(fixture(), 2010, []string{"gini", "gap"}, 2, s)
	require.NoError(t, err)

	assert.Equal(t, 1, s.calls)
	assert.Equal(t, 4, s.rows)
	assert.Equal(t, []string{"A", "B", "C", "D"}, res.Countries)
	assert.Equal(t, []string{"AAA", "BBB", "CCC", "DDD"}, res.Codes)
	// spy labels are 0,1,0,1 so renumbering starts at the first row
	assert.Equal(t, []string{"0", "1", "0", "1"}, res.Labels)
	assert.Equal(t, 1.5, res.Inertia)
	assert.Equal(t, "1", res.View.String(1, ColCluster))
}

func TestKMeansPartition(t *testing.T) {
	res, err := Cluster(fixture(), 2010, []string{"gini", "gap"}, 2, NewKMeans(42))
	require.NoError(t, err)

	require.Len(t, res.Labels, 4)
	assert.Equal(t, "0", res.Labels[0])
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[2], res.Labels[3])
	assert.NotEqual(t, res.Labels[0], res.Labels[2])
	assert.GreaterOrEqual(t, res.Inertia, 0.0)

	again, err := Cluster(fixture(), 2010, []string{"gini", "gap"}, 2, NewKMeans(42))
	require.NoError(t, err)
	assert.Equal(t, res.Labels, again.Labels)
	assert.InDelta(t, res.Inertia, again.Inertia, 1e-12)
}

func TestKMeansOneClusterPerPoint(t *testing.T) {
	x := [][]float64{{0, 0}, {5, 5}, {10, 10}}
	labels, inertia, err := NewKMeans(1).Fit(x, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0, inertia, 1e-12)
	assert.ElementsMatch(t, []int{0, 1, 2}, labels)

	_, _, err = NewKMeans(1).Fit(x, 4)
	assert.Error(t, err)
}

func TestStandardizeConstantColumn(t *testing.T) {
	x := standardize([][]float64{{1, 7}, {3, 7}})
	assert.Equal(t, []float64{-1, 0}, x[0])
	assert.Equal(t, []float64{1, 0}, x[1])
}
