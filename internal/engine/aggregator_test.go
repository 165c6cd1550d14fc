package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"povdash/internal/table"
)

func TestAggregate(t *testing.T) {
	// 1. Setup Mock Data
	// Scenario:
	// Row 0: Germany, 2010, 31.1
	// Row 1: Germany, 2011, 30.9
	// Row 2: France,  2010, null
	// Row 3: France,  2011, 32.0
	tb := table.MustNew(
		table.Strings(ColCountryName, "Germany", "Germany", "France", "France"),
		table.Ints(ColYear, 2010, 2011, 2010, 2011),
		table.Floats(IndicatorGini, 31.1, 30.9, math.NaN(), 32.0),
	)

	// 2. Run Aggregations
	sums := Aggregate(tb, ColCountryName, IndicatorGini, Sum)
	means := Aggregate(tb, ColCountryName, IndicatorGini, Mean)
	counts := Aggregate(tb, ColCountryName, IndicatorGini, Count)

	// 3. Assertions
	require.Len(t, sums, 2)
	assert.Equal(t, "Germany", sums[0].Key)
	assert.Equal(t, "France", sums[1].Key)
	assert.InDelta(t, 62.0, sums[0].Value, 1e-9)
	assert.Equal(t, []int{2, 3}, sums[1].Rows)

	assert.InDelta(t, 31.0, means[0].Value, 1e-9)
	assert.InDelta(t, 32.0, means[1].Value, 1e-9)

	assert.Equal(t, 2.0, counts[0].Value)
	assert.Equal(t, 1.0, counts[1].Value)
}

func TestDistinctAndYears(t *testing.T) {
	tb := table.MustNew(
		table.Strings(ColCountryName, "B", "A", "B", ""),
		table.Ints(ColYear, 2012, 2010, 2011, 2009),
		table.Floats(IndicatorGini, 1, 2, math.NaN(), 4),
	)

	assert.Equal(t, []string{"B", "A"}, Distinct(tb, ColCountryName))
	assert.Equal(t, []int{2009, 2010, 2011, 2012}, Years(tb, ColYear))
	assert.Equal(t, []int{2009, 2010, 2012}, Years(tb, ColYear, IndicatorGini))
}

func TestReshapePreservesQuintileSum(t *testing.T) {
	cols := []string{
		"Income share held by highest 20%",
		"Income share held by lowest 20%",
		"Income share held by second 20%",
		"Income share held by third 20%",
		"Income share held by fourth 20%",
	}
	tb := table.MustNew(
		table.Strings(ColCountryName, "A", "A", "B"),
		table.Ints(ColYear, 2010, 2011, 2010),
		table.Floats(cols[0], 45, 44, 50),
		table.Floats(cols[1], 7, 8, math.NaN()),
		table.Floats(cols[2], 12, 12, 10),
		table.Floats(cols[3], 16, 16, 15),
		table.Floats(cols[4], 20, 20, 20),
	)

	ordered := IncomeShareColumns(tb)
	require.Equal(t, []string{cols[1], cols[2], cols[3], cols[4], cols[0]}, ordered)

	long, err := IncomeShare(tb, "A")
	require.NoError(t, err)
	require.Equal(t, 10, long.Len())

	// the five categories of a row sum to the row total of the wide form
	perYear := SumByKey(long, ColYear, ColValue)
	assert.InDelta(t, 100.0, perYear["2010"], 1e-9)
	assert.InDelta(t, 100.0, perYear["2011"], 1e-9)

	wantLabels := []string{"Lowest 20%", "Second 20%", "Third 20%", "Fourth 20%", "Highest 20%"}
	for i, want := range wantLabels {
		assert.Equal(t, want, long.String(i, ColCategory))
		assert.Equal(t, "A", long.String(i, ColCountryName))
	}

	// B is missing a quintile and is dropped entirely
	b, err := IncomeShare(tb, "B")
	require.NoError(t, err)
	assert.Zero(t, b.Len())
}

func TestReshapeWideToLong(t *testing.T) {
	tb := table.MustNew(
		table.Strings("id", "x", "y"),
		table.Floats("p", 1, math.NaN()),
		table.Floats("q", 2, 3),
	)

	long, err := ReshapeWideToLong(tb, []string{"id"}, []string{"p", "q"}, nil)
	require.NoError(t, err)
	require.Equal(t, 4, long.Len())
	assert.Equal(t, []string{"id", ColCategory, ColValue}, long.Columns())
	assert.Equal(t, "p", long.String(0, ColCategory))
	assert.Equal(t, "q", long.String(1, ColCategory))
	assert.Equal(t, "y", long.String(2, "id"))
	assert.True(t, long.IsNull(2, ColValue))

	_, err = ReshapeWideToLong(tb, []string{"id"}, []string{"missing"}, nil)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestIncomeShareLabel(t *testing.T) {
	assert.Equal(t, "Lowest 20%", IncomeShareLabel("Income share held by lowest 20%"))
	assert.Equal(t, "Highest 20%", IncomeShareLabel("5 Income share held by highest 20%"))
}
