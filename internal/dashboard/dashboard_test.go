package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"povdash/internal/chart"
	"povdash/internal/engine"
	"povdash/internal/table"
)

const gap190 = "Poverty gap at $1.90 a day (2011 PPP) (%)"

var nan = math.NaN()

func fixture(t *testing.T) *Dashboard {
	t.Helper()
	pop := engine.IndicatorPopulation
	wide := table.MustNew(
		table.Strings(engine.ColCountryName, "A", "B", "World"),
		table.Strings(engine.ColCountryCode, "AAA", "BBB", "WLD"),
		table.Strings(engine.ColIndicatorName, pop, pop, pop),
		table.Strings(engine.ColIndicatorCode, "SP.POP.TOTL", "SP.POP.TOTL", "SP.POP.TOTL"),
		table.Floats("2010", 1234567, 3000000, 9000000),
		table.Floats("2011", 1240000, nan, 9100000),
	)
	long := table.MustNew(
		table.Strings(engine.ColCountryName, "A", "A", "B", "B", "World"),
		table.Strings(engine.ColCountryCode, "AAA", "AAA", "BBB", "BBB", "WLD"),
		table.Ints(engine.ColYear, 2010, 2011, 2010, 2011, 2010),
		table.Floats(engine.IndicatorGini, 30, nan, 40, 41, 38),
		table.Floats(gap190, 1, 2, 3, 4, 5),
		table.Ints(pop, 1234567, 1240000, 3000000, 3100000, 9000000),
		table.Floats("Income share held by lowest 20%", 7, nan, nan, nan, nan),
		table.Floats("Income share held by second 20%", 12, nan, nan, nan, nan),
		table.Floats("Income share held by third 20%", 16, nan, nan, nan, nan),
		table.Floats("Income share held by fourth 20%", 20, nan, nan, nan, nan),
		table.Floats("Income share held by highest 20%", 45, nan, nan, nan, nan),
	)
	data, err := engine.NewDatasets(wide, long, nil, nil)
	require.NoError(t, err)
	return New(data, DefaultSettings())
}

func records(t *testing.T, out Outcome) [][]any {
	t.Helper()
	require.Equal(t, TagResult, out.Tag, "err: %v", out.Err)
	require.NotNil(t, out.Chart)
	return out.Chart.Data.Records
}

func TestGiniYearWithoutSelectionSkips(t *testing.T) {
	d := fixture(t)

	assert.Equal(t, NoSelection, Selection{}.State(KeyYear))
	assert.Equal(t, Skip(), d.Dispatch("gini_year_barchart", Selection{}))
	assert.Equal(t, Skip(), d.GiniYearBarChart(Selection{}))
}

func TestReport(t *testing.T) {
	d := fixture(t)

	out := d.Dispatch("report", Selection{Country: "A"})
	require.Equal(t, TagResult, out.Tag)
	assert.Equal(t, "A", out.Report.Heading)
	assert.Equal(t, "The population of A in 2010 was 1,234,567.", out.Report.Text)

	missing := d.Dispatch("report", Selection{Country: "Atlantis"})
	require.Equal(t, TagResult, missing.Tag)
	assert.Contains(t, missing.Report.Text, "No population data")
}

func TestPopulationChart(t *testing.T) {
	d := fixture(t)

	out := d.Dispatch("population_chart", Selection{Year: IntPtr(2010)})
	recs := records(t, out)
	assert.Equal(t, "TOP 20 Countries by population - 2010", out.Chart.Title)
	assert.Equal(t, "Country name", out.Chart.XAxis.Title)
	require.Len(t, recs, 2)
	assert.Equal(t, []any{"B", 3000000.0}, recs[0])

	// a year column that does not exist degrades to a placeholder
	none := d.Dispatch("population_chart", Selection{Year: IntPtr(1900)})
	require.Equal(t, TagResult, none.Tag)
	assert.True(t, none.Chart.Placeholder)
}

func TestPopulationChartHeight(t *testing.T) {
	pop := engine.IndicatorPopulation
	heightFor := func(names ...string) int {
		vals := make([]float64, len(names))
		inds := make([]string, len(names))
		for i := range names {
			vals[i] = float64(1000 * (i + 1))
			inds[i] = pop
		}
		wide := table.MustNew(
			table.Strings(engine.ColCountryName, names...),
			table.Strings(engine.ColIndicatorName, inds...),
			table.Floats("2010", vals...),
		)
		long := table.MustNew(
			table.Strings(engine.ColCountryName, names[0]),
			table.Ints(engine.ColYear, 2010),
		)
		data, err := engine.NewDatasets(wide, long, nil, nil)
		require.NoError(t, err)

		out := New(data, DefaultSettings()).Dispatch("population_chart", Selection{Year: IntPtr(2010)})
		require.Len(t, records(t, out), len(names))
		return out.Chart.Height
	}

	short := heightFor("A", "B")
	assert.Equal(t, 450, short)
	assert.Equal(t, short, heightFor("A much longer country name", "B"))
	assert.GreaterOrEqual(t, heightFor("A", "B", "C", "D", "E"), short)
}

func TestGiniCharts(t *testing.T) {
	d := fixture(t)

	byYear := d.Dispatch("gini_year_barchart", Selection{Year: IntPtr(2010)})
	recs := records(t, byYear)
	assert.Equal(t, 200+20*3, byYear.Chart.Height)
	assert.Equal(t, 650, byYear.Chart.Width)
	assert.Equal(t, "h", byYear.Chart.Orientation)
	assert.Equal(t, engine.IndicatorGini+" 2010", byYear.Chart.Title)
	assert.Equal(t, "A", recs[0][1])
	assert.Equal(t, "B", recs[2][1])

	byCountry := d.Dispatch("gini_country_barchart", Selection{Countries: []string{"A", "B"}})
	recs = records(t, byCountry)
	assert.Len(t, recs, 3)
	assert.Equal(t, 100+250*2, byCountry.Chart.Height)
	assert.Equal(t, engine.IndicatorGini+"<br><b>A, B</b>", byCountry.Chart.Title)
	assert.Equal(t, "Gini Index", byCountry.Chart.Labels[engine.IndicatorGini])
}

func TestIncomeShare(t *testing.T) {
	d := fixture(t)

	out := d.Dispatch("income_share_country_barchart", Selection{Country: "A"})
	recs := records(t, out)
	require.Len(t, recs, 5)
	assert.Equal(t, "Income Share Quintiles - A", out.Chart.Title)
	assert.Equal(t, "stack", out.Chart.BarMode)
	assert.Equal(t, "Lowest 20%", recs[0][2])
	assert.Equal(t, "Highest 20%", recs[4][2])

	empty := d.Dispatch("income_share_country_barchart", Selection{Country: "B"})
	require.Equal(t, TagResult, empty.Tag)
	assert.True(t, empty.Chart.Placeholder)
}

func TestPovertyGapScatter(t *testing.T) {
	d := fixture(t)

	out := d.Dispatch("perc_pov_scatter_chart", Selection{Year: IntPtr(2010), Level: IntPtr(0)})
	recs := records(t, out)
	assert.Len(t, recs, 2, "region aggregates are not plotted")
	assert.Equal(t, 250+20*2, out.Chart.Height)
	assert.Equal(t, "%", out.Chart.XAxis.TickSuffix)
	assert.Equal(t, engine.IndicatorPopulation, out.Chart.Encoding.Color)
	assert.Equal(t, chart.ColorScale, out.Chart.ColorScale)
	assert.Equal(t, gap190+"<b>: 2010</b>", out.Chart.Title)

	for _, sel := range []Selection{
		{Year: IntPtr(2010), Level: IntPtr(3)},
		{Year: IntPtr(1990), Level: IntPtr(0)},
	} {
		ph := d.Dispatch("perc_pov_scatter_chart", sel)
		require.Equal(t, TagResult, ph.Tag)
		assert.True(t, ph.Chart.Placeholder)
	}
}

func TestIndicatorMapAndHistogram(t *testing.T) {
	d := fixture(t)

	m := d.Dispatch("indicator_map_chart", Selection{Indicator: engine.IndicatorGini})
	recs := records(t, m)
	assert.Len(t, recs, 4)
	require.NotNil(t, m.Chart.Geo)
	assert.Equal(t, 800, m.Chart.Height)
	assert.Equal(t, "No details available on this indicator", m.Details)

	h := d.Dispatch("indicator_year_histogram", Selection{Years: []int{2010, 2011}, Indicator: engine.IndicatorGini, Bins: IntPtr(10)})
	recs = records(t, h)
	assert.Len(t, recs, 4)
	assert.Equal(t, 4, h.Chart.FacetWrap)
	assert.Equal(t, 10, h.Chart.Bins)
	assert.Equal(t, engine.IndicatorGini+" Histogram", h.Chart.Title)

	assert.Equal(t, Skip(), d.Dispatch("indicator_year_histogram", Selection{Indicator: engine.IndicatorGini}))
}

func TestClusteredMap(t *testing.T) {
	d := fixture(t)

	assert.Equal(t, Skip(), d.ClusteredMap(Selection{Year: IntPtr(2010)}))

	out := d.Dispatch("clustered_map_graph", Selection{
		Year:       IntPtr(2010),
		Clusters:   IntPtr(2),
		Indicators: []string{engine.IndicatorGini, gap190},
	})
	recs := records(t, out)
	assert.Len(t, recs, 2)
	require.NotNil(t, out.Cluster)
	assert.Equal(t, []string{"0", "1"}, out.Cluster.Labels)
	assert.Contains(t, out.Chart.Title, "Country clusters - 2010. Number of clusters: 2<br>Inertia: ")
	assert.Equal(t, "Selected indicators:<br>"+engine.IndicatorGini+"<br>"+gap190, out.Chart.Annotations[0].Text)
	assert.Equal(t, 650, out.Chart.Height)

	tooMany := d.Dispatch("clustered_map_graph", Selection{
		Year:       IntPtr(2010),
		Clusters:   IntPtr(5),
		Indicators: []string{engine.IndicatorGini},
	})
	require.Equal(t, TagResult, tooMany.Tag)
	assert.True(t, tooMany.Chart.Placeholder)
}

func TestUnknownWidget(t *testing.T) {
	out := fixture(t).Dispatch("pie_chart", Selection{})
	assert.Equal(t, TagFailure, out.Tag)
	assert.ErrorIs(t, out.Err, ErrUnknownWidget)
}

func TestWidgetsRunConcurrently(t *testing.T) {
	d := fixture(t)
	sel := Selection{
		Country:    "A",
		Countries:  []string{"A", "B"},
		Year:       IntPtr(2010),
		Years:      []int{2010},
		Indicator:  engine.IndicatorGini,
		Indicators: []string{engine.IndicatorGini},
		Level:      IntPtr(0),
		Clusters:   IntPtr(2),
	}

	registry := d.Registry()
	outcomes := make(map[string]Outcome, len(registry))
	results := make([]Outcome, len(registry))
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i] = registry[name](sel)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, name := range names {
		outcomes[name] = results[i]
	}
	require.Len(t, outcomes, 9)
	for name, out := range outcomes {
		assert.Equal(t, TagResult, out.Tag, "%s: %v", name, out.Err)
	}
}

func TestOptions(t *testing.T) {
	d := fixture(t)

	assert.Equal(t, []string{"A", "B", "World"}, d.CountryOptions())
	assert.Equal(t, []string{"A", "B", "World"}, d.GiniCountryOptions())

	years, err := d.YearOptions(YearsGini)
	require.NoError(t, err)
	assert.Equal(t, []int{2010, 2011}, years)

	years, err = d.YearOptions(YearsIncome)
	require.NoError(t, err)
	assert.Equal(t, []int{2010}, years)

	years, err = d.YearOptions(YearsPopulation)
	require.NoError(t, err)
	assert.Equal(t, []int{2010, 2011}, years)

	_, err = d.YearOptions("bogus")
	assert.ErrorIs(t, err, engine.ErrNotFound)

	assert.Contains(t, d.IndicatorOptions(), gap190)
}
