package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"povdash/internal/chart"
	"povdash/internal/cluster"
	"povdash/internal/engine"
	"povdash/internal/table"
)

const clusterNoDataTitle = "No available data for the selected combination of year/indicators."

// Report states the population of the selected country in the report year.
func (d *Dashboard) Report(sel Selection) Outcome {
	if err := sel.Require(KeyCountry); err != nil {
		return fromError(err, "")
	}
	year := d.settings.ReportYear
	pop, err := engine.PopulationFor(d.data.Wide, sel.Country, year)
	if errors.Is(err, engine.ErrNotFound) {
		return ReportResult(Report{
			Heading: sel.Country,
			Text:    fmt.Sprintf("No population data for %s in %d.", sel.Country, year),
		})
	}
	if err != nil {
		return Failure(err)
	}
	return ReportResult(Report{
		Heading: sel.Country,
		Text:    fmt.Sprintf("The population of %s in %d was %s.", sel.Country, year, engine.FormatThousands(pop, 0)),
	})
}

// PopulationChart is a bar chart of the most populous countries in a year.
func (d *Dashboard) PopulationChart(sel Selection) Outcome {
	if err := sel.Require(KeyYear); err != nil {
		return fromError(err, "")
	}
	year := engine.YearLabel(*sel.Year)
	opts := engine.DefaultTopN(d.data.Regions)
	opts.N = d.settings.TopN

	view, err := engine.TopNByYear(d.data.Population, year, opts)
	if err != nil {
		return fromError(err, "")
	}
	return build(chart.Bar, view, chart.Options{
		Title:    fmt.Sprintf("TOP %d Countries by population - %s", opts.N, year),
		Encoding: chart.Encoding{X: engine.ColCountryName, Y: year},
		XAxis:    chart.Axis{Title: "Country name"},
		YAxis:    chart.Axis{Title: "Population"},
		Sizing:   chart.Sizing{Base: 450},
	})
}

// GiniYearBarChart ranks every reporting economy by GINI index in one year.
func (d *Dashboard) GiniYearBarChart(sel Selection) Outcome {
	if err := sel.Require(KeyYear); err != nil {
		return fromError(err, "")
	}
	gini := engine.IndicatorGini
	view := engine.FilterByEquality(d.data.Long, engine.ColYear, *sel.Year, engine.DropNA(gini))
	view = engine.SortBy(view, gini, true)

	return build(chart.HorizontalBar, view, chart.Options{
		Title:    gini + " " + strconv.Itoa(*sel.Year),
		Encoding: chart.Encoding{X: gini, Y: engine.ColCountryName},
		Sizing:   chart.Sizing{Base: 200, PerRow: 20},
		Width:    650,
	})
}

// GiniCountryBarChart shows the GINI history of each selected country in
// its own row.
func (d *Dashboard) GiniCountryBarChart(sel Selection) Outcome {
	if err := sel.Require(KeyCountries); err != nil {
		return fromError(err, "")
	}
	gini := engine.IndicatorGini
	view := engine.FilterByMembership(d.data.Long, engine.ColCountryName, sel.Countries, engine.DropNA(gini))

	return build(chart.FacetedBarByRow, view, chart.Options{
		Title: gini + "<br><b>" + strings.Join(sel.Countries, ", ") + "</b>",
		Encoding: chart.Encoding{
			X:     engine.ColYear,
			Y:     gini,
			Facet: engine.ColCountryName,
			Color: engine.ColCountryName,
		},
		Labels: map[string]string{gini: "Gini Index"},
		Sizing: chart.Sizing{Base: 100, PerRow: 250},
	})
}

// IncomeShareBarChart stacks the five income quintiles of a country per year.
func (d *Dashboard) IncomeShareBarChart(sel Selection) Outcome {
	if err := sel.Require(KeyCountry); err != nil {
		return fromError(err, "")
	}
	view, err := engine.IncomeShare(d.data.Long, sel.Country)
	if err != nil {
		return fromError(err, "")
	}
	return build(chart.StackedHorizontalBar, view, chart.Options{
		Title: "Income Share Quintiles - " + sel.Country,
		Encoding: chart.Encoding{
			X:     engine.ColValue,
			Y:     engine.ColYear,
			Color: engine.ColCategory,
			Hover: engine.ColCountryName,
		},
		XAxis:     chart.Axis{Title: "Percent of Total Income"},
		Sizing:    chart.Sizing{Base: 600},
		Legend:    &chart.Legend{Orientation: "h", X: 0.2, HideTitle: true},
		PlotColor: chart.PaperColor,
	})
}

// PovertyGapScatter plots one poverty-gap line (selected by level) for every
// country in a year, colored by population.
func (d *Dashboard) PovertyGapScatter(sel Selection) Outcome {
	if err := sel.Require(KeyYear, KeyLevel); err != nil {
		return fromError(err, "")
	}
	gaps := engine.PovertyGapColumns(d.data.Long)
	level := *sel.Level
	if level < 0 || level >= len(gaps) {
		return fromError(fmt.Errorf("%w: poverty gap level %d", engine.ErrNotFound, level), "")
	}
	indicator := gaps[level]

	view := countriesOnly(d.data.Long)
	view = engine.FilterByEquality(view, engine.ColYear, *sel.Year, engine.DropNA(gaps...))
	view = engine.SortBy(view, indicator, true)

	enc := chart.Encoding{X: indicator, Y: engine.ColCountryName, Hover: engine.ColCountryName}
	if d.data.Long.Has(engine.IndicatorPopulation) {
		enc.Color = engine.IndicatorPopulation
	}
	return build(chart.ScatterSizedColored, view, chart.Options{
		Title:    fmt.Sprintf("%s<b>: %d</b>", indicator, *sel.Year),
		Encoding: enc,
		Marker:   &chart.Marker{Size: 30, SizeMax: 15},
		Sizing:   chart.Sizing{Base: 250, PerRow: 20},
		XAxis:    chart.Axis{TickSuffix: "%"},
	})
}

// IndicatorMap animates one indicator over the years on a world map and
// returns the indicator's description alongside.
func (d *Dashboard) IndicatorMap(sel Selection) Outcome {
	if err := sel.Require(KeyIndicator); err != nil {
		return fromError(err, "")
	}
	if !d.data.Long.Has(sel.Indicator) {
		return fromError(fmt.Errorf("%w: indicator %q", engine.ErrNotFound, sel.Indicator), "")
	}
	out := build(chart.ChoroplethAnimated, countriesOnly(d.data.Long), chart.Options{
		Title: sel.Indicator,
		Encoding: chart.Encoding{
			Location: engine.ColCountryCode,
			Color:    sel.Indicator,
			Frame:    engine.ColYear,
			Hover:    engine.ColCountryName,
		},
		Sizing:        chart.Sizing{Base: 800},
		ColorbarTitle: strings.ReplaceAll(sel.Indicator, " ", "<br>"),
	})
	if out.Tag == TagResult {
		out.Details = engine.IndicatorDetails(d.data.Series, sel.Indicator)
	}
	return out
}

// IndicatorHistogram draws the distribution of an indicator across
// countries, one facet per selected year.
func (d *Dashboard) IndicatorHistogram(sel Selection) Outcome {
	if err := sel.Require(KeyYears, KeyIndicator); err != nil {
		return fromError(err, "")
	}
	if !d.data.Long.Has(sel.Indicator) {
		return fromError(fmt.Errorf("%w: indicator %q", engine.ErrNotFound, sel.Indicator), "")
	}
	view := engine.FilterByMembership(countriesOnly(d.data.Long), engine.ColYear, sel.Years)

	return build(chart.HistogramFaceted, view, chart.Options{
		Title:       sel.Indicator + " Histogram",
		Encoding:    chart.Encoding{X: sel.Indicator, Facet: engine.ColYear, Color: engine.ColYear},
		XAxis:       chart.Axis{HideTitle: true},
		Bins:        intOr(sel.Bins, 0),
		FacetWrap:   4,
		Sizing:      chart.Sizing{Base: 700},
		Annotations: []chart.Annotation{{Text: sel.Indicator, X: 0.5, Y: -0.12}},
	})
}

// ClusteredMap clusters countries by the selected indicators in one year
// and colors the world map by cluster.
func (d *Dashboard) ClusteredMap(sel Selection) Outcome {
	if err := sel.Require(KeyYear, KeyIndicators); err != nil {
		return fromError(err, "")
	}
	k := intOr(sel.Clusters, d.settings.DefaultClusters)
	alg := d.settings.Cluster

	res, err := cluster.Cluster(d.data.Long, *sel.Year, sel.Indicators, k, &alg)
	if err != nil {
		return fromError(err, clusterNoDataTitle)
	}
	if res.NoData {
		out := ChartResult(chart.Placeholder(clusterNoDataTitle))
		out.Cluster = res
		return out
	}

	out := build(chart.ChoroplethAnimated, res.View, chart.Options{
		Title: fmt.Sprintf("Country clusters - %d. Number of clusters: %d<br>Inertia: %s",
			res.Year, res.K, engine.FormatThousands(res.Inertia, 2)),
		Encoding: chart.Encoding{
			Location:  engine.ColCountryName,
			Color:     cluster.ColCluster,
			HoverData: res.Indicators,
		},
		LocationMode: "country names",
		Discrete:     true,
		Sizing:       chart.Sizing{Base: 650},
		Annotations: []chart.Annotation{{
			Text: "Selected indicators:<br>" + strings.Join(res.Indicators, "<br>"),
			X:    0.01,
			Y:    -0.15,
		}},
	})
	out.Cluster = res
	return out
}

func build(kind chart.Kind, view *table.Table, opts chart.Options) Outcome {
	spec, err := chart.Build(kind, view, opts)
	if err != nil {
		return Failure(err)
	}
	return ChartResult(spec)
}

func countriesOnly(t *table.Table) *table.Table {
	if !t.Has(engine.ColIsCountry) {
		return t
	}
	return t.Filter(func(row int) bool { return t.Bool(row, engine.ColIsCountry) })
}
