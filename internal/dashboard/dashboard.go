// Package dashboard maps widget selections to chart specs and report text.
//
// Every widget is a pure function of the immutable datasets and a Selection.
// Handlers are registered by name and may run concurrently.
package dashboard

import (
	"errors"
	"fmt"
	"sort"

	"povdash/internal/cluster"
	"povdash/internal/engine"
)

// ErrUnknownWidget is returned by Dispatch for an unregistered name.
var ErrUnknownWidget = errors.New("unknown widget")

// Handler computes a widget's output from the current selection.
type Handler func(Selection) Outcome

// Settings tunes the widgets.
type Settings struct {
	ReportYear      int
	TopN            int
	DefaultClusters int
	Cluster         cluster.KMeans
}

// DefaultSettings returns the stock widget tuning.
func DefaultSettings() Settings {
	return Settings{
		ReportYear:      2010,
		TopN:            20,
		DefaultClusters: 4,
		Cluster:         *cluster.NewKMeans(0),
	}
}

// Widget describes a registered handler and the inputs it waits for.
type Widget struct {
	Name   string `json:"name"`
	Inputs []Key  `json:"inputs"`
}

// Dashboard serves the widgets over one set of loaded datasets.
type Dashboard struct {
	data     *engine.Datasets
	settings Settings
	widgets  map[string]widget
}

type widget struct {
	inputs  []Key
	handler Handler
}

// New builds a Dashboard. Zero-valued settings fall back to DefaultSettings.
func New(data *engine.Datasets, s Settings) *Dashboard {
	def := DefaultSettings()
	if s.ReportYear == 0 {
		s.ReportYear = def.ReportYear
	}
	if s.TopN <= 0 {
		s.TopN = def.TopN
	}
	if s.DefaultClusters <= 0 {
		s.DefaultClusters = def.DefaultClusters
	}

	d := &Dashboard{data: data, settings: s}
	d.widgets = map[string]widget{
		"report":                        {[]Key{KeyCountry}, d.Report},
		"population_chart":              {[]Key{KeyYear}, d.PopulationChart},
		"gini_year_barchart":            {[]Key{KeyYear}, d.GiniYearBarChart},
		"gini_country_barchart":         {[]Key{KeyCountries}, d.GiniCountryBarChart},
		"income_share_country_barchart": {[]Key{KeyCountry}, d.IncomeShareBarChart},
		"perc_pov_scatter_chart":        {[]Key{KeyYear, KeyLevel}, d.PovertyGapScatter},
		"indicator_map_chart":           {[]Key{KeyIndicator}, d.IndicatorMap},
		"indicator_year_histogram":      {[]Key{KeyYears, KeyIndicator}, d.IndicatorHistogram},
		"clustered_map_graph":           {[]Key{KeyYear, KeyIndicators}, d.ClusteredMap},
	}
	return d
}

// Data returns the datasets the dashboard reads.
func (d *Dashboard) Data() *engine.Datasets { return d.data }

// Registry returns the name -> handler table.
func (d *Dashboard) Registry() map[string]Handler {
	out := make(map[string]Handler, len(d.widgets))
	for name, w := range d.widgets {
		out[name] = w.handler
	}
	return out
}

// Widgets lists the registered widgets by name.
func (d *Dashboard) Widgets() []Widget {
	out := make([]Widget, 0, len(d.widgets))
	for name, w := range d.widgets {
		out = append(out, Widget{Name: name, Inputs: w.inputs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch runs the named widget. A widget whose inputs are not all set is
// skipped without running.
func (d *Dashboard) Dispatch(name string, sel Selection) Outcome {
	w, ok := d.widgets[name]
	if !ok {
		return Failure(fmt.Errorf("%w: %q", ErrUnknownWidget, name))
	}
	if sel.State(w.inputs...) == NoSelection {
		return Skip()
	}
	return w.handler(sel)
}
