package chart

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"povdash/internal/table"
)

// NoDataTitle is the title of the placeholder returned for empty views.
const NoDataTitle = "No available data for the selected combination"

// Sizing is the height law of a chart: Base + PerRow*rows. A zero PerRow
// gives a fixed height of Base; a zero Base and PerRow leaves the height
// to the renderer.
type Sizing struct {
	Base   int
	PerRow int
}

// Height applies the law to a row count.
func (s Sizing) Height(rows int) int {
	if rows < 0 {
		rows = 0
	}
	return s.Base + s.PerRow*rows
}

// Options carries the per-widget choices for Build.
type Options struct {
	Title       string
	Encoding    Encoding
	XAxis       Axis
	YAxis       Axis
	Labels      map[string]string
	Sizing      Sizing
	Width       int
	BarMode     string
	FacetWrap   int
	Bins        int
	Marker      *Marker
	Legend      *Legend
	Annotations []Annotation
	PlotColor   string
	// LocationMode is passed to the map layout ("country names" when
	// locations are names rather than ISO-3 codes).
	LocationMode  string
	ColorbarTitle string
	// Discrete colors a choropleth with ColorSequence instead of ColorScale.
	Discrete bool
	// EmptyTitle overrides NoDataTitle for the placeholder.
	EmptyTitle string
}

// Rows returns the row count the height law is applied to: the number of
// distinct facet values for row-faceted charts, the number of view rows
// otherwise.
func Rows(kind Kind, view *table.Table, enc Encoding) int {
	if kind == FacetedBarByRow && enc.Facet != "" {
		seen := make(map[string]struct{})
		for i := 0; i < view.Len(); i++ {
			seen[view.String(i, enc.Facet)] = struct{}{}
		}
		return len(seen)
	}
	return view.Len()
}

// Build describes view as a chart of the given kind. An empty view yields a
// placeholder spec rather than an error.
func Build(kind Kind, view *table.Table, opts Options) (*Spec, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if view == nil || view.Len() == 0 {
		title := opts.EmptyTitle
		if title == "" {
			title = NoDataTitle
		}
		return Placeholder(title), nil
	}

	fields := encodedColumns(opts.Encoding)
	for _, f := range fields {
		if !view.Has(f) {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, f)
		}
	}

	spec := &Spec{
		Kind:          kind,
		Title:         opts.Title,
		Data:          snapshot(view, fields),
		Encoding:      opts.Encoding,
		XAxis:         opts.XAxis,
		YAxis:         opts.YAxis,
		Labels:        copyLabels(opts.Labels),
		Height:        opts.Sizing.Height(Rows(kind, view, opts.Encoding)),
		Width:         opts.Width,
		Marker:        opts.Marker,
		Legend:        opts.Legend,
		Annotations:   append([]Annotation(nil), opts.Annotations...),
		PaperColor:    PaperColor,
		PlotColor:     opts.PlotColor,
		ColorbarTitle: opts.ColorbarTitle,
	}
	spec.Encoding.HoverData = append([]string(nil), opts.Encoding.HoverData...)

	switch kind {
	case HorizontalBar:
		spec.Orientation = "h"
	case StackedHorizontalBar:
		spec.Orientation = "h"
		spec.BarMode = "stack"
		if opts.BarMode != "" {
			spec.BarMode = opts.BarMode
		}
	case FacetedBarByRow:
		spec.ColorSequence = append([]string(nil), ColorSequence...)
	case ScatterSizedColored:
		spec.ColorScale = ColorScale
	case ChoroplethAnimated:
		spec.Geo = NaturalEarth()
		spec.Geo.LocationMode = opts.LocationMode
		if opts.Discrete {
			spec.ColorSequence = append([]string(nil), ColorSequence...)
		} else {
			spec.ColorScale = ColorScale
		}
	case HistogramFaceted:
		spec.FacetWrap = opts.FacetWrap
		spec.Bins = opts.Bins
		spec.ColorSequence = append([]string(nil), ColorSequence...)
	}
	return spec, nil
}

// Encode serializes a spec to JSON.
func Encode(s *Spec) ([]byte, error) {
	return gojson.Marshal(s)
}

// encodedColumns lists the snapshot fields: the location key first, then the
// axes and the remaining channels.
func encodedColumns(e Encoding) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range []string{e.Location, e.X, e.Y, e.Color, e.Size, e.Facet, e.Frame, e.Hover} {
		add(c)
	}
	for _, c := range e.HoverData {
		add(c)
	}
	return out
}

func snapshot(view *table.Table, cols []string) Data {
	d := Data{
		Fields:  make([]Field, len(cols)),
		Records: make([][]any, view.Len()),
	}
	for i, c := range cols {
		k, _ := view.Kind(c)
		d.Fields[i] = Field{Name: c, Type: k.String()}
	}
	for r := range d.Records {
		rec := make([]any, len(cols))
		for i, c := range cols {
			rec[i] = view.Value(r, c)
		}
		d.Records[r] = rec
	}
	return d
}

func copyLabels(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
