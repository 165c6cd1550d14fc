// Package chart turns derived table views into declarative chart specs.
//
// A Spec is a library-agnostic description of what to draw: a snapshot of
// the encoded columns, the encodings, axes and layout. Nothing here renders.
package chart

import (
	"errors"
)

// Kind names a chart family.
type Kind string

const (
	Bar                  Kind = "bar"
	HorizontalBar        Kind = "horizontal-bar"
	FacetedBarByRow      Kind = "faceted-bar-by-row"
	StackedHorizontalBar Kind = "stacked-horizontal-bar"
	ScatterSizedColored  Kind = "scatter-sized-colored"
	ChoroplethAnimated   Kind = "choropleth-animated"
	HistogramFaceted     Kind = "histogram-faceted"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	Bar, HorizontalBar, FacetedBarByRow, StackedHorizontalBar,
	ScatterSizedColored, ChoroplethAnimated, HistogramFaceted,
}

func (k Kind) valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

var (
	ErrUnknownKind  = errors.New("unknown chart kind")
	ErrMissingField = errors.New("encoded column not in view")
)

// Shared look of every chart.
const (
	PaperColor = "#E5ECF6"
	ColorScale = "cividis"
)

// ColorSequence is the T10 qualitative palette.
var ColorSequence = []string{
	"#4C78A8", "#F58518", "#E45756", "#72B7B2", "#54A24B",
	"#EECA3B", "#B279A2", "#FF9DA6", "#9D755D", "#BAB0AC",
}

// Field describes one column of the data snapshot.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Data is a row-major snapshot of the encoded columns of a view.
type Data struct {
	Fields  []Field `json:"fields"`
	Records [][]any `json:"records"`
}

// Encoding maps visual channels to column names.
type Encoding struct {
	X         string   `json:"x,omitempty"`
	Y         string   `json:"y,omitempty"`
	Color     string   `json:"color,omitempty"`
	Size      string   `json:"size,omitempty"`
	Facet     string   `json:"facet,omitempty"`
	Frame     string   `json:"frame,omitempty"`
	Location  string   `json:"location,omitempty"`
	Hover     string   `json:"hover,omitempty"`
	HoverData []string `json:"hover_data,omitempty"`
}

// Axis holds display options of one axis.
type Axis struct {
	Title      string `json:"title,omitempty"`
	TickSuffix string `json:"tick_suffix,omitempty"`
	HideTitle  bool   `json:"hide_title,omitempty"`
}

// Marker sets a constant mark size when no size column is encoded.
type Marker struct {
	Size    float64 `json:"size,omitempty"`
	SizeMax float64 `json:"size_max,omitempty"`
}

// Legend placement.
type Legend struct {
	Orientation string  `json:"orientation,omitempty"`
	X           float64 `json:"x,omitempty"`
	HideTitle   bool    `json:"hide_title,omitempty"`
}

// Annotation is free text placed in paper coordinates.
type Annotation struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Range is a closed numeric interval.
type Range [2]float64

// Geo is the map layout.
type Geo struct {
	Projection     string `json:"projection"`
	LocationMode   string `json:"location_mode,omitempty"`
	LatRange       Range  `json:"lat_range"`
	LonRange       Range  `json:"lon_range"`
	ShowFrame      bool   `json:"show_frame"`
	ShowCountries  bool   `json:"show_countries"`
	LandColor      string `json:"land_color"`
	BgColor        string `json:"bg_color"`
	CountryColor   string `json:"country_color"`
	CoastlineColor string `json:"coastline_color"`
}

// NaturalEarth returns the map layout used by every choropleth.
func NaturalEarth() *Geo {
	return &Geo{
		Projection:     "natural earth",
		LatRange:       Range{-53, 76},
		LonRange:       Range{-137, 168},
		ShowFrame:      false,
		ShowCountries:  true,
		LandColor:      "white",
		BgColor:        PaperColor,
		CountryColor:   "gray",
		CoastlineColor: "gray",
	}
}

// Spec is an immutable chart description. Build returns a fresh one per call.
type Spec struct {
	Kind          Kind              `json:"kind"`
	Title         string            `json:"title"`
	Data          Data              `json:"data"`
	Encoding      Encoding          `json:"encoding"`
	XAxis         Axis              `json:"x_axis"`
	YAxis         Axis              `json:"y_axis"`
	Labels        map[string]string `json:"labels,omitempty"`
	Height        int               `json:"height,omitempty"`
	Width         int               `json:"width,omitempty"`
	Orientation   string            `json:"orientation,omitempty"`
	BarMode       string            `json:"bar_mode,omitempty"`
	FacetWrap     int               `json:"facet_wrap,omitempty"`
	Bins          int               `json:"bins,omitempty"`
	Marker        *Marker           `json:"marker,omitempty"`
	ColorScale    string            `json:"color_scale,omitempty"`
	ColorbarTitle string            `json:"colorbar_title,omitempty"`
	ColorSequence []string          `json:"color_sequence,omitempty"`
	Geo           *Geo              `json:"geo,omitempty"`
	Annotations   []Annotation      `json:"annotations,omitempty"`
	Legend        *Legend           `json:"legend,omitempty"`
	PaperColor    string            `json:"paper_color"`
	PlotColor     string            `json:"plot_color,omitempty"`
	Placeholder   bool              `json:"placeholder,omitempty"`
}

// Placeholder returns the empty chart shown when a selection has nothing to draw.
func Placeholder(title string) *Spec {
	return &Spec{
		Kind:        ScatterSizedColored,
		Title:       title,
		Data:        Data{Fields: []Field{}, Records: [][]any{}},
		PaperColor:  PaperColor,
		Placeholder: true,
	}
}
