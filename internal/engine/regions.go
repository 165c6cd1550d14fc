package engine

// Column and indicator names used across the World Bank poverty tables.
const (
	ColCountryName   = "Country Name"
	ColCountryCode   = "Country Code"
	ColIndicatorName = "Indicator Name"
	ColIndicatorCode = "Indicator Code"
	ColYear          = "year"
	ColIsCountry     = "is_country"

	IndicatorPopulation = "Population, total"
	IndicatorGini       = "GINI index (World Bank estimate)"
)

// DefaultRegions lists the aggregate labels that appear in country-name
// columns but are not countries.
var DefaultRegions = []string{
	"East Asia & Pacific",
	"Europe & Central Asia",
	"Fragile and conflict affected situations",
	"High income",
	"IDA countries classified as fragile situations",
	"IDA total",
	"Latin America & Caribbean",
	"Low & middle income",
	"Low income",
	"Lower middle income",
	"Middle East & North Africa",
	"Middle income",
	"South Asia",
	"Sub-Saharan Africa",
	"Upper middle income",
	"World",
}

// RegionSet is a lookup set of region aggregate labels.
type RegionSet map[string]struct{}

// NewRegionSet builds a RegionSet. With no names it falls back to DefaultRegions.
func NewRegionSet(names ...string) RegionSet {
	if len(names) == 0 {
		names = DefaultRegions
	}
	s := make(RegionSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is a region aggregate.
func (s RegionSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}
