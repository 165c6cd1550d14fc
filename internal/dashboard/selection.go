package dashboard

import (
	"fmt"

	"povdash/internal/engine"
)

// Key names one input of a Selection.
type Key string

const (
	KeyCountry    Key = "country"
	KeyCountries  Key = "countries"
	KeyYear       Key = "year"
	KeyYears      Key = "years"
	KeyIndicator  Key = "indicator"
	KeyIndicators Key = "indicators"
	KeyLevel      Key = "level"
	KeyBins       Key = "bins"
	KeyClusters   Key = "clusters"
)

// Selection is the current value of every dashboard input. Unset inputs
// are zero: empty strings, nil slices and nil pointers.
type Selection struct {
	Country    string   `json:"country,omitempty"`
	Countries  []string `json:"countries,omitempty"`
	Year       *int     `json:"year,omitempty"`
	Years      []int    `json:"years,omitempty"`
	Indicator  string   `json:"indicator,omitempty"`
	Indicators []string `json:"indicators,omitempty"`
	Level      *int     `json:"level,omitempty"`
	Bins       *int     `json:"bins,omitempty"`
	Clusters   *int     `json:"clusters,omitempty"`
}

// State of a widget's inputs.
type State int

const (
	NoSelection State = iota
	HasSelection
)

func (s State) String() string {
	if s == HasSelection {
		return "has-selection"
	}
	return "no-selection"
}

// Has reports whether the input named by k is set.
func (s Selection) Has(k Key) bool {
	switch k {
	case KeyCountry:
		return s.Country != ""
	case KeyCountries:
		return len(s.Countries) > 0
	case KeyYear:
		return s.Year != nil
	case KeyYears:
		return len(s.Years) > 0
	case KeyIndicator:
		return s.Indicator != ""
	case KeyIndicators:
		return len(s.Indicators) > 0
	case KeyLevel:
		return s.Level != nil
	case KeyBins:
		return s.Bins != nil
	case KeyClusters:
		return s.Clusters != nil
	}
	return false
}

// State is HasSelection once every required key is set.
func (s Selection) State(required ...Key) State {
	for _, k := range required {
		if !s.Has(k) {
			return NoSelection
		}
	}
	return HasSelection
}

// Require returns ErrNoSelection naming the first missing key.
func (s Selection) Require(required ...Key) error {
	for _, k := range required {
		if !s.Has(k) {
			return fmt.Errorf("%w: %s", engine.ErrNoSelection, k)
		}
	}
	return nil
}

// intOr returns *p, or fallback when p is nil.
func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// IntPtr is a convenience for building selections.
func IntPtr(v int) *int { return &v }
