package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the loader, the query engine and the clustering adapter.
var (
	// ErrDataLoad marks a missing or malformed input file. Fatal at startup.
	ErrDataLoad = errors.New("data load failed")

	// ErrNotFound is returned when a requested key has no matching rows.
	ErrNotFound = errors.New("not found")

	// ErrNoSelection is returned when a required selection key is absent.
	ErrNoSelection = errors.New("no selection")

	// ErrNoIndicatorsSelected is returned by clustering when the indicator list is empty.
	ErrNoIndicatorsSelected = errors.New("no indicators selected")

	// ErrNoDataForCombination is returned when the requested slice has nothing to show.
	ErrNoDataForCombination = errors.New("no available data for the selected combination")
)

// DataLoadError reports an input file that could not be read or parsed.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDataLoad) true for every DataLoadError.
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }
