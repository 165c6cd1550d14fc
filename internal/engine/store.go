package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"povdash/internal/table"
)

// Datasets is the read-only context every query runs against. It is built
// once at startup and never mutated; queries derive new views from it.
type Datasets struct {
	// Wide has one row per (country, indicator) and one string-labelled column per year.
	Wide *table.Table
	// Long has one row per (country, year) and one column per indicator.
	Long *table.Table
	// Series holds indicator metadata keyed by Indicator Name. May be nil.
	Series *table.Table
	// Population is the "Population, total" slice of Wide.
	Population *table.Table
	Regions    RegionSet
}

// Paths locates the input files.
type Paths struct {
	Wide   string
	Long   string
	Series string // optional; a missing file is logged and skipped
}

// NewDatasets validates the tables and derives the shared views.
func NewDatasets(wide, long, series *table.Table, regions RegionSet) (*Datasets, error) {
	if regions == nil {
		regions = NewRegionSet()
	}
	for _, c := range []string{ColCountryName, ColIndicatorName} {
		if !wide.Has(c) {
			return nil, fmt.Errorf("%w: wide table has no %q column", ErrDataLoad, c)
		}
	}
	for _, c := range []string{ColCountryName, ColYear} {
		if !long.Has(c) {
			return nil, fmt.Errorf("%w: long table has no %q column", ErrDataLoad, c)
		}
	}

	wide, err := EnsureCountryFlag(wide, ColCountryName, regions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	long, err = EnsureCountryFlag(long, ColCountryName, regions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}

	return &Datasets{
		Wide:       wide,
		Long:       long,
		Series:     series,
		Population: FilterByEquality(wide, ColIndicatorName, IndicatorPopulation),
		Regions:    regions,
	}, nil
}

// LoadDatasets reads the input files concurrently and builds the Datasets.
// The logger is taken from ctx.
func LoadDatasets(ctx context.Context, paths Paths, regions RegionSet) (*Datasets, error) {
	logger := zerolog.Ctx(ctx)
	g, gctx := errgroup.WithContext(ctx)

	var wide, long, series *table.Table
	load := func(dst **table.Table, name, path string, optional bool) func() error {
		return func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			t, err := Load(path)
			if optional && errors.Is(err, fs.ErrNotExist) {
				logger.Warn().Str("dataset", name).Str("path", path).Msg("optional dataset missing")
				return nil
			}
			if err != nil {
				return err
			}
			*dst = t
			logger.Info().
				Str("dataset", name).
				Str("path", path).
				Int("rows", t.Len()).
				Int("columns", len(t.Columns())).
				Dur("took", time.Since(start)).
				Msg("dataset loaded")
			return nil
		}
	}

	g.Go(load(&wide, "wide", paths.Wide, false))
	g.Go(load(&long, "long", paths.Long, false))
	if paths.Series != "" {
		g.Go(load(&series, "series", paths.Series, true))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewDatasets(wide, long, series, regions)
}

// Reconciliation compares the country names of the wide and long tables.
// Region aggregates are left out of every list.
type Reconciliation struct {
	Shared   []string
	WideOnly []string
	LongOnly []string
}

// ReconcileCountries splits the country names of both tables into the names
// present in both and the names present in only one, each in first-seen order.
func ReconcileCountries(wide, long *table.Table, regions RegionSet) Reconciliation {
	w := Distinct(wide, ColCountryName)
	l := Distinct(long, ColCountryName)
	inLong := make(map[string]bool, len(l))
	for _, n := range l {
		inLong[n] = true
	}
	inWide := make(map[string]bool, len(w))

	var rec Reconciliation
	for _, n := range w {
		inWide[n] = true
		if regions.Contains(n) {
			continue
		}
		if inLong[n] {
			rec.Shared = append(rec.Shared, n)
		} else {
			rec.WideOnly = append(rec.WideOnly, n)
		}
	}
	for _, n := range l {
		if !inWide[n] && !regions.Contains(n) {
			rec.LongOnly = append(rec.LongOnly, n)
		}
	}
	return rec
}
