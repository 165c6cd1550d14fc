package engine

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"povdash/internal/table"
)

var errNoHeader = errors.New("file has no header row")

// --- 1. TYPE INFERENCE ---

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

// inferColumn picks the narrowest kind that holds every value of the column:
// bool, then int (no blanks), then float (blanks and non-finite values
// become nulls), else string.
func inferColumn(name string, vals []string) table.Col {
	blanks := 0
	isBool, isInt, isFloat := true, true, true
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			blanks++
			continue
		}
		if isBool {
			_, isBool = parseBool(v)
		}
		if isInt {
			_, err := strconv.ParseInt(v, 10, 64)
			isInt = err == nil
		}
		if isFloat {
			_, err := strconv.ParseFloat(v, 64)
			isFloat = err == nil
		}
	}

	switch {
	case blanks == len(vals):
		nulls := make([]float64, len(vals))
		for i := range nulls {
			nulls[i] = math.NaN()
		}
		return table.Floats(name, nulls...)
	case isBool && blanks == 0:
		out := make([]bool, len(vals))
		for i, v := range vals {
			out[i], _ = parseBool(strings.TrimSpace(v))
		}
		return table.Bools(name, out...)
	case isInt && blanks == 0:
		out := make([]int64, len(vals))
		for i, v := range vals {
			out[i], _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		}
		return table.Ints(name, out...)
	case isFloat:
		out := make([]float64, len(vals))
		for i, v := range vals {
			v = strings.TrimSpace(v)
			if v == "" {
				out[i] = math.NaN()
				continue
			}
			f, _ := strconv.ParseFloat(v, 64)
			if math.IsInf(f, 0) {
				f = math.NaN()
			}
			out[i] = f
		}
		return table.Floats(name, out...)
	default:
		return table.Strings(name, vals...)
	}
}

// --- 2. MAIN LOADER ---

// Load reads a CSV file into a Table. Files ending in .zst are decompressed
// on the fly. Any failure is reported as a *DataLoadError.
func Load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, &DataLoadError{Path: path, Err: err}
		}
		defer dec.Close()
		r = dec
	}

	t, err := Parse(r)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return t, nil
}

// Parse reads CSV data with a header row into a Table.
// Rows with a field count different from the header make the whole read fail.
func Parse(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	cols := make([]table.Col, len(header))
	vals := make([]string, len(records))
	for c, name := range header {
		for r, rec := range records {
			vals[r] = rec[c]
		}
		cols[c] = inferColumn(strings.TrimSpace(name), vals)
	}
	return table.New(cols...)
}

// EnsureCountryFlag returns t with a boolean is_country column. An existing
// column is kept as loaded; otherwise the flag is derived from nameCol by
// excluding the region aggregates.
func EnsureCountryFlag(t *table.Table, nameCol string, regions RegionSet) (*table.Table, error) {
	if t.Has(ColIsCountry) {
		return t, nil
	}
	return t.WithBool(ColIsCountry, func(row int) bool {
		return !regions.Contains(t.String(row, nameCol))
	})
}
