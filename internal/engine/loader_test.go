package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"povdash/internal/table"
)

const longCSV = `Country Name,Country Code,year,GINI index (World Bank estimate),"Population, total"
Germany,DEU,2010,31.1,81776930
France,FRA,2010,,65027507
World,WLD,2010,,6922947261
`

const wideCSV = `Country Name,Country Code,Indicator Name,Indicator Code,2010,2011
Germany,DEU,"Population, total",SP.POP.TOTL,81776930,80274983
World,WLD,"Population, total",SP.POP.TOTL,6922947261,
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadInfersColumnKinds(t *testing.T) {
	// 1. Write fixture
	path := writeFile(t, "poverty.csv", longCSV)

	// 2. Run Loader
	tb, err := Load(path)
	require.NoError(t, err)

	// 3. Assertions
	require.Equal(t, 3, tb.Len())

	kinds := map[string]table.Kind{
		ColCountryName:      table.String,
		ColYear:             table.Int,
		IndicatorGini:       table.Float,
		IndicatorPopulation: table.Int,
	}
	for col, want := range kinds {
		got, ok := tb.Kind(col)
		require.True(t, ok, col)
		assert.Equal(t, want, got, col)
	}
	assert.True(t, tb.IsNull(1, IndicatorGini))
}

func TestLoadWideKeepsStringYearColumns(t *testing.T) {
	tb, err := Load(writeFile(t, "wide.csv", wideCSV))
	require.NoError(t, err)

	assert.True(t, tb.Has("2010"))
	assert.True(t, tb.IsNull(1, "2011"))
	v, ok := tb.Float(0, "2011")
	require.True(t, ok)
	assert.Equal(t, 80274983.0, v)
}

func TestLoadBoolColumn(t *testing.T) {
	tb, err := Load(writeFile(t, "flags.csv", "Country Name,is_country\nA,True\nWorld,False\n"))
	require.NoError(t, err)

	k, _ := tb.Kind(ColIsCountry)
	assert.Equal(t, table.Bool, k)
	assert.True(t, tb.Bool(0, ColIsCountry))
	assert.False(t, tb.Bool(1, ColIsCountry))
}

func TestLoadNonFiniteValuesAreNull(t *testing.T) {
	tb, err := Load(writeFile(t, "inf.csv", "k,v\na,inf\nb,-Infinity\nc,NaN\nd,1.5\n"))
	require.NoError(t, err)

	k, _ := tb.Kind("v")
	assert.Equal(t, table.Float, k)
	for row := 0; row < 3; row++ {
		assert.True(t, tb.IsNull(row, "v"), "row %d", row)
		assert.Nil(t, tb.Value(row, "v"))
	}
	v, ok := tb.Float(3, "v")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
}

func TestLoadZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.csv.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(wideCSV))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	tb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, "DEU", tb.String(0, ColCountryCode))
}

func TestLoadFailures(t *testing.T) {
	cases := map[string]string{
		"missing":   filepath.Join(t.TempDir(), "nope.csv"),
		"empty":     writeFile(t, "empty.csv", ""),
		"malformed": writeFile(t, "bad.csv", "a,b\n1,2,3\n"),
		"duplicate": writeFile(t, "dup.csv", "a,a\n1,2\n"),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataLoad)

			var dle *DataLoadError
			require.True(t, errors.As(err, &dle))
			assert.Equal(t, path, dle.Path)
		})
	}
}

func TestEnsureCountryFlag(t *testing.T) {
	regions := NewRegionSet()

	derived, err := EnsureCountryFlag(table.MustNew(table.Strings(ColCountryName, "Chad", "World", "High income")), ColCountryName, regions)
	require.NoError(t, err)
	assert.True(t, derived.Bool(0, ColIsCountry))
	assert.False(t, derived.Bool(1, ColIsCountry))
	assert.False(t, derived.Bool(2, ColIsCountry))

	// an existing flag is preserved even when it disagrees with the region list
	kept := table.MustNew(table.Strings(ColCountryName, "World"), table.Bools(ColIsCountry, true))
	out, err := EnsureCountryFlag(kept, ColCountryName, regions)
	require.NoError(t, err)
	assert.True(t, out.Bool(0, ColIsCountry))
}
