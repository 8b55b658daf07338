package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims and title-cases", "  new york  ", "New York"},
		{"all caps", "CHICAGO", "Chicago"},
		{"mixed case", "hOuStOn", "Houston"},
		{"already canonical", "Seattle", "Seattle"},
		{"empty is unknown", "", UnknownCity},
		{"whitespace only is unknown", "   ", UnknownCity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCity(tt.input))
		})
	}
}

func TestCityIndexLookup(t *testing.T) {
	idx := DefaultCities()

	t.Run("known city", func(t *testing.T) {
		info := idx.Lookup("New York")
		assert.Equal(t, "America/New_York", info.Timezone)
		require.NotNil(t, info.Lat)
		require.NotNil(t, info.Lon)
		assert.InDelta(t, 40.7128, *info.Lat, 0.0001)
		assert.InDelta(t, -74.0060, *info.Lon, 0.0001)
	})

	t.Run("unknown city never fails", func(t *testing.T) {
		info := idx.Lookup("Atlantis")
		assert.Equal(t, UnknownTimezone, info.Timezone)
		assert.Nil(t, info.Lat)
		assert.Nil(t, info.Lon)
	})
}

func TestLoadCityMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cities.yaml")
	content := `cities:
  denver:
    timezone: America/Denver
    lat: 39.7392
    lon: -104.9903
  New York:
    timezone: America/New_York
    lat: 40.75
    lon: -74.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	idx, err := LoadCityMetadata(path)
	require.NoError(t, err)

	t.Run("new city added with normalized name", func(t *testing.T) {
		info := idx.Lookup("Denver")
		assert.Equal(t, "America/Denver", info.Timezone)
		require.NotNil(t, info.Lat)
		assert.InDelta(t, 39.7392, *info.Lat, 0.0001)
	})

	t.Run("override replaces default", func(t *testing.T) {
		info := idx.Lookup("New York")
		require.NotNil(t, info.Lat)
		assert.InDelta(t, 40.75, *info.Lat, 0.0001)
	})

	t.Run("defaults still present", func(t *testing.T) {
		assert.Equal(t, "America/Chicago", idx.Lookup("Chicago").Timezone)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadCityMetadata(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}
