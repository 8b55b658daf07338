package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFilename(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantKind domain.Kind
		wantCity string
		wantErr  SkipReason
	}{
		{"energy csv", "energy_chicago_2024-05-01_2024-05-07.csv", domain.KindEnergy, "chicago", ""},
		{"weather json", "weather_seattle_2024-05-01_2024-05-07.json", domain.KindWeather, "seattle", ""},
		{"city with space", "energy_new york_2024-05-01.csv", domain.KindEnergy, "new york", ""},
		{"city with underscore", "weather_new_york_2024-05-01_2024-05-07.csv", domain.KindWeather, "new_york", ""},
		{"nested path uses base name", "sub/dir/energy_houston_2024-05-01.json", domain.KindEnergy, "houston", ""},
		{"unknown prefix", "solar_phoenix_2024-05-01.csv", "", "", ReasonUnparseableFilename},
		{"no embedded date", "energy_phoenix.csv", "", "", ReasonUnparseableFilename},
		{"plain name", "notes.csv", "", "", ReasonUnparseableFilename},
		{"missing city token", "energy_2024-05-01.csv", "", "", ReasonUnparseableFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, err := ClassifyFilename(tt.path)
			if tt.wantErr != "" {
				var skip *SkipError
				require.ErrorAs(t, err, &skip)
				assert.Equal(t, tt.wantErr, skip.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, class.Kind)
			assert.Equal(t, tt.wantCity, class.CityToken)
			assert.False(t, class.Date.IsZero())
		})
	}
}

func TestClassifyFilenameDate(t *testing.T) {
	class, err := ClassifyFilename("weather_seattle_2024-05-01_2024-05-07.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), class.Date)
}

func TestListInputFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	for _, name := range []string{
		"weather_b_2024-05-01.csv",
		"energy_a_2024-05-01.json",
		"nested/energy_c_2024-05-01.csv",
		"readme.txt", // ignored extension
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := ListInputFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	// Lexical order is the documented merge-order contract.
	assert.Equal(t, filepath.Join(dir, "energy_a_2024-05-01.json"), files[0])
	assert.Equal(t, filepath.Join(dir, "nested", "energy_c_2024-05-01.csv"), files[1])
	assert.Equal(t, filepath.Join(dir, "weather_b_2024-05-01.csv"), files[2])
}

func TestListInputFilesMissingRoot(t *testing.T) {
	_, err := ListInputFiles(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
