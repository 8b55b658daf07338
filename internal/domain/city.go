package domain

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownCity is the sentinel for empty or unresolvable city labels.
const UnknownCity = "Unknown"

// UnknownTimezone is the sentinel timezone for cities absent from the
// metadata table.
const UnknownTimezone = "Unknown"

var titleCaser = cases.Title(language.English)

// NormalizeCity canonicalizes a raw city token: whitespace trimmed,
// title-cased ("  new york " -> "New York"). Empty input maps to the
// UnknownCity sentinel.
func NormalizeCity(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return UnknownCity
	}
	return titleCaser.String(token)
}

// CityInfo is the static metadata resolved for a canonical city name.
// Lat and Lon are nil for cities outside the metadata table.
type CityInfo struct {
	Timezone string   `yaml:"timezone"`
	Lat      *float64 `yaml:"lat"`
	Lon      *float64 `yaml:"lon"`
}

// CityIndex resolves canonical city names to static metadata.
// Lookups never fail: unlisted cities resolve to the Unknown sentinels.
type CityIndex struct {
	cities map[string]CityInfo
}

func f64(v float64) *float64 { return &v }

// DefaultCities returns the built-in metadata table covering the
// cities both upstream feeds are collected for.
func DefaultCities() *CityIndex {
	return &CityIndex{cities: map[string]CityInfo{
		"New York": {Timezone: "America/New_York", Lat: f64(40.7128), Lon: f64(-74.0060)},
		"Chicago":  {Timezone: "America/Chicago", Lat: f64(41.8781), Lon: f64(-87.6298)},
		"Houston":  {Timezone: "America/Chicago", Lat: f64(29.7604), Lon: f64(-95.3698)},
		"Phoenix":  {Timezone: "America/Phoenix", Lat: f64(33.4484), Lon: f64(-112.0740)},
		"Seattle":  {Timezone: "America/Los_Angeles", Lat: f64(47.6062), Lon: f64(-122.3321)},
	}}
}

// cityMetadataFile is the YAML shape of an external metadata override.
type cityMetadataFile struct {
	Cities map[string]CityInfo `yaml:"cities"`
}

// LoadCityMetadata reads a YAML metadata file and overlays it on the
// built-in table. Entries for already-known cities replace the
// defaults; new cities extend the table.
func LoadCityMetadata(path string) (*CityIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read city metadata: %w", err)
	}

	var file cityMetadataFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse city metadata: %w", err)
	}

	idx := DefaultCities()
	for name, info := range file.Cities {
		if info.Timezone == "" {
			info.Timezone = UnknownTimezone
		}
		idx.cities[NormalizeCity(name)] = info
	}
	return idx, nil
}

// Lookup resolves metadata for a canonical city name. Cities absent
// from the table resolve to an Unknown timezone and nil coordinates.
func (c *CityIndex) Lookup(city string) CityInfo {
	if info, ok := c.cities[city]; ok {
		return info
	}
	return CityInfo{Timezone: UnknownTimezone}
}
