// Package join combines the energy and weather master snapshots into
// the merged per-(city, date) output table.
package join

import (
	"fmt"

	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/couchcryptid/energy-weather-recon/internal/table"
)

// Mode selects how rows without a weather match are treated.
type Mode string

const (
	// ModeInner emits a row only when both masters have the key.
	// Used when both datasets must be simultaneously fresh.
	ModeInner Mode = "inner"
	// ModeLeftEnergy emits every energy row, null-filling weather
	// fields, so energy availability is never blocked by missing
	// weather.
	ModeLeftEnergy Mode = "left-on-energy"
)

// ParseMode validates a mode string from config.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInner, ModeLeftEnergy:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown join mode %q", s)
	}
}

// OutputColumns is the merged table's column order.
var OutputColumns = []string{
	"date", "city",
	"energy_demand_MW",
	"temp_max_F", "temp_min_F", "precipitation",
	"temp_avg", "weather_available",
	"lat", "lon", "timezone",
}

type joinKey struct {
	Date string
	City string
}

// Join merges the two master tables on (date, city). Duplicate
// timezone columns resolve to the weather side; coordinates always
// come from the static city index so left-mode rows without weather
// still carry them. Both inputs are read-only.
func Join(energy, weather *table.Table, mode Mode, cities *domain.CityIndex) (*table.Table, error) {
	if energy == nil || weather == nil {
		return nil, fmt.Errorf("join: both master tables are required")
	}

	// Masters are deduplicated on (city, date), so a plain map index
	// over the weather side is a complete join index.
	weatherByKey := make(map[joinKey]map[string]string, weather.NumRows())
	for i := 0; i < weather.NumRows(); i++ {
		row := weather.RowMap(i)
		weatherByKey[joinKey{Date: row["date"], City: row["city"]}] = row
	}

	out := table.New(OutputColumns...)
	for i := 0; i < energy.NumRows(); i++ {
		erow := energy.RowMap(i)
		k := joinKey{Date: erow["date"], City: erow["city"]}

		wrow, matched := weatherByKey[k]
		if !matched {
			if mode == ModeInner {
				continue
			}
			wrow = map[string]string{}
		}

		out.AppendMap(mergedRow(erow, wrow, cities))
	}
	return out, nil
}

// mergedRow assembles one output row from an energy row and its
// (possibly empty) weather match.
func mergedRow(erow, wrow map[string]string, cities *domain.CityIndex) map[string]string {
	row := map[string]string{
		"date":             erow["date"],
		"city":             erow["city"],
		"energy_demand_MW": erow["energy_demand_MW"],
		"temp_max_F":       wrow["temp_max_F"],
		"temp_min_F":       wrow["temp_min_F"],
		"precipitation":    wrow["precipitation"],
	}

	tmax, okMax := table.Float(wrow["temp_max_F"])
	tmin, okMin := table.Float(wrow["temp_min_F"])
	if okMax && okMin {
		row["temp_avg"] = table.FormatFloat((tmax + tmin) / 2)
		row["weather_available"] = "true"
	} else {
		row["weather_available"] = "false"
	}

	info := cities.Lookup(erow["city"])
	if info.Lat != nil {
		row["lat"] = table.FormatFloat(*info.Lat)
	}
	if info.Lon != nil {
		row["lon"] = table.FormatFloat(*info.Lon)
	}

	// Timezone collision policy: the weather side wins, the static
	// table fills the gap when weather is absent.
	if tz := wrow["timezone"]; !table.IsNull(tz) {
		row["timezone"] = tz
	} else {
		row["timezone"] = info.Timezone
	}

	return row
}
