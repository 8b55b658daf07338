package domain

// Canonical per-kind schemas. Master snapshots carry exactly these
// columns plus city and date; anything else from the raw feeds is
// dropped at merge time.
var (
	energyColumns  = []string{"energy_demand_MW", "respondent_name"}
	weatherColumns = []string{"temp_max_F", "temp_min_F", "precipitation", "timezone"}
)

// CanonicalColumns returns the value columns a master snapshot of the
// given kind carries, in snapshot order.
func CanonicalColumns(k Kind) []string {
	switch k {
	case KindEnergy:
		return energyColumns
	case KindWeather:
		return weatherColumns
	default:
		return nil
	}
}

// columnAliases maps known upstream column names, including recurring
// typos, to their canonical names. Consulted once per merge instead of
// scattering renames through the pipeline.
var columnAliases = map[string]string{
	"value":            "energy_demand_MW", // EIA's unqualified demand column
	"respondent-name":  "respondent_name",
	"responndent-name": "respondent_name", // long-standing upstream typo
	"tempp_max_F":      "temp_max_F",      // same
}

// droppedColumns are upstream columns with no canonical home.
var droppedColumns = map[string]bool{
	"timezone-description": true,
}

// HealFields returns a copy of fields with aliased column names
// rewritten to canonical ones and dead columns removed. A canonical
// name already present wins over an alias of the same column.
func HealFields(fields map[string]string) map[string]string {
	healed := make(map[string]string, len(fields))
	for name, v := range fields {
		if droppedColumns[name] {
			continue
		}
		canonical, ok := columnAliases[name]
		if !ok {
			healed[name] = v
			continue
		}
		if _, exists := fields[canonical]; exists {
			continue
		}
		healed[canonical] = v
	}
	return healed
}

// DemandAliases lists column names accepted as the energy demand
// source, in detection priority order.
var DemandAliases = []string{
	"energy_demand_MW",
	"demand", "Demand", "DEMAND",
	"demand_mw", "demand_MW", "Demand_MW",
	"load", "Load", "LOAD",
	"consumption", "Consumption", "CONSUMPTION",
	"value", "Value", "VALUE",
}

// DateAliases lists column names accepted as the date source, in
// fallback order: an explicit date column always wins, then the EIA
// period column, then generic timestamps.
var DateAliases = []string{
	"date", "Date", "DATE",
	"period", "Period", "PERIOD",
	"timestamp", "Timestamp", "TIMESTAMP",
	"time", "Time", "TIME",
}

// NumericColumns returns the canonical columns of a kind that must
// hold numeric values when present.
func NumericColumns(k Kind) []string {
	switch k {
	case KindEnergy:
		return []string{"energy_demand_MW"}
	case KindWeather:
		return []string{"temp_max_F", "temp_min_F", "precipitation"}
	default:
		return nil
	}
}
