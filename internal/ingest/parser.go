// Package ingest turns raw fetcher files into normalized records.
//
// Each file is classified by filename, parsed according to its
// extension, and reduced to zero or more [domain.RawRecord] values.
// Per-file failures are reported as *SkipError; per-row defects
// (unparseable dates, non-numeric measurements) drop the row only.
package ingest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/couchcryptid/energy-weather-recon/internal/table"
)

// ParseFile parses one raw file's content into normalized records.
// The returned records carry the canonical city from the filename
// token and a UTC calendar date per row. Errors are *SkipError values
// describing why the whole file was rejected.
func ParseFile(path string, content []byte) ([]domain.RawRecord, error) {
	class, err := ClassifyFilename(path)
	if err != nil {
		return nil, err
	}

	var rows []map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		rows, err = parseJSONRows(path, content)
	case ".csv":
		rows, err = parseCSVRows(path, content)
	default:
		err = &SkipError{Reason: ReasonUnsupportedType, Path: filepath.Base(path)}
	}
	if err != nil {
		return nil, err
	}

	city := domain.NormalizeCity(class.CityToken)
	return buildRecords(class.Kind, city, rows, path)
}

// parseJSONRows accepts two structured shapes: a plain list of row
// objects, and the EIA envelope {"response": {"data": [...]}}. A
// "results"-keyed object is a raw API dump the fetcher should not have
// left behind; that and every other shape is rejected.
func parseJSONRows(path string, content []byte) ([]map[string]string, error) {
	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return nil, &SkipError{Reason: ReasonUnrecognizedStructure, Path: filepath.Base(path), Detail: err.Error()}
	}

	switch data := v.(type) {
	case []any:
		return objectRows(path, data)
	case map[string]any:
		if _, ok := data["results"]; ok {
			return nil, &SkipError{Reason: ReasonUnrecognizedStructure, Path: filepath.Base(path), Detail: "raw API response dump"}
		}
		if resp, ok := data["response"].(map[string]any); ok {
			if list, ok := resp["data"].([]any); ok {
				return objectRows(path, list)
			}
		}
		return nil, &SkipError{Reason: ReasonUnrecognizedStructure, Path: filepath.Base(path), Detail: "object without response.data"}
	default:
		return nil, &SkipError{Reason: ReasonUnrecognizedStructure, Path: filepath.Base(path), Detail: fmt.Sprintf("unexpected top-level %T", v)}
	}
}

// objectRows converts a JSON list into string-valued rows. Non-object
// elements reject the file; value stringification mirrors how the CSV
// feeds carry the same data.
func objectRows(path string, list []any) ([]map[string]string, error) {
	rows := make([]map[string]string, 0, len(list))
	for _, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, &SkipError{Reason: ReasonUnrecognizedStructure, Path: filepath.Base(path), Detail: "list element is not an object"}
		}
		row := make(map[string]string, len(obj))
		for k, val := range obj {
			row[k] = stringifyValue(val)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// parseCSVRows reads a headered CSV into string-valued rows.
func parseCSVRows(path string, content []byte) ([]map[string]string, error) {
	t, err := table.ReadCSV(strings.NewReader(string(content)))
	if err != nil {
		return nil, &SkipError{Reason: ReasonUnrecognizedStructure, Path: filepath.Base(path), Detail: err.Error()}
	}

	rows := make([]map[string]string, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		rows = append(rows, t.RowMap(i))
	}
	return rows, nil
}

// buildRecords normalizes raw rows into RawRecords: date resolution
// with period fallback, demand column detection for energy, and
// numeric validation. Rows failing validation are dropped; a file
// whose every row lacks a usable date is skipped whole.
func buildRecords(kind domain.Kind, city string, rows []map[string]string, path string) ([]domain.RawRecord, error) {
	records := make([]domain.RawRecord, 0, len(rows))
	droppedNoDate := 0

	for _, row := range rows {
		date, dateCol, ok := resolveDate(row)
		if !ok {
			droppedNoDate++
			continue
		}

		fields := make(map[string]string, len(row))
		for k, v := range row {
			if k == dateCol {
				continue
			}
			fields[k] = v
		}

		if kind == domain.KindEnergy {
			if !resolveDemand(fields) {
				continue
			}
		}
		if !numericFieldsValid(kind, fields) {
			continue
		}

		records = append(records, domain.RawRecord{
			Kind:   kind,
			City:   city,
			Date:   date,
			Fields: fields,
		})
	}

	if len(records) == 0 && droppedNoDate > 0 && droppedNoDate == len(rows) {
		return nil, &SkipError{Reason: ReasonNoUsableDate, Path: filepath.Base(path), Detail: "no row has a usable date or period"}
	}
	return records, nil
}

// resolveDate finds the first date alias column whose value parses,
// honoring the documented fallback order (date, then period, then
// generic timestamps). Returns the consumed column name so it can be
// excluded from the value fields.
func resolveDate(row map[string]string) (time.Time, string, bool) {
	for _, alias := range domain.DateAliases {
		raw, ok := row[alias]
		if !ok {
			continue
		}
		if date, ok := domain.ParseDate(raw); ok {
			return date, alias, true
		}
	}
	return time.Time{}, "", false
}

// resolveDemand rewrites the first matching demand alias to the
// canonical energy_demand_MW column. Rows without a numeric demand
// value are useless downstream and report false.
func resolveDemand(fields map[string]string) bool {
	for _, alias := range domain.DemandAliases {
		raw, ok := fields[alias]
		if !ok {
			continue
		}
		if _, numeric := table.Float(raw); !numeric {
			return false
		}
		if alias != "energy_demand_MW" {
			delete(fields, alias)
			fields["energy_demand_MW"] = raw
		}
		return true
	}
	return false
}

// numericFieldsValid checks that every present, non-null measurement
// column parses as a number. Healing has not run yet, so known typo
// aliases are checked under their raw names too.
func numericFieldsValid(kind domain.Kind, fields map[string]string) bool {
	cols := domain.NumericColumns(kind)
	if kind == domain.KindWeather {
		cols = append(append([]string(nil), cols...), "tempp_max_F")
	}
	for _, col := range cols {
		raw, ok := fields[col]
		if !ok || table.IsNull(raw) {
			continue
		}
		if _, numeric := table.Float(raw); !numeric {
			return false
		}
	}
	return true
}
