// Command genmock writes a small set of realistic raw input files for
// local pipeline runs: CSV and JSON in both feeds' shapes, including an
// EIA-style response envelope, the known upstream column typos, and a
// few deliberately dirty rows the pipeline must drop or skip.
//
// Usage:
//
//	go run ./cmd/genmock -out data/raw -start 2024-05-01 -days 7
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var cities = []string{"new york", "chicago", "houston", "phoenix", "seattle"}

func main() {
	outDir := flag.String("out", "data/raw", "directory to write raw mock files into")
	startStr := flag.String("start", "2024-05-01", "first date (YYYY-MM-DD)")
	days := flag.Int("days", 7, "number of days per file")
	seed := flag.Int64("seed", 42, "random seed for reproducible values")
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -start: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	end := start.AddDate(0, 0, *days-1)

	written := 0
	for i, city := range cities {
		var err error
		// Alternate formats so both parser paths get exercised.
		if i%2 == 0 {
			err = writeEnergyJSON(*outDir, city, start, end, rng)
		} else {
			err = writeEnergyCSV(*outDir, city, start, end, rng)
		}
		if err == nil {
			err = writeWeatherCSV(*outDir, city, start, end, rng)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "write mock files for %s: %v\n", city, err)
			os.Exit(1)
		}
		written += 2
	}

	if err := writeJunkFiles(*outDir); err != nil {
		fmt.Fprintf(os.Stderr, "write junk files: %v\n", err)
		os.Exit(1)
	}
	written += 2

	fmt.Printf("wrote %d files to %s\n", written, *outDir)
}

func spanName(kind, city string, start, end time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s", kind, city,
		start.Format("2006-01-02"), end.Format("2006-01-02"), ext)
}

// writeEnergyJSON emits the EIA response envelope with hourly periods
// and the unqualified "value" demand column, plus the respondent-name
// typo the healer fixes.
func writeEnergyJSON(dir, city string, start, end time.Time, rng *rand.Rand) error {
	var rows []map[string]any
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows = append(rows, map[string]any{
			"period":           d.Format("2006-01-02T15"),
			"responndent-name": "Mock ISO " + city,
			"value":            15000 + rng.Float64()*10000,
		})
	}
	payload := map[string]any{"response": map[string]any{"data": rows}}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, spanName("energy", city, start, end, "json")), data, 0o644)
}

func writeEnergyCSV(dir, city string, start, end time.Time, rng *rand.Rand) error {
	records := [][]string{{"period", "respondent-name", "value", "timezone-description"}}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		records = append(records, []string{
			d.Format("2006-01-02T15"),
			"Mock ISO " + city,
			fmt.Sprintf("%.1f", 15000+rng.Float64()*10000),
			"Eastern",
		})
	}
	// One row with an unparseable period: dropped row-wise.
	records = append(records, []string{"not-a-date", "Mock ISO " + city, "12345", "Eastern"})
	return writeCSV(filepath.Join(dir, spanName("energy", city, start, end, "csv")), records)
}

// writeWeatherCSV emits daily observations with the tempp_max_F typo on
// some files and an occasional missing temperature cell.
func writeWeatherCSV(dir, city string, start, end time.Time, rng *rand.Rand) error {
	maxCol := "temp_max_F"
	if rng.Intn(2) == 0 {
		maxCol = "tempp_max_F"
	}
	records := [][]string{{"date", maxCol, "temp_min_F", "precipitation"}}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		tmax := fmt.Sprintf("%.1f", 60+rng.Float64()*30)
		if rng.Intn(10) == 0 {
			tmax = "" // sensor gap
		}
		records = append(records, []string{
			d.Format("2006-01-02"),
			tmax,
			fmt.Sprintf("%.1f", 40+rng.Float64()*20),
			fmt.Sprintf("%.2f", rng.Float64()),
		})
	}
	return writeCSV(filepath.Join(dir, spanName("weather", city, start, end, "csv")), records)
}

// writeJunkFiles drops inputs the pipeline must skip without failing:
// a misnamed file and a raw API response dump.
func writeJunkFiles(dir string) error {
	if err := writeCSV(filepath.Join(dir, "notes.csv"), [][]string{{"note"}, {"scratch file"}}); err != nil {
		return err
	}
	dump := map[string]any{"results": []any{map[string]any{"datatype": "TMAX", "value": 71.0}}}
	data, err := json.Marshal(dump)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "weather_seattle_2024-05-01_2024-05-07_raw.json"), data, 0o644)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
