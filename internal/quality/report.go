// Package quality computes machine-checkable data-quality reports over
// flat tables: missing values, rule-based and IQR outliers, and a
// freshness verdict.
package quality

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/couchcryptid/energy-weather-recon/internal/table"
)

// Physically implausible Fahrenheit bounds for rule-based temperature
// outliers. Readings outside (-50, 130) are sensor or transcription
// errors, not weather.
const (
	tempRuleMax = 130
	tempRuleMin = -50
)

// DatasetInfo records the table shape alongside the sub-reports.
type DatasetInfo struct {
	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`
}

// OutlierEntry reports a column's outlier counts, or a sentinel string
// when the column is absent or non-numeric. Rule-based and IQR counts
// answer different questions (implausible vs statistically unusual)
// and are reported side by side, never merged.
type OutlierEntry struct {
	RuleBased int    `json:"rule_based"`
	IQR       int    `json:"iqr"`
	Sentinel  string `json:"-"`
}

// MarshalJSON emits the sentinel string verbatim when set, otherwise
// the two counts.
func (e OutlierEntry) MarshalJSON() ([]byte, error) {
	if e.Sentinel != "" {
		return json.Marshal(e.Sentinel)
	}
	type counts OutlierEntry
	return json.Marshal(counts(e))
}

// UnmarshalJSON accepts either form emitted by MarshalJSON.
func (e *OutlierEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Sentinel)
	}
	type counts OutlierEntry
	var c counts
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*e = OutlierEntry(c)
	return nil
}

// Freshness is the staleness verdict over the table's date column.
type Freshness struct {
	LatestDate *string `json:"latest_date"`
	DaysAgo    *int    `json:"days_ago"`
	IsFresh    bool    `json:"is_fresh"`
	Error      string  `json:"error,omitempty"`
}

// Report is the full quality artifact written once per kind per run.
type Report struct {
	DatasetInfo   DatasetInfo             `json:"dataset_info"`
	MissingValues map[string]int          `json:"missing_values"`
	Outliers      map[string]OutlierEntry `json:"outliers"`
	Freshness     Freshness               `json:"freshness"`
}

// Generate computes a quality report over t. tempCols, demandCol, and
// dateCol name the columns of interest; thresholdDays is the freshness
// limit and is a caller decision, not a constant of this package.
//
// Argument-shape violations (nil table, nil tempCols, empty column
// names) are caller-contract errors and fail immediately; data defects
// never do.
func Generate(t *table.Table, tempCols []string, demandCol, dateCol string, thresholdDays int) (*Report, error) {
	if t == nil {
		return nil, fmt.Errorf("quality: table is required")
	}
	if tempCols == nil {
		return nil, fmt.Errorf("quality: tempCols must be a list (may be empty)")
	}
	if demandCol == "" || dateCol == "" {
		return nil, fmt.Errorf("quality: demandCol and dateCol are required")
	}

	return &Report{
		DatasetInfo:   DatasetInfo{RowCount: t.NumRows(), ColumnCount: t.NumCols()},
		MissingValues: missingValues(t),
		Outliers:      outliers(t, tempCols, demandCol),
		Freshness:     freshness(t, dateCol, thresholdDays),
	}, nil
}

// missingValues counts null cells per column over the whole table.
func missingValues(t *table.Table) map[string]int {
	counts := make(map[string]int, t.NumCols())
	for _, col := range t.Columns() {
		n := 0
		for _, cell := range t.Column(col) {
			if table.IsNull(cell) {
				n++
			}
		}
		counts[col] = n
	}
	return counts
}

// outliers computes rule-based and IQR counts for every column of
// interest. Missing columns report "Column not found"; present but
// non-numeric columns report a typed sentinel instead of a count.
func outliers(t *table.Table, tempCols []string, demandCol string) map[string]OutlierEntry {
	out := make(map[string]OutlierEntry, len(tempCols)+1)

	for _, col := range tempCols {
		out[col] = columnOutliers(t, col, func(v float64) bool {
			return v > tempRuleMax || v < tempRuleMin
		})
	}
	out[demandCol] = columnOutliers(t, demandCol, func(v float64) bool {
		return v < 0
	})

	return out
}

// columnOutliers evaluates one column against a rule predicate and the
// IQR fences.
func columnOutliers(t *table.Table, col string, rule func(float64) bool) OutlierEntry {
	if !t.HasColumn(col) {
		return OutlierEntry{Sentinel: "Column not found"}
	}

	values, numeric := numericColumn(t, col)
	if !numeric {
		return OutlierEntry{Sentinel: fmt.Sprintf("Column %s is not numeric", col)}
	}

	entry := OutlierEntry{}
	for _, v := range values {
		if rule(v) {
			entry.RuleBased++
		}
	}
	entry.IQR = iqrOutliers(values)
	return entry
}

// numericColumn extracts a column's non-null values as floats. The
// column counts as numeric when every non-null cell parses; a column
// with no non-null cells is numeric with zero values.
func numericColumn(t *table.Table, col string) ([]float64, bool) {
	var values []float64
	for _, cell := range t.Column(col) {
		if table.IsNull(cell) {
			continue
		}
		v, ok := table.Float(cell)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// iqrOutliers counts values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
func iqrOutliers(values []float64) int {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	n := 0
	for _, v := range values {
		if v < lo || v > hi {
			n++
		}
	}
	return n
}

// percentile computes the p-quantile of a sorted slice with linear
// interpolation between closest ranks (the same definition the
// upstream dashboard's quantile uses).
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// freshness finds the latest valid date in dateCol and compares it,
// normalized to UTC, against the current clock. Dates without an
// explicit zone are assumed UTC.
func freshness(t *table.Table, dateCol string, thresholdDays int) Freshness {
	if !t.HasColumn(dateCol) {
		return Freshness{IsFresh: false, Error: fmt.Sprintf("column %s not found", dateCol)}
	}

	var latest time.Time
	found := false
	for _, cell := range t.Column(dateCol) {
		d, ok := domain.ParseDate(cell)
		if !ok {
			continue
		}
		if !found || d.After(latest) {
			latest = d
			found = true
		}
	}

	if !found {
		return Freshness{IsFresh: false, Error: fmt.Sprintf("no valid dates in column %s", dateCol)}
	}

	daysAgo := int(domain.Now().UTC().Sub(latest).Hours() / 24)
	latestStr := latest.Format(domain.DateLayout)
	return Freshness{
		LatestDate: &latestStr,
		DaysAgo:    &daysAgo,
		IsFresh:    daysAgo <= thresholdDays,
	}
}

// WriteFile marshals the report as indented JSON to path.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quality report: %w", err)
	}
	return atomicWrite(path, data)
}
