package quality_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/couchcryptid/energy-weather-recon/internal/quality"
	"github.com/couchcryptid/energy-weather-recon/internal/table"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozenNow pins the clock for freshness assertions.
var frozenNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func withFrozenClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(frozenNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func weatherTable(rows ...map[string]string) *table.Table {
	t := table.New("date", "city", "temp_max_F", "temp_min_F", "precipitation")
	for _, r := range rows {
		t.AppendMap(r)
	}
	return t
}

func TestGenerateContractViolations(t *testing.T) {
	tbl := weatherTable()

	t.Run("nil table", func(t *testing.T) {
		_, err := quality.Generate(nil, []string{}, "energy_demand_MW", "date", 2)
		assert.Error(t, err)
	})

	t.Run("nil temp columns", func(t *testing.T) {
		_, err := quality.Generate(tbl, nil, "energy_demand_MW", "date", 2)
		assert.Error(t, err)
	})

	t.Run("empty column names", func(t *testing.T) {
		_, err := quality.Generate(tbl, []string{}, "", "date", 2)
		assert.Error(t, err)
		_, err = quality.Generate(tbl, []string{}, "energy_demand_MW", "", 2)
		assert.Error(t, err)
	})

	t.Run("empty temp list is valid", func(t *testing.T) {
		_, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 2)
		assert.NoError(t, err)
	})
}

func TestMissingValues(t *testing.T) {
	withFrozenClock(t)

	tbl := weatherTable(
		map[string]string{"date": "2024-05-01", "city": "Chicago", "temp_max_F": "70", "temp_min_F": "50"},
		map[string]string{"date": "2024-05-02", "city": "Chicago", "temp_max_F": "", "temp_min_F": "NaN"},
	)

	report, err := quality.Generate(tbl, []string{"temp_min_F", "temp_max_F"}, "energy_demand_MW", "date", 2)
	require.NoError(t, err)

	assert.Equal(t, 0, report.MissingValues["date"])
	assert.Equal(t, 1, report.MissingValues["temp_max_F"])
	assert.Equal(t, 1, report.MissingValues["temp_min_F"])
	assert.Equal(t, 2, report.MissingValues["precipitation"])
	assert.Equal(t, 2, report.DatasetInfo.RowCount)
	assert.Equal(t, 5, report.DatasetInfo.ColumnCount)
}

func TestRuleBasedOutliers(t *testing.T) {
	withFrozenClock(t)

	t.Run("temperature bounds", func(t *testing.T) {
		tbl := table.New("date", "temp_max_F")
		for _, v := range []string{"70", "135", "65"} {
			tbl.AppendMap(map[string]string{"date": "2024-05-01", "temp_max_F": v})
		}

		report, err := quality.Generate(tbl, []string{"temp_max_F"}, "energy_demand_MW", "date", 2)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Outliers["temp_max_F"].RuleBased)
	})

	t.Run("negative demand", func(t *testing.T) {
		tbl := table.New("date", "energy_demand_MW")
		for _, v := range []string{"20000", "25000", "-100"} {
			tbl.AppendMap(map[string]string{"date": "2024-05-01", "energy_demand_MW": v})
		}

		report, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 2)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Outliers["energy_demand_MW"].RuleBased)
	})

	t.Run("implausibly cold", func(t *testing.T) {
		tbl := table.New("date", "temp_min_F")
		for _, v := range []string{"-60", "10"} {
			tbl.AppendMap(map[string]string{"date": "2024-05-01", "temp_min_F": v})
		}

		report, err := quality.Generate(tbl, []string{"temp_min_F"}, "energy_demand_MW", "date", 2)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Outliers["temp_min_F"].RuleBased)
	})
}

func TestOutlierSentinels(t *testing.T) {
	withFrozenClock(t)

	tbl := table.New("date", "temp_max_F", "notes")
	tbl.AppendMap(map[string]string{"date": "2024-05-01", "temp_max_F": "70", "notes": "windy"})

	report, err := quality.Generate(tbl, []string{"temp_max_F", "temp_min_F", "notes"}, "energy_demand_MW", "date", 2)
	require.NoError(t, err)

	assert.Equal(t, "Column not found", report.Outliers["temp_min_F"].Sentinel)
	assert.Equal(t, "Column not found", report.Outliers["energy_demand_MW"].Sentinel)
	assert.Equal(t, "Column notes is not numeric", report.Outliers["notes"].Sentinel)
	assert.Empty(t, report.Outliers["temp_max_F"].Sentinel)
}

func TestIQROutliers(t *testing.T) {
	withFrozenClock(t)

	// Values 1..10 plus an extreme: fences for the 1..10,100 set leave
	// only 100 outside.
	tbl := table.New("date", "energy_demand_MW")
	for _, v := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "100"} {
		tbl.AppendMap(map[string]string{"date": "2024-05-01", "energy_demand_MW": v})
	}

	report, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 2)
	require.NoError(t, err)

	entry := report.Outliers["energy_demand_MW"]
	assert.Equal(t, 1, entry.IQR)
	// The extreme is positive, so the rule-based (negative demand)
	// count stays zero: the two views answer different questions.
	assert.Equal(t, 0, entry.RuleBased)
}

func TestFreshness(t *testing.T) {
	withFrozenClock(t)

	mkTable := func(dates ...string) *table.Table {
		tbl := table.New("date", "energy_demand_MW")
		for _, d := range dates {
			tbl.AppendMap(map[string]string{"date": d, "energy_demand_MW": "1"})
		}
		return tbl
	}

	t.Run("exactly at threshold is fresh", func(t *testing.T) {
		tbl := mkTable("2024-05-08") // today - 2 days
		report, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 2)
		require.NoError(t, err)

		require.NotNil(t, report.Freshness.DaysAgo)
		assert.Equal(t, 2, *report.Freshness.DaysAgo)
		assert.True(t, report.Freshness.IsFresh)
		require.NotNil(t, report.Freshness.LatestDate)
		assert.Equal(t, "2024-05-08", *report.Freshness.LatestDate)
	})

	t.Run("one past threshold is stale", func(t *testing.T) {
		tbl := mkTable("2024-05-07") // today - 3 days
		report, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 2)
		require.NoError(t, err)

		assert.Equal(t, 3, *report.Freshness.DaysAgo)
		assert.False(t, report.Freshness.IsFresh)
	})

	t.Run("latest date wins", func(t *testing.T) {
		tbl := mkTable("2024-05-01", "2024-05-09", "2024-05-03")
		report, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 1)
		require.NoError(t, err)

		assert.Equal(t, "2024-05-09", *report.Freshness.LatestDate)
		assert.True(t, report.Freshness.IsFresh)
	})

	t.Run("no valid dates", func(t *testing.T) {
		tbl := mkTable("garbage", "")
		report, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 2)
		require.NoError(t, err)

		assert.False(t, report.Freshness.IsFresh)
		assert.Nil(t, report.Freshness.LatestDate)
		assert.Nil(t, report.Freshness.DaysAgo)
		assert.NotEmpty(t, report.Freshness.Error)
	})

	t.Run("missing date column", func(t *testing.T) {
		tbl := table.New("energy_demand_MW")
		tbl.AppendMap(map[string]string{"energy_demand_MW": "1"})
		report, err := quality.Generate(tbl, []string{}, "energy_demand_MW", "date", 2)
		require.NoError(t, err)

		assert.False(t, report.Freshness.IsFresh)
		assert.NotEmpty(t, report.Freshness.Error)
	})
}

func TestReportJSONShape(t *testing.T) {
	withFrozenClock(t)

	tbl := weatherTable(
		map[string]string{"date": "2024-05-09", "city": "Chicago", "temp_max_F": "70", "temp_min_F": "50"},
	)

	report, err := quality.Generate(tbl, []string{"temp_min_F", "temp_max_F"}, "energy_demand_MW", "date", 2)
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Top-level artifact keys consumed by the dashboard.
	for _, key := range []string{"dataset_info", "missing_values", "outliers", "freshness"} {
		assert.Contains(t, decoded, key)
	}

	outliers := decoded["outliers"].(map[string]any)
	// Counted column marshals as an object, absent column as the
	// sentinel string.
	_, isObject := outliers["temp_max_F"].(map[string]any)
	assert.True(t, isObject)
	assert.Equal(t, "Column not found", outliers["energy_demand_MW"])
}
