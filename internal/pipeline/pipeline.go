// Package pipeline orchestrates one reconciliation run: scan the raw
// input directory, parse and normalize records, merge them into the
// per-kind master stores, join the masters, and emit the merged table
// plus per-kind quality reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/energy-weather-recon/internal/config"
	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/couchcryptid/energy-weather-recon/internal/ingest"
	"github.com/couchcryptid/energy-weather-recon/internal/join"
	"github.com/couchcryptid/energy-weather-recon/internal/observability"
	"github.com/couchcryptid/energy-weather-recon/internal/quality"
	"github.com/couchcryptid/energy-weather-recon/internal/store"
	"github.com/couchcryptid/energy-weather-recon/internal/table"
)

// RunSummary describes one completed reconciliation run. It is logged,
// returned to the caller, and (optionally) announced downstream.
type RunSummary struct {
	RunDate      string `json:"run_date"`
	FilesScanned int    `json:"files_scanned"`
	FilesParsed  int    `json:"files_parsed"`
	FilesSkipped int    `json:"files_skipped"`
	EnergyRows   int    `json:"energy_rows"`
	WeatherRows  int    `json:"weather_rows"`
	MergedRows   int    `json:"merged_rows"`
	NothingToDo  bool   `json:"nothing_to_do"`
	EnergyFresh  *bool  `json:"energy_fresh,omitempty"`
	WeatherFresh *bool  `json:"weather_fresh,omitempty"`
	MergedPath   string `json:"merged_path,omitempty"`
}

// Announcer publishes a run summary to downstream consumers.
type Announcer interface {
	Announce(ctx context.Context, summary RunSummary) error
}

// Pipeline wires the reconciliation stages together.
type Pipeline struct {
	cfg       *config.Config
	cities    *domain.CityIndex
	logger    *slog.Logger
	metrics   *observability.Metrics
	announcer Announcer // nil when the Kafka sink is disabled
	mode      join.Mode
	ready     atomic.Bool
}

// New creates a Pipeline. The announcer may be nil.
func New(cfg *config.Config, cities *domain.CityIndex, logger *slog.Logger, metrics *observability.Metrics, announcer Announcer) (*Pipeline, error) {
	mode, err := join.ParseMode(cfg.JoinMode)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		cities:    cities,
		logger:    logger,
		metrics:   metrics,
		announcer: announcer,
		mode:      mode,
	}, nil
}

// CheckReadiness returns nil once at least one run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no reconciliation run has completed yet")
	}
	return nil
}

// Run executes one full reconciliation pass. Zero parseable input
// files is a clean no-op, not an error; only infrastructure failures
// (unreadable snapshots, unwritable output) are returned.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	runDate := domain.Now().UTC()
	summary := &RunSummary{RunDate: runDate.Format(domain.DateLayout)}

	energyBatch, weatherBatch, err := p.ingestFiles(ctx, summary)
	if err != nil {
		return nil, err
	}

	if summary.FilesParsed == 0 {
		summary.NothingToDo = true
		p.logger.Info("nothing to do: no parseable input files",
			"input_dir", p.cfg.InputDir,
			"files_scanned", summary.FilesScanned,
		)
		p.finishRun(ctx, summary, start)
		return summary, nil
	}

	energyMaster, weatherMaster, err := p.mergeAndSnapshot(energyBatch, weatherBatch, summary)
	if err != nil {
		return nil, err
	}

	if err := p.joinAndWrite(energyMaster, weatherMaster, runDate, summary); err != nil {
		return nil, err
	}

	if err := p.writeQualityReports(energyMaster, weatherMaster, runDate, summary); err != nil {
		return nil, err
	}

	p.finishRun(ctx, summary, start)
	return summary, nil
}

// ingestFiles scans the input directory and parses every raw file in
// the documented lexical order. Per-file failures are logged and
// counted, never fatal.
func (p *Pipeline) ingestFiles(ctx context.Context, summary *RunSummary) (energy, weather []domain.RawRecord, err error) {
	files, err := ingest.ListInputFiles(p.cfg.InputDir)
	if err != nil {
		return nil, nil, err
	}
	summary.FilesScanned = len(files)
	p.metrics.FilesScanned.Add(float64(len(files)))

	for _, path := range files {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			p.skipFile(summary, &ingest.SkipError{Reason: ingest.ReasonUnreadable, Path: filepath.Base(path), Detail: readErr.Error()})
			continue
		}

		records, parseErr := ingest.ParseFile(path, content)
		if parseErr != nil {
			var skip *ingest.SkipError
			if errors.As(parseErr, &skip) {
				p.skipFile(summary, skip)
				continue
			}
			return nil, nil, parseErr
		}

		summary.FilesParsed++
		p.metrics.FilesParsed.Inc()

		for _, rec := range records {
			p.metrics.RowsParsed.WithLabelValues(string(rec.Kind)).Inc()
			switch rec.Kind {
			case domain.KindEnergy:
				energy = append(energy, rec)
			case domain.KindWeather:
				p.stampTimezone(rec)
				weather = append(weather, rec)
			}
		}
	}
	return energy, weather, nil
}

// stampTimezone resolves the record's timezone from the city metadata
// table when the feed did not carry one, so the weather master persists
// it instead of leaving the column null.
func (p *Pipeline) stampTimezone(rec domain.RawRecord) {
	if table.IsNull(rec.Fields["timezone"]) {
		rec.Fields["timezone"] = p.cities.Lookup(rec.City).Timezone
	}
}

func (p *Pipeline) skipFile(summary *RunSummary, skip *ingest.SkipError) {
	summary.FilesSkipped++
	p.metrics.FilesSkipped.WithLabelValues(string(skip.Reason)).Inc()
	p.logger.Warn("skipping raw file", "reason", skip.Reason, "file", skip.Path, "detail", skip.Detail)
}

// mergeAndSnapshot loads both masters, applies the batches with
// last-write-wins, and persists the snapshots.
func (p *Pipeline) mergeAndSnapshot(energyBatch, weatherBatch []domain.RawRecord, summary *RunSummary) (*store.Master, *store.Master, error) {
	energyMaster, err := p.mergeKind(domain.KindEnergy, energyBatch)
	if err != nil {
		return nil, nil, err
	}
	summary.EnergyRows = energyMaster.Len()

	weatherMaster, err := p.mergeKind(domain.KindWeather, weatherBatch)
	if err != nil {
		return nil, nil, err
	}
	summary.WeatherRows = weatherMaster.Len()

	return energyMaster, weatherMaster, nil
}

func (p *Pipeline) mergeKind(kind domain.Kind, batch []domain.RawRecord) (*store.Master, error) {
	path := p.masterPath(kind)
	master, err := store.Open(kind, path)
	if err != nil {
		return nil, err
	}

	applied := master.Merge(batch)
	p.metrics.RowsMerged.WithLabelValues(string(kind)).Add(float64(applied))

	if err := master.Snapshot(path); err != nil {
		return nil, err
	}
	p.logger.Info("master merged",
		"kind", kind,
		"batch_rows", len(batch),
		"applied_rows", applied,
		"master_rows", master.Len(),
	)
	return master, nil
}

func (p *Pipeline) masterPath(kind domain.Kind) string {
	return filepath.Join(p.cfg.ProcessedDir, fmt.Sprintf("%s_master.csv", kind))
}

// joinAndWrite produces the merged output table. The join is skipped
// (not failed) when either master is empty, matching the collaborator
// contract that one missing dataset must not abort the run.
func (p *Pipeline) joinAndWrite(energyMaster, weatherMaster *store.Master, runDate time.Time, summary *RunSummary) error {
	if energyMaster.Len() == 0 || (weatherMaster.Len() == 0 && p.mode == join.ModeInner) {
		p.logger.Info("skipping merge: one or both masters empty",
			"energy_rows", energyMaster.Len(),
			"weather_rows", weatherMaster.Len(),
		)
		return nil
	}

	merged, err := join.Join(energyMaster.Table(), weatherMaster.Table(), p.mode, p.cities)
	if err != nil {
		return err
	}
	summary.MergedRows = merged.NumRows()
	p.metrics.RowsJoined.Add(float64(merged.NumRows()))

	path := filepath.Join(p.cfg.ProcessedDir, fmt.Sprintf("processed_merged_data_%s.csv", runStamp(runDate)))
	if err := merged.WriteFileAtomic(path); err != nil {
		return fmt.Errorf("write merged output: %w", err)
	}
	summary.MergedPath = path

	p.logger.Info("merged output written", "path", path, "rows", merged.NumRows(), "mode", p.mode)
	return nil
}

// writeQualityReports emits one quality artifact per kind that has
// data. The temperature columns for the energy report are filtered to
// those actually present, so its outlier section reports the
// "Column not found" sentinel only for the demand check's temp peers.
func (p *Pipeline) writeQualityReports(energyMaster, weatherMaster *store.Master, runDate time.Time, summary *RunSummary) error {
	if weatherMaster.Len() > 0 {
		t := weatherMaster.Table()
		report, err := quality.Generate(t, []string{"temp_min_F", "temp_max_F"}, "energy_demand_MW", "date", p.cfg.WeatherFreshnessDays)
		if err != nil {
			return err
		}
		if err := p.writeReport(domain.KindWeather, report, runDate); err != nil {
			return err
		}
		summary.WeatherFresh = &report.Freshness.IsFresh
	} else {
		p.logger.Info("no weather data to check quality")
	}

	if energyMaster.Len() > 0 {
		t := energyMaster.Table()
		tempCols := []string{}
		for _, col := range []string{"temp_min_F", "temp_max_F"} {
			if t.HasColumn(col) {
				tempCols = append(tempCols, col)
			}
		}
		report, err := quality.Generate(t, tempCols, "energy_demand_MW", "date", p.cfg.EnergyFreshnessDays)
		if err != nil {
			return err
		}
		if err := p.writeReport(domain.KindEnergy, report, runDate); err != nil {
			return err
		}
		summary.EnergyFresh = &report.Freshness.IsFresh
	} else {
		p.logger.Info("no energy data to check quality")
	}

	return nil
}

func (p *Pipeline) writeReport(kind domain.Kind, report *quality.Report, runDate time.Time) error {
	path := filepath.Join(p.cfg.ReportDir, fmt.Sprintf("quality_report_%s_%s.json", kind, runStamp(runDate)))
	if err := report.WriteFile(path); err != nil {
		return err
	}
	p.logger.Info("quality report written", "kind", kind, "path", path, "is_fresh", report.Freshness.IsFresh)
	return nil
}

// finishRun records run metrics, marks readiness, and announces the
// summary when a sink is configured. Announce failures are logged, not
// propagated: the artifacts on disk are the source of truth.
func (p *Pipeline) finishRun(ctx context.Context, summary *RunSummary, start time.Time) {
	p.metrics.RunsTotal.Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.metrics.LastRunUnixtime.Set(float64(domain.Now().Unix()))
	p.ready.Store(true)

	if p.announcer != nil {
		if err := p.announcer.Announce(ctx, *summary); err != nil {
			p.logger.Warn("run announcement failed", "error", err)
		}
	}
}

// RunLoop executes Run immediately and then on every interval tick
// until the context is cancelled. Run errors are logged and the loop
// continues; a broken run must not stop the next scheduled one.
func (p *Pipeline) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("run interval must be positive")
	}

	p.logger.Info("pipeline loop started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("reconciliation run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// runStamp formats the artifact date suffix, e.g. 2024_05_01.
func runStamp(t time.Time) string {
	return t.Format("2006_01_02")
}
