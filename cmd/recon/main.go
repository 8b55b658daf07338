// Command recon runs the energy/weather reconciliation pipeline.
//
// With RUN_INTERVAL unset it performs a single run and exits, suitable
// for cron. With RUN_INTERVAL set it keeps running on that interval and
// serves /healthz, /readyz, and /metrics on HTTP_ADDR.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/energy-weather-recon/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/energy-weather-recon/internal/adapter/kafka"
	"github.com/couchcryptid/energy-weather-recon/internal/config"
	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/couchcryptid/energy-weather-recon/internal/observability"
	"github.com/couchcryptid/energy-weather-recon/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	cities := domain.DefaultCities()
	if cfg.CityMetadataPath != "" {
		cities, err = domain.LoadCityMetadata(cfg.CityMetadataPath)
		if err != nil {
			logger.Error("failed to load city metadata", "path", cfg.CityMetadataPath, "error", err)
			os.Exit(1)
		}
		logger.Info("city metadata loaded", "path", cfg.CityMetadataPath)
	}

	// Run-summary announcements are feature-flagged via KAFKA_ENABLED.
	var announcer pipeline.Announcer
	var kafkaCloser *kafkaadapter.Announcer
	if cfg.KafkaEnabled {
		kafkaCloser = kafkaadapter.NewAnnouncer(cfg, logger)
		announcer = kafkaCloser
		logger.Info("kafka run announcements enabled", "topic", cfg.KafkaAnnounceTopic)
	}

	p, err := pipeline.New(cfg, cities, logger, metrics, announcer)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if cfg.RunInterval == 0 {
		exitCode = runOnce(ctx, p, logger)
	} else {
		runLoop(ctx, cfg, p, logger)
	}

	if kafkaCloser != nil {
		if err := kafkaCloser.Close(); err != nil {
			logger.Error("kafka announcer close error", "error", err)
		}
	}
	os.Exit(exitCode)
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, logger *slog.Logger) int {
	summary, err := p.Run(ctx)
	if err != nil {
		logger.Error("reconciliation run failed", "error", err)
		return 1
	}
	logger.Info("reconciliation run complete",
		"files_parsed", summary.FilesParsed,
		"files_skipped", summary.FilesSkipped,
		"energy_rows", summary.EnergyRows,
		"weather_rows", summary.WeatherRows,
		"merged_rows", summary.MergedRows,
		"nothing_to_do", summary.NothingToDo,
	)
	return 0
}

func runLoop(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.RunLoop(ctx, cfg.RunInterval); err != nil {
			logger.Error("pipeline loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
