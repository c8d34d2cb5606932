package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"akenergy-data/internal/climate"
	"akenergy-data/internal/config"
	"akenergy-data/internal/enrichment/application"
	"akenergy-data/internal/enrichment/infrastructure/csvdata"
	"akenergy-data/internal/enrichment/infrastructure/sqlite"
	"akenergy-data/internal/export"
	"akenergy-data/internal/matching"
	"akenergy-data/internal/observability/metrics"
)

// Lookup filenames expected in the configured lookup directory.
const (
	areaLookupFilename  = "aris_city_to_census_lookups.csv"
	usageSurveyFilename = "monthly_average_kwh_per_res_customer_by_census_area_and_hub.csv"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	metrics.Init()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("pipeline error: %v", err)
	}
	logger.Printf("pipeline complete, outputs in %s", cfg.OutputDir)
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	catalog, err := loadClimate(cfg, logger)
	if err != nil {
		return err
	}
	metrics.SetTableRows("climate_sites", len(catalog))

	result, err := enrich(ctx, cfg, catalog, logger)
	if err != nil {
		return err
	}

	return writeOutputs(ctx, cfg, result, logger)
}

// loadClimate either runs the climate processing stage over the raw
// observation files or reads the previously processed catalog.
func loadClimate(cfg config.Config, logger *log.Logger) ([]climate.SiteMeta, error) {
	start := time.Now()
	if cfg.RawClimateDir != "" {
		processor, err := climate.NewProcessor(logger)
		if err != nil {
			return nil, err
		}
		catalog, err := processor.ProcessDir(cfg.RawClimateDir, cfg.ClimateDir)
		metrics.ObserveStage("climate_process", stageResult(err), time.Since(start))
		return catalog, err
	}
	catalog, err := climate.LoadCatalog(filepath.Join(cfg.ClimateDir, climate.CatalogFilename))
	metrics.ObserveStage("climate_load", stageResult(err), time.Since(start))
	return catalog, err
}

func enrich(ctx context.Context, cfg config.Config, catalog []climate.SiteMeta, logger *log.Logger) (*application.Result, error) {
	db, err := sqlx.Open("sqlite3", cfg.LibraryDB)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	repo, err := sqlite.NewRepository(db)
	if err != nil {
		return nil, err
	}

	loadStart := time.Now()
	communities, err := repo.Communities(ctx)
	if err != nil {
		return nil, err
	}
	utilities, err := repo.Utilities(ctx)
	if err != nil {
		return nil, err
	}
	links, err := repo.Links(ctx)
	if err != nil {
		return nil, err
	}
	misc, err := repo.MiscInfo(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage("library_load", metrics.ResultSuccess, time.Since(loadStart))
	metrics.SetTableRows("communities", len(communities))
	metrics.SetTableRows("utilities", len(utilities))

	lookups, err := csvdata.LoadAreaLookups(filepath.Join(cfg.LookupDir, areaLookupFilename))
	if err != nil {
		return nil, err
	}
	records, err := csvdata.LoadUsageRecords(filepath.Join(cfg.LookupDir, usageSurveyFilename))
	if err != nil {
		return nil, err
	}

	resolver, err := application.NewUtilityResolver(utilities, links, misc)
	if err != nil {
		return nil, err
	}
	assigner, err := application.NewUsageAssigner(matching.New(), cfg.MatchThreshold, lookups, records, logger)
	if err != nil {
		return nil, err
	}
	service, err := application.NewService(climate.Sites(catalog), resolver, assigner, misc, logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := service.Run(ctx, communities)
	metrics.ObserveStage("enrichment", stageResult(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	metrics.SetTableRows("enriched_communities", len(result.Communities))
	metrics.AddUnmatchedNames(len(result.Unmatched))
	return result, nil
}

func writeOutputs(ctx context.Context, cfg config.Config, result *application.Result, logger *log.Logger) error {
	if err := export.WriteDataset(cfg.OutputDir, result); err != nil {
		metrics.IncOutputWritten("csv", metrics.ResultError)
		return err
	}
	metrics.IncOutputWritten("csv", metrics.ResultSuccess)

	if cfg.WriteWorkbook {
		data, err := export.BuildWorkbook(result)
		if err == nil {
			err = os.WriteFile(filepath.Join(cfg.OutputDir, "dataset.xlsx"), data, 0o644)
		}
		metrics.IncOutputWritten("xlsx", stageResult(err))
		if err != nil {
			return err
		}
	}

	if cfg.WriteReport {
		data, err := export.BuildRunReport(result, time.Now())
		if err == nil {
			err = os.WriteFile(filepath.Join(cfg.OutputDir, "run_report.pdf"), data, 0o644)
		}
		metrics.IncOutputWritten("pdf", stageResult(err))
		if err != nil {
			return err
		}
	}

	if cfg.PostgresDSN != "" {
		start := time.Now()
		publisher, err := export.NewPublisher(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer publisher.Close()
		err = publisher.Publish(ctx, result)
		metrics.ObserveStage("postgres_publish", stageResult(err), time.Since(start))
		if err != nil {
			return err
		}
		logger.Printf("published %d communities to postgres", len(result.Communities))
	}
	return nil
}

func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Printf("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("metrics server error: %v", err)
	}
}

func stageResult(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
