// Package config loads pipeline configuration from the environment with
// an optional yaml override file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config describes one pipeline run.
type Config struct {
	// LibraryDB is the path to the energy-library SQLite extract.
	LibraryDB string `yaml:"library_db"`
	// ClimateDir holds the processed climate site files, including the
	// site metadata catalog.
	ClimateDir string `yaml:"climate_dir"`
	// RawClimateDir, when set, enables the climate processing stage that
	// builds ClimateDir from raw observation files.
	RawClimateDir string `yaml:"raw_climate_dir"`
	// LookupDir holds the survey lookup CSVs.
	LookupDir string `yaml:"lookup_dir"`
	// OutputDir receives the generated dataset files.
	OutputDir string `yaml:"output_dir"`
	// PostgresDSN, when set, publishes the final tables to Postgres.
	PostgresDSN string `yaml:"postgres_dsn"`
	// MetricsAddr, when set, serves prometheus metrics while the run is
	// active.
	MetricsAddr string `yaml:"metrics_addr"`
	// WriteWorkbook emits an xlsx workbook next to the CSV outputs.
	WriteWorkbook bool `yaml:"write_workbook"`
	// WriteReport emits a one-page PDF run summary.
	WriteReport bool `yaml:"write_report"`
	// MatchThreshold is the fuzzy-match acceptance score.
	MatchThreshold int `yaml:"match_threshold"`
}

// Load reads env vars, then applies the yaml file named by
// PIPELINE_CONFIG when present, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		LibraryDB:      getenvDefault("LIBRARY_DB", filepath.FromSlash("data/lib.db")),
		ClimateDir:     getenvDefault("CLIMATE_DIR", filepath.FromSlash("data/tmy3")),
		RawClimateDir:  os.Getenv("RAW_CLIMATE_DIR"),
		LookupDir:      getenvDefault("LOOKUP_DIR", filepath.FromSlash("data/lookups")),
		OutputDir:      getenvDefault("OUTPUT_DIR", filepath.FromSlash("data/out")),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		WriteWorkbook:  getenvBoolDefault("WRITE_WORKBOOK", false),
		WriteReport:    getenvBoolDefault("WRITE_REPORT", false),
		MatchThreshold: getenvIntDefault("MATCH_THRESHOLD", 90),
	}

	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if cfg.LibraryDB == "" {
		return cfg, errors.New("config: library db path required")
	}
	if cfg.OutputDir == "" {
		return cfg, errors.New("config: output dir required")
	}
	if cfg.MatchThreshold < 0 || cfg.MatchThreshold > 100 {
		return cfg, errors.New("config: match threshold must be 0..100")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
