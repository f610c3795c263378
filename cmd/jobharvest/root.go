package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"jobharvest/internal/classify"
	"jobharvest/internal/config"
	"jobharvest/internal/model"
	"jobharvest/internal/retry"
	"jobharvest/internal/source"
	"jobharvest/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobharvest",
	Short: "Job posting aggregator",
	Long:  "Jobharvest pulls postings from configured job boards, keeps a deduplicated corpus on disk, and reports the ones it has never seen before.",
	// Default to `run` so a bare invocation (as from cron) performs one cycle.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBHARVEST_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.SilenceUsage = true
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBHARVEST_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBHARVEST_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// lockDataDir takes the advisory lock that keeps concurrent runs from
// clobbering each other's state files. The caller must Unlock.
func lockDataDir(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	lock := flock.New(filepath.Join(dataDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire data dir lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("data dir %s is locked by another run", dataDir)
	}
	return lock, nil
}

func buildSources(cfg *config.Config, logger *slog.Logger) []model.Source {
	classifier := classify.New(cfg.Filters.Keywords, cfg.Filters.Locations)
	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
	limiter := source.NewHostLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst)

	var sources []model.Source
	for _, src := range source.Build(cfg, classifier, httpClient, limiter) {
		sources = append(sources, retry.New(src, cfg.Fetch.MaxRetries, cfg.Fetch.RetryBaseDelay, logger))
		logger.Info("registered source", "source", src.Identity())
	}
	return sources
}

func openStores(cfg *config.Config, logger *slog.Logger) (*store.Files, error) {
	return store.Open(cfg.DataDir, logger)
}
