package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobharvest/internal/notifier"
	"jobharvest/internal/pipeline"
	"jobharvest/internal/track"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch all sources once and report new postings",
	Long:  "One full cycle: fetch every enabled source, merge into the corpus, archive stale postings, and report postings never seen before.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"query", cfg.Query,
		"country", cfg.Country,
		"sources", cfg.EnabledSourceCount(),
		"keywords", len(cfg.Filters.Keywords),
		"locations", len(cfg.Filters.Locations),
	)

	lock, err := lockDataDir(cfg.DataDir)
	if err != nil {
		logger.Error("failed to lock data dir", "error", err)
		os.Exit(1)
	}
	defer lock.Unlock()

	files, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", "error", err)
		os.Exit(1)
	}

	tracker, err := track.NewTracker(files.Seen)
	if err != nil {
		logger.Error("failed to load seen set", "error", err)
		os.Exit(1)
	}

	sources := buildSources(cfg, logger)
	if len(sources) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(
		sources,
		files.Corpus,
		files.Archive,
		tracker,
		notifier.NewLogNotifier(logger),
		cfg.Query,
		cfg.MaxResults,
		logger,
	)

	report, err := p.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	for _, sr := range report.Sources {
		if sr.Err != nil {
			logger.Warn("source failed", "source", sr.Source, "error", sr.Err)
		} else {
			logger.Info("source ok", "source", sr.Source, "jobs", sr.Count)
		}
	}

	logger.Info("harvest complete",
		"corpus", report.CorpusSize,
		"new", len(report.NewJobs),
		"archived", report.Archived,
		"seen", tracker.Len(),
	)
	return nil
}
