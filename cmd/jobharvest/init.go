package main

import (
	"os"

	"github.com/spf13/cobra"

	"jobharvest/internal/track"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Mark the current corpus as seen without reporting",
	Long:  "Marks every posting in the current corpus as already seen so the next run only reports genuinely new postings. Run this once after first setup.",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

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

	corpus, err := files.Corpus.Load()
	if err != nil {
		logger.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}

	tracker, err := track.NewTracker(files.Seen)
	if err != nil {
		logger.Error("failed to load seen set", "error", err)
		os.Exit(1)
	}

	before := tracker.Len()
	if err := tracker.Initialize(corpus); err != nil {
		logger.Error("failed to save seen set", "error", err)
		os.Exit(1)
	}

	logger.Info("seen set initialized",
		"corpus", len(corpus),
		"added", tracker.Len()-before,
		"total", tracker.Len(),
	)
	return nil
}
