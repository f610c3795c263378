package main

import (
	"os"

	"github.com/spf13/cobra"

	"jobharvest/internal/view"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the corpus and archive interactively",
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	files, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", "error", err)
		os.Exit(1)
	}

	current, err := files.Corpus.Load()
	if err != nil {
		logger.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	archived, err := files.Archive.Load()
	if err != nil {
		logger.Error("failed to load archive", "error", err)
		os.Exit(1)
	}

	return view.Run(current, archived)
}
