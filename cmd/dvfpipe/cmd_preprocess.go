package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dvfpipe/internal/config"
	"dvfpipe/internal/pipeline"
)

var preprocessFlags struct {
	configPath string
	dataDir    string
	rowCap     int
	output     string
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Run the full preprocessing pipeline",
	Long: `Read the raw DVF extracts and reference tables, clean and normalize the
transactions and write the enriched feature table.

Usage:
  dvfpipe preprocess --config config.yaml
  dvfpipe preprocess --data-dir ./data --row-cap 50000

Every configuration value can also be set through DVF_* environment
variables (e.g. DVF_PIPELINE_REFERENCE_QUARTER).`,
	Args: cobra.NoArgs,
	RunE: runPreprocess,
}

func init() {
	f := preprocessCmd.Flags()
	f.StringVarP(&preprocessFlags.configPath, "config", "c", "", "Path to the yaml configuration file")
	f.StringVar(&preprocessFlags.dataDir, "data-dir", "", "Override the data directory")
	f.IntVar(&preprocessFlags.rowCap, "row-cap", 0, "Truncate the input after N rows (0 = no cap)")
	f.StringVarP(&preprocessFlags.output, "output", "o", "", "Override the output file path")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(preprocessFlags.configPath)
	if err != nil {
		return err
	}
	if preprocessFlags.dataDir != "" {
		cfg.Paths.DataDir = preprocessFlags.dataDir
	}
	if preprocessFlags.rowCap > 0 {
		cfg.Pipeline.RowCap = preprocessFlags.rowCap
	}
	if preprocessFlags.output != "" {
		cfg.Paths.OutputFile = preprocessFlags.output
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	result, err := pipeline.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows (%d train, %d test) to %s\n",
		result.Rows, result.TrainRows, result.TestRows, result.OutputPath)
	return nil
}

// newLogger builds the slog handler from the logging configuration.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
