package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cmi-dair/clmunch/pkg/config"
	"github.com/cmi-dair/clmunch/pkg/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	gen192     bool
	errorCSV   string
)

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"write the report to this path instead of stdout")
	rootCmd.Flags().BoolVar(&gen192, "gen192", false,
		"include the aggregated error table for the 192 pipeline configs")
	rootCmd.Flags().StringVar(&errorCSV, "error-csv", "",
		"additionally write the aggregated error table to this path as CSV")
}

func runReport(cmd *cobra.Command, args []string) error {
	searchPath := args[0]

	// Load configuration.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags win over config file values.
	if cmd.Flags().Changed("output") {
		cfg.Report.Output = outputPath
	}

	if cmd.Flags().Changed("gen192") {
		cfg.Report.Gen192 = gen192
	}

	if cmd.Flags().Changed("error-csv") {
		cfg.Report.ErrorCSV = errorCSV
	}

	if logLevel == "" {
		level, err := logrus.ParseLevel(cfg.Global.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Global.LogLevel, err)
		}

		log.SetLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	collection, err := report.Build(log, searchPath, searchPath)
	if err != nil {
		return err
	}

	md, err := report.Render(collection, report.Options{
		IncludeErrorTable: cfg.Report.Gen192,
		TailLines:         cfg.Report.TailLines,
		GeneratedAt:       time.Now(),
	})
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if cfg.Report.ErrorCSV != "" {
		if err := writeErrorCSV(collection, cfg.Report.ErrorCSV); err != nil {
			return err
		}
	}

	if cfg.Report.Output == "" {
		fmt.Fprint(cmd.OutOrStdout(), md)

		return nil
	}

	if err := os.WriteFile(cfg.Report.Output, []byte(md), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	log.WithField("output", cfg.Report.Output).Info("Report written")

	return nil
}

// writeErrorCSV exports the aggregated error table. Zero structured
// errors is not a failure; nothing is written then.
func writeErrorCSV(collection *report.Collection, path string) error {
	data, err := report.ErrorCSV(collection)
	if err != nil {
		return fmt.Errorf("building error CSV: %w", err)
	}

	if data == nil {
		log.Info("No structured errors found, skipping CSV export")

		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing error CSV: %w", err)
	}

	log.WithField("path", path).Info("Error CSV written")

	return nil
}
