package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	vintages "github.com/oluski/go-vintages"
	"github.com/oluski/go-vintages/config"
	"github.com/oluski/go-vintages/snapshot"
	"github.com/spf13/cobra"
)

var runFlags struct {
	jsonOut string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Consolidate downloaded snapshots, forecast, and export",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.jsonOut, "json", "", "Also write diagnostics and forecast as JSON to this path")
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}

	tables, err := snapshot.ParseDir(cfg.DataDir)
	if err != nil {
		return err
	}

	pipeline := vintages.New(&vintages.Options{
		Order:       cfg.Order,
		Horizon:     cfg.Horizon,
		Confidence:  cfg.Confidence,
		ACFLags:     20,
		LjungBoxLag: 10,
	})
	res, err := pipeline.Run(tables)
	if err != nil {
		return err
	}

	if err := writeExport(cfg.RevisionOut, func(f *os.File) error {
		return vintages.WriteRevisionCSV(f, res.Revision)
	}); err != nil {
		return err
	}
	if err := writeExport(cfg.ForecastOut, func(f *os.File) error {
		return vintages.WriteForecastCSV(f, res.Months, res.Forecast)
	}); err != nil {
		return err
	}
	if runFlags.jsonOut != "" {
		if err := writeExport(runFlags.jsonOut, func(f *os.File) error {
			return vintages.WriteResultsJSON(f, res)
		}); err != nil {
			return err
		}
	}

	if cfg.ReportOut != "" {
		month := res.Canonical.End()
		if cfg.ReportMonth != "" {
			m, err := time.Parse(vintages.MonthLabelLayout, cfg.ReportMonth)
			if err != nil {
				return fmt.Errorf("invalid report_month %q, %w", cfg.ReportMonth, err)
			}
			month = m
		}
		if err := res.WriteReport(cfg.ReportOut, month); err != nil {
			return err
		}
	}

	slog.Info("run complete",
		slog.String("canonical", res.Canonical.String()),
		slog.Int("horizon", cfg.Horizon),
		slog.String("revision_out", cfg.RevisionOut),
		slog.String("forecast_out", cfg.ForecastOut))
	return nil
}

func writeExport(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("unable to write %s, %w", path, err)
	}
	return nil
}
