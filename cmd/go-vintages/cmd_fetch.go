package main

import (
	"log/slog"

	"github.com/oluski/go-vintages/config"
	"github.com/oluski/go-vintages/fetch"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the configured range of vintage snapshots",
	RunE:  runFetch,
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}

	client := fetch.New(cfg.SourceURL, cfg.DataDir, cfg.RequestSpacing.Std())
	n, err := client.Download(cmd.Context(), cfg.StartVintage, cfg.EndVintage)
	if err != nil {
		return err
	}
	slog.Info("fetch complete",
		slog.Int("downloaded", n),
		slog.Int("requested", cfg.StartVintage-cfg.EndVintage+1),
		slog.String("dir", cfg.DataDir))
	return nil
}
