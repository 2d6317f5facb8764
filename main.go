package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/labelwatch/srlc-downloader/config"
	"github.com/labelwatch/srlc-downloader/logging"
	"github.com/labelwatch/srlc-downloader/srlcfetcher"
)

func main() {
	mode := flag.String("mode", "download", "run mode: download, verify or inspect")
	catalogPath := flag.String("catalog", "", "path to the label changes CSV (overrides CATALOG_PATH)")
	outputDir := flag.String("out", "", "artifact output directory (overrides OUTPUT_DIR)")
	flag.Parse()

	// A missing .env is fine, the defaults cover a plain checkout.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Failed to load .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		os.Exit(1)
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	logging.InitLogger(cfg.LogDir, cfg.LogLevel)

	// An interrupt stops between fetches; finished artifacts stay on disk
	// and a re-run overwrites everything from the top.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *mode, cfg); err != nil {
		logging.Error("Run failed", "mode", *mode, "error", err)
		os.Exit(1)
	}

	fmt.Println("SRLC downloads complete!")
}

func run(ctx context.Context, mode string, cfg *config.Config) error {
	switch mode {
	case "download":
		catalog, err := srlcfetcher.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		downloader := srlcfetcher.NewDownloader(cfg.OutputDir, cfg.UserAgent, cfg.WaitTime, cfg.HTTPTimeout)
		return downloader.DownloadAll(ctx, catalog)

	case "verify":
		catalog, err := srlcfetcher.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		// A count mismatch is reported, not an error.
		_, err = srlcfetcher.VerifyDownloads(cfg.OutputDir, len(catalog))
		return err

	case "inspect":
		_, err := srlcfetcher.InspectArtifacts(cfg.OutputDir)
		return err

	default:
		return fmt.Errorf("unknown mode %q (want download, verify or inspect)", mode)
	}
}
