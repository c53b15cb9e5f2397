package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"geedownloader/internal/catalog"
	"geedownloader/internal/infra"
)

// catalogctl refreshes the dataset catalog mirror from the public feed.
// Run it once at deploy time and then on whatever cadence keeps the
// mirror fresh; every run is a full upsert.
func main() {
	_ = godotenv.Load()

	feedOverride := flag.String("feed", "", "override the catalog feed URL")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	feedURL := cfg.CatalogFeedURL
	if *feedOverride != "" {
		feedURL = *feedOverride
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalogctl: db connection failed")
	}
	defer dbpool.Close()

	loader := catalog.NewLoader(infra.NewSQLRunner(dbpool, logger), nil, feedURL, logger)
	stats, err := loader.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalogctl: run failed")
	}
	if stats.Errors > 0 {
		logger.Warn().Int("errors", stats.Errors).Msg("catalogctl: completed with errors")
	}
}
