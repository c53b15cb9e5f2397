package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"geedownloader/internal/catalog"
	"geedownloader/internal/earthengine"
	"geedownloader/internal/gee"
	"geedownloader/internal/http/handlers"
	"geedownloader/internal/http/httpapi"
	"geedownloader/internal/infra"
	"geedownloader/internal/infra/geoip"
	"geedownloader/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	eeClient := earthengine.NewClient(earthengine.Options{
		AccessToken:    cfg.EEAccessToken,
		BaseURL:        cfg.EEBaseURL,
		RequestTimeout: cfg.EERequestTimeout,
		Logger:         &logger,
	})
	if !eeClient.HasCredentials() {
		logger.Warn().Msg("no engine access token configured; live asset calls will fail until authentication completes")
	}

	sessions := gee.NewSessionManager(func(projectID string) gee.EngineSession {
		return eeClient.Session(projectID)
	}, cfg.EEDefaultProject, logger)
	resolver := gee.NewAssetResolver(logger)
	validator := gee.NewAvailabilityValidator(logger)

	app := &handlers.App{
		Catalog:         catalog.NewStore(runner),
		Sessions:        sessions,
		Resolver:        resolver,
		Validator:       validator,
		Exports:         gee.NewExportOrchestrator(sessions, resolver, validator, cfg.ExportFolder, logger),
		Tasks:           gee.NewJobStatusTracker(sessions, logger),
		CredentialsPath: cfg.EECredentialsPath,
		DefaultScale:    cfg.DefaultScale,
		Logger:          logger,
	}

	var country middleware.CountryLookup
	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if geoResolver != nil {
		defer geoResolver.Close()
		country = geoResolver.CountryCode
	}

	router := httpapi.NewRouter(app, cfg, logger, country)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
