package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	adapterHTTP "github.com/comitanigiacomo/kanso-readiness-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/app"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/config"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/platform/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	boot := zerolog.New(os.Stderr)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		boot.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("config")
	}

	logger := logging.New(cfg.Log)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("critical server error")
	}
}

func newRouter(a *app.App, startTime time.Time) *gin.Engine {
	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ReadinessHandler: adapterHTTP.NewReadinessHandler(a.Readiness, a.Logger),
		TrendsHandler:    adapterHTTP.NewTrendsHandler(a.Trends, a.Logger),
		PlansHandler:     adapterHTTP.NewPlansHandler(a.Plans, a.Logger),
		HooksHandler:     adapterHTTP.NewHooksHandler(a.Ingest, a.Logger),
		DB:               a,
		Redis:            a.Redis,
		RequestObserver:  a.Metrics,
		MetricsHandler:   promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		RateLimit:        a.Config.RateLimit,
		Logger:           a.Logger,
		StartTime:        startTime,
	})
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	startTime := time.Now()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	workerDone := a.Worker.Start(workerCtx)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(a, startTime),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("kanso readiness engine running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		cancelWorker()
		<-workerDone
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	cancelWorker()
	<-workerDone

	logger.Info().Msg("server stopped gracefully")
	return nil
}
