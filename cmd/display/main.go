package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/forecast-display/internal/client"
	"github.com/kjstillabower/forecast-display/internal/config"
	"github.com/kjstillabower/forecast-display/internal/display"
	httphandler "github.com/kjstillabower/forecast-display/internal/http"
	"github.com/kjstillabower/forecast-display/internal/icons"
	"github.com/kjstillabower/forecast-display/internal/layout"
	"github.com/kjstillabower/forecast-display/internal/lifecycle"
	"github.com/kjstillabower/forecast-display/internal/observability"
	"github.com/kjstillabower/forecast-display/internal/power"
	"github.com/kjstillabower/forecast-display/internal/render"
	"github.com/kjstillabower/forecast-display/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	forecastClient, err := client.NewOneCallClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.Units, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	sheet, err := render.LoadSpriteSheet(cfg.SpriteSheet, layout.IconSize)
	if err != nil {
		logger.Warn("sprite sheet unavailable; icons drawn as fallback glyphs", zap.String("path", cfg.SpriteSheet), zap.Error(err))
	}

	opts := service.Options{
		Client:   forecastClient,
		Driver:   cfg.DisplayDriver,
		Renderer: render.New(sheet),
		Icons:    icons.Default,
		Params: layout.Params{
			NumHours:   cfg.NumHours,
			HourStep:   cfg.HourStep,
			PopHeight:  cfg.PopHeight,
			HourHeight: cfg.HourHeight,
		},
		Width:     cfg.Width,
		Height:    cfg.Height,
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		Logger:    logger,
	}

	if cfg.PowerMode == config.ModePreview {
		runPreview(ctx, cfg, opts, logger)
		return
	}

	disp, err := display.Open(display.Options{
		Driver:      cfg.DisplayDriver,
		OutputPath:  cfg.OutputPath,
		Width:       cfg.Width,
		Height:      cfg.Height,
		RefreshWait: cfg.RefreshWait,
	})
	if err != nil {
		logger.Fatal("display", zap.Error(err), zap.String("driver", cfg.DisplayDriver))
	}
	opts.Display = disp

	station, err := service.NewStation(opts)
	if err != nil {
		logger.Fatal("station", zap.Error(err))
	}

	logger.Info("station starting",
		zap.String("mode", cfg.PowerMode),
		zap.String("driver", cfg.DisplayDriver),
		zap.Float64("lat", cfg.Latitude),
		zap.Float64("lon", cfg.Longitude),
	)
	runErr := station.Run(ctx, sleeperFor(cfg), cfg.PowerMode == config.ModeLoop)

	if err := disp.Close(); err != nil {
		logger.Error("display close", zap.Error(err))
	}
	if err := observability.FlushTelemetry(context.Background(), logger, cfg.MetricsTextfile); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal("refresh", zap.Error(runErr), zap.String("category", string(client.CategorizeError(runErr))))
	}
}

// sleeperFor picks how the computed interval is spent: in-process for loop mode, the RTC
// wake alarm when one is configured, otherwise nothing (an external timer re-runs us).
func sleeperFor(cfg *config.Config) power.Sleeper {
	switch {
	case cfg.PowerMode == config.ModeLoop:
		return power.Wait{}
	case cfg.WakeAlarmPath != "":
		return power.NewWakeAlarm(cfg.WakeAlarmPath)
	default:
		return power.Exit{}
	}
}

func runPreview(ctx context.Context, cfg *config.Config, opts service.Options, logger *zap.Logger) {
	station, err := service.NewStation(opts)
	if err != nil {
		logger.Fatal("station", zap.Error(err))
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(station, cfg.Latitude, cfg.Longitude, logger)
	router := httphandler.NewRouter(handler, logger, limiter, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.PreviewPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("preview server starting", zap.String("addr", srv.Addr))
		lifecycle.SetPhase(lifecycle.PhaseServing)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if err := observability.FlushTelemetry(shutdownCtx, logger, cfg.MetricsTextfile); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
