// Package service runs one forecast refresh end to end: fetch, format, lay out, render,
// show, then work out how long to sleep.
package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/forecast-display/internal/client"
	"github.com/kjstillabower/forecast-display/internal/display"
	"github.com/kjstillabower/forecast-display/internal/forecast"
	"github.com/kjstillabower/forecast-display/internal/icons"
	"github.com/kjstillabower/forecast-display/internal/layout"
	"github.com/kjstillabower/forecast-display/internal/lifecycle"
	"github.com/kjstillabower/forecast-display/internal/models"
	"github.com/kjstillabower/forecast-display/internal/observability"
	"github.com/kjstillabower/forecast-display/internal/power"
	"github.com/kjstillabower/forecast-display/internal/render"
	"github.com/kjstillabower/forecast-display/internal/schedule"
)

// Station holds everything a refresh needs. Nothing survives between passes except
// what is held here; each pass fetches and renders from scratch.
type Station struct {
	client   client.ForecastClient
	display  display.Display // nil for preview-only stations
	driver   string
	renderer *render.Renderer
	icons    icons.Map
	params   layout.Params
	width    int
	height   int
	lat      float64
	lon      float64
	logger   *zap.Logger
	now      func() time.Time
}

// Options configures a Station. Width and Height are used only when Display is nil;
// otherwise the frame is sized to the display.
type Options struct {
	Client    client.ForecastClient
	Display   display.Display
	Driver    string
	Renderer  *render.Renderer
	Icons     icons.Map
	Params    layout.Params
	Width     int
	Height    int
	Latitude  float64
	Longitude float64
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewStation(opts Options) (*Station, error) {
	if opts.Client == nil {
		return nil, errors.New("station: forecast client is required")
	}
	s := &Station{
		client:   opts.Client,
		display:  opts.Display,
		driver:   opts.Driver,
		renderer: opts.Renderer,
		icons:    opts.Icons,
		params:   opts.Params,
		width:    opts.Width,
		height:   opts.Height,
		lat:      opts.Latitude,
		lon:      opts.Longitude,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.display != nil {
		size := s.display.Bounds().Size()
		s.width, s.height = size.X, size.Y
	}
	if s.width <= 0 || s.height <= 0 {
		s.width, s.height = display.DefaultWidth, display.DefaultHeight
	}
	if s.renderer == nil {
		s.renderer = render.New(nil)
	}
	if s.icons == nil {
		s.icons = icons.Default
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// loggerFromContext prefers a request-scoped logger (preview server) over the station's.
func (s *Station) loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return s.logger
}

// Frame fetches the forecast for lat/lon and renders it without touching the display.
func (s *Station) Frame(ctx context.Context, lat, lon float64) (*image.Gray, models.Forecast, error) {
	logger := s.loggerFromContext(ctx)

	fc, err := s.client.GetForecast(ctx, lat, lon)
	if err != nil {
		return nil, models.Forecast{}, fmt.Errorf("fetch forecast: %w", err)
	}
	observability.ForecastHoursTotal.Add(float64(len(fc.Hourly)))
	logger.Debug("forecast fetched",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.Int("hours", len(fc.Hourly)),
		zap.Int64("timezone_offset", fc.TimezoneOffset),
	)

	hours, err := forecast.Format(fc.Hourly, fc.TimezoneOffset)
	if err != nil {
		return nil, fc, fmt.Errorf("format forecast: %w", err)
	}

	start := time.Now()
	screen, err := layout.Compose(hours, s.width, s.height, s.params, s.icons)
	if err != nil {
		return nil, fc, fmt.Errorf("compose screen: %w", err)
	}
	for _, code := range screen.MissingIcons() {
		observability.IconFallbackTotal.WithLabelValues(code).Inc()
		logger.Warn("no sprite for condition code", zap.String("code", code))
	}
	frame := s.renderer.Render(screen)
	observability.RenderDuration.Observe(time.Since(start).Seconds())

	return frame, fc, nil
}

// Preview renders a frame for an arbitrary location. The display is left alone.
func (s *Station) Preview(ctx context.Context, lat, lon float64) (*image.Gray, error) {
	frame, _, err := s.Frame(ctx, lat, lon)
	return frame, err
}

// Refresh renders the station's location, pushes it to the display and returns how long
// to sleep before the next pass.
func (s *Station) Refresh(ctx context.Context) (time.Duration, error) {
	if s.display == nil {
		return 0, errors.New("refresh: station has no display")
	}
	logger := s.loggerFromContext(ctx)
	lifecycle.SetPhase(lifecycle.PhaseRefreshing)

	frame, fc, err := s.Frame(ctx, s.lat, s.lon)
	if err != nil {
		return 0, err
	}

	if err := s.display.Show(ctx, frame); err != nil {
		observability.DisplayRefreshTotal.WithLabelValues(s.driver, "error").Inc()
		return 0, fmt.Errorf("show frame: %w", err)
	}
	observability.DisplayRefreshTotal.WithLabelValues(s.driver, "success").Inc()
	lifecycle.RecordRefresh(s.now())

	sleep := schedule.SleepFor(fc.LocalNow())
	s.recordSleep(logger, sleep)
	return sleep, nil
}

// Run performs one refresh and hands the sleep interval to sleeper. With loop set it
// repeats until ctx ends; a failed pass is logged and the next wake is computed from the
// wall clock instead of the forecast's current time.
func (s *Station) Run(ctx context.Context, sleeper power.Sleeper, loop bool) error {
	for {
		sleep, err := s.Refresh(ctx)
		if err != nil {
			if !loop || ctx.Err() != nil {
				return err
			}
			s.logger.Error("refresh failed", zap.Error(err), zap.String("category", string(client.CategorizeError(err))))
			sleep = s.wallClockSleep()
			s.recordSleep(s.logger, sleep)
		}

		lifecycle.SetPhase(lifecycle.PhaseSleeping)
		if err := sleeper.Sleep(ctx, sleep); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("sleep: %w", err)
		}
		if !loop {
			return nil
		}
	}
}

func (s *Station) wallClockSleep() time.Duration {
	now := s.now()
	_, offset := now.Zone()
	return schedule.SleepFor(now.Unix() + int64(offset))
}

func (s *Station) recordSleep(logger *zap.Logger, d time.Duration) {
	observability.SleepSeconds.Set(d.Seconds())
	secs := int(d / time.Second)
	logger.Info("Sleeping for "+schedule.Describe(d),
		zap.Int("hours", secs/3600),
		zap.Int("minutes", (secs/60)%60),
		zap.Int("sleep_seconds", secs),
		zap.String("driver", s.driver),
	)
}
