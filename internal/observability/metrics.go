package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// One Call requests by outcome. Watch for: anything but success; each failure is a missed refresh.
	ForecastFetchTotal *prometheus.CounterVec

	// One Call latency. Watch for: growth on a battery budget; radio-on time dominates power use.
	ForecastFetchDuration *prometheus.HistogramVec

	// Hourly records received. Watch for: drops below what the layout samples.
	ForecastHoursTotal prometheus.Counter

	// Layout plus rasterization time.
	RenderDuration prometheus.Histogram

	// Condition codes without a sprite. Watch for: new codes from the API.
	IconFallbackTotal *prometheus.CounterVec

	// Panel refreshes by driver and outcome.
	DisplayRefreshTotal *prometheus.CounterVec

	// Seconds until the next scheduled wake.
	SleepSeconds prometheus.Gauge

	// Preview server request rate, by templated route.
	HTTPRequestsTotal *prometheus.CounterVec

	// Preview server latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Preview renders refused by the limiter; each would have cost an API call.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	ForecastFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastFetchTotal",
			Help: "Total number of One Call API requests",
		},
		[]string{"status"},
	)
	ForecastFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastFetchDurationSeconds",
			Help:    "One Call API latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	ForecastHoursTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastHoursTotal",
			Help: "Total number of hourly records received",
		},
	)
	RenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "renderDurationSeconds",
			Help:    "Time spent laying out and rasterizing a frame",
			Buckets: []float64{.001, .005, .01, .05, .1, .5},
		},
	)
	IconFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconFallbackTotal",
			Help: "Condition codes drawn with the fallback glyph",
		},
		[]string{"code"},
	)
	DisplayRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "displayRefreshTotal",
			Help: "Panel refreshes by driver and outcome",
		},
		[]string{"driver", "status"},
	)
	SleepSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sleepSeconds",
			Help: "Seconds until the next scheduled wake",
		},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of preview server requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "Preview server latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Preview requests denied by the rate limiter (429)",
		},
	)

	registry.MustRegister(
		ForecastFetchTotal, ForecastFetchDuration, ForecastHoursTotal,
		RenderDuration, IconFallbackTotal,
		DisplayRefreshTotal, SleepSeconds,
		HTTPRequestsTotal, HTTPRequestDuration, RateLimitDeniedTotal,
	)
}

// MetricsHandler serves the registry for the preview server.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in text exposition format for node_exporter's textfile
// collector. One-shot runs have no scrape window, so this is how their metrics leave the device.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
