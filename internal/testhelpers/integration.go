//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kjstillabower/forecast-display/internal/client"
	"github.com/kjstillabower/forecast-display/internal/display"
	"github.com/kjstillabower/forecast-display/internal/observability"
	"github.com/kjstillabower/forecast-display/internal/service"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey    string
	APIURL    string
	Latitude  float64
	Longitude float64
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if WEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}

	apiURL := os.Getenv("WEATHER_API_URL")
	if apiURL == "" {
		apiURL = client.DefaultAPIURL
	}

	return IntegrationTestConfig{
		APIKey:    apiKey,
		APIURL:    apiURL,
		Latitude:  47.6062,
		Longitude: -122.3321,
	}
}

// SetupIntegrationClient creates a One Call client for integration tests.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) client.ForecastClient {
	t.Helper()
	c, err := client.NewOneCallClient(cfg.APIKey, cfg.APIURL, "imperial", 10*time.Second)
	if err != nil {
		t.Fatalf("NewOneCallClient() error = %v", err)
	}
	return c
}

// SetupIntegrationStation creates a station that writes frames to a PNG in a temp dir.
// Returns the station and the output path.
func SetupIntegrationStation(t *testing.T, cfg IntegrationTestConfig) (*service.Station, string) {
	t.Helper()
	logger, err := observability.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "forecast.png")
	station, err := service.NewStation(service.Options{
		Client:    SetupIntegrationClient(t, cfg),
		Display:   display.NewPNG(out, 0, 0, 0),
		Driver:    display.DriverPNG,
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("NewStation() error = %v", err)
	}
	return station, out
}
