package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kjstillabower/forecast-display/internal/models"
	"github.com/kjstillabower/forecast-display/internal/observability"
)

// ForecastClient fetches the hourly forecast for a coordinate pair.
type ForecastClient interface {
	GetForecast(ctx context.Context, lat, lon float64) (models.Forecast, error)
}

var (
	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
)

// DefaultAPIURL is the One Call 3.0 endpoint.
const DefaultAPIURL = "https://api.openweathermap.org/data/3.0/onecall"

// OneCallClient talks to the OpenWeather One Call API. A single attempt is made per call;
// a failed fetch aborts the render pass.
type OneCallClient struct {
	apiKey  string
	apiURL  string
	units   string
	timeout time.Duration
	client  *http.Client
}

func NewOneCallClient(apiKey, apiURL, units string, timeout time.Duration) (*OneCallClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if units == "" {
		units = "imperial"
	}

	return &OneCallClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		units:   units,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type oneCallResponse struct {
	TimezoneOffset *int64 `json:"timezone_offset"`
	Current        *struct {
		Dt int64 `json:"dt"`
	} `json:"current"`
	Hourly []models.HourlyForecast `json:"hourly"`
}

// GetForecast issues one GET and returns the hourly records, the current time and the
// timezone offset.
func (c *OneCallClient) GetForecast(ctx context.Context, lat, lon float64) (models.Forecast, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, lat, lon)
	if err != nil {
		observability.ForecastFetchTotal.WithLabelValues("error").Inc()
		return models.Forecast{}, fmt.Errorf("build request: %w", err)
	}

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.ForecastFetchTotal.WithLabelValues("error").Inc()
		observability.ForecastFetchDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.Forecast{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.Forecast{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.ForecastFetchTotal.WithLabelValues(status).Inc()
	observability.ForecastFetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err := c.handleErrorResponse(resp); err != nil {
		return models.Forecast{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp oneCallResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.Forecast{}, fmt.Errorf("%w: parse response: %v", ErrMalformedResponse, err)
	}

	return mapResponse(apiResp)
}

func (c *OneCallClient) buildRequest(ctx context.Context, lat, lon float64) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("units", c.units)
	params.Set("appid", c.apiKey)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *OneCallClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: invalid API key", ErrInvalidAPIKey)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

// mapResponse requires the three fields the render pass depends on; a missing one is fatal.
func mapResponse(apiResp oneCallResponse) (models.Forecast, error) {
	if apiResp.Hourly == nil {
		return models.Forecast{}, fmt.Errorf("%w: missing hourly", ErrMalformedResponse)
	}
	if apiResp.Current == nil {
		return models.Forecast{}, fmt.Errorf("%w: missing current", ErrMalformedResponse)
	}
	if apiResp.TimezoneOffset == nil {
		return models.Forecast{}, fmt.Errorf("%w: missing timezone_offset", ErrMalformedResponse)
	}

	return models.Forecast{
		Hourly:         apiResp.Hourly,
		CurrentTime:    apiResp.Current.Dt,
		TimezoneOffset: *apiResp.TimezoneOffset,
	}, nil
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
