package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sampleOneCall() map[string]interface{} {
	return map[string]interface{}{
		"lat":             47.61,
		"lon":             -122.33,
		"timezone":        "America/Los_Angeles",
		"timezone_offset": -25200,
		"current": map[string]interface{}{
			"dt":   1697036400,
			"temp": 55.2,
		},
		"hourly": []map[string]interface{}{
			{
				"dt":   1697036400,
				"temp": 55.2,
				"pop":  0,
				"weather": []map[string]interface{}{
					{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"},
				},
			},
			{
				"dt":   1697040000,
				"temp": 57.9,
				"pop":  0.42,
				"weather": []map[string]interface{}{
					{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"},
				},
			},
		},
	}
}

func TestNewOneCallClient_InvalidAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr error
	}{
		{"empty API key", "", ErrInvalidAPIKey},
		{"too short API key", "short", ErrInvalidAPIKey},
		{"valid API key", "valid-api-key-12345", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewOneCallClient(tt.apiKey, "https://api.test.com", "imperial", 2*time.Second)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewOneCallClient() error = %v, want %v", err, tt.wantErr)
				}
				if client != nil {
					t.Errorf("NewOneCallClient() expected nil client on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewOneCallClient() unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("NewOneCallClient() expected client, got nil")
			}
		})
	}
}

func TestNewOneCallClient_Defaults(t *testing.T) {
	client, err := NewOneCallClient("test-api-key-12345", "", "", time.Second)
	if err != nil {
		t.Fatalf("NewOneCallClient() error = %v", err)
	}
	if client.apiURL != DefaultAPIURL {
		t.Errorf("apiURL = %q, want %q", client.apiURL, DefaultAPIURL)
	}
	if client.units != "imperial" {
		t.Errorf("units = %q, want imperial", client.units)
	}
}

func TestOneCallClient_GetForecast_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		q := r.URL.Query()
		if q.Get("lat") != "47.6062" {
			t.Errorf("lat = %q, want 47.6062", q.Get("lat"))
		}
		if q.Get("lon") != "-122.3321" {
			t.Errorf("lon = %q, want -122.3321", q.Get("lon"))
		}
		if q.Get("units") != "imperial" {
			t.Errorf("units = %q, want imperial", q.Get("units"))
		}
		if q.Get("appid") != "test-api-key-12345" {
			t.Errorf("appid = %q, want test key", q.Get("appid"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(sampleOneCall())
	}))
	defer server.Close()

	client, err := NewOneCallClient("test-api-key-12345", server.URL, "imperial", 2*time.Second)
	if err != nil {
		t.Fatalf("NewOneCallClient() error = %v", err)
	}

	got, err := client.GetForecast(context.Background(), 47.6062, -122.3321)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	if got.CurrentTime != 1697036400 {
		t.Errorf("CurrentTime = %d, want 1697036400", got.CurrentTime)
	}
	if got.TimezoneOffset != -25200 {
		t.Errorf("TimezoneOffset = %d, want -25200", got.TimezoneOffset)
	}
	if len(got.Hourly) != 2 {
		t.Fatalf("len(Hourly) = %d, want 2", len(got.Hourly))
	}
	second := got.Hourly[1]
	if second.Dt != 1697040000 || second.Temp != 57.9 || second.Pop != 0.42 {
		t.Errorf("Hourly[1] = %+v", second)
	}
	if len(second.Weather) != 1 || second.Weather[0].Icon != "10d" {
		t.Errorf("Hourly[1].Weather = %+v, want icon 10d", second.Weather)
	}
}

func TestOneCallClient_GetForecast_ErrorHandling(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"401 unauthorized", http.StatusUnauthorized, ErrInvalidAPIKey},
		{"429 rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"400 bad request", http.StatusBadRequest, ErrUpstreamFailure},
		{"500 server error", http.StatusInternalServerError, ErrUpstreamFailure},
		{"503 unavailable", http.StatusServiceUnavailable, ErrUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client, err := NewOneCallClient("test-api-key-12345", server.URL, "imperial", 2*time.Second)
			if err != nil {
				t.Fatalf("NewOneCallClient() error = %v", err)
			}

			_, err = client.GetForecast(context.Background(), 1, 2)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetForecast() error = %v, want %v", err, tt.wantErr)
			}
			if attempts != 1 {
				t.Errorf("attempts = %d, want exactly 1 (no retry)", attempts)
			}
		})
	}
}

func TestOneCallClient_GetForecast_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{malformed json"},
		{"missing hourly", `{"current":{"dt":1},"timezone_offset":0}`},
		{"missing current", `{"hourly":[],"timezone_offset":0}`},
		{"missing offset", `{"hourly":[],"current":{"dt":1}}`},
		{"wrong type", `{"hourly":"nope","current":{"dt":1},"timezone_offset":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewOneCallClient("test-api-key-12345", server.URL, "imperial", 2*time.Second)
			if err != nil {
				t.Fatalf("NewOneCallClient() error = %v", err)
			}

			_, err = client.GetForecast(context.Background(), 1, 2)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("GetForecast() error = %v, want %v", err, ErrMalformedResponse)
			}
		})
	}
}

func TestOneCallClient_GetForecast_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewOneCallClient("test-api-key-12345", server.URL, "imperial", 2*time.Second)
	if err != nil {
		t.Fatalf("NewOneCallClient() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.GetForecast(ctx, 1, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GetForecast() error = %v, want context.Canceled", err)
	}
}

func TestOneCallClient_GetForecast_CorrelationID(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Get("X-Correlation-ID")
		_ = json.NewEncoder(w).Encode(sampleOneCall())
	}))
	defer server.Close()

	client, err := NewOneCallClient("test-api-key-12345", server.URL, "metric", 2*time.Second)
	if err != nil {
		t.Fatalf("NewOneCallClient() error = %v", err)
	}

	ctx := context.WithValue(context.Background(), "correlation_id", "corr-123")
	if _, err := client.GetForecast(ctx, 1, 2); err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if captured != "corr-123" {
		t.Errorf("X-Correlation-ID = %q, want corr-123", captured)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "success"},
		{204, "success"},
		{429, "rate_limited"},
		{404, "client_error"},
		{502, "server_error"},
		{101, "error"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.code); got != tt.want {
			t.Errorf("statusLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
