package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/forecast-display/internal/client"
	"github.com/kjstillabower/forecast-display/internal/forecast"
	"github.com/kjstillabower/forecast-display/internal/layout"
	"github.com/kjstillabower/forecast-display/internal/lifecycle"
	"github.com/kjstillabower/forecast-display/internal/render"
	"github.com/kjstillabower/forecast-display/internal/validation"
)

// Previewer renders a forecast frame for a location.
type Previewer interface {
	Preview(ctx context.Context, lat, lon float64) (*image.Gray, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	previewer  Previewer
	defaultLat float64
	defaultLon float64
	logger     *zap.Logger
	startTime  time.Time
}

// NewHandler returns a new Handler. defaultLat/defaultLon are used when a preview
// request carries no coordinates.
func NewHandler(previewer Previewer, defaultLat, defaultLon float64, logger *zap.Logger) *Handler {
	return &Handler{
		previewer:  previewer,
		defaultLat: defaultLat,
		defaultLon: defaultLon,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// GetPreview handles GET /preview.png?lat=&lon=.
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	lat, lon := h.defaultLat, h.defaultLon
	q := r.URL.Query()
	if q.Has("lat") || q.Has("lon") {
		var err error
		lat, lon, err = validation.ParseCoordinates(q.Get("lat"), q.Get("lon"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
			return
		}
	}

	frame, err := h.previewer.Preview(r.Context(), lat, lon)
	if err != nil {
		writePreviewError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, frame); err != nil {
		writeError(w, r, http.StatusInternalServerError, "ENCODE_FAILED", "Unable to encode frame")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	phase := lifecycle.CurrentPhase()
	statusCode := http.StatusOK
	status := "healthy"
	if phase == lifecycle.PhaseShuttingDown {
		statusCode = http.StatusServiceUnavailable
		status = string(phase)
	}

	resp := map[string]interface{}{
		"status":    status,
		"phase":     phase,
		"service":   "forecast-display",
		"version":   "dev",
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if last := lifecycle.LastRefresh(); !last.IsZero() {
		resp["lastRefresh"] = last.UTC().Format(time.RFC3339)
	}
	writeJSON(w, statusCode, resp)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v, ok := r.Context().Value("correlation_id").(string); ok {
		corrID = v
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writePreviewError maps a failed render pass to a response. Upstream and timeout failures
// are not the caller's fault; a forecast that cannot be laid out is reported as bad gateway.
func writePreviewError(w http.ResponseWriter, r *http.Request, err error) {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("preview failed", zap.Error(err), zap.String("category", string(client.CategorizeError(err))))
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "Forecast request timed out")
	case errors.Is(err, client.ErrRateLimited):
		writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMITED", "Weather API rate limit reached")
	case errors.Is(err, client.ErrMalformedResponse),
		errors.Is(err, forecast.ErrMissingCondition),
		errors.Is(err, layout.ErrNotEnoughHours):
		writeError(w, r, http.StatusBadGateway, "UNUSABLE_FORECAST", "Forecast could not be rendered")
	default:
		writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Unable to fetch forecast")
	}
}
