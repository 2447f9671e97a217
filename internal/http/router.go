package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/forecast-display/internal/observability"
)

// NewRouter wires the preview server routes. Only /preview.png is rate limited and
// bounded by requestTimeout; /health and /metrics stay cheap.
func NewRouter(handler *Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	var preview http.Handler = http.HandlerFunc(handler.GetPreview)
	preview = TimeoutMiddleware(requestTimeout)(preview)
	preview = RateLimitMiddleware(limiter)(preview)
	router.Handle("/preview.png", preview).Methods("GET")

	return router
}
