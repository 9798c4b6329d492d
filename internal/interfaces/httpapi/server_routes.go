package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday-streams/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	if cfg.DiagnosticsEnabled {
		mux.HandleFunc("GET /test_api", handler.TestAPI)
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/matches", handler.ListMatchesByRange)
	mux.HandleFunc("GET /api/matches/{date}", handler.ListMatchesByDate)
	mux.HandleFunc("GET /api/streams", handler.ListStreams)
}
