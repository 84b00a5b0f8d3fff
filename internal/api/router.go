package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/farkle-go/internal/api/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger  *slog.Logger
	Gateway http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)

	r.Use(recoveryMiddleware)

	// The websocket route is mounted without the logging wrapper: the
	// wrapped writer cannot be hijacked for the upgrade, and a long-lived
	// socket is not a request worth timing anyway.
	r.Handle("/ws", cfg.Gateway).Methods(http.MethodGet)

	r.Handle("/health", loggingMiddleware(http.HandlerFunc(healthHandler))).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
