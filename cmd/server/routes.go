package main

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/school-feed/internal/config"
	"github.com/JaimeStill/school-feed/pkg/handlers"
	"github.com/JaimeStill/school-feed/pkg/lifecycle"
	"github.com/JaimeStill/school-feed/pkg/middleware"
)

func registerRoutes(mux *http.ServeMux, ready lifecycle.ReadinessChecker) {
	mux.HandleFunc("GET /healthz", handleHealthCheck)
	mux.HandleFunc("GET /readyz", handleReadiness(ready))
	mux.HandleFunc("/", handlers.NotFound)
}

func buildMiddleware(cfg *config.Config, logger *slog.Logger) middleware.System {
	mw := middleware.New()
	mw.Use(middleware.TrimSlash())
	mw.Use(middleware.Logger(logger))
	mw.Use(middleware.CORS(&cfg.API.CORS))
	return mw
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadiness(ready lifecycle.ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
