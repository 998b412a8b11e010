package server

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-questions/internal/config"
	"github.com/gokatarajesh/quiz-questions/internal/logging"
)

// WSUpgrader handles WebSocket upgrades for the question feed. Origin checks
// are left to the CORS configuration.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// RouteRegistrar mounts a component's routes.
type RouteRegistrar interface {
	Register(mux *http.ServeMux)
}

// NewHTTPServer wires base routes (health, metrics), the question API and the
// optional change feed, wrapped in CORS and request logging.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, gatherer prometheus.Gatherer, questions RouteRegistrar, feedHandler http.HandlerFunc) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewHandler(cfg, logger, gatherer, questions, feedHandler),
	}
}

// NewHandler builds the full handler chain; exposed for httptest.
func NewHandler(cfg *config.App, logger zerolog.Logger, gatherer prometheus.Gatherer, questions RouteRegistrar, feedHandler http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if questions != nil {
		questions.Register(mux)
	}

	if feedHandler != nil {
		mux.HandleFunc("GET /v1/feed", feedHandler)
	} else {
		mux.HandleFunc("GET /v1/feed", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "question feed disabled", http.StatusNotImplemented)
		})
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})

	return logging.Middleware(logger)(corsHandler(mux))
}
