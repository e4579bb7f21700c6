package http

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Masterminds/sprig/v3"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/jma-forecast/internal/domain"
	"github.com/couchcryptid/jma-forecast/internal/forecast"
)

//go:embed templates/*.html
var templateFS embed.FS

// ForecastService is the subset of forecast.Service the handlers need.
type ForecastService interface {
	Directory(ctx context.Context) (domain.AreaDirectory, error)
	Refresh(ctx context.Context, areaCode string) (forecast.Result, error)
	Cached(ctx context.Context, areaCode string) (forecast.Result, error)
	StoreEnabled() bool
	CheckReadiness(ctx context.Context) error
}

// Server exposes the forecast UI, the calculator, the JSON API and the
// health, readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        ForecastService
	pages      *template.Template
	logger     *slog.Logger
}

// NewServer wires all routes onto a new mux.
func NewServer(addr string, svc ForecastService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Refreshes wait on the JMA API, so leave room beyond its timeout.
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc: svc,
		pages: template.Must(template.New("pages").
			Funcs(sprig.FuncMap()).
			Funcs(viewFuncs).
			ParseFS(templateFS, "templates/*.html")),
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /centers/{center}", s.handleCenter)
	mux.HandleFunc("POST /centers/{center}/offices/{office}/refresh", s.handleRefresh)
	mux.HandleFunc("GET /calculator", s.handleCalculator)
	mux.HandleFunc("POST /calculator", s.handleCalculator)

	mux.HandleFunc("GET /api/areas", s.apiAreas)
	mux.HandleFunc("GET /api/areas/{center}/offices", s.apiOffices)
	mux.HandleFunc("GET /api/forecasts/{area}", s.apiCached)
	mux.HandleFunc("POST /api/forecasts/{area}/refresh", s.apiRefresh)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
