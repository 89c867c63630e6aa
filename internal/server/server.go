package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/models"
	"github.com/go-chi/chi/v5"
)

// AthleteDirectory resolves tailnet logins to athletes and records their
// benchmark results. *storage.DB and *localstore.Store both satisfy it.
type AthleteDirectory interface {
	GetAthleteByLogin(ctx context.Context, login string) (*models.AthleteProfile, error)
	ListAthletes(ctx context.Context) ([]models.AthleteProfile, error)
	UpsertAthlete(ctx context.Context, a models.AthleteProfile) error
	RecordBenchmark(ctx context.Context, r models.AthleteBenchmark) error
	GetDataStats(ctx context.Context) (*models.DataStats, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	coach    *coach.Service
	athletes AthleteDirectory
	log      *slog.Logger
	apiKey   string
	origins  []string
	whois    WhoIser
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *coach.Service, athletes AthleteDirectory, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		coach:    svc,
		athletes: athletes,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetCORSOrigins restricts browser access to the given origins. With none
// set every origin is allowed.
func (s *Server) SetCORSOrigins(origins []string) {
	s.origins = origins
}

// SetTailscale enables tailnet identity lookups for /api/v1/me routes.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(func(next http.Handler) http.Handler { return CORS(s.origins)(next) })

	// Analysis endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/workouts/parse", s.handleParse)
		r.Post("/api/v1/athletes/{id}/strategy", s.handleStrategy)
		r.Get("/api/v1/movements", s.handleMovements)
		r.Post("/api/v1/percentile", s.handlePercentile)
		r.Get("/api/v1/athletes", s.handleListAthletes)
		r.Put("/api/v1/athletes/{id}", s.handlePutAthlete)
		r.Post("/api/v1/athletes/{id}/benchmarks", s.handleRecordBenchmark)
		r.Get("/api/v1/stats", s.handleStats)
	})

	// Caller endpoints (no API key, tsnet identity)
	s.router.Group(func(r chi.Router) {
		r.Use(s.identity)
		r.Get("/api/v1/me", s.handleMe)
		r.Post("/api/v1/me/strategy", s.handleMyStrategy)
	})
}

// identity selects the tailnet or dev identity middleware per request.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.log)(next).ServeHTTP(w, r)
	})
}
