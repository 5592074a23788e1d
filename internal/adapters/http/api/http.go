// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/cors"

	service "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/pkg/logger"
)

// DefaultAllowedOrigin is the CORS origin permitted when none is configured.
const DefaultAllowedOrigin = "http://localhost:3000"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitDependencies
	LeaderboardDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submitHandler      *SubmitHandler
	leaderboardHandler *LeaderboardHandler

	allowedOrigin string
	logger        logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigin sets the single origin allowed to call /api routes from a
// browser.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.allowedOrigin = origin
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		submitHandler:      NewSubmitHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		allowedOrigin:      DefaultAllowedOrigin,
		logger:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux. Only /api routes are CORS-enabled.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{s.allowedOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
	})
	apiRoute := func(h http.HandlerFunc, endpoint string) http.Handler {
		return RequestLogger(s.logger, c.Handler(MetricsMiddleware(h, endpoint)))
	}

	mux.Handle("/api/submit", apiRoute(s.submitHandler.HandleSubmit, "submit"))
	mux.Handle("/api/leaderboard", apiRoute(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Entry is the JSON shape of one leaderboard row.
type Entry = model.PlayerRecord

// internalErrorBody is written when a response value cannot be encoded.
const internalErrorBody = `{"error":"Internal server error"}` + "\n"

// writeJSON encodes v fully before writing the header. A value that cannot be
// encoded is answered with a 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		setError(r, WrapKind("api.write_json", ErrInternal, err))
		buf.Reset()
		buf.WriteString(internalErrorBody)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, r, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

var _ Dependencies = (*service.Service)(nil)
