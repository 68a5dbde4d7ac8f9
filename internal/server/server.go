// Package server exposes the scan pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pricehunt/pricehunt/internal/fusion"
	"github.com/pricehunt/pricehunt/internal/pipeline"
	"github.com/pricehunt/pricehunt/internal/pricing"
	"github.com/rs/zerolog/log"
)

// Pipeline is the scan surface the handlers call into.
type Pipeline interface {
	Scan(ctx context.Context, req pipeline.ScanRequest) (*pipeline.ProductRecord, error)
	Translate(ctx context.Context, rec *pipeline.ProductRecord) (*pipeline.ProductRecord, error)
	WidenSearch(ctx context.Context, productName, countryCode string) (pricing.Summary, error)
}

// Answerer answers free-form product questions. Optional.
type Answerer interface {
	AnswerQuestion(ctx context.Context, q fusion.Question) ([]string, error)
}

type Server struct {
	scanner  Pipeline
	answerer Answerer
}

func New(scanner Pipeline, answerer Answerer) *Server {
	return &Server{scanner: scanner, answerer: answerer}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", s.handleScan)
		r.Post("/translate", s.handleTranslate)
		r.Post("/prices/widen", s.handleWidenSearch)
		r.Post("/question", s.handleQuestion)
	})

	return r
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}
	s.respondJSON(w, status, body)
}
