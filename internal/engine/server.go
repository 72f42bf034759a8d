package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tokkalabs/pokecatalog/pkg/health"
)

type Server struct {
	engine         *Engine
	router         *mux.Router
	pokemonHandler *PokemonHandlers
	middleware     *Middleware
}

func NewServer(engine *Engine) *Server {
	s := &Server{
		engine:         engine,
		router:         mux.NewRouter(),
		pokemonHandler: NewPokemonHandlers(engine),
		middleware:     NewMiddleware(engine),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the configured HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.middleware.CORSMiddleware)
	s.router.Use(s.middleware.RequestIDMiddleware)
	s.router.Use(s.middleware.LoggingMiddleware)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	pokemon := s.router.PathPrefix("/pokemon").Subrouter()
	pokemon.HandleFunc("/save", s.pokemonHandler.Save).Methods(http.MethodPost)
	pokemon.HandleFunc("/locations/enrich", s.pokemonHandler.EnrichLocations).Methods(http.MethodPost)
	pokemon.HandleFunc("/generate-natures", s.pokemonHandler.GenerateNatures).Methods(http.MethodPost)
	pokemon.HandleFunc("/locations/by-type/{type}", s.pokemonHandler.LocationsByType).Methods(http.MethodGet)
}

// handleHealth reports process liveness plus storage reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s.engine.health.RunCheck("database", func() error {
		return s.engine.CheckDatabase(ctx)
	})

	dbStatus := "connected"
	if check, ok := s.engine.health.GetCheck("database"); ok && check.Status != health.StatusHealthy {
		dbStatus = "error: " + check.Message
	}

	status := "ok"
	if s.engine.health.GetOverallStatus() != health.StatusHealthy {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HealthResponse{Status: status, DB: dbStatus, Metrics: s.engine.GetMetrics()}); err != nil {
		s.engine.logger.Errorf("Failed to encode health response: %v", err)
	}
}
