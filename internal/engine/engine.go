package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tokkalabs/pokecatalog/internal/services/location"
	"github.com/tokkalabs/pokecatalog/pkg/config"
	"github.com/tokkalabs/pokecatalog/pkg/database"
	"github.com/tokkalabs/pokecatalog/pkg/health"
	"github.com/tokkalabs/pokecatalog/pkg/logger"
)

// Ingestor saves one page of the remote catalog into storage
type Ingestor interface {
	SavePage(ctx context.Context, limit, offset int) (int, error)
}

// Enricher runs the location enrichment pass
type Enricher interface {
	EnrichLocations(ctx context.Context) (int, error)
}

// NatureAssigner runs the nature assignment pass
type NatureAssigner interface {
	AssignNatures(ctx context.Context) (int, error)
}

// LocationReader answers the locations-by-type aggregation query
type LocationReader interface {
	LocationsByType(ctx context.Context, typeName string, limit, offset int) ([]location.LocationCount, int, error)
}

// Engine owns the HTTP server and the domain services behind it
type Engine struct {
	config    *config.Config
	logger    *logger.Logger
	db        *database.PostgreSQL
	health    *health.Checker
	ingestor  Ingestor
	enricher  Enricher
	natures   NatureAssigner
	locations LocationReader
	server    *http.Server
	state     struct {
		sync.Mutex
		isRunning         bool
		ongoingOperations int32
	}
	metrics struct {
		requestsProcessed int64
		errors            int64
	}
}

// NewEngine creates the engine with its collaborators injected
func NewEngine(cfg *config.Config, log *logger.Logger, db *database.PostgreSQL, ingestor Ingestor, enricher Enricher, natures NatureAssigner, locations LocationReader) *Engine {
	return &Engine{
		config:    cfg,
		logger:    log,
		db:        db,
		health:    health.NewChecker(),
		ingestor:  ingestor,
		enricher:  enricher,
		natures:   natures,
		locations: locations,
	}
}

// Start brings up the HTTP server
func (e *Engine) Start(ctx context.Context) error {
	e.state.Lock()
	if e.state.isRunning {
		e.state.Unlock()
		return fmt.Errorf("engine is already running")
	}
	e.state.isRunning = true
	e.state.Unlock()

	addr := fmt.Sprintf(":%d", e.config.GetInt("server.port", 8000))
	e.server = &http.Server{
		Addr:         addr,
		Handler:      NewServer(e).Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	e.logger.Infof("Starting HTTP server on %s", addr)

	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Errorf("HTTP server failed: %v", err)
		}
	}()

	return nil
}

// Stop shuts the HTTP server down gracefully
func (e *Engine) Stop(ctx context.Context) error {
	e.state.Lock()
	defer e.state.Unlock()

	if !e.state.isRunning {
		return nil
	}
	e.state.isRunning = false

	if e.server != nil {
		e.logger.Infof("Shutting down HTTP server")
		return e.server.Shutdown(ctx)
	}
	return nil
}

// Run starts the engine and blocks until the context is cancelled, then
// stops with a grace period
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Stop(shutdownCtx)
}

// TrackOperation increments the ongoing operations counter
func (e *Engine) TrackOperation() {
	atomic.AddInt32(&e.state.ongoingOperations, 1)
	atomic.AddInt64(&e.metrics.requestsProcessed, 1)
}

// UntrackOperation decrements the ongoing operations counter
func (e *Engine) UntrackOperation() {
	atomic.AddInt32(&e.state.ongoingOperations, -1)
}

// TrackError increments the error counter
func (e *Engine) TrackError() {
	atomic.AddInt64(&e.metrics.errors, 1)
}

// GetMetrics returns the engine's operation counters
func (e *Engine) GetMetrics() map[string]int64 {
	return map[string]int64{
		"requests_processed": atomic.LoadInt64(&e.metrics.requestsProcessed),
		"errors":             atomic.LoadInt64(&e.metrics.errors),
		"ongoing_operations": int64(atomic.LoadInt32(&e.state.ongoingOperations)),
	}
}

// CheckDatabase probes the storage backend
func (e *Engine) CheckDatabase(ctx context.Context) error {
	if e.db == nil {
		return fmt.Errorf("database not configured")
	}
	var one int
	if err := e.db.Pool().QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}
