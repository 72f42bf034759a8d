package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/tokkalabs/pokecatalog/internal/services/location"
)

// Pagination bounds for the ingest and query endpoints
const (
	saveDefaultLimit  = 20
	saveMaxLimit      = 100
	queryDefaultLimit = 10
	queryMaxLimit     = 50
)

// PokemonHandlers contains the pokemon endpoint handlers
type PokemonHandlers struct {
	engine *Engine
}

// NewPokemonHandlers creates a new instance of PokemonHandlers
func NewPokemonHandlers(engine *Engine) *PokemonHandlers {
	return &PokemonHandlers{
		engine: engine,
	}
}

// Save handles POST /pokemon/save?limit=&offset=
func (ph *PokemonHandlers) Save(w http.ResponseWriter, r *http.Request) {
	ph.engine.TrackOperation()
	defer ph.engine.UntrackOperation()

	limit, offset, err := parsePageParams(r, saveDefaultLimit, saveMaxLimit)
	if err != nil {
		ph.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit or offset parameter")
		return
	}

	// One batch is up to 100 detail fetches through a bounded pool
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	count, err := ph.engine.ingestor.SavePage(ctx, limit, offset)
	if err != nil {
		ph.engine.TrackError()
		ph.engine.logger.Errorf("Ingest batch failed (request_id=%s): %v", RequestIDFromContext(r.Context()), err)
		ph.writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch or save Pokemon data")
		return
	}

	ph.writeJSONResponse(w, http.StatusOK, SavePokemonResponse{
		Message:    "Pokemon data saved successfully",
		SavedCount: count,
		Offset:     offset,
		Limit:      limit,
	})
}

// EnrichLocations handles POST /pokemon/locations/enrich
func (ph *PokemonHandlers) EnrichLocations(w http.ResponseWriter, r *http.Request) {
	ph.engine.TrackOperation()
	defer ph.engine.UntrackOperation()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	count, err := ph.engine.enricher.EnrichLocations(ctx)
	if err != nil {
		ph.engine.TrackError()
		ph.engine.logger.Errorf("Location enrichment failed (request_id=%s): %v", RequestIDFromContext(r.Context()), err)
		ph.writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch or update Pokemon location data")
		return
	}

	ph.writeJSONResponse(w, http.StatusOK, EnrichLocationsResponse{
		Message:      "Pokemon locations enriched successfully",
		UpdatedCount: count,
	})
}

// GenerateNatures handles POST /pokemon/generate-natures
func (ph *PokemonHandlers) GenerateNatures(w http.ResponseWriter, r *http.Request) {
	ph.engine.TrackOperation()
	defer ph.engine.UntrackOperation()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	count, err := ph.engine.natures.AssignNatures(ctx)
	if err != nil {
		ph.engine.TrackError()
		ph.engine.logger.Errorf("Nature assignment failed (request_id=%s): %v", RequestIDFromContext(r.Context()), err)
		ph.writeErrorResponse(w, http.StatusInternalServerError, "Failed to assign natures")
		return
	}

	ph.writeJSONResponse(w, http.StatusOK, GenerateNaturesResponse{
		Message: "Natures assigned successfully",
		Count:   count,
	})
}

// LocationsByType handles GET /pokemon/locations/by-type/{type}?limit=&offset=
func (ph *PokemonHandlers) LocationsByType(w http.ResponseWriter, r *http.Request) {
	ph.engine.TrackOperation()
	defer ph.engine.UntrackOperation()

	typeName := strings.ToLower(mux.Vars(r)["type"])
	limit, offset, err := parsePageParams(r, queryDefaultLimit, queryMaxLimit)
	if err != nil || !location.IsKnownType(typeName) {
		ph.writeErrorResponse(w, http.StatusBadRequest, "Invalid Pokemon type, limit, or offset parameter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	locations, total, err := ph.engine.locations.LocationsByType(ctx, typeName, limit, offset)
	if err != nil {
		ph.engine.TrackError()
		ph.engine.logger.Errorf("Locations-by-type query failed (request_id=%s): %v", RequestIDFromContext(r.Context()), err)
		ph.writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch location data")
		return
	}

	ph.writeJSONResponse(w, http.StatusOK, LocationsByTypeResponse{
		Type:           typeName,
		TotalLocations: total,
		Limit:          limit,
		Offset:         offset,
		Locations:      locations,
	})
}

// parsePageParams reads limit/offset query parameters, applying defaults and
// rejecting out-of-range values before any network or storage call is made
func parsePageParams(r *http.Request, defaultLimit, maxLimit int) (int, int, error) {
	limit := defaultLimit
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed limit %q", v)
		}
		limit = i
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed offset %q", v)
		}
		offset = i
	}

	if limit < 1 || limit > maxLimit {
		return 0, 0, fmt.Errorf("limit %d out of range [1, %d]", limit, maxLimit)
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("offset %d must be non-negative", offset)
	}
	return limit, offset, nil
}

func (ph *PokemonHandlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		ph.engine.logger.Errorf("Failed to encode response: %v", err)
	}
}

func (ph *PokemonHandlers) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		ph.engine.logger.Errorf("Failed to encode error response: %v", err)
	}
}
