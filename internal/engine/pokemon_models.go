package engine

import "github.com/tokkalabs/pokecatalog/internal/services/location"

// REST API models for the pokemon endpoints

// ErrorResponse represents an error response. Internal diagnostic detail is
// logged, never returned to the caller.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health endpoint response
type HealthResponse struct {
	Status  string           `json:"status"`
	DB      string           `json:"db"`
	Metrics map[string]int64 `json:"metrics"`
}

// SavePokemonResponse represents the ingest batch response
type SavePokemonResponse struct {
	Message    string `json:"message"`
	SavedCount int    `json:"saved_count"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

// EnrichLocationsResponse represents the location enrichment response
type EnrichLocationsResponse struct {
	Message      string `json:"message"`
	UpdatedCount int    `json:"updated_count"`
}

// GenerateNaturesResponse represents the nature assignment response
type GenerateNaturesResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// LocationsByTypeResponse represents the locations-by-type query response
type LocationsByTypeResponse struct {
	Type           string                   `json:"type"`
	TotalLocations int                      `json:"total_locations"`
	Limit          int                      `json:"limit"`
	Offset         int                      `json:"offset"`
	Locations      []location.LocationCount `json:"locations"`
}
