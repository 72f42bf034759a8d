package location

import (
	"context"
	"fmt"
	"strings"
)

// knownTypes is the canonical PokeAPI type vocabulary the by-type query
// validates against
var knownTypes = map[string]struct{}{
	"normal": {}, "fighting": {}, "flying": {}, "poison": {}, "ground": {},
	"rock": {}, "bug": {}, "ghost": {}, "steel": {}, "fire": {},
	"water": {}, "grass": {}, "electric": {}, "psychic": {}, "ice": {},
	"dragon": {}, "dark": {}, "fairy": {},
}

// IsKnownType reports whether name is a known pokemon type,
// matched case-insensitively
func IsKnownType(name string) bool {
	_, ok := knownTypes[strings.ToLower(name)]
	return ok
}

// LocationCount is one aggregation row: a location and how many pokemon of
// the queried type share it
type LocationCount struct {
	LocationName string `json:"location_name"`
	PokemonCount int    `json:"pokemon_count"`
}

// LocationsByType returns the distinct enriched locations of pokemon
// belonging to the given type, each with its pokemon count, ordered by count
// descending then location name ascending. The returned total is the full
// distinct-location count for the type, independent of limit/offset.
// Pokemon without a resolved location are excluded. Inputs are assumed
// validated by the caller.
func (s *Service) LocationsByType(ctx context.Context, typeName string, limit, offset int) ([]LocationCount, int, error) {
	var total int
	err := s.db.Pool().QueryRow(ctx, `
		SELECT COUNT(DISTINCT p.location_name)
		FROM pokemon p
		JOIN pokemon_types t ON t.pokemon_id = p.pokemon_id
		WHERE LOWER(t.type_name) = LOWER($1)
		  AND p.location_name IS NOT NULL AND p.location_name <> ''
	`, typeName).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count locations for type %q: %w", typeName, err)
	}

	rows, err := s.db.Pool().Query(ctx, `
		SELECT p.location_name, COUNT(*) AS pokemon_count
		FROM pokemon p
		JOIN pokemon_types t ON t.pokemon_id = p.pokemon_id
		WHERE LOWER(t.type_name) = LOWER($1)
		  AND p.location_name IS NOT NULL AND p.location_name <> ''
		GROUP BY p.location_name
		ORDER BY pokemon_count DESC, p.location_name ASC
		LIMIT $2 OFFSET $3
	`, typeName, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query locations for type %q: %w", typeName, err)
	}
	defer rows.Close()

	locations := make([]LocationCount, 0)
	for rows.Next() {
		var lc LocationCount
		if err := rows.Scan(&lc.LocationName, &lc.PokemonCount); err != nil {
			return nil, 0, fmt.Errorf("failed to scan location row: %w", err)
		}
		locations = append(locations, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read location rows: %w", err)
	}

	return locations, total, nil
}
