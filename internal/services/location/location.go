// Package location implements the location enrichment pass and the
// locations-by-type aggregation query.
package location

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tokkalabs/pokecatalog/pkg/database"
	"github.com/tokkalabs/pokecatalog/pkg/logger"
)

// enrichWorkers bounds concurrent encounter fetches during one pass
const enrichWorkers = 10

// Encounters is the slice of the remote client the enrichment pass needs
type Encounters interface {
	FetchFirstLocationName(ctx context.Context, encountersURL string) (string, error)
}

// Service handles location enrichment and aggregation over stored pokemon
type Service struct {
	db         *database.PostgreSQL
	encounters Encounters
	logger     *logger.Logger

	// seams swapped out by tests
	listTargets    func(ctx context.Context) ([]enrichTarget, error)
	updateLocation func(ctx context.Context, pokemonID int, name string) (bool, error)
}

// NewService creates a new location service
func NewService(db *database.PostgreSQL, encounters Encounters, log *logger.Logger) *Service {
	s := &Service{
		db:         db,
		encounters: encounters,
		logger:     log,
	}
	s.listTargets = s.queryTargets
	s.updateLocation = s.execUpdateLocation
	return s
}

type enrichTarget struct {
	pokemonID     int
	encountersURL string
}

// EnrichLocations resolves the encounters reference of every stored pokemon
// to a human-readable location name and writes it back. Individual pokemon
// failures (network error, malformed resource) are skipped; a storage
// failure aborts the pass. The returned count only includes rows whose
// stored value actually changed, so re-running an up-to-date pass reports
// zero updates.
func (s *Service) EnrichLocations(ctx context.Context) (int, error) {
	targets, err := s.listTargets(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pokemon for enrichment: %w", err)
	}

	s.logger.Infof("Enriching locations for %d pokemon", len(targets))

	var updated int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, enrichWorkers)

	var mu sync.Mutex
	var storageErr error

	for _, target := range targets {
		wg.Add(1)
		go func(target enrichTarget) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			aborted := storageErr != nil
			mu.Unlock()
			if aborted {
				return
			}

			name, err := s.encounters.FetchFirstLocationName(ctx, target.encountersURL)
			if err != nil {
				s.logger.Warnf("Skipping pokemon %d: encounter fetch failed: %v", target.pokemonID, err)
				return
			}
			if name == "" {
				// No encounters: leave the field as it is, never
				// regress an already-resolved location
				return
			}

			changed, err := s.updateLocation(ctx, target.pokemonID, name)
			if err != nil {
				mu.Lock()
				if storageErr == nil {
					storageErr = err
				}
				mu.Unlock()
				return
			}
			if changed {
				atomic.AddInt64(&updated, 1)
			}
		}(target)
	}
	wg.Wait()

	if storageErr != nil {
		return 0, fmt.Errorf("failed to update pokemon locations: %w", storageErr)
	}

	s.logger.Infof("Enriched %d pokemon locations", updated)
	return int(updated), nil
}

func (s *Service) queryTargets(ctx context.Context) ([]enrichTarget, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT pokemon_id, location_area_encounters
		FROM pokemon
		WHERE location_area_encounters IS NOT NULL AND location_area_encounters <> ''
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []enrichTarget
	for rows.Next() {
		var target enrichTarget
		if err := rows.Scan(&target.pokemonID, &target.encountersURL); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

func (s *Service) execUpdateLocation(ctx context.Context, pokemonID int, name string) (bool, error) {
	// Conditional write keeps the updated count honest across re-runs
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE pokemon
		SET location_name = $2
		WHERE pokemon_id = $1 AND location_name IS DISTINCT FROM $2
	`, pokemonID, name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
