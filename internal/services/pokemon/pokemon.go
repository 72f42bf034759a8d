// Package pokemon implements the ingestion pipeline: fetching pokemon pages
// from the remote catalog and upserting them into Postgres.
package pokemon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tokkalabs/pokecatalog/internal/pokeapi"
	"github.com/tokkalabs/pokecatalog/pkg/database"
	"github.com/tokkalabs/pokecatalog/pkg/logger"
)

// detailWorkers bounds concurrent detail fetches per batch so a single save
// request cannot overwhelm the remote source
const detailWorkers = 10

// Catalog is the slice of the remote client the ingest pipeline needs
type Catalog interface {
	ListPokemon(ctx context.Context, limit, offset int) ([]pokeapi.PokemonSummary, error)
	FetchDetail(ctx context.Context, detailURL string) (*pokeapi.PokemonDetail, error)
}

// Service handles pokemon ingestion and storage
type Service struct {
	db      *database.PostgreSQL
	catalog Catalog
	logger  *logger.Logger

	// saveDetail is swapped out by tests
	saveDetail func(ctx context.Context, detail *pokeapi.PokemonDetail) error
}

// NewService creates a new pokemon ingestion service
func NewService(db *database.PostgreSQL, catalog Catalog, log *logger.Logger) *Service {
	s := &Service{
		db:      db,
		catalog: catalog,
		logger:  log,
	}
	s.saveDetail = s.upsert
	return s
}

// SavePage fetches one page of pokemon summaries, fetches the full detail
// for each concurrently, and upserts them into storage. Inputs are assumed
// validated by the caller. A single pokemon's fetch or write failure is
// logged and excluded from the returned count; only a failure of the summary
// listing itself fails the whole batch.
func (s *Service) SavePage(ctx context.Context, limit, offset int) (int, error) {
	summaries, err := s.catalog.ListPokemon(ctx, limit, offset)
	if err != nil {
		return 0, fmt.Errorf("failed to list pokemon page (limit=%d offset=%d): %w", limit, offset, err)
	}

	s.logger.Infof("Saving pokemon batch: %d summaries (limit=%d offset=%d)", len(summaries), limit, offset)

	var saved int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, detailWorkers)

	for _, summary := range summaries {
		wg.Add(1)
		go func(summary pokeapi.PokemonSummary) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			detail, err := s.catalog.FetchDetail(ctx, summary.URL)
			if err != nil {
				s.logger.Warnf("Skipping pokemon %q: detail fetch failed: %v", summary.Name, err)
				return
			}

			if err := s.saveDetail(ctx, detail); err != nil {
				s.logger.Errorf("Skipping pokemon %q (id=%d): save failed: %v", detail.Name, detail.ID, err)
				return
			}

			atomic.AddInt64(&saved, 1)
		}(summary)
	}
	wg.Wait()

	s.logger.Infof("Saved %d of %d pokemon", saved, len(summaries))
	return int(saved), nil
}

// upsert writes one pokemon and its type memberships in a single
// transaction. The pokemon row is insert-or-overwrite on pokemon_id; type
// rows are replaced wholesale so a stale membership never survives a
// re-fetch. The enrichment columns (location_name, nature) belong to their
// passes and are never touched here.
func (s *Service) upsert(ctx context.Context, detail *pokeapi.PokemonDetail) error {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO pokemon (pokemon_id, name, base_experience, height, "order", weight, location_area_encounters)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pokemon_id) DO UPDATE SET
			name = EXCLUDED.name,
			base_experience = EXCLUDED.base_experience,
			height = EXCLUDED.height,
			"order" = EXCLUDED."order",
			weight = EXCLUDED.weight,
			location_area_encounters = EXCLUDED.location_area_encounters
	`
	_, err = tx.Exec(ctx, query,
		detail.ID,
		detail.Name,
		detail.BaseExperience,
		detail.Height,
		detail.Order,
		detail.Weight,
		detail.LocationAreaEncounters,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pokemon %d: %w", detail.ID, err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM pokemon_types WHERE pokemon_id = $1`, detail.ID)
	if err != nil {
		return fmt.Errorf("failed to clear types for pokemon %d: %w", detail.ID, err)
	}

	for _, slot := range detail.Types {
		if slot.Type.Name == "" {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO pokemon_types (pokemon_id, type_name, type_url)
			VALUES ($1, $2, $3)
			ON CONFLICT (pokemon_id, type_name) DO NOTHING
		`, detail.ID, slot.Type.Name, slot.Type.URL)
		if err != nil {
			return fmt.Errorf("failed to insert type %q for pokemon %d: %w", slot.Type.Name, detail.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit pokemon %d: %w", detail.ID, err)
	}
	return nil
}
