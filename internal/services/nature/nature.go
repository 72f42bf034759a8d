// Package nature implements the derived-attribute pass: every stored
// pokemon gets a nature drawn uniformly at random from the remote
// vocabulary.
package nature

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tokkalabs/pokecatalog/pkg/database"
	"github.com/tokkalabs/pokecatalog/pkg/logger"
)

// Vocabulary is the slice of the remote client the assignment pass needs
type Vocabulary interface {
	ListNatures(ctx context.Context) ([]string, error)
}

// Service handles nature assignment over stored pokemon
type Service struct {
	db         *database.PostgreSQL
	vocabulary Vocabulary
	logger     *logger.Logger
	rng        *rand.Rand

	// seams swapped out by tests
	listIDs   func(ctx context.Context) ([]int, error)
	setNature func(ctx context.Context, pokemonID int, nature string) error
}

// NewService creates a nature service seeded from the wall clock
func NewService(db *database.PostgreSQL, vocabulary Vocabulary, log *logger.Logger) *Service {
	return NewServiceWithSource(db, vocabulary, log, rand.NewSource(time.Now().UnixNano()))
}

// NewServiceWithSource creates a nature service with an explicit random
// source so callers can make the draw deterministic
func NewServiceWithSource(db *database.PostgreSQL, vocabulary Vocabulary, log *logger.Logger, src rand.Source) *Service {
	s := &Service{
		db:         db,
		vocabulary: vocabulary,
		logger:     log,
		rng:        rand.New(src),
	}
	s.listIDs = s.queryIDs
	s.setNature = s.execSetNature
	return s
}

// AssignNatures fetches the nature vocabulary once, then assigns one nature
// per stored pokemon with an independent uniform draw. A vocabulary fetch
// failure aborts the pass; a per-pokemon write failure is skipped and
// excluded from the count. Re-running redraws every assignment.
func (s *Service) AssignNatures(ctx context.Context) (int, error) {
	natures, err := s.vocabulary.ListNatures(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch nature vocabulary: %w", err)
	}
	if len(natures) == 0 {
		return 0, fmt.Errorf("nature vocabulary is empty")
	}

	ids, err := s.listIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pokemon for nature assignment: %w", err)
	}

	s.logger.Infof("Assigning natures to %d pokemon from a vocabulary of %d", len(ids), len(natures))

	assigned := 0
	for _, id := range ids {
		pick := natures[s.rng.Intn(len(natures))]
		if err := s.setNature(ctx, id, pick); err != nil {
			s.logger.Warnf("Skipping pokemon %d: nature write failed: %v", id, err)
			continue
		}
		assigned++
	}

	s.logger.Infof("Assigned natures to %d pokemon", assigned)
	return assigned, nil
}

func (s *Service) queryIDs(ctx context.Context) ([]int, error) {
	rows, err := s.db.Pool().Query(ctx, `SELECT pokemon_id FROM pokemon ORDER BY pokemon_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Service) execSetNature(ctx context.Context, pokemonID int, nature string) error {
	_, err := s.db.Pool().Exec(ctx, `UPDATE pokemon SET nature = $2 WHERE pokemon_id = $1`, pokemonID, nature)
	return err
}
