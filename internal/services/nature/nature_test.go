package nature

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokkalabs/pokecatalog/pkg/logger"
)

type fakeVocabulary struct {
	natures []string
	err     error
	calls   int
}

func (f *fakeVocabulary) ListNatures(ctx context.Context) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.natures, nil
}

func newTestService(vocab Vocabulary, ids []int, seed int64) (*Service, map[int]string) {
	s := NewServiceWithSource(nil, vocab, logger.New("nature-test", "1.0.0"), rand.NewSource(seed))
	assigned := make(map[int]string)
	s.listIDs = func(ctx context.Context) ([]int, error) { return ids, nil }
	s.setNature = func(ctx context.Context, pokemonID int, nature string) error {
		assigned[pokemonID] = nature
		return nil
	}
	return s, assigned
}

func TestAssignNatures(t *testing.T) {
	vocabList := []string{"hardy", "bold", "timid", "brave", "calm"}

	t.Run("assigns a vocabulary value to every pokemon", func(t *testing.T) {
		vocab := &fakeVocabulary{natures: vocabList}
		svc, assigned := newTestService(vocab, []int{1, 2, 3, 4}, 7)

		count, err := svc.AssignNatures(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, count)
		assert.Len(t, assigned, 4)
		for id, nature := range assigned {
			assert.Contains(t, vocabList, nature, "pokemon %d got a value outside the vocabulary", id)
		}
		// The vocabulary is fetched once, not per pokemon
		assert.Equal(t, 1, vocab.calls)
	})

	t.Run("same seed produces the same draw", func(t *testing.T) {
		svcA, assignedA := newTestService(&fakeVocabulary{natures: vocabList}, []int{1, 2, 3}, 42)
		svcB, assignedB := newTestService(&fakeVocabulary{natures: vocabList}, []int{1, 2, 3}, 42)

		_, err := svcA.AssignNatures(context.Background())
		require.NoError(t, err)
		_, err = svcB.AssignNatures(context.Background())
		require.NoError(t, err)

		assert.Equal(t, assignedA, assignedB)
	})

	t.Run("vocabulary fetch failure aborts the pass", func(t *testing.T) {
		vocab := &fakeVocabulary{err: errors.New("upstream 503")}
		svc, assigned := newTestService(vocab, []int{1, 2}, 1)

		_, err := svc.AssignNatures(context.Background())
		require.Error(t, err)
		assert.Empty(t, assigned)
	})

	t.Run("empty vocabulary aborts the pass", func(t *testing.T) {
		vocab := &fakeVocabulary{natures: nil}
		svc, _ := newTestService(vocab, []int{1}, 1)

		_, err := svc.AssignNatures(context.Background())
		require.Error(t, err)
	})

	t.Run("per-pokemon write failure is skipped and excluded", func(t *testing.T) {
		vocab := &fakeVocabulary{natures: vocabList}
		svc, assigned := newTestService(vocab, []int{1, 2, 3}, 3)
		inner := svc.setNature
		svc.setNature = func(ctx context.Context, pokemonID int, nature string) error {
			if pokemonID == 2 {
				return errors.New("connection reset")
			}
			return inner(ctx, pokemonID, nature)
		}

		count, err := svc.AssignNatures(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		_, ok := assigned[2]
		assert.False(t, ok)
	})

	t.Run("no stored pokemon means zero assignments, no error", func(t *testing.T) {
		vocab := &fakeVocabulary{natures: vocabList}
		svc, _ := newTestService(vocab, nil, 1)

		count, err := svc.AssignNatures(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
