package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	analyses map[string]store.Analysis
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{analyses: make(map[string]store.Analysis)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveAnalysis inserts or replaces an analysis, keyed by ID.
func (s *Store) SaveAnalysis(ctx context.Context, a store.Analysis) error {
	if a.ID == "" {
		return fmt.Errorf("analysis without ID: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.ID] = copyAnalysis(a)
	return nil
}

// GetAnalysis returns an analysis by ID.
func (s *Store) GetAnalysis(ctx context.Context, id string) (store.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.analyses[id]; ok {
		return copyAnalysis(a), nil
	}
	return store.Analysis{}, fmt.Errorf("analysis %q: %w", id, internalerr.ErrNotFound)
}

// ListAnalyses returns analyses newest first, optionally filtered by
// language. A non-positive limit means no limit.
func (s *Store) ListAnalyses(ctx context.Context, language string, limit int) ([]store.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Analysis
	for _, a := range s.analyses {
		if language != "" && a.Language != language {
			continue
		}
		out = append(out, copyAnalysis(a))
	}
	// ULIDs sort lexicographically by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyAnalysis(a store.Analysis) store.Analysis {
	out := a
	out.Tokens = append([]store.TokenRecord(nil), a.Tokens...)
	out.Sentences = append([]store.SpanRecord(nil), a.Sentences...)
	out.Chunks = append([]store.ChunkRecord(nil), a.Chunks...)
	return out
}
