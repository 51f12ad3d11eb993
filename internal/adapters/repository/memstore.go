package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/types"
	"github.com/okian/pbpwpa/pkg/metrics"
)

const defaultMaxLimit = 1000

// MemoryStore is an in-memory Store. Results live for the life of the
// process; every play with a WPA is kept in a treap ranked by swing.
type MemoryStore struct {
	mu       sync.RWMutex
	results  map[string]*model.GameResult
	reserved map[string]struct{}
	swings   swingIndex

	maxLimit       int
	metricsEnabled bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		results:        make(map[string]*model.GameResult),
		reserved:       make(map[string]struct{}),
		maxLimit:       defaultMaxLimit,
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reserve claims gameID.
func (s *MemoryStore) Reserve(_ context.Context, gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reserved[gameID]; ok {
		return false
	}
	if _, ok := s.results[gameID]; ok {
		return false
	}
	s.reserved[gameID] = struct{}{}
	return true
}

// Release drops the reservation of gameID.
func (s *MemoryStore) Release(_ context.Context, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, gameID)
}

// Save stores res and turns its reservation, if any, into a stored game.
func (s *MemoryStore) Save(_ context.Context, res *model.GameResult) error {
	if res == nil {
		return ErrNilResult
	}
	s.mu.Lock()
	if old, ok := s.results[res.GameID]; ok {
		for _, sw := range swingsOf(old) {
			s.swings.remove(&sw)
		}
	}
	for _, sw := range swingsOf(res) {
		s.swings.add(sw)
	}
	s.results[res.GameID] = res
	delete(s.reserved, res.GameID)
	n := len(s.results)
	s.mu.Unlock()

	if s.metricsEnabled {
		metrics.UpdateGamesStored(n)
	}
	return nil
}

// Get returns the stored result for gameID.
func (s *MemoryStore) Get(_ context.Context, gameID string) (*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	return res, nil
}

// Count returns the number of stored games.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// IDs returns the stored game ids in ascending order.
func (s *MemoryStore) IDs(_ context.Context) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// TopSwings returns the n plays with the largest |WPA|. Ties are broken
// by game id, then play index, so the order is deterministic.
func (s *MemoryStore) TopSwings(_ context.Context, n int) ([]types.Swing, error) {
	if n <= 0 || n > s.maxLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.swings.top(n), nil
}

// swingsOf lists the plays of res that carry a WPA.
func swingsOf(res *model.GameResult) []types.Swing {
	out := make([]types.Swing, 0, len(res.Table))
	for i := range res.Table {
		p := &res.Table[i]
		if p.WPA == nil {
			continue
		}
		out = append(out, types.Swing{
			GameID: res.GameID,
			Index:  p.Index,
			Kind:   p.Kind.String(),
			Detail: p.Detail,
			Team:   p.Team,
			WPA:    *p.WPA,
		})
	}
	return out
}
