package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
)

// ProgressStore is an in-memory implementation of
// repositories.ProgressRepository. It backs the engine tests and is usable as
// a single-process store when no database is configured.
type ProgressStore struct {
	mu      sync.RWMutex
	ledgers map[string]*models.ProgressLedger
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		ledgers: make(map[string]*models.ProgressLedger),
	}
}

func (s *ProgressStore) Create(_ context.Context, ledger *models.ProgressLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[ledger.StudentID]; ok {
		return repositories.ErrDuplicate
	}
	stored := *ledger
	s.ledgers[ledger.StudentID] = &stored
	return nil
}

func (s *ProgressStore) GetByStudent(_ context.Context, studentID string) (*models.ProgressLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ledger, ok := s.ledgers[studentID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *ledger
	return &copied, nil
}

func (s *ProgressStore) Update(_ context.Context, ledger *models.ProgressLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[ledger.StudentID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *ledger
	s.ledgers[ledger.StudentID] = &stored
	return nil
}

func (s *ProgressStore) ListAll(_ context.Context) ([]*models.ProgressLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ProgressLedger, 0, len(s.ledgers))
	for _, ledger := range s.ledgers {
		copied := *ledger
		out = append(out, &copied)
	}
	// Stable iteration order for callers that expect determinism.
	sort.Slice(out, func(i, j int) bool {
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

func (s *ProgressStore) CountWithMorePoints(_ context.Context, points int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, ledger := range s.ledgers {
		if ledger.Points > points {
			count++
		}
	}
	return count, nil
}
