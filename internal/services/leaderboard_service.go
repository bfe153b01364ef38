package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/elearnhq/progression-service/internal/cache"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories"
	"github.com/elearnhq/progression-service/internal/utils"
)

const (
	// leaderboardSize caps how many entries a board query returns.
	leaderboardSize = 100

	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 30 * time.Second
)

// RankLedgers derives a leaderboard from ledger snapshots: points descending,
// student id ascending on ties, at most limit entries. Rank is dense, one
// plus the number of students with strictly more points, so tied students
// share a rank. An empty input yields an empty board.
func RankLedgers(ledgers []*models.ProgressLedger, limit int) []*models.LeaderboardEntry {
	sorted := make([]*models.ProgressLedger, len(ledgers))
	copy(sorted, ledgers)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].StudentID < sorted[j].StudentID
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]*models.LeaderboardEntry, 0, len(sorted))
	rank := 0
	for i, ledger := range sorted {
		if i == 0 || ledger.Points != sorted[i-1].Points {
			rank = i + 1
		}
		entries = append(entries, &models.LeaderboardEntry{
			StudentID: ledger.StudentID,
			Points:    ledger.Points,
			Level:     ledger.Level,
			Rank:      rank,
		})
	}
	return entries
}

// LeaderboardService recomputes the board from ledger snapshots on each
// query; nothing ranked is ever persisted.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error)
	GetStudentRank(ctx context.Context, studentID string) (*models.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo   repositories.Repository
	cache  cache.Cache
	logger utils.Logger
}

// NewLeaderboardService creates the ranker. cache may be nil, in which case
// every query recomputes from the repository.
func NewLeaderboardService(repo repositories.Repository, c cache.Cache, logger utils.Logger) LeaderboardService {
	return &leaderboardService{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	if s.cache != nil {
		var cached []*models.LeaderboardEntry
		if err := s.cache.Get(ctx, leaderboardCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	ledgers, err := s.repo.Progress().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}

	entries := RankLedgers(ledgers, leaderboardSize)

	if s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardCacheKey, entries, leaderboardCacheTTL); err != nil {
			s.logger.LogError(err, "Failed to cache leaderboard snapshot")
		}
	}
	return entries, nil
}

// GetStudentRank returns the student's own entry even when they sit outside
// the top of the board.
func (s *leaderboardService) GetStudentRank(ctx context.Context, studentID string) (*models.LeaderboardEntry, error) {
	ledger, err := s.repo.Progress().GetByStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	ahead, err := s.repo.Progress().CountWithMorePoints(ctx, ledger.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to count higher-ranked students: %w", err)
	}

	return &models.LeaderboardEntry{
		StudentID: ledger.StudentID,
		Points:    ledger.Points,
		Level:     ledger.Level,
		Rank:      int(ahead) + 1,
	}, nil
}
