// Package score implements score ingestion: validation, persistence,
// synchronous cache invalidation, and the best-effort achievement
// notification that follows every accepted write.
package score

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leaderboard-platform/internal/cache"
	"github.com/leaderboard-platform/internal/domain"
)

// Store is the persistence the ingestion path writes to and reads from
type Store interface {
	PlayerExists(ctx context.Context, id int64) (bool, error)
	InsertScore(ctx context.Context, s *domain.Score) error
	ListScores(ctx context.Context, limit, offset int) ([]domain.Score, error)
	PlayerScores(ctx context.Context, playerID int64) ([]domain.Score, error)
	ScoresByGameMode(ctx context.Context, gameMode string) ([]domain.Score, error)
	PlayerBestScore(ctx context.Context, playerID int64, gameMode string) (int64, error)
}

// Notifier delivers the achievement re-evaluation trigger. Delivery is
// at-most-once: a failed notification is logged and lost, never retried.
type Notifier interface {
	NotifyCheck(playerID int64)
}

// Broadcaster pushes accepted scores to live subscribers
type Broadcaster interface {
	BroadcastScore(score domain.Score)
}

// Service provides score ingestion and read access to raw score records
type Service struct {
	store       Store
	cache       cache.Cache
	notifier    Notifier
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewService creates a new score service. broadcaster may be nil.
func NewService(store Store, c cache.Cache, notifier Notifier, broadcaster Broadcaster, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		cache:       c,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Submit validates and persists a score. Cache invalidation completes before
// Submit returns: a caller that sees success is guaranteed the next
// leaderboard read recomputes from data including this write. The
// achievement notification is fired afterwards without being awaited.
func (s *Service) Submit(ctx context.Context, sub domain.ScoreSubmission) (*domain.Score, error) {
	if sub.Score < 0 {
		return nil, fmt.Errorf("%w: score must not be negative", domain.ErrInvalidScore)
	}

	exists, err := s.store.PlayerExists(ctx, sub.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("checking player: %w", err)
	}
	if !exists {
		return nil, domain.ErrPlayerNotFound
	}

	gameMode := sub.GameMode
	if gameMode == "" {
		gameMode = domain.DefaultGameMode
	}

	record := &domain.Score{
		PlayerID: sub.PlayerID,
		GameMode: gameMode,
		Score:    sub.Score,
	}
	if err := s.store.InsertScore(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting score: %w", err)
	}

	// Invalidation is coarse: any new score can shift ranks in any scope
	// through tie resolution, so all leaderboard keys go, plus the player's
	// stats entry.
	s.cache.DeleteByPattern(ctx, cache.LeaderboardPattern)
	s.cache.DeleteByPattern(ctx, cache.StatsKey(sub.PlayerID))

	go s.notifier.NotifyCheck(sub.PlayerID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastScore(*record)
	}

	return record, nil
}

// List returns scores ordered by value, highest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Score, error) {
	return s.store.ListScores(ctx, limit, offset)
}

// PlayerScores returns all of one player's scores, highest first
func (s *Service) PlayerScores(ctx context.Context, playerID int64) ([]domain.Score, error) {
	return s.store.PlayerScores(ctx, playerID)
}

// ByGameMode returns all scores in one game mode, highest first
func (s *Service) ByGameMode(ctx context.Context, gameMode string) ([]domain.Score, error) {
	return s.store.ScoresByGameMode(ctx, gameMode)
}

// Best returns a player's best score in one game mode, 0 if none
func (s *Service) Best(ctx context.Context, playerID int64, gameMode string) (*domain.PlayerBestScore, error) {
	if gameMode == "" {
		gameMode = domain.DefaultGameMode
	}
	best, err := s.store.PlayerBestScore(ctx, playerID, gameMode)
	if err != nil {
		return nil, err
	}
	return &domain.PlayerBestScore{
		PlayerID:  playerID,
		GameMode:  gameMode,
		BestScore: best,
	}, nil
}
