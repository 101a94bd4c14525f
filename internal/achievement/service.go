// Package achievement implements the achievement engine: criteria
// evaluation against a player's score history and idempotent unlocks.
package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leaderboard-platform/internal/domain"
)

// Store is the persistence the achievement engine evaluates against
type Store interface {
	PlayerExists(ctx context.Context, id int64) (bool, error)
	PlayerStats(ctx context.Context, playerID int64) (*domain.PlayerStats, error)
	ListAchievements(ctx context.Context) ([]domain.Achievement, error)
	UnlockedAchievementIDs(ctx context.Context, playerID int64) (map[int64]bool, error)
	UnlockAchievement(ctx context.Context, playerID, achievementID int64, at time.Time) (bool, error)
	PlayerAchievements(ctx context.Context, playerID int64) ([]domain.UnlockedAchievement, error)
	AchievementLeaderboard(ctx context.Context, limit int) ([]domain.AchievementRank, error)
}

// Service evaluates achievement criteria and records unlocks
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new achievement service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// DefaultAchievements returns the definitions seeded at startup
func DefaultAchievements() []domain.Achievement {
	return []domain.Achievement{
		{Name: "First Steps", Description: "Play your first game", Icon: "👣", Points: 50, Category: "progress", CriteriaType: domain.CriteriaGames, CriteriaValue: 1},
		{Name: "Century Club", Description: "Score 100 points in a single game", Icon: "💯", Points: 100, Category: "score", CriteriaType: domain.CriteriaScore, CriteriaValue: 100},
		{Name: "High Roller", Description: "Score 1000 points in a single game", Icon: "🎰", Points: 200, Category: "score", CriteriaType: domain.CriteriaScore, CriteriaValue: 1000},
	}
}

// Check evaluates every locked achievement for the player and unlocks the
// ones whose criteria are now met. It is idempotent: already-unlocked
// achievements are skipped and the unlock insert itself ignores duplicates,
// so concurrent checks for the same player cannot double-award.
func (s *Service) Check(ctx context.Context, playerID int64) ([]domain.Achievement, error) {
	exists, err := s.store.PlayerExists(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("checking player: %w", err)
	}
	if !exists {
		return nil, domain.ErrPlayerNotFound
	}

	stats, err := s.store.PlayerStats(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading player stats: %w", err)
	}

	definitions, err := s.store.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading achievement definitions: %w", err)
	}

	unlocked, err := s.store.UnlockedAchievementIDs(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading unlocked achievements: %w", err)
	}

	var awarded []domain.Achievement
	for _, def := range definitions {
		if unlocked[def.ID] {
			continue
		}
		if !criteriaMet(def, stats) {
			continue
		}
		inserted, err := s.store.UnlockAchievement(ctx, playerID, def.ID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("unlocking %q: %w", def.Name, err)
		}
		if !inserted {
			// lost a race with a concurrent check
			continue
		}
		s.logger.Info("achievement unlocked",
			"player_id", playerID,
			"achievement", def.Name,
			"points", def.Points)
		awarded = append(awarded, def)
	}
	return awarded, nil
}

func criteriaMet(def domain.Achievement, stats *domain.PlayerStats) bool {
	switch def.CriteriaType {
	case domain.CriteriaGames:
		return stats.TotalGames >= def.CriteriaValue
	case domain.CriteriaScore:
		return stats.BestScore >= def.CriteriaValue
	case domain.CriteriaTotalScore:
		return stats.TotalScore >= def.CriteriaValue
	default:
		return false
	}
}

// List returns every achievement definition
func (s *Service) List(ctx context.Context) ([]domain.Achievement, error) {
	return s.store.ListAchievements(ctx)
}

// PlayerAchievements returns the achievements a player has unlocked
func (s *Service) PlayerAchievements(ctx context.Context, playerID int64) ([]domain.UnlockedAchievement, error) {
	exists, err := s.store.PlayerExists(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("checking player: %w", err)
	}
	if !exists {
		return nil, domain.ErrPlayerNotFound
	}
	return s.store.PlayerAchievements(ctx, playerID)
}

// Leaderboard ranks players by total achievement points
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]domain.AchievementRank, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.AchievementLeaderboard(ctx, limit)
}
