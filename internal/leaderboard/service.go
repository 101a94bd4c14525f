// Package leaderboard implements the cache-coherent ranking engine. Ranked
// views are computed from persisted scores on cache miss and served from the
// cache on hit; freshness is bounded by TTL plus the explicit invalidation
// the score ingestion path performs after every write.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/leaderboard-platform/internal/cache"
	"github.com/leaderboard-platform/internal/config"
	"github.com/leaderboard-platform/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Store is the persistence the ranking engine computes from on cache miss
type Store interface {
	PlayerStandings(ctx context.Context, gameMode string) ([]domain.PlayerStanding, error)
	RecentScores(ctx context.Context, limit int) ([]domain.Score, error)
	PlayerStats(ctx context.Context, playerID int64) (*domain.PlayerStats, error)
}

// Service provides leaderboard views with read-through caching
type Service struct {
	store  Store
	cache  cache.Cache
	config *config.LeaderboardConfig
	logger *slog.Logger
	group  singleflight.Group
}

// NewService creates a new leaderboard service
func NewService(store Store, c cache.Cache, cfg *config.LeaderboardConfig, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  c,
		config: cfg,
		logger: logger,
	}
}

// Global returns the ranked leaderboard view for a scope. An empty gameMode
// means the global scope across all modes.
func (s *Service) Global(ctx context.Context, limit, offset int, gameMode string) ([]domain.LeaderboardEntry, error) {
	mode := domain.NormalizeGameMode(gameMode)
	limit = s.clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	key := cache.GlobalKey(mode, limit, offset)
	if data, ok := s.cache.Get(ctx, key); ok {
		return decodeEntries(data)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		standings, err := s.store.PlayerStandings(ctx, mode)
		if err != nil {
			return nil, fmt.Errorf("loading standings: %w", err)
		}
		entries := page(Rank(standings), limit, offset)
		data, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("encoding leaderboard: %w", err)
		}
		s.cache.Set(ctx, key, data, s.config.LeaderboardTTL)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return decodeEntries(v.([]byte))
}

// PlayerRank returns a single player's position in a scope. A player with no
// scores in scope gets a distinguished unranked result, never rank 0 and
// never an error.
func (s *Service) PlayerRank(ctx context.Context, playerID int64, gameMode string) (*domain.PlayerRank, error) {
	mode := domain.NormalizeGameMode(gameMode)

	key := cache.RankKey(mode, playerID)
	if data, ok := s.cache.Get(ctx, key); ok {
		return decodeRank(data)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		standings, err := s.store.PlayerStandings(ctx, mode)
		if err != nil {
			return nil, fmt.Errorf("loading standings: %w", err)
		}

		result := &domain.PlayerRank{
			PlayerID:     playerID,
			GameMode:     mode,
			TotalPlayers: int64(len(standings)),
		}
		for _, entry := range Rank(standings) {
			if entry.PlayerID == playerID {
				result.Ranked = true
				result.Rank = entry.Rank
				result.BestScore = entry.BestScore
				break
			}
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encoding rank: %w", err)
		}
		s.cache.Set(ctx, key, data, s.config.RankTTL)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return decodeRank(v.([]byte))
}

// Recent returns the most recently submitted scores
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Score, error) {
	limit = s.clampLimit(limit)

	key := cache.RecentKey(limit)
	if data, ok := s.cache.Get(ctx, key); ok {
		return decodeScores(data)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		scores, err := s.store.RecentScores(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("loading recent scores: %w", err)
		}
		if scores == nil {
			scores = []domain.Score{}
		}
		data, err := json.Marshal(scores)
		if err != nil {
			return nil, fmt.Errorf("encoding recent scores: %w", err)
		}
		s.cache.Set(ctx, key, data, s.config.RecentTTL)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return decodeScores(v.([]byte))
}

// Stats returns a player's aggregate stats with the display average applied
func (s *Service) Stats(ctx context.Context, playerID int64) (*domain.PlayerStats, error) {
	key := cache.StatsKey(playerID)
	if data, ok := s.cache.Get(ctx, key); ok {
		return decodeStats(data)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		stats, err := s.store.PlayerStats(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("loading player stats: %w", err)
		}
		stats.AvgScore = average(stats.TotalScore, stats.TotalGames)

		data, err := json.Marshal(stats)
		if err != nil {
			return nil, fmt.Errorf("encoding stats: %w", err)
		}
		s.cache.Set(ctx, key, data, s.config.StatsTTL)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return decodeStats(v.([]byte))
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		return s.config.MaxLimit
	}
	return limit
}

func decodeEntries(data []byte) ([]domain.LeaderboardEntry, error) {
	entries := []domain.LeaderboardEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding leaderboard: %w", err)
	}
	return entries, nil
}

func decodeRank(data []byte) (*domain.PlayerRank, error) {
	var rank domain.PlayerRank
	if err := json.Unmarshal(data, &rank); err != nil {
		return nil, fmt.Errorf("decoding rank: %w", err)
	}
	return &rank, nil
}

func decodeScores(data []byte) ([]domain.Score, error) {
	scores := []domain.Score{}
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("decoding scores: %w", err)
	}
	return scores, nil
}

func decodeStats(data []byte) (*domain.PlayerStats, error) {
	var stats domain.PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decoding stats: %w", err)
	}
	return &stats, nil
}
