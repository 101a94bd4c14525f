package achievement

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-platform/internal/domain"
)

type fakeStore struct {
	mu          sync.Mutex
	players     map[int64]bool
	stats       map[int64]*domain.PlayerStats
	definitions []domain.Achievement
	unlocked    map[int64]map[int64]bool
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		players:  make(map[int64]bool),
		stats:    make(map[int64]*domain.PlayerStats),
		unlocked: make(map[int64]map[int64]bool),
	}
	for i, def := range DefaultAchievements() {
		def.ID = int64(i + 1)
		s.definitions = append(s.definitions, def)
	}
	return s
}

func (s *fakeStore) addPlayer(id int64, stats domain.PlayerStats) {
	s.players[id] = true
	stats.PlayerID = id
	s.stats[id] = &stats
}

func (s *fakeStore) PlayerExists(_ context.Context, id int64) (bool, error) {
	return s.players[id], nil
}

func (s *fakeStore) PlayerStats(_ context.Context, playerID int64) (*domain.PlayerStats, error) {
	return s.stats[playerID], nil
}

func (s *fakeStore) ListAchievements(_ context.Context) ([]domain.Achievement, error) {
	return s.definitions, nil
}

func (s *fakeStore) UnlockedAchievementIDs(_ context.Context, playerID int64) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]bool)
	for id := range s.unlocked[playerID] {
		out[id] = true
	}
	return out, nil
}

func (s *fakeStore) UnlockAchievement(_ context.Context, playerID, achievementID int64, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unlocked[playerID] == nil {
		s.unlocked[playerID] = make(map[int64]bool)
	}
	if s.unlocked[playerID][achievementID] {
		return false, nil
	}
	s.unlocked[playerID][achievementID] = true
	return true, nil
}

func (s *fakeStore) unlockedCount(playerID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unlocked[playerID])
}

func (s *fakeStore) PlayerAchievements(_ context.Context, playerID int64) ([]domain.UnlockedAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.UnlockedAchievement
	for _, def := range s.definitions {
		if s.unlocked[playerID][def.ID] {
			out = append(out, domain.UnlockedAchievement{Achievement: def, UnlockedAt: time.Now()})
		}
	}
	return out, nil
}

func (s *fakeStore) AchievementLeaderboard(_ context.Context, limit int) ([]domain.AchievementRank, error) {
	return nil, nil
}

func testService(store *fakeStore) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func names(achievements []domain.Achievement) []string {
	var out []string
	for _, a := range achievements {
		out = append(out, a.Name)
	}
	return out
}

func TestCheckUnlocksMetCriteria(t *testing.T) {
	store := newFakeStore()
	store.addPlayer(1, domain.PlayerStats{TotalGames: 1, BestScore: 150, TotalScore: 150})
	svc := testService(store)

	awarded, err := svc.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"First Steps", "Century Club"}, names(awarded))
}

func TestCheckIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addPlayer(1, domain.PlayerStats{TotalGames: 3, BestScore: 1200, TotalScore: 2400})
	svc := testService(store)

	awarded, err := svc.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, awarded, 3)

	awarded, err = svc.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	unlocked, err := svc.PlayerAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, unlocked, 3)
}

func TestCheckAwardsIncrementally(t *testing.T) {
	store := newFakeStore()
	store.addPlayer(1, domain.PlayerStats{TotalGames: 1, BestScore: 50, TotalScore: 50})
	svc := testService(store)

	awarded, err := svc.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"First Steps"}, names(awarded))

	// player later crosses the single-game score thresholds
	store.stats[1].TotalGames = 2
	store.stats[1].BestScore = 1000
	store.stats[1].TotalScore = 1050

	awarded, err = svc.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Century Club", "High Roller"}, names(awarded))
}

func TestCheckUnknownPlayer(t *testing.T) {
	svc := testService(newFakeStore())

	_, err := svc.Check(context.Background(), 9999)
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestCriteriaTotalScore(t *testing.T) {
	store := newFakeStore()
	store.definitions = append(store.definitions, domain.Achievement{
		ID:            4,
		Name:          "Grinder",
		CriteriaType:  domain.CriteriaTotalScore,
		CriteriaValue: 5000,
		Points:        300,
	})
	store.addPlayer(1, domain.PlayerStats{TotalGames: 10, BestScore: 900, TotalScore: 5200})
	svc := testService(store)

	awarded, err := svc.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, names(awarded), "Grinder")
}

func TestUnknownCriteriaNeverUnlocks(t *testing.T) {
	store := newFakeStore()
	store.definitions = []domain.Achievement{{ID: 1, Name: "Mystery", CriteriaType: "STREAK", CriteriaValue: 1}}
	store.addPlayer(1, domain.PlayerStats{TotalGames: 100, BestScore: 9999, TotalScore: 99999})
	svc := testService(store)

	awarded, err := svc.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, awarded)
}
