package score

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-platform/internal/cache"
	"github.com/leaderboard-platform/internal/domain"
)

type fakeStore struct {
	players map[int64]bool
	scores  []domain.Score
	nextID  int64
}

func newFakeStore(playerIDs ...int64) *fakeStore {
	s := &fakeStore{players: make(map[int64]bool), nextID: 1}
	for _, id := range playerIDs {
		s.players[id] = true
	}
	return s
}

func (s *fakeStore) PlayerExists(_ context.Context, id int64) (bool, error) {
	return s.players[id], nil
}

func (s *fakeStore) InsertScore(_ context.Context, sc *domain.Score) error {
	sc.ID = s.nextID
	s.nextID++
	sc.CreatedAt = time.Now()
	s.scores = append(s.scores, *sc)
	return nil
}

func (s *fakeStore) ListScores(_ context.Context, limit, offset int) ([]domain.Score, error) {
	return s.scores, nil
}

func (s *fakeStore) PlayerScores(_ context.Context, playerID int64) ([]domain.Score, error) {
	var out []domain.Score
	for _, sc := range s.scores {
		if sc.PlayerID == playerID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *fakeStore) ScoresByGameMode(_ context.Context, gameMode string) ([]domain.Score, error) {
	var out []domain.Score
	for _, sc := range s.scores {
		if sc.GameMode == gameMode {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *fakeStore) PlayerBestScore(_ context.Context, playerID int64, gameMode string) (int64, error) {
	var best int64
	for _, sc := range s.scores {
		if sc.PlayerID == playerID && sc.GameMode == gameMode && sc.Score > best {
			best = sc.Score
		}
	}
	return best, nil
}

type recordingCache struct {
	cache.Noop
	deleted []string
}

func (c *recordingCache) DeleteByPattern(_ context.Context, pattern string) {
	c.deleted = append(c.deleted, pattern)
}

type fakeNotifier struct {
	checks chan int64
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{checks: make(chan int64, 8)}
}

func (n *fakeNotifier) NotifyCheck(playerID int64) {
	n.checks <- playerID
}

func (n *fakeNotifier) waitForCheck(t *testing.T) int64 {
	t.Helper()
	select {
	case id := <-n.checks:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("achievement check was never triggered")
		return 0
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitPersistsAndInvalidates(t *testing.T) {
	store := newFakeStore(1)
	rc := &recordingCache{}
	notifier := newFakeNotifier()
	svc := NewService(store, rc, notifier, nil, testLogger())

	record, err := svc.Submit(context.Background(), domain.ScoreSubmission{
		PlayerID: 1,
		GameMode: "CLASSIC",
		Score:    1500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, int64(1500), record.Score)

	// invalidation happens before Submit returns
	require.Len(t, rc.deleted, 2)
	assert.Equal(t, cache.LeaderboardPattern, rc.deleted[0])
	assert.Equal(t, cache.StatsKey(1), rc.deleted[1])

	assert.Equal(t, int64(1), notifier.waitForCheck(t))
}

func TestSubmitDefaultsGameMode(t *testing.T) {
	store := newFakeStore(1)
	svc := NewService(store, &recordingCache{}, newFakeNotifier(), nil, testLogger())

	record, err := svc.Submit(context.Background(), domain.ScoreSubmission{PlayerID: 1, Score: 100})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGameMode, record.GameMode)
}

func TestSubmitRejectsNegativeScore(t *testing.T) {
	store := newFakeStore(1)
	rc := &recordingCache{}
	svc := NewService(store, rc, newFakeNotifier(), nil, testLogger())

	_, err := svc.Submit(context.Background(), domain.ScoreSubmission{PlayerID: 1, Score: -5})
	require.ErrorIs(t, err, domain.ErrInvalidScore)
	assert.Empty(t, store.scores)
	assert.Empty(t, rc.deleted)
}

func TestSubmitUnknownPlayerHasNoSideEffects(t *testing.T) {
	store := newFakeStore(1)
	rc := &recordingCache{}
	notifier := newFakeNotifier()
	svc := NewService(store, rc, notifier, nil, testLogger())

	_, err := svc.Submit(context.Background(), domain.ScoreSubmission{PlayerID: 9999, Score: 10})
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.Empty(t, store.scores)
	assert.Empty(t, rc.deleted)

	select {
	case <-notifier.checks:
		t.Fatal("rejected submission must not trigger an achievement check")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBestUsesDefaultGameMode(t *testing.T) {
	store := newFakeStore(1)
	svc := NewService(store, &recordingCache{}, newFakeNotifier(), nil, testLogger())

	_, err := svc.Submit(context.Background(), domain.ScoreSubmission{PlayerID: 1, GameMode: "CLASSIC", Score: 1800})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), domain.ScoreSubmission{PlayerID: 1, GameMode: "ARCADE", Score: 2200})
	require.NoError(t, err)

	best, err := svc.Best(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, "CLASSIC", best.GameMode)
	assert.Equal(t, int64(1800), best.BestScore)

	best, err = svc.Best(context.Background(), 1, "ARCADE")
	require.NoError(t, err)
	assert.Equal(t, int64(2200), best.BestScore)
}
