package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Gateway.Server.Port)
	assert.Equal(t, 8001, cfg.Player.Port)
	assert.Equal(t, 8002, cfg.Score.Server.Port)
	assert.Equal(t, 8003, cfg.Leaderboard.Server.Port)
	assert.Equal(t, 8004, cfg.Achievement.Port)

	assert.Equal(t, 30*time.Second, cfg.Gateway.ProbeInterval)
	assert.Equal(t, 5*time.Second, cfg.Gateway.ProbeTimeout)
	assert.Equal(t, 30*time.Second, cfg.Gateway.ForwardTimeout)
	assert.Contains(t, cfg.Gateway.Backends, "player-service")

	assert.Equal(t, 10, cfg.Leaderboard.DefaultLimit)
	assert.Equal(t, 100, cfg.Leaderboard.MaxLimit)
	assert.Equal(t, 5*time.Minute, cfg.Leaderboard.LeaderboardTTL)
	assert.Equal(t, time.Minute, cfg.Leaderboard.RankTTL)

	assert.Equal(t, "score-submissions", cfg.Kafka.Topic)
	assert.Equal(t, "score-service", cfg.Kafka.GroupID)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
gateway:
  server:
    port: 9000
  probe_interval: 10s
  backends:
    player-service:
      - "player-a:8001"
      - "player-b:8001"
leaderboard:
  max_limit: 50
redis:
  enabled: true
  addr: "redis:6379"
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Gateway.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Gateway.ProbeInterval)
	assert.Equal(t, []string{"player-a:8001", "player-b:8001"}, cfg.Gateway.Backends["player-service"])
	assert.Equal(t, 50, cfg.Leaderboard.MaxLimit)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "sekret")

	cfg, err := Load(writeConfig(t, `
postgres:
  password: "${TEST_PG_PASSWORD}"
`))
	require.NoError(t, err)
	assert.Equal(t, "sekret", cfg.Postgres.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "pw",
		Database: "leaderboard",
	}
	assert.Equal(t, "postgres://app:pw@db:5432/leaderboard?sslmode=disable", cfg.ConnectionString())
}
