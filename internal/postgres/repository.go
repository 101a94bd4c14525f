// Package postgres provides the shared relational store for all services.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leaderboard-platform/internal/config"
	"github.com/leaderboard-platform/internal/domain"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			display_name VARCHAR(100),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_active TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			id BIGSERIAL PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			game_mode VARCHAR(50) NOT NULL DEFAULT 'CLASSIC',
			score BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			description TEXT NOT NULL,
			icon VARCHAR(16) DEFAULT '',
			points BIGINT NOT NULL DEFAULT 100,
			category VARCHAR(50) NOT NULL DEFAULT 'GENERAL',
			criteria_type VARCHAR(20) NOT NULL,
			criteria_value BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS player_achievements (
			id BIGSERIAL PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			achievement_id BIGINT NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
			unlocked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(player_id, achievement_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_mode_score ON scores(game_mode, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_created ON scores(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_player_achievements_player ON player_achievements(player_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// --- players ---

// CreatePlayer inserts a new player, filling in its ID and timestamps
func (r *Repository) CreatePlayer(ctx context.Context, p *domain.Player) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM players WHERE username = $1 OR email = $2)`,
		p.Username, p.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking player uniqueness: %w", err)
	}
	if exists {
		return domain.ErrDuplicatePlayer
	}

	if p.DisplayName == "" {
		p.DisplayName = p.Username
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO players (username, email, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, last_active
	`, p.Username, p.Email, p.DisplayName).Scan(&p.ID, &p.CreatedAt, &p.LastActive)
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	return nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.DisplayName, &p.CreatedAt, &p.LastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("scanning player: %w", err)
	}
	return &p, nil
}

const playerColumns = `id, username, email, display_name, created_at, last_active`

// GetPlayer retrieves a player by ID
func (r *Repository) GetPlayer(ctx context.Context, id int64) (*domain.Player, error) {
	return scanPlayer(r.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
}

// GetPlayerByUsername retrieves a player by username
func (r *Repository) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	return scanPlayer(r.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE username = $1`, username))
}

// ListPlayers retrieves players with pagination
func (r *Repository) ListPlayers(ctx context.Context, limit, offset int) ([]domain.Player, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+playerColumns+` FROM players ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &p.DisplayName, &p.CreatedAt, &p.LastActive); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpdatePlayer applies a partial update and bumps last_active
func (r *Repository) UpdatePlayer(ctx context.Context, id int64, update domain.PlayerUpdate) (*domain.Player, error) {
	if update.Email != nil {
		var taken bool
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM players WHERE email = $1 AND id <> $2)`,
			*update.Email, id,
		).Scan(&taken)
		if err != nil {
			return nil, fmt.Errorf("checking email uniqueness: %w", err)
		}
		if taken {
			return nil, domain.ErrDuplicatePlayer
		}
	}

	return scanPlayer(r.pool.QueryRow(ctx, `
		UPDATE players SET
			email        = COALESCE($2, email),
			display_name = COALESCE($3, display_name),
			last_active  = $4
		WHERE id = $1
		RETURNING `+playerColumns,
		id, update.Email, update.DisplayName, time.Now()))
}

// DeletePlayer removes a player and, via cascade, its scores and achievements
func (r *Repository) DeletePlayer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// PlayerExists reports whether a player row exists
func (r *Repository) PlayerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking player existence: %w", err)
	}
	return exists, nil
}

// --- scores ---

// InsertScore persists a new score, filling in its ID and timestamp
func (r *Repository) InsertScore(ctx context.Context, s *domain.Score) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO scores (player_id, game_mode, score)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, s.PlayerID, s.GameMode, s.Score).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting score: %w", err)
	}
	return nil
}

const scoreColumns = `id, player_id, game_mode, score, created_at`

func (r *Repository) queryScores(ctx context.Context, query string, args ...interface{}) ([]domain.Score, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.Score
	for rows.Next() {
		var s domain.Score
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.GameMode, &s.Score, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// ListScores retrieves scores ordered by value, highest first
func (r *Repository) ListScores(ctx context.Context, limit, offset int) ([]domain.Score, error) {
	return r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM scores ORDER BY score DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
}

// PlayerScores retrieves all scores for one player, highest first
func (r *Repository) PlayerScores(ctx context.Context, playerID int64) ([]domain.Score, error) {
	return r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM scores WHERE player_id = $1 ORDER BY score DESC, id`,
		playerID)
}

// ScoresByGameMode retrieves all scores in one game mode, highest first
func (r *Repository) ScoresByGameMode(ctx context.Context, gameMode string) ([]domain.Score, error) {
	return r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM scores WHERE game_mode = $1 ORDER BY score DESC, id`,
		gameMode)
}

// RecentScores retrieves the most recently submitted scores
func (r *Repository) RecentScores(ctx context.Context, limit int) ([]domain.Score, error) {
	return r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM scores ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit)
}

// PlayerBestScore returns a player's best score in one game mode, 0 if none
func (r *Repository) PlayerBestScore(ctx context.Context, playerID int64, gameMode string) (int64, error) {
	var best int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(score), 0) FROM scores
		WHERE player_id = $1 AND game_mode = $2
	`, playerID, gameMode).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("getting best score: %w", err)
	}
	return best, nil
}

// PlayerStandings returns per-player aggregates for a leaderboard scope.
// The GLOBAL sentinel spans all game modes. Ordering is left to the ranking
// engine; only players with at least one score in scope appear.
func (r *Repository) PlayerStandings(ctx context.Context, gameMode string) ([]domain.PlayerStanding, error) {
	query := `
		SELECT p.id, p.display_name, MAX(s.score), COUNT(s.id), SUM(s.score)
		FROM players p
		JOIN scores s ON p.id = s.player_id
		GROUP BY p.id, p.display_name
	`
	args := []interface{}{}
	if gameMode != domain.GameModeGlobal {
		query = `
			SELECT p.id, p.display_name, MAX(s.score), COUNT(s.id), SUM(s.score)
			FROM players p
			JOIN scores s ON p.id = s.player_id
			WHERE s.game_mode = $1
			GROUP BY p.id, p.display_name
		`
		args = append(args, gameMode)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	var standings []domain.PlayerStanding
	for rows.Next() {
		var st domain.PlayerStanding
		if err := rows.Scan(&st.PlayerID, &st.DisplayName, &st.BestScore, &st.TotalGames, &st.TotalScore); err != nil {
			return nil, fmt.Errorf("scanning standing: %w", err)
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

// PlayerStats computes a player's aggregates across all game modes.
// A player with no scores gets zero stats, not an error.
func (r *Repository) PlayerStats(ctx context.Context, playerID int64) (*domain.PlayerStats, error) {
	stats := &domain.PlayerStats{PlayerID: playerID}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(id), COALESCE(MAX(score), 0), COALESCE(SUM(score), 0)
		FROM scores WHERE player_id = $1
	`, playerID).Scan(&stats.TotalGames, &stats.BestScore, &stats.TotalScore)
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}
	return stats, nil
}

// --- achievements ---

// SeedAchievements inserts achievement definitions, skipping existing names
func (r *Repository) SeedAchievements(ctx context.Context, achievements []domain.Achievement) error {
	for _, a := range achievements {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO achievements (name, description, icon, points, category, criteria_type, criteria_value)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO NOTHING
		`, a.Name, a.Description, a.Icon, a.Points, a.Category, a.CriteriaType, a.CriteriaValue)
		if err != nil {
			return fmt.Errorf("seeding achievement %q: %w", a.Name, err)
		}
	}
	return nil
}

const achievementColumns = `id, name, description, icon, points, category, criteria_type, criteria_value`

// ListAchievements retrieves all achievement definitions
func (r *Repository) ListAchievements(ctx context.Context) ([]domain.Achievement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+achievementColumns+` FROM achievements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.Points, &a.Category, &a.CriteriaType, &a.CriteriaValue); err != nil {
			return nil, fmt.Errorf("scanning achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// UnlockedAchievementIDs returns the set of achievements a player has unlocked
func (r *Repository) UnlockedAchievementIDs(ctx context.Context, playerID int64) (map[int64]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT achievement_id FROM player_achievements WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing unlocked achievements: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning achievement id: %w", err)
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}

// UnlockAchievement inserts a player_achievements row. The unique constraint
// makes this idempotent; it reports whether a new row was actually inserted.
func (r *Repository) UnlockAchievement(ctx context.Context, playerID, achievementID int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO player_achievements (player_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, achievement_id) DO NOTHING
	`, playerID, achievementID, at)
	if err != nil {
		return false, fmt.Errorf("unlocking achievement: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PlayerAchievements retrieves a player's unlocked achievements with definitions
func (r *Repository) PlayerAchievements(ctx context.Context, playerID int64) ([]domain.UnlockedAchievement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.name, a.description, a.icon, a.points, a.category,
		       a.criteria_type, a.criteria_value, pa.unlocked_at
		FROM player_achievements pa
		JOIN achievements a ON a.id = pa.achievement_id
		WHERE pa.player_id = $1
		ORDER BY pa.unlocked_at, a.id
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing player achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []domain.UnlockedAchievement
	for rows.Next() {
		var u domain.UnlockedAchievement
		if err := rows.Scan(&u.ID, &u.Name, &u.Description, &u.Icon, &u.Points, &u.Category,
			&u.CriteriaType, &u.CriteriaValue, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scanning unlocked achievement: %w", err)
		}
		unlocked = append(unlocked, u)
	}
	return unlocked, rows.Err()
}

// AchievementLeaderboard ranks players by total achievement points
func (r *Repository) AchievementLeaderboard(ctx context.Context, limit int) ([]domain.AchievementRank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.username, p.display_name,
		       COUNT(pa.id), COALESCE(SUM(a.points), 0)
		FROM players p
		LEFT JOIN player_achievements pa ON p.id = pa.player_id
		LEFT JOIN achievements a ON pa.achievement_id = a.id
		GROUP BY p.id, p.username, p.display_name
		ORDER BY COALESCE(SUM(a.points), 0) DESC, p.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying achievement leaderboard: %w", err)
	}
	defer rows.Close()

	var ranks []domain.AchievementRank
	for rows.Next() {
		var ar domain.AchievementRank
		if err := rows.Scan(&ar.PlayerID, &ar.Username, &ar.DisplayName, &ar.AchievementCount, &ar.TotalPoints); err != nil {
			return nil, fmt.Errorf("scanning achievement rank: %w", err)
		}
		ar.Rank = int64(len(ranks) + 1)
		ranks = append(ranks, ar)
	}
	return ranks, rows.Err()
}
