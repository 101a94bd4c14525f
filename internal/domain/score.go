package domain

import (
	"strings"
	"time"
)

// Game mode handling. Scores are always recorded under a concrete mode;
// leaderboard queries use GameModeGlobal as the sentinel for "all modes".
const (
	GameModeGlobal  = "GLOBAL"
	DefaultGameMode = "CLASSIC"
)

// NormalizeGameMode maps a query parameter to the canonical cache-key form.
// An empty mode means the global scope.
func NormalizeGameMode(mode string) string {
	if mode == "" {
		return GameModeGlobal
	}
	return strings.ToUpper(mode)
}

// Score is a single immutable score record. There is no update path;
// a player's standing is always derived from the full set of rows.
type Score struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	GameMode  string    `json:"game_mode"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreSubmission is a request to record a new score
type ScoreSubmission struct {
	PlayerID int64  `json:"player_id"`
	GameMode string `json:"game_mode,omitempty"`
	Score    int64  `json:"score"`
}

// PlayerBestScore is the best single score for a player in one game mode
type PlayerBestScore struct {
	PlayerID  int64  `json:"player_id"`
	GameMode  string `json:"game_mode"`
	BestScore int64  `json:"best_score"`
}
