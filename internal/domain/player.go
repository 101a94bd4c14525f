package domain

import "time"

// Player represents a registered player
type Player struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	LastActive  time.Time `json:"last_active"`
}

// PlayerCreate is a request to register a new player
type PlayerCreate struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// PlayerUpdate carries optional fields for a partial player update
type PlayerUpdate struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// PlayerStats aggregates a player's scoring history across all game modes
type PlayerStats struct {
	PlayerID   int64   `json:"player_id"`
	TotalGames int64   `json:"total_games"`
	BestScore  int64   `json:"best_score"`
	TotalScore int64   `json:"total_score"`
	AvgScore   float64 `json:"avg_score"`
}
