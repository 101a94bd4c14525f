package domain

// PlayerStanding is the raw per-player aggregate the store produces for one
// leaderboard scope. Ordering and rank assignment happen in the ranking engine.
type PlayerStanding struct {
	PlayerID    int64  `json:"player_id"`
	DisplayName string `json:"display_name"`
	BestScore   int64  `json:"best_score"`
	TotalGames  int64  `json:"total_games"`
	TotalScore  int64  `json:"total_score"`
}

// LeaderboardEntry is one ranked row of a computed leaderboard view
type LeaderboardEntry struct {
	Rank        int64   `json:"rank"`
	PlayerID    int64   `json:"player_id"`
	DisplayName string  `json:"display_name"`
	BestScore   int64   `json:"best_score"`
	TotalGames  int64   `json:"total_games"`
	AvgScore    float64 `json:"avg_score"`
}

// PlayerRank is a single player's position in a leaderboard scope.
// Ranked is false for players with no scores in the scope; rank 0 is never
// a valid rank.
type PlayerRank struct {
	PlayerID     int64  `json:"player_id"`
	GameMode     string `json:"game_mode"`
	Ranked       bool   `json:"ranked"`
	Rank         int64  `json:"rank,omitempty"`
	BestScore    int64  `json:"best_score,omitempty"`
	TotalPlayers int64  `json:"total_players"`
}
