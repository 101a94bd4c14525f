package domain

import "time"

// Criteria types an achievement's unlock condition is evaluated against
const (
	CriteriaGames      = "GAMES"       // total games played
	CriteriaScore      = "SCORE"       // best single score
	CriteriaTotalScore = "TOTAL_SCORE" // cumulative score
)

// Achievement is a static achievement definition, seeded once
type Achievement struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	Points        int64  `json:"points"`
	Category      string `json:"category"`
	CriteriaType  string `json:"criteria_type"`
	CriteriaValue int64  `json:"criteria_value"`
}

// PlayerAchievement records that a player unlocked an achievement.
// At most one row exists per (player, achievement); unlocking is idempotent
// membership, never an append-only log.
type PlayerAchievement struct {
	ID            int64     `json:"id"`
	PlayerID      int64     `json:"player_id"`
	AchievementID int64     `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// UnlockedAchievement joins an unlocked achievement with its definition
type UnlockedAchievement struct {
	Achievement
	UnlockedAt time.Time `json:"unlocked_at"`
}

// AchievementRank is one row of the achievement-points leaderboard
type AchievementRank struct {
	Rank             int64  `json:"rank"`
	PlayerID         int64  `json:"player_id"`
	Username         string `json:"username"`
	DisplayName      string `json:"display_name"`
	AchievementCount int64  `json:"achievement_count"`
	TotalPoints      int64  `json:"total_points"`
}
