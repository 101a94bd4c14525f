package cache

import "fmt"

// Cache keys encode the exact query shape so that identical queries always
// map to identical entries. Game modes must be normalized before keying.

// LeaderboardPattern matches every leaderboard view entry. Score writes
// invalidate coarsely with this pattern: a new score can shift ranks in any
// scope through tie resolution, so per-key invalidation is not attempted.
const LeaderboardPattern = "lb:*"

// GlobalKey is the key for a ranked leaderboard view
func GlobalKey(mode string, limit, offset int) string {
	return fmt.Sprintf("lb:global:%s:%d:%d", mode, limit, offset)
}

// RankKey is the key for a single player's rank in one scope
func RankKey(mode string, playerID int64) string {
	return fmt.Sprintf("lb:rank:%s:%d", mode, playerID)
}

// RecentKey is the key for the recent-scores view
func RecentKey(limit int) string {
	return fmt.Sprintf("lb:recent:%d", limit)
}

// StatsKey is the key for a player's aggregate stats
func StatsKey(playerID int64) string {
	return fmt.Sprintf("player:stats:%d", playerID)
}
