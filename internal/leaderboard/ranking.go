package leaderboard

import (
	"math"
	"sort"

	"github.com/leaderboard-platform/internal/domain"
)

// Rank orders standings into a ranked leaderboard view. Players are ordered
// by best score descending; equal scores are broken by player ID ascending so
// rank assignment is deterministic across recomputation. Ranks are
// consecutive, starting at 1.
func Rank(standings []domain.PlayerStanding) []domain.LeaderboardEntry {
	sorted := make([]domain.PlayerStanding, len(standings))
	copy(sorted, standings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].BestScore != sorted[j].BestScore {
			return sorted[i].BestScore > sorted[j].BestScore
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	entries := make([]domain.LeaderboardEntry, len(sorted))
	for i, st := range sorted {
		entries[i] = domain.LeaderboardEntry{
			Rank:        int64(i + 1),
			PlayerID:    st.PlayerID,
			DisplayName: st.DisplayName,
			BestScore:   st.BestScore,
			TotalGames:  st.TotalGames,
			AvgScore:    average(st.TotalScore, st.TotalGames),
		}
	}
	return entries
}

// average computes the display average. The same rounding rule is applied on
// every computation so cached and recomputed values stay bit-identical.
func average(totalScore, totalGames int64) float64 {
	if totalGames == 0 {
		return 0
	}
	return Round2(float64(totalScore) / float64(totalGames))
}

// Round2 rounds to two decimal places for display
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// page slices a ranked view for pagination, preserving absolute ranks
func page(entries []domain.LeaderboardEntry, limit, offset int) []domain.LeaderboardEntry {
	if offset >= len(entries) {
		return []domain.LeaderboardEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}
