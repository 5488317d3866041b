package app

import (
	"sort"

	"github.com/PippinJewel/quiz-platform/internal/domain"
)

// BuildLeaderboard ranks participants by score, highest first. Equal
// scores keep join order: whoever joined earlier ranks higher, so the
// ordering is deterministic regardless of map iteration.
func BuildLeaderboard(code string, participants []*domain.Participant) domain.Leaderboard {
	sorted := make([]*domain.Participant, len(participants))
	copy(sorted, participants)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].JoinSeq < sorted[j].JoinSeq
	})

	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	for i, p := range sorted {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:        i + 1,
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
		})
	}

	return domain.Leaderboard{Code: code, Entries: entries}
}
