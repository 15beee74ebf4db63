package app

import (
	"sort"

	"quiz-room-service/internal/domain"
)

// Rank collapses a raw attempt log into one best row per user and sorts it
// into leaderboard order: points descending, ties broken by earliest
// CreatedAt (an early finish beats a late resubmission on equal score), then
// by name for determinism. Rank positions are 1-based.
//
// The full recompute is O(n log n) per call, which is fine for rooms of tens
// to low hundreds of attempts. Larger rooms would want an incrementally
// maintained sorted structure with the same dedup and tie-break rules; keep
// that swap behind this function.
func Rank(attempts []domain.Attempt) []domain.LeaderboardEntry {
	best := make(map[string]domain.Attempt, len(attempts))
	for _, a := range attempts {
		key := dedupKey(a)
		if key == "" {
			continue
		}
		cur, ok := best[key]
		if !ok || beats(a, cur) {
			best[key] = a
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(best))
	for _, a := range best {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:    a.UserID,
			UserName:  a.UserName,
			PhotoURL:  a.PhotoURL,
			Score:     a.Score,
			Total:     a.Total,
			Points:    a.RankPoints(),
			TimeMs:    a.TimeMs,
			CreatedAt: a.CreatedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].UserName < entries[j].UserName
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// dedupKey is the identity attempts are collapsed on. Rows without a user ID
// fall back to the display name, which can collide across users; that is a
// known limitation of anonymous play, not a guarantee.
func dedupKey(a domain.Attempt) string {
	if a.UserID != "" {
		return a.UserID
	}
	if a.UserName != "" {
		return "name:" + a.UserName
	}
	return ""
}

// beats reports whether a should replace cur as a user's best attempt:
// higher points win, equal points keep the earlier row.
func beats(a, cur domain.Attempt) bool {
	if a.RankPoints() != cur.RankPoints() {
		return a.RankPoints() > cur.RankPoints()
	}
	return a.CreatedAt.Before(cur.CreatedAt)
}

// TopN returns the first n leaderboard rows. Empty input yields an empty
// slice, never an error.
func TopN(attempts []domain.Attempt, n int) []domain.LeaderboardEntry {
	entries := Rank(attempts)
	if n < 0 {
		n = 0
	}
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}

// RankOf finds userID's 1-based position against the deduplicated
// leaderboard. The second return is false when the user has no attempt; that
// is a normal outcome, not an error.
func RankOf(attempts []domain.Attempt, userID string) (domain.RankResult, bool) {
	if userID == "" {
		return domain.RankResult{}, false
	}
	for _, entry := range Rank(attempts) {
		if entry.UserID == userID {
			return domain.RankResult{Rank: entry.Rank, Entry: entry}, true
		}
	}
	return domain.RankResult{}, false
}
