package app_test

import (
	"testing"
	"time"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

func attempt(user string, points int, createdAt int64) domain.Attempt {
	return domain.Attempt{
		ID:        user + "-a",
		UserID:    user,
		UserName:  "name-" + user,
		Score:     points / 100,
		Total:     10,
		Points:    points,
		CreatedAt: time.UnixMilli(createdAt),
	}
}

func TestRankDeduplicatesToBestPerUser(t *testing.T) {
	attempts := []domain.Attempt{
		attempt("A", 50, 100),
		attempt("A", 80, 200),
		attempt("B", 60, 150),
	}
	entries := app.Rank(attempts)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != "A" || entries[0].Points != 80 {
		t.Fatalf("expected A leading with 80, got %+v", entries[0])
	}
	if entries[1].UserID != "B" || entries[1].Points != 60 {
		t.Fatalf("expected B second with 60, got %+v", entries[1])
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("ranks not 1-based sequential: %+v", entries)
	}
}

func TestRankTieBreaksByEarliestAttempt(t *testing.T) {
	attempts := []domain.Attempt{
		attempt("A", 50, 100),
		attempt("B", 50, 50),
	}
	entries := app.Rank(attempts)
	if len(entries) != 2 || entries[0].UserID != "B" || entries[1].UserID != "A" {
		t.Fatalf("earlier finish should rank first on tie, got %+v", entries)
	}
}

func TestRankEqualPointsKeepsEarlierRowPerUser(t *testing.T) {
	early := attempt("A", 50, 100)
	late := attempt("A", 50, 900)
	entries := app.Rank([]domain.Attempt{late, early})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].CreatedAt.Equal(early.CreatedAt) {
		t.Fatalf("dedup should keep the earlier equal-score row, got %+v", entries[0])
	}
}

func TestRankFallsBackToScoreWhenPointsAbsent(t *testing.T) {
	legacy := domain.Attempt{UserID: "A", UserName: "A", Score: 7, Total: 10, CreatedAt: time.UnixMilli(10)}
	entries := app.Rank([]domain.Attempt{legacy})
	if len(entries) != 1 || entries[0].Points != 7 {
		t.Fatalf("expected score fallback 7, got %+v", entries)
	}
}

func TestRankNameFallbackForAnonymousRows(t *testing.T) {
	anon1 := domain.Attempt{UserName: "Kai", Points: 30, CreatedAt: time.UnixMilli(10)}
	anon2 := domain.Attempt{UserName: "Kai", Points: 90, CreatedAt: time.UnixMilli(20)}
	noIdentity := domain.Attempt{Points: 500, CreatedAt: time.UnixMilli(5)}

	entries := app.Rank([]domain.Attempt{anon1, anon2, noIdentity})
	if len(entries) != 1 {
		t.Fatalf("expected name-keyed dedup and identity-less rows dropped, got %+v", entries)
	}
	if entries[0].Points != 90 {
		t.Fatalf("expected best anonymous row, got %+v", entries[0])
	}
}

func TestTopNTruncates(t *testing.T) {
	attempts := []domain.Attempt{
		attempt("A", 80, 1),
		attempt("B", 60, 2),
		attempt("C", 40, 3),
	}
	top := app.TopN(attempts, 2)
	if len(top) != 2 || top[0].UserID != "A" || top[1].UserID != "B" {
		t.Fatalf("unexpected top 2: %+v", top)
	}
}

func TestTopNEmptyInput(t *testing.T) {
	if top := app.TopN(nil, 10); len(top) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", top)
	}
}

func TestRankOf(t *testing.T) {
	attempts := []domain.Attempt{
		attempt("A", 50, 100),
		attempt("B", 50, 50),
	}
	result, ok := app.RankOf(attempts, "B")
	if !ok {
		t.Fatalf("expected B ranked")
	}
	if result.Rank != 1 || result.Entry.Points != 50 {
		t.Fatalf("expected rank 1 with 50 points, got %+v", result)
	}

	if _, ok := app.RankOf(attempts, "nobody"); ok {
		t.Fatalf("unknown user must not be ranked")
	}
	if _, ok := app.RankOf(nil, "anyone"); ok {
		t.Fatalf("empty log must not rank anyone")
	}
}
