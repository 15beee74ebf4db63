package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-room-service/internal/domain"
)

func TestResultStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewResultStore(newClient(mr), time.Hour)

	a := domain.Attempt{
		ID:        "a1",
		UserID:    "u1",
		UserName:  "Alice",
		Score:     2,
		Total:     3,
		Points:    900,
		TimeMs:    20000,
		CreatedAt: time.UnixMilli(1_700_000_000_000).UTC(),
	}
	if err := store.Append(ctx, "room-1", a); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !mr.Exists("room:room-1:attempts") {
		t.Fatalf("expected attempt list in redis")
	}

	got, err := store.ListAll(ctx, "room-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(got))
	}
	if got[0].UserID != "u1" || got[0].Points != 900 || !got[0].CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("round trip mangled attempt: %+v", got[0])
	}
}

func TestResultStoreSkipsMalformedRows(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)
	store := NewResultStore(client, 0)

	seed := []string{
		"{not json",
		// No identity at all: dropped by the strict decode.
		`{"score":5,"points":500}`,
		// Negative counters are clamped, row kept.
		`{"userId":"u2","userName":"Bob","score":-1,"points":120,"total":3}`,
	}
	for _, row := range seed {
		if err := client.RPush(ctx, "room:room-1:attempts", row).Err(); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := store.ListAll(ctx, "room-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the decodable row, got %+v", got)
	}
	if got[0].UserID != "u2" || got[0].Score != 0 || got[0].Points != 120 {
		t.Fatalf("unexpected decoded row: %+v", got[0])
	}
}

func TestResultStoreEmptyRoom(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewResultStore(newClient(mr), 0)
	got, err := store.ListAll(context.Background(), "empty-room")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty log, got %+v", got)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
