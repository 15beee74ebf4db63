package memory

import (
	"context"
	"testing"
	"time"

	"quiz-room-service/internal/domain"
)

func TestResultStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	a := domain.Attempt{ID: "a1", UserID: "u1", UserName: "Alice", Score: 2, Total: 3, Points: 900, CreatedAt: time.Now()}
	if err := store.Append(ctx, "room-1", a); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.ListAll(ctx, "room-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("unexpected attempts: %+v", got)
	}

	// Returned slice is a copy; mutating it must not corrupt the log.
	got[0].Points = 0
	again, _ := store.ListAll(ctx, "room-1")
	if again[0].Points != 900 {
		t.Fatalf("store leaked internal slice")
	}

	empty, err := store.ListAll(ctx, "room-2")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty log for unknown room, got %v %v", empty, err)
	}
}
