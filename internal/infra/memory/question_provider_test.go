package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-room-service/internal/domain"
)

func sampleSet() domain.QuestionSet {
	return domain.QuestionSet{
		ID:    "room-1",
		Title: "Sample",
		Questions: []domain.Question{
			{ID: "q1", Prompt: "2+2?", Options: [4]string{"3", "4", "5", "6"}, CorrectIndex: 1},
		},
	}
}

func TestCachedProviderHitsLoaderOnce(t *testing.T) {
	loader := &countingLoader{static: NewStaticProvider(map[string]domain.QuestionSet{
		"room-1": sampleSet(),
	})}
	provider := NewCachedProvider(loader, time.Minute)

	if _, err := provider.Load(context.Background(), "room-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := provider.Load(context.Background(), "room-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one loader call, got %d", loader.calls)
	}
}

func TestCachedProviderExpires(t *testing.T) {
	loader := &countingLoader{static: NewStaticProvider(map[string]domain.QuestionSet{
		"room-1": sampleSet(),
	})}
	provider := NewCachedProvider(loader, time.Minute)

	now := time.Now()
	provider.clock = func() time.Time { return now }
	if _, err := provider.Load(context.Background(), "room-1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	provider.clock = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := provider.Load(context.Background(), "room-1"); err != nil {
		t.Fatalf("load after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.calls)
	}
}

func TestStaticProviderNotFound(t *testing.T) {
	provider := NewStaticProvider(nil)
	if _, err := provider.Load(context.Background(), "missing"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}
}

type countingLoader struct {
	static *StaticProvider
	calls  int
}

func (l *countingLoader) LoadQuestionSet(ctx context.Context, id string) (domain.QuestionSet, error) {
	l.calls++
	return l.static.Load(ctx, id)
}
