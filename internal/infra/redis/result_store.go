package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-room-service/internal/domain"
)

// ResultStore keeps the attempt log for each room as a Redis list of JSON
// rows: RPUSH room:{id}:attempts {attempt}. Appends are atomic per write;
// duplicate rows from retries are harmless because ranking dedups by user.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) Append(ctx context.Context, scopeID string, attempt domain.Attempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	key := s.key(scopeID)
	if err := s.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("%w: append: %v", domain.ErrStoreUnavailable, err)
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

// ListAll returns every decodable attempt for the room. Rows that fail the
// strict decode (bad JSON, no identity) are skipped rather than surfaced as
// partially-typed objects.
func (s *ResultStore) ListAll(ctx context.Context, scopeID string) ([]domain.Attempt, error) {
	rows, err := s.client.LRange(ctx, s.key(scopeID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", domain.ErrStoreUnavailable, err)
	}
	attempts := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		if attempt, ok := decodeAttempt([]byte(row)); ok {
			attempts = append(attempts, attempt)
		}
	}
	return attempts, nil
}

func (s *ResultStore) key(scopeID string) string {
	return "room:" + scopeID + ":attempts"
}

// decodeAttempt validates and defaults every field read from persistence.
// Rows without any identity are dropped; negative counters are clamped.
func decodeAttempt(raw []byte) (domain.Attempt, bool) {
	var a domain.Attempt
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.Attempt{}, false
	}
	if a.UserID == "" && a.UserName == "" {
		return domain.Attempt{}, false
	}
	if a.Score < 0 {
		a.Score = 0
	}
	if a.Points < 0 {
		a.Points = 0
	}
	if a.Total < 0 {
		a.Total = 0
	}
	if a.TimeMs < 0 {
		a.TimeMs = 0
	}
	return a, true
}
