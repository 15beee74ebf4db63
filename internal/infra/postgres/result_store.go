package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-room-service/internal/domain"
)

// ResultStore persists attempts in the append-only attempts table. Rows are
// never updated or deleted by the service.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Append(ctx context.Context, scopeID string, attempt domain.Attempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (id, room_id, user_id, user_name, photo_url, score, total, points, time_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		attempt.ID, scopeID, attempt.UserID, attempt.UserName, attempt.PhotoURL,
		attempt.Score, attempt.Total, attempt.Points, attempt.TimeMs, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: append attempt: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *ResultStore) ListAll(ctx context.Context, scopeID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, user_name, photo_url, score, total, points, time_ms, created_at
		 FROM attempts WHERE room_id=$1 ORDER BY created_at ASC`,
		scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list attempts: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.UserName, &a.PhotoURL,
			&a.Score, &a.Total, &a.Points, &a.TimeMs, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if a.UserID == "" && a.UserName == "" {
			continue
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list attempts: %v", domain.ErrStoreUnavailable, err)
	}
	return attempts, nil
}
