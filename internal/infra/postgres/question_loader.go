package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-room-service/internal/domain"
)

// QuestionSetLoader loads published room content from the rooms JSONB table.
type QuestionSetLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionSetLoader(pool *pgxpool.Pool) *QuestionSetLoader {
	return &QuestionSetLoader{pool: pool}
}

func (l *QuestionSetLoader) LoadQuestionSet(ctx context.Context, id string) (domain.QuestionSet, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM rooms WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSet{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: load room: %v", domain.ErrStoreUnavailable, err)
	}

	var set domain.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("unmarshal room %s: %w", id, err)
	}
	set.ID = id
	applyDefaults(&set)
	return set, nil
}

// applyDefaults fills display fields the room builder may have left blank and
// drops questions that violate the four-option invariant, so downstream code
// never sees a partially-typed document.
func applyDefaults(set *domain.QuestionSet) {
	if set.Title == "" {
		set.Title = "Untitled room"
	}
	if set.OwnerName == "" {
		set.OwnerName = "Teacher"
	}
	valid := set.Questions[:0]
	for _, q := range set.Questions {
		if q.Valid() {
			valid = append(valid, q)
		}
	}
	set.Questions = valid
}
