package app

import (
	"fmt"
	"math"

	"quiz-room-service/internal/domain"
)

// Point curve for a correct answer: proportional to remaining time, capped at
// MaxPointsPerQuestion and never below MinPointsPerQuestion. Answering with
// zero time left still pays the floor; a wrong answer or timeout pays nothing.
const (
	MaxPointsPerQuestion = 1000
	MinPointsPerQuestion = 10
)

// EvaluateAnswer scores one choice against a question. The award is
// monotonically non-decreasing in remainingMs and bounded by the curve above.
// A choice outside [0,3] that is not domain.TimeoutChoice is ErrInvalidInput.
func EvaluateAnswer(q domain.Question, choice int, remainingMs, budgetMs int64) (correct bool, awarded int, err error) {
	if choice == domain.TimeoutChoice {
		return false, 0, nil
	}
	if choice < 0 || choice >= domain.OptionCount {
		return false, 0, fmt.Errorf("%w: answer choice %d", domain.ErrInvalidInput, choice)
	}
	if choice != q.CorrectIndex {
		return false, 0, nil
	}
	return true, awardFor(remainingMs, budgetMs), nil
}

func awardFor(remainingMs, budgetMs int64) int {
	if budgetMs <= 0 {
		return MinPointsPerQuestion
	}
	if remainingMs < 0 {
		remainingMs = 0
	}
	if remainingMs > budgetMs {
		remainingMs = budgetMs
	}
	award := int(math.Round(float64(remainingMs) / float64(budgetMs) * MaxPointsPerQuestion))
	if award < MinPointsPerQuestion {
		award = MinPointsPerQuestion
	}
	return award
}

// totals accumulates one user's running results across a play-through.
type totals struct {
	score     int
	points    int
	elapsedMs int64
}

func (t *totals) accumulate(correct bool, awarded int, usedMs int64) {
	if correct {
		t.score++
	}
	t.points += awarded
	t.elapsedMs += usedMs
}
