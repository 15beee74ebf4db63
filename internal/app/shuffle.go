package app

import (
	"fmt"
	"math/rand"
	"time"

	"quiz-room-service/internal/domain"
)

// Shuffle returns a uniformly random permutation of [0, n) using Fisher-Yates.
// A nil rnd falls back to a clock-seeded source.
func Shuffle(n int, rnd *rand.Rand) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: shuffle size %d", domain.ErrInvalidInput, n)
	}
	if rnd == nil {
		rnd = newRand()
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
