package app

import (
	"fmt"
	"math/rand"
	"sync"

	"quiz-room-service/internal/domain"
)

// Session drives one user's play-through of a shuffled question list. It is a
// small state machine: Active(position) until the last answer, then Finished
// until Reset. Answer and Tick feed the same transition, so a timer firing
// concurrently with a click cannot double-count: events carry the position
// they answer and stale positions are no-ops.
type Session struct {
	mu       sync.Mutex
	set      domain.QuestionSet
	budgetMs int64
	rnd      *rand.Rand

	order       []int
	position    int
	totals      totals
	remainingMs int64
	answers     []int
	finished    bool
	recorded    bool
}

// AnswerOutcome reports the effect of one answer or tick event. Applied is
// false when the event targeted an already-advanced position and was dropped.
type AnswerOutcome struct {
	Applied  bool `json:"applied"`
	Position int  `json:"position"`
	Correct  bool `json:"correct"`
	Awarded  int  `json:"awarded"`
	Finished bool `json:"finished"`
}

// NewSession shuffles the question order and starts at position zero with a
// full time budget. An empty set starts in the finished state.
func NewSession(set domain.QuestionSet, budgetMs int64, rnd *rand.Rand) (*Session, error) {
	if budgetMs <= 0 {
		return nil, fmt.Errorf("%w: question budget %dms", domain.ErrInvalidInput, budgetMs)
	}
	if rnd == nil {
		rnd = newRand()
	}
	s := &Session{set: set, budgetMs: budgetMs, rnd: rnd}
	if err := s.startLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) startLocked() error {
	order, err := Shuffle(len(s.set.Questions), s.rnd)
	if err != nil {
		return err
	}
	s.order = order
	s.position = 0
	s.totals = totals{}
	s.remainingMs = s.budgetMs
	s.answers = make([]int, len(order))
	for i := range s.answers {
		s.answers[i] = domain.TimeoutChoice
	}
	s.finished = len(order) == 0
	s.recorded = false
	return nil
}

// Answer applies choice to the question at position. Only the first event for
// a given position takes effect; a repeat (double click, or a timeout racing a
// click) returns Applied=false without touching state. An out-of-range choice
// is ErrInvalidInput even when the position is live.
func (s *Session) Answer(position, choice int) (AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answerLocked(position, choice)
}

func (s *Session) answerLocked(position, choice int) (AnswerOutcome, error) {
	if choice != domain.TimeoutChoice && (choice < 0 || choice >= domain.OptionCount) {
		return AnswerOutcome{}, fmt.Errorf("%w: answer choice %d", domain.ErrInvalidInput, choice)
	}
	if s.finished || position != s.position {
		return AnswerOutcome{Position: position, Finished: s.finished}, nil
	}

	q := s.set.Questions[s.order[s.position]]
	correct, awarded, err := EvaluateAnswer(q, choice, s.remainingMs, s.budgetMs)
	if err != nil {
		return AnswerOutcome{}, err
	}
	used := s.budgetMs - s.remainingMs
	if used < 0 {
		used = 0
	}
	s.totals.accumulate(correct, awarded, used)
	s.answers[s.position] = choice

	out := AnswerOutcome{Applied: true, Position: s.position, Correct: correct, Awarded: awarded}
	if s.position+1 >= len(s.order) {
		s.finished = true
	} else {
		s.position++
		s.remainingMs = s.budgetMs
	}
	out.Finished = s.finished
	return out, nil
}

// Tick advances the countdown for the active question. When the remaining
// time reaches zero the question is force-skipped through the same answer
// transition, awarding nothing. Ticks after finish are no-ops.
func (s *Session) Tick(deltaMs int64) (AnswerOutcome, error) {
	if deltaMs < 0 {
		return AnswerOutcome{}, fmt.Errorf("%w: tick delta %dms", domain.ErrInvalidInput, deltaMs)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return AnswerOutcome{Finished: true}, nil
	}
	s.remainingMs -= deltaMs
	if s.remainingMs > 0 {
		return AnswerOutcome{Position: s.position}, nil
	}
	s.remainingMs = 0
	return s.answerLocked(s.position, domain.TimeoutChoice)
}

// Reset reshuffles and returns to position zero with zeroed accumulators.
// Valid in any state; a previously persisted attempt is unaffected.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

// Finished reports whether the session reached its terminal state.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Position returns the current 0-based question position.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// CurrentQuestion returns the view of the active question, or false once the
// session is finished.
func (s *Session) CurrentQuestion() (domain.QuestionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return domain.QuestionView{}, false
	}
	q := s.set.Questions[s.order[s.position]]
	return domain.QuestionView{
		Index:       s.position + 1,
		Total:       len(s.order),
		Prompt:      q.Prompt,
		Options:     q.Options,
		ImageURL:    q.ImageURL,
		Score:       s.totals.score,
		Points:      s.totals.points,
		RemainingMs: s.remainingMs,
	}, true
}

// Summary returns the terminal view with the wrong-answer review list.
// ErrSessionNotFinished while the session is still active.
func (s *Session) Summary() (domain.FinishSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finished {
		return domain.FinishSummary{}, domain.ErrSessionNotFinished
	}
	summary := domain.FinishSummary{
		Score:        s.totals.score,
		Total:        len(s.order),
		Points:       s.totals.points,
		TimeMs:       s.totals.elapsedMs,
		WrongAnswers: []domain.WrongAnswer{},
	}
	for pos, qi := range s.order {
		q := s.set.Questions[qi]
		if s.answers[pos] == q.CorrectIndex {
			continue
		}
		summary.WrongAnswers = append(summary.WrongAnswers, domain.WrongAnswer{
			Position: pos,
			Prompt:   q.Prompt,
			Chosen:   s.answers[pos],
			Correct:  q.CorrectIndex,
		})
	}
	return summary, nil
}

// claimRecording marks the session as persisted. The claim is atomic so two
// concurrent Complete calls cannot both write an attempt; releaseRecording
// hands the claim back when the store append fails, allowing a retry.
func (s *Session) claimRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finished {
		return domain.ErrSessionNotFinished
	}
	if s.recorded {
		return domain.ErrAlreadyRecorded
	}
	s.recorded = true
	return nil
}

func (s *Session) releaseRecording() {
	s.mu.Lock()
	s.recorded = false
	s.mu.Unlock()
}
