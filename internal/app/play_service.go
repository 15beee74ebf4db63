package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quiz-room-service/internal/domain"
)

// ResultStore persists the append-only attempt log for a room or public quiz.
// Appends are assumed atomic per write; duplicates from retries or multiple
// tabs are tolerated because ranking keeps only the best row per user.
type ResultStore interface {
	Append(ctx context.Context, scopeID string, attempt domain.Attempt) error
	ListAll(ctx context.Context, scopeID string) ([]domain.Attempt, error)
}

// QuestionSetProvider loads published question sets (from cache or a backing
// document store). Missing content is domain.ErrRoomNotFound.
type QuestionSetProvider interface {
	Load(ctx context.Context, id string) (domain.QuestionSet, error)
}

// Receipt is the outcome of recording a finished session. Saved is false when
// the store was unreachable: the play-through still completed locally, only
// the leaderboard write is withheld.
type Receipt struct {
	Attempt     domain.Attempt     `json:"attempt"`
	Saved       bool               `json:"saved"`
	Leaderboard domain.Leaderboard `json:"leaderboard"`
	Rank        domain.RankResult  `json:"rank"`
	Ranked      bool               `json:"ranked"`
}

// PlayService wires the play-session state machine to the external
// collaborators: it starts sessions from published question sets, records
// finished sessions as attempts, and serves leaderboard views.
type PlayService struct {
	store    ResultStore
	sets     QuestionSetProvider
	budgetMs int64
	topLimit int
	now      func() time.Time
	newID    func() string
}

// DefaultQuestionBudget is the time allowance per question before the
// automatic skip, matching the 15-second countdown of the original game.
const DefaultQuestionBudget = 15 * time.Second

// DefaultLeaderboardLimit caps the room leaderboard view.
const DefaultLeaderboardLimit = 30

func NewPlayService(store ResultStore, sets QuestionSetProvider, budget time.Duration, topLimit int) *PlayService {
	if budget <= 0 {
		budget = DefaultQuestionBudget
	}
	if topLimit <= 0 {
		topLimit = DefaultLeaderboardLimit
	}
	return &PlayService{
		store:    store,
		sets:     sets,
		budgetMs: budget.Milliseconds(),
		topLimit: topLimit,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewPlayServiceWithClock is test-only for deterministic timestamps and IDs.
func NewPlayServiceWithClock(store ResultStore, sets QuestionSetProvider, budget time.Duration, topLimit int, now func() time.Time, newID func() string) *PlayService {
	s := NewPlayService(store, sets, budget, topLimit)
	if now != nil {
		s.now = now
	}
	if newID != nil {
		s.newID = newID
	}
	return s
}

// QuestionBudget returns the per-question time allowance.
func (s *PlayService) QuestionBudget() time.Duration {
	return time.Duration(s.budgetMs) * time.Millisecond
}

// Start loads the question set for roomID and opens a fresh session on it.
// ErrRoomNotFound propagates; the caller decides how to surface it.
func (s *PlayService) Start(ctx context.Context, roomID string) (*Session, domain.QuestionSet, error) {
	set, err := s.sets.Load(ctx, roomID)
	if err != nil {
		return nil, domain.QuestionSet{}, err
	}
	session, err := NewSession(set, s.budgetMs, nil)
	if err != nil {
		return nil, domain.QuestionSet{}, err
	}
	return session, set, nil
}

// Complete records a finished session as one attempt and refreshes the
// derived leaderboard. Precondition: the session is finished, and has not
// been recorded before (ErrSessionNotFinished / ErrAlreadyRecorded
// otherwise). Store failures never fail the session: an unreachable append
// leaves Saved false and releases the recording claim so the caller may
// retry; an unreachable read degrades to an empty leaderboard.
func (s *PlayService) Complete(ctx context.Context, roomID string, session *Session, user domain.User) (Receipt, error) {
	summary, err := session.Summary()
	if err != nil {
		return Receipt{}, err
	}
	if err := session.claimRecording(); err != nil {
		return Receipt{}, err
	}

	attempt := domain.Attempt{
		ID:        s.newID(),
		UserID:    user.ID,
		UserName:  user.Name,
		PhotoURL:  user.PhotoURL,
		Score:     summary.Score,
		Total:     summary.Total,
		Points:    summary.Points,
		TimeMs:    summary.TimeMs,
		CreatedAt: s.now(),
	}
	receipt := Receipt{Attempt: attempt}

	if err := s.store.Append(ctx, roomID, attempt); err != nil {
		session.releaseRecording()
		receipt.Leaderboard = domain.Leaderboard{RoomID: roomID, Entries: []domain.LeaderboardEntry{}, UpdatedAt: s.now()}
		return receipt, nil
	}
	receipt.Saved = true

	receipt.Leaderboard = s.leaderboard(ctx, roomID)
	if !user.Anonymous() {
		attempts, err := s.store.ListAll(ctx, roomID)
		if err == nil {
			receipt.Rank, receipt.Ranked = RankOf(attempts, user.ID)
		}
	}
	return receipt, nil
}

// Leaderboard returns the top rows for a room, degrading to an empty board
// when the store is unreachable.
func (s *PlayService) Leaderboard(ctx context.Context, roomID string) domain.Leaderboard {
	return s.leaderboard(ctx, roomID)
}

func (s *PlayService) leaderboard(ctx context.Context, roomID string) domain.Leaderboard {
	lb := domain.Leaderboard{RoomID: roomID, Entries: []domain.LeaderboardEntry{}, UpdatedAt: s.now()}
	attempts, err := s.store.ListAll(ctx, roomID)
	if err != nil {
		return lb
	}
	lb.Entries = TopN(attempts, s.topLimit)
	return lb
}

// UserRank answers "where do I stand" for one user, false when the user has
// no attempt or the store is unreachable.
func (s *PlayService) UserRank(ctx context.Context, roomID, userID string) (domain.RankResult, bool) {
	attempts, err := s.store.ListAll(ctx, roomID)
	if err != nil {
		return domain.RankResult{}, false
	}
	return RankOf(attempts, userID)
}
