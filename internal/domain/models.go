package domain

import "time"

// OptionCount is the fixed number of choices on every question.
const OptionCount = 4

// TimeoutChoice is the sentinel answer index used when the countdown for a
// question expires without a pick. It scores as incorrect with zero points.
const TimeoutChoice = -1

// User identifies the player behind an attempt. A zero ID means anonymous.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// Anonymous reports whether the user has no stable identity. Anonymous
// attempts fall back to the display name as dedup key on the leaderboard.
func (u User) Anonymous() bool {
	return u.ID == ""
}

// Question models a single multiple-choice question with exactly four options.
// Questions are immutable once part of a published set.
type Question struct {
	ID           string              `json:"id"`
	Prompt       string              `json:"prompt"`
	Options      [OptionCount]string `json:"options"`
	CorrectIndex int                 `json:"correctIndex"`
	ImageURL     string              `json:"imageUrl,omitempty"`
}

// Valid reports whether the question satisfies its invariants.
func (q Question) Valid() bool {
	return q.CorrectIndex >= 0 && q.CorrectIndex < OptionCount
}

// QuestionSet is the published content of a room or public quiz.
type QuestionSet struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	OwnerName string     `json:"ownerName"`
	Questions []Question `json:"questions"`
}

// Attempt is one persisted play-through outcome. The attempt log is
// append-only; a user may have many rows for the same room.
type Attempt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Points    int       `json:"points"`
	TimeMs    int64     `json:"timeMs"`
	CreatedAt time.Time `json:"createdAt"`
}

// RankPoints returns the ranking key: points, falling back to the raw score
// for rows written before the points column existed.
func (a Attempt) RankPoints() int {
	if a.Points > 0 {
		return a.Points
	}
	return a.Score
}

// LeaderboardEntry is the single best attempt per user, derived from the
// attempt log on demand and never persisted.
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Points    int       `json:"points"`
	TimeMs    int64     `json:"timeMs"`
	CreatedAt time.Time `json:"createdAt"`
}

// Leaderboard captures the ordered, deduplicated scoreboard for a room.
type Leaderboard struct {
	RoomID    string             `json:"roomId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// RankResult is a user's position against the deduplicated leaderboard.
type RankResult struct {
	Rank  int              `json:"rank"`
	Entry LeaderboardEntry `json:"entry"`
}

// QuestionView is what the presentation layer needs to render the active
// question. Index is 1-based; the correct answer is deliberately omitted.
type QuestionView struct {
	Index       int                 `json:"index"`
	Total       int                 `json:"total"`
	Prompt      string              `json:"prompt"`
	Options     [OptionCount]string `json:"options"`
	ImageURL    string              `json:"imageUrl,omitempty"`
	Score       int                 `json:"score"`
	Points      int                 `json:"points"`
	RemainingMs int64               `json:"remainingMs"`
}

// WrongAnswer describes one miss for the post-game review list. Chosen is
// TimeoutChoice when the question expired unanswered.
type WrongAnswer struct {
	Position int    `json:"position"`
	Prompt   string `json:"prompt"`
	Chosen   int    `json:"chosen"`
	Correct  int    `json:"correct"`
}

// FinishSummary is the terminal view of a completed play-through.
type FinishSummary struct {
	Score        int           `json:"score"`
	Total        int           `json:"total"`
	Points       int           `json:"points"`
	TimeMs       int64         `json:"timeMs"`
	WrongAnswers []WrongAnswer `json:"wrongAnswers"`
}
