package models

import (
	"encoding/json"
	"time"
)

// ── Attempt Report (client → reporter) ───────────────────

type Subject struct {
	Name string `json:"name"`
}

type Difficulty struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	PassingScore int    `json:"passingScore"`
}

type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type UserAnswer struct {
	QuestionIndex  int      `json:"questionIndex"`
	SelectedOption Option   `json:"selectedOption"`
	IsCorrect      bool     `json:"isCorrect"`
	Question       Question `json:"question"`
}

// AttemptReport is the summary of one finished quiz session.
type AttemptReport struct {
	Subject       Subject      `json:"subject"`
	Difficulty    Difficulty   `json:"difficulty"`
	QuestionCount int          `json:"questionCount"`
	Questions     []Question   `json:"questions"`
	Score         Score        `json:"score"`
	TimeTaken     int          `json:"timeTaken"`
	UserAnswers   []UserAnswer `json:"userAnswers"`
	TimedOut      bool         `json:"timedOut,omitempty"`
}

// ── Rewards (reporter → client) ──────────────────────────

type Points struct {
	Base  int `json:"base"`
	Bonus int `json:"bonus"`
	Speed int `json:"speed"`
	Total int `json:"total"`
}

type Badge struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	PointsReward int    `json:"pointsReward"`
}

// AttemptRewards is what the reporter hands back. Every field is optional.
type AttemptRewards struct {
	PointsEarned *Points         `json:"pointsEarned,omitempty"`
	NewBadges    []Badge         `json:"newBadges,omitempty"`
	Insights     json.RawMessage `json:"insights,omitempty"`
}

type AttemptResponse struct {
	Data AttemptRewards `json:"data"`
}

// ── Persisted attempt history ────────────────────────────

type QuizAttempt struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"user_id"`
	Subject       string    `json:"subject"`
	Difficulty    string    `json:"difficulty"`
	QuestionCount int       `json:"question_count"`
	Correct       int       `json:"correct"`
	Total         int       `json:"total"`
	Percentage    int       `json:"percentage"`
	Passed        bool      `json:"passed"`
	TimeTaken     int       `json:"time_taken"`
	PointsEarned  int       `json:"points_earned"`
	CreatedAt     time.Time `json:"created_at"`
}

type QuizStats struct {
	UserID            int64      `json:"user_id"`
	TotalPoints       int        `json:"total_points"`
	QuizzesCompleted  int        `json:"quizzes_completed"`
	QuizzesPassed     int        `json:"quizzes_passed"`
	PerfectQuizzes    int        `json:"perfect_quizzes"`
	QuestionsAnswered int        `json:"questions_answered"`
	QuestionsCorrect  int        `json:"questions_correct"`
	LastQuizAt        *time.Time `json:"last_quiz_at,omitempty"`
}

type SubjectAbility struct {
	Subject           string `json:"subject"`
	AbilityScore      int    `json:"ability_score"`
	QuestionsAnswered int    `json:"questions_answered"`
}

// Insights is the concrete insight payload the local reporter produces.
// Clients treat it as opaque.
type Insights struct {
	Subject        string `json:"subject"`
	PreviousRating int    `json:"previousRating"`
	Rating         int    `json:"rating"`
	Accuracy       int    `json:"accuracy"`
	SuggestedLevel string `json:"suggestedLevel"`
	Message        string `json:"message"`
}

type StatsResponse struct {
	Stats     QuizStats        `json:"stats"`
	Badges    []Badge          `json:"badges"`
	Abilities []SubjectAbility `json:"abilities"`
}
