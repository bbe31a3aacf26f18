package session

import (
	"fmt"
	"time"

	"github.com/study-ai/backend/internal/models"
)

// Transitions below are pure. They never modify the state they are given;
// slices are copied before anything is appended.

// Begin starts a run. Allowed from Selecting, Scored and Reviewing.
func Begin(s State, runID string, cfg Config, questions []models.Question, now time.Time) (State, error) {
	if phaseOf(s) == PhaseActive {
		return s, &TransitionError{Action: "begin", From: PhaseActive}
	}
	if len(questions) == 0 {
		return s, ErrNoQuestions
	}

	qs := make([]models.Question, len(questions))
	copy(qs, questions)

	return Active{
		Run: Run{
			ID:        runID,
			Config:    cfg,
			Questions: qs,
			StartedAt: now,
		},
		TimeRemaining: cfg.TimeLimitSeconds(),
		Answers:       []AnswerRecord{},
	}, nil
}

// Tick takes one second off the clock. When the clock reaches zero the run is
// scored with whatever answers exist; unanswered questions stay absent.
func Tick(s State, now time.Time) (State, error) {
	a, ok := s.(Active)
	if !ok {
		return s, &TransitionError{Action: "tick", From: phaseOf(s)}
	}
	if a.TimeRemaining > 0 {
		a.TimeRemaining--
	}
	if a.TimeRemaining > 0 {
		return a, nil
	}
	return score(a, true, now), nil
}

// Answer records the option picked for the current question and either moves
// to the next question or scores the run after the last one.
func Answer(s State, option int, now time.Time) (State, error) {
	a, ok := s.(Active)
	if !ok {
		return s, &TransitionError{Action: "answer", From: phaseOf(s)}
	}
	if a.Index >= len(a.Run.Questions) {
		return s, &TransitionError{Action: "answer past the last question", From: PhaseActive}
	}

	q := a.Current()
	if option < 0 || option >= len(q.Options) {
		return s, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidOption, option, len(q.Options))
	}

	selected := q.Options[option]
	answers := make([]AnswerRecord, len(a.Answers), len(a.Answers)+1)
	copy(answers, a.Answers)
	a.Answers = append(answers, AnswerRecord{
		QuestionIndex: a.Index,
		Selected:      selected,
		IsCorrect:     selected.Correct,
		Question:      q,
	})
	if selected.Correct {
		a.Score++
	}

	if a.Index < len(a.Run.Questions)-1 {
		a.Index++
		return a, nil
	}
	return score(a, false, now), nil
}

func score(a Active, timedOut bool, now time.Time) Scored {
	return Scored{Result: Result{
		Run:        a.Run,
		Score:      a.Score,
		Answers:    a.Answers,
		TimedOut:   timedOut,
		FinishedAt: now,
	}}
}

func Review(s State) (State, error) {
	st, ok := s.(Scored)
	if !ok {
		return s, &TransitionError{Action: "review", From: phaseOf(s)}
	}
	return Reviewing(st), nil
}

func BackToScore(s State) (State, error) {
	st, ok := s.(Reviewing)
	if !ok {
		return s, &TransitionError{Action: "return to score", From: phaseOf(s)}
	}
	return Scored(st), nil
}

// Reset clears everything.
func Reset(State) State { return Selecting{} }

// AttachRewards stores reporter output on the result of runID. Any other
// state, including a newer run, is returned unchanged.
func AttachRewards(s State, runID string, rewards *models.AttemptRewards) State {
	switch st := s.(type) {
	case Scored:
		if st.Result.Run.ID == runID {
			st.Result.Rewards = rewards
			return st
		}
	case Reviewing:
		if st.Result.Run.ID == runID {
			st.Result.Rewards = rewards
			return st
		}
	}
	return s
}

// Summarize builds the report handed to the attempt reporter.
func Summarize(r Result) models.AttemptReport {
	cfg := r.Run.Config
	difficulty := cfg.Difficulty
	difficulty.PassingScore = cfg.PassingScore()

	answers := make([]models.UserAnswer, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = models.UserAnswer{
			QuestionIndex:  a.QuestionIndex,
			SelectedOption: a.Selected,
			IsCorrect:      a.IsCorrect,
			Question:       a.Question,
		}
	}

	minutes := 0
	if elapsed := r.FinishedAt.Sub(r.Run.StartedAt); elapsed > 0 {
		minutes = int(elapsed / time.Minute)
	}

	return models.AttemptReport{
		Subject:       cfg.Subject,
		Difficulty:    difficulty,
		QuestionCount: cfg.QuestionCount,
		Questions:     r.Run.Questions,
		Score: models.Score{
			Correct:    r.Score,
			Total:      r.Total(),
			Percentage: r.Percentage(),
		},
		TimeTaken:   minutes,
		UserAnswers: answers,
		TimedOut:    r.TimedOut,
	}
}
