package attempts

import (
	"fmt"
	"math"
	"strings"

	"github.com/study-ai/backend/internal/models"
)

// DefaultAbility is where every subject rating starts.
const DefaultAbility = 50

// DifficultyScore places a difficulty tier on the 0-100 ability scale.
func DifficultyScore(difficulty string) int {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "beginner":
		return 30
	case "intermediate":
		return 55
	case "advanced":
		return 80
	}
	return 55
}

// ExpectedAccuracy returns the probability a user with the given ability
// gets a question with the given difficulty correct.
// Uses a sigmoid centered on 0 with scaling factor 12.5.
func ExpectedAccuracy(userAbility, difficultyScore int) float64 {
	x := float64(userAbility-difficultyScore) / 12.5
	return 1.0 / (1.0 + math.Exp(-x))
}

// KFactor returns the adjustment strength based on how many questions
// the user has answered in this subject.
func KFactor(questionsAnswered int) float64 {
	if questionsAnswered < 20 {
		return 3.0 // New user: fast convergence
	}
	if questionsAnswered < 100 {
		return 2.0
	}
	return 1.0 // Mature: stable, small adjustments
}

// ComputeNewAbility calculates the updated ability score after one answer.
func ComputeNewAbility(currentAbility, difficultyScore int, correct bool, questionsAnswered int) int {
	expected := ExpectedAccuracy(currentAbility, difficultyScore)
	k := KFactor(questionsAnswered)

	var result float64
	if correct {
		result = 1.0
	}

	newAbility := float64(currentAbility) + (result-expected)*k

	if newAbility < 0 {
		newAbility = 0
	}
	if newAbility > 100 {
		newAbility = 100
	}

	return int(math.Round(newAbility))
}

// ApplyAttempt folds every answer of an attempt into the subject rating.
// Questions left unanswered by a timeout count as misses.
func ApplyAttempt(ab *models.SubjectAbility, report models.AttemptReport) {
	diff := DifficultyScore(report.Difficulty.Name)

	for _, a := range report.UserAnswers {
		ab.AbilityScore = ComputeNewAbility(ab.AbilityScore, diff, a.IsCorrect, ab.QuestionsAnswered)
		ab.QuestionsAnswered++
	}
	for i := len(report.UserAnswers); i < report.Score.Total; i++ {
		ab.AbilityScore = ComputeNewAbility(ab.AbilityScore, diff, false, ab.QuestionsAnswered)
		ab.QuestionsAnswered++
	}
}

// SuggestLevel maps a rating to the difficulty the user should try next.
func SuggestLevel(ability int) string {
	switch {
	case ability < 45:
		return "Beginner"
	case ability < 70:
		return "Intermediate"
	default:
		return "Advanced"
	}
}

func buildInsights(subject string, previous, current, accuracy int) models.Insights {
	level := SuggestLevel(current)

	var msg string
	switch {
	case current > previous:
		msg = fmt.Sprintf("Your %s rating rose from %d to %d. Try %s next.", subject, previous, current, level)
	case current < previous:
		msg = fmt.Sprintf("Your %s rating dipped from %d to %d. %s questions are a good fit right now.", subject, previous, current, level)
	default:
		msg = fmt.Sprintf("Your %s rating held at %d. Keep practicing at %s.", subject, current, level)
	}

	return models.Insights{
		Subject:        subject,
		PreviousRating: previous,
		Rating:         current,
		Accuracy:       accuracy,
		SuggestedLevel: level,
		Message:        msg,
	}
}
