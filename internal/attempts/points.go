package attempts

import (
	"math"
	"strings"

	"github.com/study-ai/backend/internal/models"
)

// PointsPerCorrect returns the base points for one correct answer at the
// given difficulty.
func PointsPerCorrect(difficulty string) int {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "beginner":
		return 10
	case "intermediate":
		return 15
	case "advanced":
		return 20
	}
	return 10
}

// AccuracyBonus rewards a perfect or near-perfect quiz.
func AccuracyBonus(correct, total int) int {
	if total == 0 {
		return 0
	}
	accuracy := float64(correct) / float64(total)

	if correct == total {
		return 25 // Perfect quiz
	}
	if accuracy >= 0.8 {
		return 10
	}
	return 0
}

// SpeedBonus rewards quick quizzes, based on average seconds per answered
// question.
func SpeedBonus(avgSecondsPerQuestion float64) int {
	if avgSecondsPerQuestion <= 45 {
		return 10
	}
	if avgSecondsPerQuestion <= 75 {
		return 5
	}
	if avgSecondsPerQuestion <= 120 {
		return 2
	}
	return 0
}

// CalculatePoints scores one attempt. A timed-out quiz, or one with no
// correct answers, earns no speed bonus.
func CalculatePoints(report models.AttemptReport) models.Points {
	correct := report.Score.Correct
	total := report.Score.Total

	p := models.Points{
		Base:  correct * PointsPerCorrect(report.Difficulty.Name),
		Bonus: AccuracyBonus(correct, total),
	}

	answered := len(report.UserAnswers)
	if !report.TimedOut && correct > 0 && answered > 0 {
		avg := float64(report.TimeTaken*60) / float64(answered)
		p.Speed = SpeedBonus(avg)
	}

	p.Total = p.Base + p.Bonus + p.Speed
	return p
}

// Percentage is round(100 × correct / total), recomputed server-side.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
