package attempts

import (
	"strings"

	"github.com/study-ai/backend/internal/models"
)

// Badges is the full catalogue, in the order new badges are reported.
var Badges = []models.Badge{
	{ID: "first_quiz", Name: "First Steps", Description: "Complete your first quiz", Icon: "🎯", PointsReward: 10},
	{ID: "first_pass", Name: "Passing Grade", Description: "Pass your first quiz", Icon: "✅", PointsReward: 10},
	{ID: "perfect_score", Name: "Flawless", Description: "Score 100% on a quiz", Icon: "⭐", PointsReward: 25},
	{ID: "perfect_5", Name: "Perfectionist", Description: "Score 100% on 5 quizzes", Icon: "🌟", PointsReward: 50},
	{ID: "advanced_pass", Name: "Deep Diver", Description: "Pass an Advanced quiz", Icon: "🧠", PointsReward: 30},
	{ID: "quizzes_10", Name: "Regular", Description: "Complete 10 quizzes", Icon: "📚", PointsReward: 25},
	{ID: "quizzes_50", Name: "Scholar", Description: "Complete 50 quizzes", Icon: "🎓", PointsReward: 100},
	{ID: "questions_100", Name: "Century", Description: "Answer 100 questions", Icon: "💯", PointsReward: 25},
	{ID: "points_500", Name: "Rising Star", Description: "Earn 500 total points", Icon: "🚀", PointsReward: 10},
	{ID: "points_5000", Name: "Powerhouse", Description: "Earn 5,000 total points", Icon: "⚡", PointsReward: 50},
}

// BadgeByID looks up a catalogue entry.
func BadgeByID(id string) (models.Badge, bool) {
	for _, b := range Badges {
		if b.ID == id {
			return b, true
		}
	}
	return models.Badge{}, false
}

// CheckBadges returns the badge ids the user now qualifies for, given stats
// that already include this attempt. The caller filters out badges that
// were earned before.
func CheckBadges(stats *models.QuizStats, report models.AttemptReport, passed bool) []string {
	var earned []string

	if stats.QuizzesCompleted >= 1 {
		earned = append(earned, "first_quiz")
	}
	if stats.QuizzesPassed >= 1 {
		earned = append(earned, "first_pass")
	}

	// Perfect quizzes
	if stats.PerfectQuizzes >= 1 {
		earned = append(earned, "perfect_score")
	}
	if stats.PerfectQuizzes >= 5 {
		earned = append(earned, "perfect_5")
	}

	if passed && strings.EqualFold(report.Difficulty.Name, "advanced") {
		earned = append(earned, "advanced_pass")
	}

	// Volume
	if stats.QuizzesCompleted >= 10 {
		earned = append(earned, "quizzes_10")
	}
	if stats.QuizzesCompleted >= 50 {
		earned = append(earned, "quizzes_50")
	}
	if stats.QuestionsAnswered >= 100 {
		earned = append(earned, "questions_100")
	}

	// Points
	if stats.TotalPoints >= 500 {
		earned = append(earned, "points_500")
	}
	if stats.TotalPoints >= 5000 {
		earned = append(earned, "points_5000")
	}

	return earned
}
