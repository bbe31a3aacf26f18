package session

import (
	"errors"
	"strings"

	"github.com/study-ai/backend/internal/models"
	"github.com/study-ai/backend/internal/quiz"
)

// DefaultPassingScore applies when a difficulty carries no threshold of its own.
const DefaultPassingScore = 60

// Tier is one row of the difficulty table.
type Tier struct {
	Name               string
	MinutesPerQuestion int
	PassingScore       int
}

// Tiers is ordered from easiest to hardest.
var Tiers = []Tier{
	{Name: "Beginner", MinutesPerQuestion: 2, PassingScore: 60},
	{Name: "Intermediate", MinutesPerQuestion: 3, PassingScore: 70},
	{Name: "Advanced", MinutesPerQuestion: 4, PassingScore: 80},
}

// LookupTier finds a tier by name, ignoring case.
func LookupTier(name string) (Tier, bool) {
	for _, t := range Tiers {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Tier{}, false
}

// MinutesPerQuestion is the time allowance for one question. Unknown labels
// get the hardest tier's allowance.
func MinutesPerQuestion(difficulty string) int {
	if t, ok := LookupTier(difficulty); ok {
		return t.MinutesPerQuestion
	}
	return Tiers[len(Tiers)-1].MinutesPerQuestion
}

// Config is what the user picked on the selection screen. It does not change
// for the lifetime of a session and is reused as-is on restart.
type Config struct {
	Subject       models.Subject
	Difficulty    models.Difficulty
	QuestionCount int
}

var (
	errMissingSubject = errors.New("subject is required")
	errBadCount       = errors.New("question count must be at least 1")
)

// NewConfig fills in the difficulty id and passing score from the tier table.
func NewConfig(subject, difficulty string, count int) (Config, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Config{}, errMissingSubject
	}
	if count < 1 {
		return Config{}, errBadCount
	}

	d := models.Difficulty{Name: strings.TrimSpace(difficulty)}
	if t, ok := LookupTier(difficulty); ok {
		d.Name = t.Name
		d.PassingScore = t.PassingScore
	}
	d.ID = strings.ToLower(d.Name)

	return Config{
		Subject:       models.Subject{Name: subject},
		Difficulty:    d,
		QuestionCount: count,
	}, nil
}

func (c Config) PassingScore() int {
	if c.Difficulty.PassingScore > 0 {
		return c.Difficulty.PassingScore
	}
	return DefaultPassingScore
}

// TimeLimitSeconds is QuestionCount × MinutesPerQuestion × 60.
func (c Config) TimeLimitSeconds() int {
	return c.QuestionCount * MinutesPerQuestion(c.Difficulty.Name) * 60
}

// Request is the generation request this config maps to.
func (c Config) Request() quiz.Request {
	return quiz.Request{
		Topic: c.Subject.Name,
		Level: c.Difficulty.Name,
		Count: c.QuestionCount,
	}
}
