package attempts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/study-ai/backend/internal/models"
	"github.com/study-ai/backend/internal/session"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// PassingScore is the threshold a report is judged against. Known tiers use
// the server's table; the client's value only counts for labels it lacks.
func PassingScore(d models.Difficulty) int {
	if t, ok := session.LookupTier(d.Name); ok {
		return t.PassingScore
	}
	if d.PassingScore > 0 {
		return d.PassingScore
	}
	return session.DefaultPassingScore
}

// ErrInvalidReport marks a report the service refuses to record.
var ErrInvalidReport = errors.New("invalid attempt report")

type Service struct {
	store *Store
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record stores one finished quiz and returns what it earned. Badge and
// ability updates are best-effort; only the attempt and stats writes fail
// the call.
func (s *Service) Record(ctx context.Context, userID int64, report models.AttemptReport) (*models.AttemptRewards, error) {
	if err := validateReport(report); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	correct, total := report.Score.Correct, report.Score.Total
	percentage := Percentage(correct, total)
	passed := percentage >= PassingScore(report.Difficulty)
	points := CalculatePoints(report)

	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	attempt := &models.QuizAttempt{
		ID:            uuid.NewString(),
		UserID:        userID,
		Subject:       report.Subject.Name,
		Difficulty:    report.Difficulty.Name,
		QuestionCount: report.QuestionCount,
		Correct:       correct,
		Total:         total,
		Percentage:    percentage,
		Passed:        passed,
		TimeTaken:     report.TimeTaken,
		PointsEarned:  points.Total,
		CreatedAt:     now,
	}
	if err := s.store.InsertAttempt(ctx, attempt, raw); err != nil {
		return nil, err
	}

	stats, err := s.store.GetOrCreateStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.TotalPoints += points.Total
	stats.QuizzesCompleted++
	if passed {
		stats.QuizzesPassed++
	}
	if correct == total {
		stats.PerfectQuizzes++
	}
	stats.QuestionsAnswered += len(report.UserAnswers)
	stats.QuestionsCorrect += correct
	stats.LastQuizAt = &now

	newBadges := s.awardBadges(ctx, userID, stats, report, passed, now)

	if err := s.store.UpdateStats(ctx, stats); err != nil {
		return nil, err
	}

	rewards := &models.AttemptRewards{PointsEarned: &points, NewBadges: newBadges}
	if insights, err := s.updateAbility(ctx, userID, report, percentage); err != nil {
		log.Printf("[attempts] WARNING: ability update failed for user %d: %v", userID, err)
	} else {
		rewards.Insights = insights
	}

	log.Printf("[attempts] user %d scored %d%% on %s/%s: %d points, %d new badges",
		userID, percentage, report.Subject.Name, report.Difficulty.Name, points.Total, len(newBadges))
	return rewards, nil
}

// awardBadges inserts newly qualified badges and adds their point rewards
// to stats.
func (s *Service) awardBadges(ctx context.Context, userID int64, stats *models.QuizStats, report models.AttemptReport, passed bool, now time.Time) []models.Badge {
	existing, err := s.store.GetUserBadges(ctx, userID)
	if err != nil {
		log.Printf("[attempts] WARNING: could not load badges for user %d: %v", userID, err)
		return nil
	}
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b] = true
	}

	var awarded []models.Badge
	for _, id := range CheckBadges(stats, report, passed) {
		if have[id] {
			continue
		}
		inserted, err := s.store.AwardBadge(ctx, userID, id, now)
		if err != nil {
			log.Printf("[attempts] WARNING: %v", err)
			continue
		}
		if !inserted {
			continue
		}
		if def, ok := BadgeByID(id); ok {
			awarded = append(awarded, def)
			stats.TotalPoints += def.PointsReward
		}
	}
	return awarded
}

func (s *Service) updateAbility(ctx context.Context, userID int64, report models.AttemptReport, accuracy int) (json.RawMessage, error) {
	ab, err := s.store.GetOrCreateAbility(ctx, userID, report.Subject.Name)
	if err != nil {
		return nil, err
	}
	previous := ab.AbilityScore

	ApplyAttempt(ab, report)
	if err := s.store.UpdateAbility(ctx, userID, ab); err != nil {
		return nil, err
	}

	return json.Marshal(buildInsights(report.Subject.Name, previous, ab.AbilityScore, accuracy))
}

// List returns the most recent attempts first.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]models.QuizAttempt, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.ListAttempts(ctx, userID, limit)
}

func (s *Service) Stats(ctx context.Context, userID int64) (*models.StatsResponse, error) {
	stats, err := s.store.GetOrCreateStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids, err := s.store.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges := make([]models.Badge, 0, len(ids))
	for _, id := range ids {
		if def, ok := BadgeByID(id); ok {
			badges = append(badges, def)
		}
	}

	abilities, err := s.store.ListAbilities(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.StatsResponse{Stats: *stats, Badges: badges, Abilities: abilities}, nil
}

func validateReport(r models.AttemptReport) error {
	switch {
	case strings.TrimSpace(r.Subject.Name) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidReport)
	case strings.TrimSpace(r.Difficulty.Name) == "":
		return fmt.Errorf("%w: difficulty is required", ErrInvalidReport)
	case r.Score.Total < 1:
		return fmt.Errorf("%w: score total must be at least 1", ErrInvalidReport)
	case r.Score.Correct < 0 || r.Score.Correct > r.Score.Total:
		return fmt.Errorf("%w: correct must be between 0 and total", ErrInvalidReport)
	case len(r.UserAnswers) > r.Score.Total:
		return fmt.Errorf("%w: more answers than questions", ErrInvalidReport)
	case r.TimeTaken < 0:
		return fmt.Errorf("%w: time taken cannot be negative", ErrInvalidReport)
	}
	return nil
}
