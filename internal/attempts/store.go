package attempts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/study-ai/backend/internal/models"
)

// Store reads and writes attempt history. Queries use $N placeholders,
// which both the Postgres drivers and modernc sqlite bind by position.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Attempts ────────────────────────────────────────────

func (s *Store) InsertAttempt(ctx context.Context, a *models.QuizAttempt, report []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts
		    (id, user_id, subject, difficulty, question_count, correct, total,
		     percentage, passed, time_taken, points_earned, report, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.UserID, a.Subject, a.Difficulty, a.QuestionCount, a.Correct, a.Total,
		a.Percentage, a.Passed, a.TimeTaken, a.PointsEarned, string(report), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) ListAttempts(ctx context.Context, userID int64, limit int) ([]models.QuizAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, subject, difficulty, question_count, correct, total,
		        percentage, passed, time_taken, points_earned, created_at
		 FROM quiz_attempts WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.QuizAttempt{}
	for rows.Next() {
		var a models.QuizAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.Subject, &a.Difficulty, &a.QuestionCount,
			&a.Correct, &a.Total, &a.Percentage, &a.Passed, &a.TimeTaken,
			&a.PointsEarned, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ── Stats ───────────────────────────────────────────────

func (s *Store) GetOrCreateStats(ctx context.Context, userID int64) (*models.QuizStats, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_quiz_stats (user_id, updated_at) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert stats: %w", err)
	}

	var st models.QuizStats
	err = s.db.QueryRowContext(ctx,
		`SELECT user_id, total_points, quizzes_completed, quizzes_passed,
		        perfect_quizzes, questions_answered, questions_correct, last_quiz_at
		 FROM user_quiz_stats WHERE user_id = $1`,
		userID,
	).Scan(&st.UserID, &st.TotalPoints, &st.QuizzesCompleted, &st.QuizzesPassed,
		&st.PerfectQuizzes, &st.QuestionsAnswered, &st.QuestionsCorrect, &st.LastQuizAt)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}

func (s *Store) UpdateStats(ctx context.Context, st *models.QuizStats) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_quiz_stats SET
		    total_points = $2, quizzes_completed = $3, quizzes_passed = $4,
		    perfect_quizzes = $5, questions_answered = $6, questions_correct = $7,
		    last_quiz_at = $8, updated_at = $9
		 WHERE user_id = $1`,
		st.UserID, st.TotalPoints, st.QuizzesCompleted, st.QuizzesPassed,
		st.PerfectQuizzes, st.QuestionsAnswered, st.QuestionsCorrect,
		st.LastQuizAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	return nil
}

// ── Badges ──────────────────────────────────────────────

func (s *Store) GetUserBadges(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT badge_id FROM user_badges WHERE user_id = $1 ORDER BY earned_at, badge_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get badges: %w", err)
	}
	defer rows.Close()

	badges := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// AwardBadge reports whether the badge was newly inserted.
func (s *Store) AwardBadge(ctx context.Context, userID int64, badgeID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_badges (user_id, badge_id, earned_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, badgeID, at,
	)
	if err != nil {
		return false, fmt.Errorf("award badge %s: %w", badgeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ── Subject abilities ───────────────────────────────────

func (s *Store) GetOrCreateAbility(ctx context.Context, userID int64, subject string) (*models.SubjectAbility, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subject_abilities (user_id, subject, ability_score, questions_answered, updated_at)
		 VALUES ($1, $2, $3, 0, $4)
		 ON CONFLICT (user_id, subject) DO NOTHING`,
		userID, subject, DefaultAbility, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert ability: %w", err)
	}

	ab := models.SubjectAbility{Subject: subject}
	err = s.db.QueryRowContext(ctx,
		`SELECT ability_score, questions_answered FROM subject_abilities
		 WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	).Scan(&ab.AbilityScore, &ab.QuestionsAnswered)
	if err != nil {
		return nil, fmt.Errorf("get ability: %w", err)
	}
	return &ab, nil
}

func (s *Store) UpdateAbility(ctx context.Context, userID int64, ab *models.SubjectAbility) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE subject_abilities SET ability_score = $3, questions_answered = $4, updated_at = $5
		 WHERE user_id = $1 AND subject = $2`,
		userID, ab.Subject, ab.AbilityScore, ab.QuestionsAnswered, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update ability: %w", err)
	}
	return nil
}

func (s *Store) ListAbilities(ctx context.Context, userID int64) ([]models.SubjectAbility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, ability_score, questions_answered FROM subject_abilities
		 WHERE user_id = $1 ORDER BY subject`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list abilities: %w", err)
	}
	defer rows.Close()

	abilities := []models.SubjectAbility{}
	for rows.Next() {
		var ab models.SubjectAbility
		if err := rows.Scan(&ab.Subject, &ab.AbilityScore, &ab.QuestionsAnswered); err != nil {
			return nil, err
		}
		abilities = append(abilities, ab)
	}
	return abilities, rows.Err()
}
