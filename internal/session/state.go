package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/study-ai/backend/internal/models"
)

// Phase names the variant a State is in.
type Phase int

const (
	PhaseSelecting Phase = iota // choosing subject and difficulty
	PhaseActive                 // answering questions against the clock
	PhaseScored                 // results screen
	PhaseReviewing              // walking through answers
)

func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseActive:
		return "active"
	case PhaseScored:
		return "scored"
	case PhaseReviewing:
		return "reviewing"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is one of Selecting, Active, Scored or Reviewing.
type State interface {
	Phase() Phase
	isState()
}

// Run is a config plus the question set generated for it.
type Run struct {
	ID        string
	Config    Config
	Questions []models.Question
	StartedAt time.Time
}

type AnswerRecord struct {
	QuestionIndex int
	Selected      models.Option
	IsCorrect     bool
	Question      models.Question
}

// Result is the frozen outcome of a run, shared by Scored and Reviewing.
type Result struct {
	Run        Run
	Score      int
	Answers    []AnswerRecord
	TimedOut   bool
	FinishedAt time.Time
	Rewards    *models.AttemptRewards
}

// Total is the number of questions actually served.
func (r Result) Total() int { return len(r.Run.Questions) }

// Percentage is round(100 × score / total).
func (r Result) Percentage() int {
	if r.Total() == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.Score) / float64(r.Total())))
}

func (r Result) Passed() bool {
	return r.Percentage() >= r.Run.Config.PassingScore()
}

type Selecting struct{}

type Active struct {
	Run           Run
	Index         int
	Score         int
	TimeRemaining int
	Answers       []AnswerRecord
}

// Current is the question being shown.
func (a Active) Current() models.Question { return a.Run.Questions[a.Index] }

type Scored struct {
	Result Result
}

type Reviewing struct {
	Result Result
}

func (Selecting) Phase() Phase { return PhaseSelecting }
func (Active) Phase() Phase    { return PhaseActive }
func (Scored) Phase() Phase    { return PhaseScored }
func (Reviewing) Phase() Phase { return PhaseReviewing }

func (Selecting) isState() {}
func (Active) isState()    {}
func (Scored) isState()    {}
func (Reviewing) isState() {}

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrInvalidOption     = errors.New("invalid option")
	ErrNoQuestions       = errors.New("no questions to run")
	ErrSuperseded        = errors.New("quiz request superseded by a newer one")
)

// TransitionError reports an action attempted from a phase that does not
// allow it. It matches ErrInvalidTransition.
type TransitionError struct {
	Action string
	From   Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func phaseOf(s State) Phase {
	if s == nil {
		return PhaseSelecting
	}
	return s.Phase()
}

// resultOf returns the result held by Scored or Reviewing.
func resultOf(s State) (Result, bool) {
	switch st := s.(type) {
	case Scored:
		return st.Result, true
	case Reviewing:
		return st.Result, true
	}
	return Result{}, false
}
