package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/study-ai/backend/internal/models"
	"github.com/study-ai/backend/internal/quiz"
)

// Generator produces the question set for a run. *quiz.Service satisfies it.
type Generator interface {
	GenerateQuiz(ctx context.Context, req quiz.Request) ([]models.Question, error)
}

// Reporter receives the summary of every scored run. Everything in the
// returned rewards is optional.
type Reporter interface {
	Report(ctx context.Context, report models.AttemptReport) (*models.AttemptRewards, error)
}

const defaultReportTimeout = 15 * time.Second

type Option func(*Machine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithObserver is called with every new state, outside the machine's lock.
func WithObserver(fn func(State)) Option {
	return func(m *Machine) { m.observer = fn }
}

// WithTickInterval changes the timer period used by RunTimer.
func WithTickInterval(d time.Duration) Option {
	return func(m *Machine) { m.tickInterval = d }
}

func WithReportTimeout(d time.Duration) Option {
	return func(m *Machine) { m.reportTimeout = d }
}

// Machine is the single handle for one client's quiz session. Every state
// change goes through its mutex, so timer ticks and user actions never
// interleave.
type Machine struct {
	mu     sync.Mutex
	state  State
	config *Config
	token  uint64

	generator Generator
	reporter  Reporter

	now           func() time.Time
	observer      func(State)
	tickInterval  time.Duration
	reportTimeout time.Duration

	reports sync.WaitGroup
}

// NewMachine starts in Selecting. reporter may be nil.
func NewMachine(generator Generator, reporter Reporter, opts ...Option) *Machine {
	m := &Machine{
		state:         Selecting{},
		generator:     generator,
		reporter:      reporter,
		now:           time.Now,
		tickInterval:  time.Second,
		reportTimeout: defaultReportTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Phase() Phase { return phaseOf(m.State()) }

// Config returns the config of the latest Start, if any.
func (m *Machine) Config() (Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config == nil {
		return Config{}, false
	}
	return *m.config, true
}

// Start asks the generator for questions and enters Active. The lock is not
// held while generating. If Start, Restart or NewQuiz is called again before
// generation finishes, this call's result is dropped and ErrSuperseded
// returned.
func (m *Machine) Start(ctx context.Context, cfg Config) (State, error) {
	m.mu.Lock()
	if p := phaseOf(m.state); p == PhaseActive {
		m.mu.Unlock()
		return nil, &TransitionError{Action: "start", From: p}
	}
	token := m.startLocked(cfg)
	m.mu.Unlock()

	return m.generate(ctx, cfg, token)
}

// Restart runs Start again with the config of the run just finished. The
// phase check and the claim on the next generation happen under one lock,
// so a NewQuiz that follows always wins.
func (m *Machine) Restart(ctx context.Context) (State, error) {
	m.mu.Lock()
	p := phaseOf(m.state)
	if (p != PhaseScored && p != PhaseReviewing) || m.config == nil {
		m.mu.Unlock()
		return nil, &TransitionError{Action: "restart", From: p}
	}
	cfg := *m.config
	token := m.startLocked(cfg)
	m.mu.Unlock()

	return m.generate(ctx, cfg, token)
}

// startLocked supersedes any pending generation. m.mu must be held.
func (m *Machine) startLocked(cfg Config) uint64 {
	m.token++
	m.config = &cfg
	return m.token
}

func (m *Machine) generate(ctx context.Context, cfg Config, token uint64) (State, error) {
	log.Printf("[session] generating %d %s questions on %q", cfg.QuestionCount, cfg.Difficulty.Name, cfg.Subject.Name)
	questions, genErr := m.generator.GenerateQuiz(ctx, cfg.Request())

	return m.apply(func(s State) (State, error) {
		if token != m.token {
			log.Printf("[session] discarding stale quiz for %q", cfg.Subject.Name)
			return s, ErrSuperseded
		}
		if genErr != nil {
			return s, genErr
		}
		return Begin(s, uuid.NewString(), cfg, questions, m.now())
	})
}

// SubmitAnswer picks option for the current question.
func (m *Machine) SubmitAnswer(option int) (State, error) {
	return m.apply(func(s State) (State, error) {
		return Answer(s, option, m.now())
	})
}

func (m *Machine) Tick() (State, error) {
	return m.apply(func(s State) (State, error) {
		return Tick(s, m.now())
	})
}

func (m *Machine) Review() (State, error) {
	return m.apply(Review)
}

func (m *Machine) BackToScore() (State, error) {
	return m.apply(BackToScore)
}

// NewQuiz clears the session and cancels any pending Start.
func (m *Machine) NewQuiz() State {
	st, _ := m.apply(func(s State) (State, error) {
		m.token++
		m.config = nil
		return Reset(s), nil
	})
	return st
}

// RunTimer ticks the clock until ctx is done. Ticks outside Active are
// skipped.
func (m *Machine) RunTimer(ctx context.Context) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.Phase() != PhaseActive {
				continue
			}
			// A concurrent answer may have scored the run since the check.
			m.Tick()
		}
	}
}

// WaitReports blocks until every in-flight report has finished.
func (m *Machine) WaitReports() {
	m.reports.Wait()
}

// apply runs fn under the lock. When fn moves the session from Active to
// Scored the summary goes to the reporter in the background.
func (m *Machine) apply(fn func(State) (State, error)) (State, error) {
	m.mu.Lock()
	prev := m.state
	next, err := fn(prev)
	if err != nil {
		m.mu.Unlock()
		return next, err
	}
	m.state = next

	var report *models.AttemptReport
	var runID string
	if scored, ok := next.(Scored); ok && prev.Phase() == PhaseActive {
		summary := Summarize(scored.Result)
		report = &summary
		runID = scored.Result.Run.ID
		log.Printf("[session] run %s scored %d/%d (%d%%) timed out: %v",
			runID, scored.Result.Score, scored.Result.Total(), scored.Result.Percentage(), scored.Result.TimedOut)
	}
	if report != nil && m.reporter != nil {
		m.reports.Add(1)
		go m.report(runID, *report)
	}
	m.mu.Unlock()

	if m.observer != nil {
		m.observer(next)
	}
	return next, nil
}

func (m *Machine) report(runID string, report models.AttemptReport) {
	defer m.reports.Done()

	ctx, cancel := context.WithTimeout(context.Background(), m.reportTimeout)
	defer cancel()

	rewards, err := m.reporter.Report(ctx, report)
	if err != nil {
		log.Printf("[session] WARNING: failed to report run %s: %v", runID, err)
		return
	}
	if rewards == nil {
		return
	}
	m.apply(func(s State) (State, error) {
		return AttachRewards(s, runID, rewards), nil
	})
}
