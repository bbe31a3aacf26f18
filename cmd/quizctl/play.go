package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/study-ai/backend/internal/attempts"
	"github.com/study-ai/backend/internal/database"
	"github.com/study-ai/backend/internal/models"
	"github.com/study-ai/backend/internal/quiz"
	"github.com/study-ai/backend/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a timed quiz in the terminal",
	Long: `Play a timed quiz in the terminal.

Finished runs are reported to a local SQLite attempt store (--db) or to a
study-ai server (--server, --token). Use --no-save to skip reporting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		svc, err := newQuizService(ctx)
		if err != nil {
			return err
		}

		reporter, closeFn, err := reporterFromFlags(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		topic, _ := cmd.Flags().GetString("topic")
		level, _ := cmd.Flags().GetString("level")
		count, _ := cmd.Flags().GetInt("count")

		p := newPlayer(svc, reporter, cmd.InOrStdin(), cmd.OutOrStdout())
		return p.run(ctx, topic, level, count)
	},
}

func init() {
	playCmd.Flags().String("topic", "", "Quiz topic (prompted when empty)")
	playCmd.Flags().String("level", "Beginner", "Difficulty: Beginner, Intermediate or Advanced")
	playCmd.Flags().Int("count", quiz.DefaultCount, "Number of questions")
	playCmd.Flags().String("db", "quizctl.db", "SQLite file for local attempt history")
	playCmd.Flags().Int64("user-id", 1, "User id recorded with local attempts")
	playCmd.Flags().String("server", "", "Report attempts to this server instead of --db (e.g. http://localhost:8080)")
	playCmd.Flags().String("token", "", "Bearer token for --server (default $QUIZCTL_TOKEN)")
	playCmd.Flags().Bool("no-save", false, "Do not report finished runs")
}

// reporterFromFlags picks the attempt reporter. The returned func releases
// whatever it opened.
func reporterFromFlags(cmd *cobra.Command) (session.Reporter, func(), error) {
	noop := func() {}
	if skip, _ := cmd.Flags().GetBool("no-save"); skip {
		return nil, noop, nil
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = os.Getenv("QUIZCTL_TOKEN")
		}
		return attempts.NewHTTPReporter(server, token, nil), noop, nil
	}

	path, _ := cmd.Flags().GetString("db")
	userID, _ := cmd.Flags().GetInt64("user-id")
	db, err := openLocalStore(path)
	if err != nil {
		return nil, noop, err
	}
	svc := attempts.NewService(attempts.NewStore(db))
	return attempts.NewLocalReporter(svc, userID), func() { db.Close() }, nil
}

func openLocalStore(path string) (*sql.DB, error) {
	db, err := database.Connect(database.DriverSQLite, "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open attempt store %s: %w", path, err)
	}
	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate attempt store %s: %w", path, err)
	}
	return db, nil
}

// timeWarnings are the remaining-second marks announced during a run.
var timeWarnings = []int{60, 30, 10}

// player drives a session.Machine from line-based input. All output is
// written from the run loop; the machine observer only signals it.
type player struct {
	machine *session.Machine
	in      io.Reader
	out     io.Writer
	updates chan struct{}

	setup []string // answers collected while in Selecting

	scoredRun   string
	rewardedRun string
	warnedRun   string
	warned      int
}

func newPlayer(gen session.Generator, rep session.Reporter, in io.Reader, out io.Writer, opts ...session.Option) *player {
	p := &player{in: in, out: out, updates: make(chan struct{}, 1)}
	opts = append([]session.Option{session.WithObserver(p.notify)}, opts...)
	p.machine = session.NewMachine(gen, rep, opts...)
	return p
}

func (p *player) notify(session.State) {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *player) run(ctx context.Context, topic, level string, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go p.machine.RunTimer(ctx)
	lines := readLines(ctx, p.in)

	defer func() {
		p.machine.WaitReports()
		p.refresh()
	}()

	if topic != "" {
		if err := p.start(ctx, topic, level, count); err != nil {
			return err
		}
	} else {
		p.promptSetup()
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return nil
		case <-p.updates:
			p.refresh()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := p.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// handle applies one line of input. It reports true when the user quits.
func (p *player) handle(ctx context.Context, line string) (bool, error) {
	if strings.EqualFold(line, "q") {
		return true, nil
	}

	switch s := p.machine.State().(type) {
	case session.Selecting:
		return false, p.handleSetup(ctx, line)

	case session.Active:
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(s.Current().Options) {
			fmt.Fprintf(p.out, "Enter a number from 1 to %d (q to quit).\n> ", len(s.Current().Options))
			return false, nil
		}
		next, err := p.machine.SubmitAnswer(n - 1)
		if errors.Is(err, session.ErrInvalidTransition) {
			// The timer finished the run first.
			p.refresh()
			return false, nil
		}
		if err != nil {
			return false, err
		}
		p.show(next)

	case session.Scored:
		switch strings.ToLower(line) {
		case "r":
			next, err := p.machine.Review()
			if err != nil {
				return false, err
			}
			p.show(next)
		case "a":
			fmt.Fprintln(p.out, "Generating a fresh set of questions...")
			next, err := p.machine.Restart(ctx)
			if err != nil {
				p.generationFailed(err)
				return false, nil
			}
			p.show(next)
		case "n":
			p.machine.NewQuiz()
			p.setup = nil
			p.promptSetup()
		default:
			fmt.Fprint(p.out, scoreMenu)
		}

	case session.Reviewing:
		if strings.EqualFold(line, "b") {
			next, err := p.machine.BackToScore()
			if err != nil {
				return false, err
			}
			p.show(next)
			return false, nil
		}
		fmt.Fprint(p.out, "[b] back to score  [q] quit\n> ")
	}
	return false, nil
}

func (p *player) handleSetup(ctx context.Context, line string) error {
	switch len(p.setup) {
	case 0:
		if line == "" {
			p.promptSetup()
			return nil
		}
	case 1:
		if line == "" {
			line = "Beginner"
		}
	case 2:
		if line == "" {
			line = strconv.Itoa(quiz.DefaultCount)
		}
		if n, err := strconv.Atoi(line); err != nil || n < 1 {
			fmt.Fprintln(p.out, "Enter a positive number.")
			p.promptSetup()
			return nil
		}
	}
	p.setup = append(p.setup, line)
	if len(p.setup) < 3 {
		p.promptSetup()
		return nil
	}

	count, _ := strconv.Atoi(p.setup[2])
	topic, level := p.setup[0], p.setup[1]
	p.setup = nil
	return p.start(ctx, topic, level, count)
}

func (p *player) promptSetup() {
	switch len(p.setup) {
	case 0:
		fmt.Fprint(p.out, "Topic: ")
	case 1:
		fmt.Fprint(p.out, "Level [Beginner/Intermediate/Advanced] (Beginner): ")
	case 2:
		fmt.Fprintf(p.out, "Number of questions (%d): ", quiz.DefaultCount)
	}
}

func (p *player) start(ctx context.Context, topic, level string, count int) error {
	cfg, err := session.NewConfig(topic, level, count)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Generating %d %s questions on %q...\n", cfg.QuestionCount, cfg.Difficulty.Name, cfg.Subject.Name)

	next, err := p.machine.Start(ctx, cfg)
	if err != nil {
		p.generationFailed(err)
		return nil
	}
	p.show(next)
	return nil
}

func (p *player) generationFailed(err error) {
	if errors.Is(err, session.ErrSuperseded) || errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintf(p.out, "Could not generate a quiz: %v\n", err)
	if p.machine.Phase() != session.PhaseSelecting {
		fmt.Fprint(p.out, scoreMenu)
		return
	}
	p.setup = nil
	p.promptSetup()
}

// refresh renders what changed behind the loop's back: timer warnings,
// a timed-out run, and rewards arriving from the reporter.
func (p *player) refresh() {
	switch s := p.machine.State().(type) {
	case session.Active:
		if p.warnedRun != s.Run.ID {
			p.warnedRun, p.warned = s.Run.ID, 0
		}
		mark := 0
		for _, w := range timeWarnings {
			if s.TimeRemaining <= w {
				mark = w
			}
		}
		if mark > 0 && (p.warned == 0 || mark < p.warned) && s.Run.Config.TimeLimitSeconds() > mark {
			p.warned = mark
			fmt.Fprintf(p.out, "\n⏰ %s left\n> ", formatClock(s.TimeRemaining))
		}
	case session.Scored:
		if p.scoredRun != s.Result.Run.ID {
			if s.Result.TimedOut {
				fmt.Fprintln(p.out, "\n⏰ Time's up!")
			}
			p.show(s)
			return
		}
		p.showRewards(s.Result)
	case session.Reviewing:
		p.showRewards(s.Result)
	}
}

func (p *player) show(s session.State) {
	switch s := s.(type) {
	case session.Active:
		q := s.Current()
		fmt.Fprintf(p.out, "\nQuestion %d/%d  (%s left)\n%s\n", s.Index+1, len(s.Run.Questions), formatClock(s.TimeRemaining), q.Text)
		for i, o := range q.Options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, o.Text)
		}
		fmt.Fprint(p.out, "> ")

	case session.Scored:
		p.scoredRun = s.Result.Run.ID
		r := s.Result
		verdict := "PASSED"
		if !r.Passed() {
			verdict = fmt.Sprintf("NOT PASSED (need %d%%)", r.Run.Config.PassingScore())
		}
		fmt.Fprintf(p.out, "\nScore: %d/%d (%d%%) %s\n", r.Score, r.Total(), r.Percentage(), verdict)
		fmt.Fprintf(p.out, "Time: %s\n", r.FinishedAt.Sub(r.Run.StartedAt).Round(time.Second))
		p.showRewards(r)
		fmt.Fprint(p.out, scoreMenu)

	case session.Reviewing:
		fmt.Fprintln(p.out, renderReview(s.Result))
		fmt.Fprint(p.out, "[b] back to score  [q] quit\n> ")
	}
}

func (p *player) showRewards(r session.Result) {
	if r.Rewards == nil || p.rewardedRun == r.Run.ID {
		return
	}
	p.rewardedRun = r.Run.ID
	fmt.Fprint(p.out, renderRewards(*r.Rewards))
}

const scoreMenu = "[r] review  [a] try again  [n] new quiz  [q] quit\n> "

func renderReview(r session.Result) string {
	answered := make(map[int]session.AnswerRecord, len(r.Answers))
	for _, a := range r.Answers {
		answered[a.QuestionIndex] = a
	}

	var b strings.Builder
	b.WriteString("\nReview\n")
	for i, q := range r.Run.Questions {
		a, ok := answered[i]
		mark := "✘"
		if ok && a.IsCorrect {
			mark = "✔"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", mark, i+1, q.Text)
		if ok {
			fmt.Fprintf(&b, "    your answer: %s\n", a.Selected.Text)
		} else {
			b.WriteString("    your answer: (none)\n")
		}
		for _, o := range q.Options {
			if o.Correct {
				fmt.Fprintf(&b, "    correct:     %s\n", o.Text)
			}
		}
	}
	return b.String()
}

func renderRewards(rw models.AttemptRewards) string {
	var b strings.Builder
	if pts := rw.PointsEarned; pts != nil {
		fmt.Fprintf(&b, "+%d points (%d base, %d accuracy, %d speed)\n", pts.Total, pts.Base, pts.Bonus, pts.Speed)
	}
	for _, badge := range rw.NewBadges {
		fmt.Fprintf(&b, "%s New badge: %s (%s)\n", badge.Icon, badge.Name, badge.Description)
	}
	if len(rw.Insights) > 0 {
		var in models.Insights
		if err := json.Unmarshal(rw.Insights, &in); err == nil && in.Message != "" {
			fmt.Fprintf(&b, "💡 %s\n", in.Message)
		}
	}
	return b.String()
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
