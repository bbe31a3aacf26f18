package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/study-ai/backend/internal/attempts"
	"github.com/study-ai/backend/internal/config"
	"github.com/study-ai/backend/internal/gateway"
	"github.com/study-ai/backend/internal/models"
	"github.com/study-ai/backend/internal/quiz"
	"github.com/study-ai/backend/internal/session"
)

// syncBuffer lets the test read output while the player writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// mockQuizService generates quizzes with the mock provider; question i has
// its correct answer at option i%4.
func mockQuizService(t *testing.T) *quiz.Service {
	t.Helper()
	gw, err := gateway.New(context.Background(), config.GatewayConfig{Provider: "mock", Models: []string{"mock"}})
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	return quiz.NewService(gw, 50)
}

func wantOutput(t *testing.T, got string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(got, p) {
			t.Errorf("output missing %q", p)
		}
	}
	if t.Failed() {
		t.Logf("output:\n%s", got)
	}
}

func TestPlay_FullRunWithLocalReporter(t *testing.T) {
	db, err := openLocalStore(t.TempDir() + "/attempts.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	svc := attempts.NewService(attempts.NewStore(db))

	out := &syncBuffer{}
	in := strings.NewReader("1\n2\n3\nr\nb\nq\n")
	p := newPlayer(mockQuizService(t), attempts.NewLocalReporter(svc, 1), in, out)

	if err := p.run(context.Background(), "Volcanoes", "Beginner", 3); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	wantOutput(t, got,
		"Question 1/3  (6:00 left)",
		"Question 3/3",
		"Score: 3/3 (100%) PASSED",
		"✔ 2.",
		"+65 points (30 base, 25 accuracy, 10 speed)",
		"New badge: First Steps",
	)
	if n := strings.Count(got, "+65 points"); n != 1 {
		t.Errorf("rewards printed %d times, want once", n)
	}

	list, err := svc.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Subject != "Volcanoes" || list[0].Percentage != 100 {
		t.Errorf("stored attempts = %+v", list)
	}
}

func TestPlay_SetupPrompts(t *testing.T) {
	out := &syncBuffer{}
	in := strings.NewReader("\nOcean Life\n\nzero\n2\n1\n1\nn\nq\n")
	p := newPlayer(mockQuizService(t), nil, in, out)

	if err := p.run(context.Background(), "", "", 0); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	wantOutput(t, got,
		"Topic: ",
		"Enter a positive number.",
		`Generating 2 Beginner questions on "Ocean Life"`,
		"Score: 1/2 (50%) NOT PASSED (need 60%)",
	)
	if !strings.HasSuffix(got, "Topic: ") {
		t.Error("n should return to setup")
	}
	if ph := p.machine.Phase(); ph != session.PhaseSelecting {
		t.Errorf("phase = %s, want selecting", ph)
	}
}

func TestPlay_InvalidAnswerInput(t *testing.T) {
	out := &syncBuffer{}
	in := strings.NewReader("7\nabc\nq\n")
	p := newPlayer(mockQuizService(t), nil, in, out)

	if err := p.run(context.Background(), "Rivers", "Advanced", 2); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "Enter a number from 1 to 4"); n != 2 {
		t.Errorf("hint printed %d times, want 2", n)
	}
	if ph := p.machine.Phase(); ph != session.PhaseActive {
		t.Errorf("phase = %s, want active", ph)
	}
}

func TestPlay_TimerEndsRun(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	out := &syncBuffer{}
	p := newPlayer(mockQuizService(t), nil, pr, out, session.WithTickInterval(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- p.run(context.Background(), "Deserts", "Beginner", 1) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "Time's up!") {
		if time.Now().After(deadline) {
			t.Fatalf("run never timed out:\n%s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	got := out.String()
	// Exact values depend on when the loop observes each tick.
	if !regexp.MustCompile(`⏰ [01]:\d\d left`).MatchString(got) {
		t.Errorf("no time warning in output:\n%s", got)
	}
	wantOutput(t, got, "Score: 0/1 (0%)")

	if _, err := pw.Write([]byte("q\n")); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestRenderRewards(t *testing.T) {
	insights, _ := json.Marshal(models.Insights{Message: "Try Intermediate next."})
	got := renderRewards(models.AttemptRewards{
		PointsEarned: &models.Points{Base: 20, Bonus: 10, Speed: 5, Total: 35},
		NewBadges:    []models.Badge{{Icon: "🎯", Name: "Bullseye", Description: "Perfect score"}},
		Insights:     insights,
	})
	want := "+35 points (20 base, 10 accuracy, 5 speed)\n🎯 New badge: Bullseye (Perfect score)\n💡 Try Intermediate next.\n"
	if got != want {
		t.Errorf("renderRewards() = %q, want %q", got, want)
	}

	if got := renderRewards(models.AttemptRewards{}); got != "" {
		t.Errorf("empty rewards = %q", got)
	}
}

func TestFormatClock(t *testing.T) {
	for secs, want := range map[int]string{360: "6:00", 9: "0:09", -3: "0:00"} {
		if got := formatClock(secs); got != want {
			t.Errorf("formatClock(%d) = %q, want %q", secs, got, want)
		}
	}
}
