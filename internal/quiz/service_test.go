package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/study-ai/backend/internal/extractor"
	"github.com/study-ai/backend/internal/gateway"
	"github.com/study-ai/backend/internal/models"
)

type stubCompleter struct {
	text    string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (*gateway.Completion, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	return &gateway.Completion{Text: s.text, Model: "stub-model"}, nil
}

func quizJSON(count int) string {
	items := make([]models.RawQuizItem, count)
	for i := range items {
		opts := []string{"alpha", "beta", "gamma", "delta"}
		items[i] = models.RawQuizItem{
			Question: fmt.Sprintf("Question %d", i+1),
			Options:  opts,
			Answer:   opts[i%4],
		}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func TestGenerateQuiz_Success(t *testing.T) {
	stub := &stubCompleter{text: "```json\n" + quizJSON(5) + "\n```"}
	svc := NewService(stub, 50)

	questions, err := svc.GenerateQuiz(context.Background(), Request{Topic: "Forest Conservation", Level: "Beginner", Count: 5})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	if len(stub.prompts) != 1 {
		t.Errorf("expected exactly one model call, got %d", len(stub.prompts))
	}
	for _, want := range []string{"Generate 5 multiple-choice", "'Forest Conservation'", "Beginner level"} {
		if !strings.Contains(stub.prompts[0], want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateQuiz_TruncatesToCount(t *testing.T) {
	stub := &stubCompleter{text: quizJSON(8)}
	svc := NewService(stub, 50)

	questions, err := svc.GenerateQuiz(context.Background(), Request{Topic: "Oceans", Level: "Advanced", Count: 3})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(questions))
	}
	if questions[2].Text != "Question 3" {
		t.Errorf("truncation must keep model order, got %q", questions[2].Text)
	}
}

func TestGenerateQuiz_FewerThanRequested(t *testing.T) {
	svc := NewService(&stubCompleter{text: quizJSON(2)}, 50)

	questions, err := svc.GenerateQuiz(context.Background(), Request{Topic: "Oceans", Level: "Advanced", Count: 5})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("expected the 2 returned questions, got %d", len(questions))
	}
}

func TestGenerateQuiz_DefaultCount(t *testing.T) {
	stub := &stubCompleter{text: quizJSON(9)}
	svc := NewService(stub, 50)

	questions, err := svc.GenerateQuiz(context.Background(), Request{Topic: "Oceans", Level: "Beginner"})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(questions) != DefaultCount {
		t.Errorf("expected %d questions, got %d", DefaultCount, len(questions))
	}
	if !strings.Contains(stub.prompts[0], "Generate 5 multiple-choice") {
		t.Error("prompt should ask for the default count")
	}
}

func TestGenerateQuiz_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing topic", Request{Level: "Beginner", Count: 5}},
		{"blank topic", Request{Topic: "   ", Level: "Beginner", Count: 5}},
		{"missing level", Request{Topic: "Oceans", Count: 5}},
		{"negative count", Request{Topic: "Oceans", Level: "Beginner", Count: -1}},
		{"count over max", Request{Topic: "Oceans", Level: "Beginner", Count: 51}},
	}

	for _, tt := range tests {
		stub := &stubCompleter{text: quizJSON(1)}
		svc := NewService(stub, 50)

		_, err := svc.GenerateQuiz(context.Background(), tt.req)
		if KindOf(err) != KindInvalidRequest {
			t.Errorf("%s: kind = %s, want InvalidRequest", tt.name, KindOf(err))
		}
		var qErr *Error
		if errors.As(err, &qErr) && qErr.HTTPStatus() != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, qErr.HTTPStatus())
		}
		if len(stub.prompts) != 0 {
			t.Errorf("%s: model must not be called for invalid input", tt.name)
		}
	}
}

func TestGenerateQuiz_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"missing credential", fmt.Errorf("%w for provider gemini", gateway.ErrMissingCredential), KindConfigurationMissing},
		{"no model", &gateway.Error{Kind: gateway.KindModelUnavailable, Err: gateway.ErrNoModelAvailable}, KindModelUnavailable},
		{"not found", &gateway.Error{Kind: gateway.KindNotFound, Status: 404, Err: errors.New("404")}, KindModelUnavailable},
		{"quota", &gateway.Error{Kind: gateway.KindQuota, Status: 429, Err: errors.New("429")}, KindQuotaExceeded},
		{"auth", &gateway.Error{Kind: gateway.KindAuth, Status: 401, Err: errors.New("401")}, KindAuthenticationFailed},
		{"network", &gateway.Error{Kind: gateway.KindNetwork, Err: errors.New("connection reset")}, KindUnknown},
		{"plain", errors.New("mystery"), KindUnknown},
	}

	for _, tt := range tests {
		stub := &stubCompleter{err: tt.err}
		svc := NewService(stub, 50)

		_, err := svc.GenerateQuiz(context.Background(), Request{Topic: "Oceans", Level: "Beginner", Count: 5})
		if KindOf(err) != tt.want {
			t.Errorf("%s: kind = %s, want %s", tt.name, KindOf(err), tt.want)
		}
		var qErr *Error
		if !errors.As(err, &qErr) {
			t.Fatalf("%s: expected *Error, got %T", tt.name, err)
		}
		if qErr.HTTPStatus() != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", tt.name, qErr.HTTPStatus())
		}
		if qErr.Details == "" {
			t.Errorf("%s: details should preserve the underlying message", tt.name)
		}
		if len(stub.prompts) != 1 {
			t.Errorf("%s: expected a single attempt, got %d", tt.name, len(stub.prompts))
		}
	}
}

func TestGenerateQuiz_ExtractionFailed(t *testing.T) {
	svc := NewService(&stubCompleter{text: "I'm sorry, I can't help with that."}, 50)

	_, err := svc.GenerateQuiz(context.Background(), Request{Topic: "Oceans", Level: "Beginner", Count: 5})
	if KindOf(err) != KindExtractionFailed {
		t.Fatalf("kind = %s, want ExtractionFailed", KindOf(err))
	}
	if !errors.Is(err, extractor.ErrUnparseable) {
		t.Error("extraction error should wrap extractor.ErrUnparseable")
	}

	var qErr *Error
	errors.As(err, &qErr)
	if qErr.RawResponse != "I'm sorry, I can't help with that." {
		t.Errorf("raw response prefix = %q", qErr.RawResponse)
	}
}

func TestGenerateQuiz_Unconfigured(t *testing.T) {
	cause := fmt.Errorf("%w for provider gemini", gateway.ErrMissingCredential)
	svc := NewService(gateway.Unconfigured(cause), 50)

	_, err := svc.GenerateQuiz(context.Background(), Request{Topic: "Oceans", Level: "Beginner"})
	if KindOf(err) != KindConfigurationMissing {
		t.Errorf("kind = %s, want ConfigurationMissing", KindOf(err))
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("Green Technology", "Intermediate", 7)
	b := BuildPrompt("Green Technology", "Intermediate", 7)
	if a != b {
		t.Error("prompt must be deterministic")
	}

	required := []string{"7", "'Green Technology'", "Intermediate level", "exact text of the correct option", "Return ONLY the JSON array", `"answer"`}
	for _, keyword := range required {
		if !strings.Contains(a, keyword) {
			t.Errorf("prompt missing %q", keyword)
		}
	}
}

func TestBuildPrompt_UnknownLevel(t *testing.T) {
	prompt := BuildPrompt("Wildlife", "Graduate", 3)
	if !strings.Contains(prompt, "Graduate level student") {
		t.Error("unknown levels should still be embedded verbatim")
	}
}
