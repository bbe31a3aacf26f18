package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func TestReply(t *testing.T) {
	stub := &stubCompleter{text: "  **💡 Spaced repetition** works.\n"}
	svc := NewService(stub)

	got, err := svc.Reply(context.Background(), "  How should I revise?  ")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "**💡 Spaced repetition** works." {
		t.Errorf("reply = %q", got)
	}
	if len(stub.prompts) != 1 || !strings.HasSuffix(stub.prompts[0], "\n\nStudent: How should I revise?\n\nAssistant:") {
		t.Errorf("prompt = %q", stub.prompts)
	}
}

func TestReply_Errors(t *testing.T) {
	if _, err := NewService(&stubCompleter{}).Reply(context.Background(), " \n "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty message: err = %v", err)
	}

	cause := &gateway.Error{Kind: gateway.KindQuota, Model: "m", Err: errors.New("429")}
	_, err := NewService(&stubCompleter{err: cause}).Reply(context.Background(), "hi")
	if gateway.KindOf(err) != gateway.KindQuota {
		t.Errorf("gateway error should stay inspectable, got %v", err)
	}
}

func TestReply_TruncatesLongMessages(t *testing.T) {
	stub := &stubCompleter{text: "ok"}
	long := strings.Repeat("é", MaxMessageLength+10)
	if _, err := NewService(stub).Reply(context.Background(), long); err != nil {
		t.Fatal(err)
	}
	if strings.Count(stub.prompts[0], "é") != MaxMessageLength {
		t.Errorf("message was not truncated to %d runes", MaxMessageLength)
	}
}

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		stub   *stubCompleter
		status int
		want   string
	}{
		{"reply", `{"message":"What is osmosis?"}`, &stubCompleter{text: "Water moves."}, http.StatusOK, "Water moves."},
		{"missing message", `{}`, &stubCompleter{}, http.StatusBadRequest, "Message is required."},
		{"bad body", `{"message":`, &stubCompleter{}, http.StatusBadRequest, "Invalid request body"},
		{"gateway failure", `{"message":"hi"}`, &stubCompleter{err: errors.New("boom")}, http.StatusInternalServerError, "Failed to get assistant response."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewService(tt.stub))
			rec := httptest.NewRecorder()
			h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/chat", bytes.NewBufferString(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Code == http.StatusOK {
				var resp models.ChatResponse
				json.Unmarshal(rec.Body.Bytes(), &resp)
				if resp.Response != tt.want {
					t.Errorf("response = %q", resp.Response)
				}
				return
			}
			var resp models.ErrorResponse
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Error != tt.want {
				t.Errorf("error = %q, want %q", resp.Error, tt.want)
			}
		})
	}
}
