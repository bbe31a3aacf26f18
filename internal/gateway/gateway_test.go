package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/study-ai/backend/internal/config"
)

type fakeBackend struct {
	openErrs map[string]error
	genErrs  map[string]error
	opened   []string
	calls    []string
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Open(ctx context.Context, model string) (Model, error) {
	b.opened = append(b.opened, model)
	if err := b.openErrs[model]; err != nil {
		return nil, err
	}
	return &fakeModel{backend: b, id: model}, nil
}

type fakeModel struct {
	backend *fakeBackend
	id      string
}

func (m *fakeModel) ID() string { return m.id }

func (m *fakeModel) Generate(ctx context.Context, prompt string) (*Completion, error) {
	m.backend.calls = append(m.backend.calls, m.id)
	if err := m.backend.genErrs[m.id]; err != nil {
		return nil, err
	}
	return &Completion{Text: "reply from " + m.id, Model: m.id}, nil
}

func TestComplete_UsesFirstModel(t *testing.T) {
	backend := &fakeBackend{}
	gw, err := NewWithBackend(backend, []string{"model-a", "model-b"})
	if err != nil {
		t.Fatalf("NewWithBackend: %v", err)
	}

	c, err := gw.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Text != "reply from model-a" {
		t.Errorf("text = %q", c.Text)
	}
	if len(backend.opened) != 1 {
		t.Errorf("expected one model opened, got %v", backend.opened)
	}
}

func TestComplete_FallsThroughOnInitFailure(t *testing.T) {
	backend := &fakeBackend{openErrs: map[string]error{
		"model-a": errors.New("unsupported"),
		"model-b": errors.New("unsupported"),
	}}
	gw, _ := NewWithBackend(backend, []string{"model-a", "model-b", "model-c"})

	c, err := gw.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Model != "model-c" {
		t.Errorf("expected model-c to serve the request, got %q", c.Model)
	}
	if strings.Join(backend.opened, ",") != "model-a,model-b,model-c" {
		t.Errorf("unexpected open order: %v", backend.opened)
	}
}

func TestComplete_NoRetryOnRequestFailure(t *testing.T) {
	backend := &fakeBackend{genErrs: map[string]error{
		"model-a": errors.New("Error 429, Message: Resource has been exhausted (e.g. check quota)."),
	}}
	gw, _ := NewWithBackend(backend, []string{"model-a", "model-b"})

	_, err := gw.Complete(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindQuota {
		t.Errorf("kind = %s, want %s", KindOf(err), KindQuota)
	}
	if len(backend.calls) != 1 || backend.calls[0] != "model-a" {
		t.Errorf("request failure must not fall through: calls = %v", backend.calls)
	}
	if len(backend.opened) != 1 {
		t.Errorf("no further model should be opened: opened = %v", backend.opened)
	}
}

func TestComplete_AllModelsFailInit(t *testing.T) {
	backend := &fakeBackend{openErrs: map[string]error{
		"model-a": errors.New("boom"),
		"model-b": errors.New("bang"),
	}}
	gw, _ := NewWithBackend(backend, []string{"model-a", "model-b"})

	_, err := gw.Complete(context.Background(), "hello")
	if !errors.Is(err, ErrNoModelAvailable) {
		t.Fatalf("expected ErrNoModelAvailable, got %v", err)
	}
	if KindOf(err) != KindModelUnavailable {
		t.Errorf("kind = %s, want %s", KindOf(err), KindModelUnavailable)
	}
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "bang") {
		t.Errorf("init errors should be preserved: %v", err)
	}
}

func TestComplete_EmptyText(t *testing.T) {
	gw, _ := NewWithBackend(emptyBackend{}, []string{"m"})
	_, err := gw.Complete(context.Background(), "hello")
	if !errors.Is(err, errEmptyResponse) {
		t.Errorf("expected empty response error, got %v", err)
	}
}

type emptyBackend struct{}

func (emptyBackend) Name() string { return "empty" }
func (emptyBackend) Open(ctx context.Context, model string) (Model, error) {
	return emptyModel{}, nil
}

type emptyModel struct{}

func (emptyModel) ID() string { return "m" }
func (emptyModel) Generate(ctx context.Context, prompt string) (*Completion, error) {
	return &Completion{}, nil
}

func TestNew_MissingCredential(t *testing.T) {
	for _, provider := range []string{"gemini", "anthropic", "openai"} {
		_, err := New(context.Background(), config.GatewayConfig{Provider: provider, Models: []string{"x"}})
		if !errors.Is(err, ErrMissingCredential) {
			t.Errorf("%s: expected ErrMissingCredential, got %v", provider, err)
		}
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.GatewayConfig{Provider: "carrier-pigeon", APIKey: "k", Models: []string{"x"}})
	if err == nil || !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestNewWithBackend_NoModels(t *testing.T) {
	if _, err := NewWithBackend(&fakeBackend{}, nil); err == nil {
		t.Error("expected error for empty model list")
	}
}

func TestNew_MockProvider(t *testing.T) {
	gw, err := New(context.Background(), config.GatewayConfig{Provider: "mock", Models: []string{"mock"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prompt := "Generate 3 multiple-choice quiz questions on the topic of 'Ocean & Marine Life' for a Beginner level student."
	c, err := gw.Complete(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasPrefix(c.Text, "```json") {
		t.Errorf("mock output should be fenced, got %q", c.Text[:20])
	}
	if got := strings.Count(c.Text, `"question"`); got != 3 {
		t.Errorf("expected 3 mock questions, got %d", got)
	}
	if !strings.Contains(c.Text, "Ocean \\u0026 Marine Life") && !strings.Contains(c.Text, "Ocean & Marine Life") {
		t.Errorf("mock output should mention the topic")
	}
}

func TestNew_MockProviderChat(t *testing.T) {
	gw, err := New(context.Background(), config.GatewayConfig{Provider: "mock", Models: []string{"mock"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c, err := gw.Complete(context.Background(), "Be helpful.\n\nStudent: How do I memorize dates?\n\nAssistant:")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if strings.Contains(c.Text, "```json") {
		t.Errorf("chat prompt should not produce a quiz: %q", c.Text)
	}
	if !strings.Contains(c.Text, "How do I memorize dates?") {
		t.Errorf("mock reply should echo the question, got %q", c.Text)
	}
}

func TestListModels_FallsBackToPreferenceList(t *testing.T) {
	gw, _ := NewWithBackend(&fakeBackend{}, []string{"model-a", "model-b"})
	names, err := gw.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if fmt.Sprint(names) != "[model-a model-b]" {
		t.Errorf("names = %v", names)
	}
}

func TestUnconfigured(t *testing.T) {
	cause := fmt.Errorf("%w for provider gemini", ErrMissingCredential)
	_, err := Unconfigured(cause).Complete(context.Background(), "hello")
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}
