package gateway

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
	verify bool
}

func newGeminiBackend(ctx context.Context, apiKey string, verify bool) (*geminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &geminiBackend{client: client, verify: verify}, nil
}

func (b *geminiBackend) Name() string { return "gemini" }

func (b *geminiBackend) Open(ctx context.Context, model string) (Model, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("empty model identifier")
	}
	if b.verify {
		if _, err := b.client.Models.Get(ctx, model, nil); err != nil {
			return nil, fmt.Errorf("verify model: %w", err)
		}
	}
	return &geminiModel{client: b.client, id: model}, nil
}

func (b *geminiBackend) ListModels(ctx context.Context) ([]string, error) {
	page, err := b.client.Models.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

type geminiModel struct {
	client *genai.Client
	id     string
}

func (m *geminiModel) ID() string { return m.id }

func (m *geminiModel) Generate(ctx context.Context, prompt string) (*Completion, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.id, genai.Text(prompt), nil)
	if err != nil {
		return nil, err
	}

	c := &Completion{Text: result.Text(), Model: m.id}
	if result.UsageMetadata != nil {
		c.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		c.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return c, nil
}
