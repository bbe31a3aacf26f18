package gateway

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openAIBackend also serves OpenAI-compatible APIs through BaseURL.
type openAIBackend struct {
	client *openai.Client
	verify bool
}

func newOpenAIBackend(apiKey, baseURL string, verify bool) *openAIBackend {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &openAIBackend{client: openai.NewClientWithConfig(config), verify: verify}
}

func (b *openAIBackend) Name() string { return "openai" }

func (b *openAIBackend) Open(ctx context.Context, model string) (Model, error) {
	if model == "" {
		return nil, fmt.Errorf("empty model identifier")
	}
	if b.verify {
		if _, err := b.client.GetModel(ctx, model); err != nil {
			return nil, fmt.Errorf("verify model: %w", err)
		}
	}
	return &openAIModel{client: b.client, id: model}, nil
}

func (b *openAIBackend) ListModels(ctx context.Context) ([]string, error) {
	list, err := b.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

type openAIModel struct {
	client *openai.Client
	id     string
}

func (m *openAIModel) ID() string { return m.id }

func (m *openAIModel) Generate(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.id,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenAI response")
	}

	return &Completion{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
