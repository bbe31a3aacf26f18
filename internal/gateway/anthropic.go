package gateway

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

type anthropicBackend struct {
	client *anthropic.Client
}

func newAnthropicBackend(apiKey string) *anthropicBackend {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &anthropicBackend{client: &client}
}

func (b *anthropicBackend) Name() string { return "anthropic" }

func (b *anthropicBackend) Open(ctx context.Context, model string) (Model, error) {
	if model == "" {
		return nil, fmt.Errorf("empty model identifier")
	}
	return &anthropicModel{client: b.client, id: model}, nil
}

type anthropicModel struct {
	client *anthropic.Client
	id     string
}

func (m *anthropicModel) ID() string { return m.id }

func (m *anthropicModel) Generate(ctx context.Context, prompt string) (*Completion, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.id),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.7),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	return &Completion{
		Text:         responseText,
		Model:        m.id,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}
