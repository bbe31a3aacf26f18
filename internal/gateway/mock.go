package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/study-ai/backend/internal/models"
)

// mockBackend returns canned quizzes for local development.
type mockBackend struct{}

func newMockBackend() *mockBackend {
	return &mockBackend{}
}

func (b *mockBackend) Name() string { return "mock" }

func (b *mockBackend) Open(ctx context.Context, model string) (Model, error) {
	return &mockModel{id: model}, nil
}

type mockModel struct {
	id string
}

func (m *mockModel) ID() string { return m.id }

var (
	mockCountPattern = regexp.MustCompile(`Generate (\d+) multiple-choice`)
	mockTopicPattern = regexp.MustCompile(`on the topic of '([^']*)'`)
)

func (m *mockModel) Generate(ctx context.Context, prompt string) (*Completion, error) {
	if i := strings.LastIndex(prompt, "\n\nStudent: "); i >= 0 && !mockCountPattern.MatchString(prompt) {
		question := strings.TrimSuffix(strings.TrimSpace(prompt[i+len("\n\nStudent: "):]), "Assistant:")
		return &Completion{
			Text:         fmt.Sprintf("**📚 Mock reply**\n\nYou asked: %s\n\nConfigure an AI provider to get a real answer.", strings.TrimSpace(question)),
			Model:        m.id,
			PromptTokens: len(prompt) / 4,
			OutputTokens: 30,
		}, nil
	}

	count := 5
	if match := mockCountPattern.FindStringSubmatch(prompt); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil && n > 0 {
			count = n
		}
	}
	topic := "general knowledge"
	if match := mockTopicPattern.FindStringSubmatch(prompt); match != nil {
		topic = match[1]
	}

	return &Completion{
		Text:         "```json\n" + buildMockQuiz(topic, count) + "\n```",
		Model:        m.id,
		PromptTokens: len(prompt) / 4,
		OutputTokens: 60 * count,
	}, nil
}

func buildMockQuiz(topic string, count int) string {
	aspects := []string{
		"core definition", "historical origin", "main cause", "key benefit",
		"common misconception", "measurement method", "real-world example",
	}

	items := make([]models.RawQuizItem, count)
	for i := 0; i < count; i++ {
		aspect := aspects[i%len(aspects)]
		options := make([]string, 4)
		for j := range options {
			label := "incorrect"
			if j == i%4 {
				label = "correct"
			}
			options[j] = fmt.Sprintf("[Mock] %s statement %d about the %s of %s", label, j+1, aspect, topic)
		}
		items[i] = models.RawQuizItem{
			Question: fmt.Sprintf("[Mock %d] Which statement best describes the %s of %s?", i+1, aspect, topic),
			Options:  options,
			Answer:   options[i%4],
		}
	}

	data, _ := json.Marshal(items)
	return string(data)
}
