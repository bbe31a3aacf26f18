package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/study-ai/backend/internal/gateway"
)

// MaxMessageLength bounds a single student message, in runes.
const MaxMessageLength = 4000

var ErrEmptyMessage = errors.New("message is required")

const systemPrompt = `You are a helpful AI study assistant. You help students with:
- Explaining difficult concepts in simple terms
- Providing study tips and techniques
- Answering academic questions
- Giving advice on exam preparation
- Explaining topics from various subjects

FORMATTING:
- Structure responses in clear, well-spaced paragraphs separated by blank lines
- Use **bold text** for headings and important points
- Use bullet points for lists and numbered lists for step-by-step instructions
- Add a few relevant emojis (📚 study, 🎯 goals, 💡 tips, ⏰ time management, 🧠 memory, 🚀 motivation)
- Keep responses conversational, encouraging, and practical

LENGTH:
- Simple questions: 2-3 short paragraphs
- Complex topics or "how to" questions: a detailed, step-by-step explanation
- "What is" questions: a clear definition followed by an example`

// BuildPrompt wraps a student message in the assistant instructions.
func BuildPrompt(message string) string {
	return fmt.Sprintf("%s\n\nStudent: %s\n\nAssistant:", systemPrompt, message)
}

// Service answers free-form study questions through the model gateway.
type Service struct {
	gateway gateway.Completer
}

func NewService(gw gateway.Completer) *Service {
	return &Service{gateway: gw}
}

// Reply returns the assistant's answer to message.
func (s *Service) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if runes := []rune(message); len(runes) > MaxMessageLength {
		message = string(runes[:MaxMessageLength])
	}

	completion, err := s.gateway.Complete(ctx, BuildPrompt(message))
	if err != nil {
		return "", fmt.Errorf("assistant completion: %w", err)
	}
	log.Printf("[assistant] reply from %s (%d prompt / %d output tokens)", completion.Model, completion.PromptTokens, completion.OutputTokens)

	return strings.TrimSpace(completion.Text), nil
}
