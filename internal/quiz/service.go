package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/study-ai/backend/internal/extractor"
	"github.com/study-ai/backend/internal/gateway"
	"github.com/study-ai/backend/internal/models"
)

const DefaultCount = 5

type Request struct {
	Topic string
	Level string
	Count int // zero means DefaultCount
}

type Service struct {
	gateway  gateway.Completer
	maxCount int
}

func NewService(gw gateway.Completer, maxCount int) *Service {
	return &Service{gateway: gw, maxCount: maxCount}
}

// GenerateQuiz makes exactly one model call and returns at most req.Count
// questions. Every failure comes back as a *Error.
func (s *Service) GenerateQuiz(ctx context.Context, req Request) ([]models.Question, error) {
	req, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req.Topic, req.Level, req.Count)
	log.Printf("[quiz] requesting %d %s questions on %q", req.Count, req.Level, req.Topic)

	completion, err := s.gateway.Complete(ctx, prompt)
	if err != nil {
		qErr := classify(err)
		log.Printf("[quiz] generation failed (%s): %v", qErr.Kind, err)
		return nil, qErr
	}

	questions, err := extractor.Extract(completion.Text, req.Count)
	if err != nil {
		qErr := classify(err)
		log.Printf("[quiz] extraction failed from %s: %v", completion.Model, err)
		return nil, qErr
	}

	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}
	log.Printf("[quiz] generated %d questions with %s", len(questions), completion.Model)
	return questions, nil
}

func (s *Service) validate(req Request) (Request, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	req.Level = strings.TrimSpace(req.Level)

	if req.Topic == "" || req.Level == "" {
		return req, invalidRequest("Topic and level are required.")
	}
	if req.Count == 0 {
		req.Count = DefaultCount
	}
	if req.Count < 1 {
		return req, invalidRequest("Count must be at least 1.")
	}
	if s.maxCount > 0 && req.Count > s.maxCount {
		return req, invalidRequest(fmt.Sprintf("Count must be at most %d.", s.maxCount))
	}
	return req, nil
}
