package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/study-ai/backend/internal/models"
)

// PrefixLimit bounds the diagnostic excerpt carried by an extraction error.
const PrefixLimit = 200

var ErrUnparseable = errors.New("model output could not be parsed as a quiz")

// Error reports a batch that neither the strict parse nor the bracket
// fallback could recover. Prefix holds at most PrefixLimit characters of
// the cleaned model text.
type Error struct {
	Prefix string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ErrUnparseable.Error()
	}
	return fmt.Sprintf("%s: %v", ErrUnparseable.Error(), e.Err)
}

func (e *Error) Is(target error) bool { return target == ErrUnparseable }

func (e *Error) Unwrap() error { return e.Err }

// Extract recovers an ordered quiz from raw model text.
//
// The cleaned text is parsed strictly first; if that fails, the substring
// between the first '[' and the last ']' is parsed strictly instead. The
// result is never truncated. Shape problems that do not prevent parsing are
// logged as warnings and the items are kept as they are.
func Extract(raw string, expectedCount int) ([]models.Question, error) {
	cleaned := StripCodeFence(raw)

	items, err := ParseStrict(cleaned)
	if err != nil {
		log.Printf("[extractor] strict parse failed, trying bracketed fallback: %v", err)
		if sub, ok := Bracketed(cleaned); ok {
			items, err = ParseStrict(sub)
		}
	}
	if err != nil {
		return nil, &Error{Prefix: truncateRunes(cleaned, PrefixLimit), Err: err}
	}

	questions := BuildQuestions(items)
	for _, w := range Inspect(questions, expectedCount) {
		log.Printf("WARNING: %s", w)
	}
	return questions, nil
}

// StripCodeFence trims whitespace and removes a leading ```json (any case)
// or bare ``` marker and a trailing ``` marker.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 7 && strings.EqualFold(s[:7], "```json") {
		s = strings.TrimSpace(s[7:])
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// ParseStrict decodes text as a non-empty JSON array of quiz items and
// validates every item against the quiz item schema.
func ParseStrict(text string) ([]models.RawQuizItem, error) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := quizSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var items []models.RawQuizItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("decode quiz items: %w", err)
	}
	return items, nil
}

// Bracketed returns the greedy substring from the first '[' to the last ']'.
func Bracketed(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// BuildQuestions marks each option correct when its text is exactly equal
// to the item's answer. No trimming or case folding is applied, so an item
// can end up with zero or several correct options. The answer text itself is
// kept on the question.
func BuildQuestions(items []models.RawQuizItem) []models.Question {
	questions := make([]models.Question, len(items))
	for i, item := range items {
		opts := make([]models.Option, len(item.Options))
		for j, text := range item.Options {
			opts[j] = models.Option{Text: text, Correct: text == item.Answer}
		}
		questions[i] = models.Question{Text: item.Question, Options: opts, Answer: item.Answer}
	}
	return questions
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
