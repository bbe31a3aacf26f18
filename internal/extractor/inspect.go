package extractor

import (
	"fmt"
	"strings"

	"github.com/study-ai/backend/internal/models"
)

// ExpectedOptions is how many options the prompt asks for.
const ExpectedOptions = 4

const overlapThreshold = 0.60

// Inspect returns human-readable warnings about a parsed quiz. Nothing it
// reports causes a question to be dropped.
func Inspect(questions []models.Question, expectedCount int) []string {
	var warnings []string

	if expectedCount > 0 && len(questions) < expectedCount {
		warnings = append(warnings, fmt.Sprintf("model returned %d questions, %d requested", len(questions), expectedCount))
	}

	for i, q := range questions {
		qNum := i + 1
		if len(q.Options) != ExpectedOptions {
			warnings = append(warnings, fmt.Sprintf("question %d: expected %d options, got %d", qNum, ExpectedOptions, len(q.Options)))
		}
		switch n := q.CorrectCount(); {
		case n == 0:
			warnings = append(warnings, fmt.Sprintf("question %d: answer matches no option exactly", qNum))
		case n > 1:
			warnings = append(warnings, fmt.Sprintf("question %d: answer matches %d options", qNum, n))
		}
	}

	return append(warnings, topicOverlap(questions)...)
}

// topicOverlap flags question pairs whose keyword sets are too similar.
func topicOverlap(questions []models.Question) []string {
	if len(questions) < 2 {
		return nil
	}

	tokenSets := make([]map[string]bool, len(questions))
	for i, q := range questions {
		tokenSets[i] = tokenize(q.Text)
	}

	var warnings []string
	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			overlap := jaccardSimilarity(tokenSets[i], tokenSets[j])
			if overlap > overlapThreshold {
				warnings = append(warnings, fmt.Sprintf("questions %d and %d have %.0f%% keyword overlap", i+1, j+1, overlap*100))
			}
		}
	}
	return warnings
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,;:?!\"'()")
		// Skip articles and short prepositions
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
