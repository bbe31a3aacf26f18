package quiz

import (
	"fmt"
	"strings"
)

var levelGuidance = map[string]string{
	"beginner":     "Focus on basic definitions and widely known facts; avoid trick questions.",
	"intermediate": "Mix factual recall with questions that require applying a concept to a short scenario.",
	"advanced":     "Prefer questions that require analysis, comparison, or multi-step reasoning; distractors should be plausible.",
}

const quizPromptTemplate = `Generate %d multiple-choice quiz questions on the topic of '%s' for a %s level student. Each question should have 4 options and indicate the correct answer.
%s
IMPORTANT:
- The answer should be the exact text of the correct option, not just A, B, C, or D.
- Return ONLY the JSON array, no additional text or explanations.
- Ensure the response is valid JSON format.

Format as JSON: [{"question": "question text", "options": ["option A text", "option B text", "option C text", "option D text"], "answer": "exact text of correct option"}]`

// BuildPrompt returns the single prompt sent for a quiz request. The same
// inputs always produce the same prompt.
func BuildPrompt(topic, level string, count int) string {
	guidance := ""
	if g, ok := levelGuidance[strings.ToLower(level)]; ok {
		guidance = "\n" + g + "\n"
	}
	return fmt.Sprintf(quizPromptTemplate, count, topic, level, guidance)
}
