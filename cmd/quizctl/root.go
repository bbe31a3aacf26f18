package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/study-ai/backend/internal/config"
	"github.com/study-ai/backend/internal/gateway"
	"github.com/study-ai/backend/internal/quiz"
)

var rootCmd = &cobra.Command{
	Use:          "quizctl",
	Short:        "Generate and play AI quizzes from the terminal",
	Long:         "quizctl generates multiple-choice quizzes through the configured AI provider (QUIZ_LLM_PROVIDER) and runs timed quiz sessions.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(playCmd)
}

// newQuizService builds the quiz service from the environment.
func newQuizService(ctx context.Context) (*quiz.Service, error) {
	cfg := config.FromEnv()
	gw, err := gateway.New(ctx, cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("AI provider %q not configured: %w", cfg.Gateway.Provider, err)
	}
	return quiz.NewService(gw, cfg.Quiz.MaxCount), nil
}
