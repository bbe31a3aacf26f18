package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/study-ai/backend/internal/models"
	"github.com/study-ai/backend/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		level, _ := cmd.Flags().GetString("level")
		count, _ := cmd.Flags().GetInt("count")

		svc, err := newQuizService(cmd.Context())
		if err != nil {
			return err
		}

		questions, err := svc.GenerateQuiz(cmd.Context(), quiz.Request{Topic: topic, Level: level, Count: count})
		if err != nil {
			return err
		}

		resp := models.GenerateQuizResponse{Quiz: make([]models.RawQuizItem, len(questions))}
		for i, q := range questions {
			resp.Quiz[i] = q.Raw()
		}
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode quiz: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	generateCmd.Flags().String("topic", "", "Quiz topic (required)")
	generateCmd.Flags().String("level", "Beginner", "Difficulty: Beginner, Intermediate or Advanced")
	generateCmd.Flags().Int("count", quiz.DefaultCount, "Number of questions")
	generateCmd.MarkFlagRequired("topic")
}
