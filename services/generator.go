package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"arguepulse/models"

	"github.com/google/uuid"
)

// Quiz size bounds for generated quizzes
const (
	MinQuizQuestions = 2
	MaxQuizQuestions = 3
)

// Generator produces comprehension quizzes and for/against summaries
type Generator interface {
	GenerateQuiz(ctx context.Context, statementText string) ([]models.QuizQuestion, error)
	GenerateSummary(ctx context.Context, statementText string) (*models.Summary, error)
}

type rawQuizQuestion struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex *int     `json:"answerIndex"`
	// some model outputs use snake_case
	AnswerIndexSnake *int `json:"answer_index"`
}

// parseQuiz decodes {"quiz": [...]} model output and keeps at most
// MaxQuizQuestions well-formed questions.
func parseQuiz(raw string) ([]models.QuizQuestion, error) {
	var payload struct {
		Quiz []rawQuizQuestion `json:"quiz"`
	}
	if err := json.Unmarshal([]byte(cleanModelOutput(raw)), &payload); err != nil {
		return nil, fmt.Errorf("invalid quiz format: %w", err)
	}

	quiz := make([]models.QuizQuestion, 0, MaxQuizQuestions)
	for i, q := range payload.Quiz {
		if len(quiz) == MaxQuizQuestions {
			break
		}
		question := strings.TrimSpace(q.Question)
		if question == "" {
			return nil, fmt.Errorf("question %d has no text", i+1)
		}
		if len(q.Choices) < 2 {
			return nil, fmt.Errorf("question %d needs at least two choices", i+1)
		}
		answer := q.AnswerIndex
		if answer == nil {
			answer = q.AnswerIndexSnake
		}
		if answer == nil || *answer < 0 || *answer >= len(q.Choices) {
			return nil, fmt.Errorf("question %d has no valid answer index", i+1)
		}

		choices := make([]string, len(q.Choices))
		for j, c := range q.Choices {
			choices[j] = strings.TrimSpace(c)
		}
		quiz = append(quiz, models.QuizQuestion{
			ID:          uuid.NewString(),
			Question:    question,
			Choices:     choices,
			AnswerIndex: *answer,
		})
	}

	if len(quiz) < MinQuizQuestions {
		return nil, fmt.Errorf("expected %d-%d questions, got %d", MinQuizQuestions, MaxQuizQuestions, len(payload.Quiz))
	}
	return quiz, nil
}

// parseSummary decodes {"forReasons": [...], "againstReasons": [...]} model output
func parseSummary(raw string) (*models.Summary, error) {
	var payload struct {
		ForReasons          []string `json:"forReasons"`
		AgainstReasons      []string `json:"againstReasons"`
		ForReasonsSnake     []string `json:"for_reasons"`
		AgainstReasonsSnake []string `json:"against_reasons"`
	}
	if err := json.Unmarshal([]byte(cleanModelOutput(raw)), &payload); err != nil {
		return nil, fmt.Errorf("invalid summary format: %w", err)
	}

	forReasons := payload.ForReasons
	if len(forReasons) == 0 {
		forReasons = payload.ForReasonsSnake
	}
	againstReasons := payload.AgainstReasons
	if len(againstReasons) == 0 {
		againstReasons = payload.AgainstReasonsSnake
	}

	summary := &models.Summary{
		ForReasons:     compactReasons(forReasons),
		AgainstReasons: compactReasons(againstReasons),
	}
	if len(summary.ForReasons) == 0 && len(summary.AgainstReasons) == 0 {
		return nil, errors.New("summary has no reasons")
	}
	return summary, nil
}

func compactReasons(reasons []string) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		r = strings.TrimSpace(strings.TrimLeft(r, "-*• "))
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// cleanModelOutput strips the markdown fences models like to wrap JSON in
func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// EmptySummary is the placeholder stored when summary generation fails
func EmptySummary() *models.Summary {
	return &models.Summary{ForReasons: []string{}, AgainstReasons: []string{}}
}
