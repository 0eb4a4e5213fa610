package servicestest

import (
	"context"
	"sync"

	"arguepulse/models"
)

// StubGenerator returns canned content or errors and records the texts it was asked about
type StubGenerator struct {
	Quiz       []models.QuizQuestion
	Summary    *models.Summary
	QuizErr    error
	SummaryErr error

	mu    sync.Mutex
	Calls []string
}

func (g *StubGenerator) GenerateQuiz(ctx context.Context, text string) ([]models.QuizQuestion, error) {
	g.record("quiz:" + text)
	if g.QuizErr != nil {
		return nil, g.QuizErr
	}
	return append([]models.QuizQuestion(nil), g.Quiz...), nil
}

func (g *StubGenerator) GenerateSummary(ctx context.Context, text string) (*models.Summary, error) {
	g.record("summary:" + text)
	if g.SummaryErr != nil {
		return nil, g.SummaryErr
	}
	if g.Summary == nil {
		return nil, nil
	}
	summary := *g.Summary
	return &summary, nil
}

// CallCount returns how many generation calls were made
func (g *StubGenerator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}

func (g *StubGenerator) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, call)
}

// TwoQuestionQuiz is a valid quiz whose correct answers are [1, 0]
func TwoQuestionQuiz() []models.QuizQuestion {
	return []models.QuizQuestion{
		{ID: "q1", Question: "What does the statement propose?", Choices: []string{"A", "B", "C", "D"}, AnswerIndex: 1},
		{ID: "q2", Question: "Which outcome aligns with it?", Choices: []string{"A", "B", "C", "D"}, AnswerIndex: 0},
	}
}

// ThreeQuestionQuiz is a valid quiz whose correct answers are [0, 1, 2]
func ThreeQuestionQuiz() []models.QuizQuestion {
	return []models.QuizQuestion{
		{ID: "q1", Question: "First?", Choices: []string{"A", "B", "C", "D"}, AnswerIndex: 0},
		{ID: "q2", Question: "Second?", Choices: []string{"A", "B", "C", "D"}, AnswerIndex: 1},
		{ID: "q3", Question: "Third?", Choices: []string{"A", "B", "C", "D"}, AnswerIndex: 2},
	}
}
