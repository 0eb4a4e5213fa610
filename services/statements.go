package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"arguepulse/models"
)

// MaxStatementLength bounds statement text in runes
const MaxStatementLength = 500

// StatementService creates, reads and ranks statements
type StatementService struct {
	store     StatementStore
	generator Generator
}

// NewStatementService creates a StatementService. Without a generator new
// statements are stored with an empty quiz and summary.
func NewStatementService(store StatementStore, generator Generator) *StatementService {
	return &StatementService{store: store, generator: generator}
}

// GetStatement returns one statement with its balance score
func (s *StatementService) GetStatement(ctx context.Context, id string) (*models.Statement, error) {
	st, err := s.store.GetStatement(ctx, id)
	if err != nil {
		return nil, persistence("load statement", err)
	}
	withBalance := WithBalance(*st)
	return &withBalance, nil
}

// ListLanes ranks every stored statement into the display lanes
func (s *StatementService) ListLanes(ctx context.Context) (models.Lanes, error) {
	statements, err := s.store.GetAllStatements(ctx)
	if err != nil {
		return models.Lanes{}, persistence("list statements", err)
	}
	return RankLanes(statements), nil
}

// CreateStatement stores a new statement. Quiz and summary generation are best
// effort: failures are logged and the statement is stored with empty content.
func (s *StatementService) CreateStatement(ctx context.Context, text string) (*models.Statement, error) {
	text, err := normalizeStatementText(text)
	if err != nil {
		return nil, err
	}

	quiz, summary, genErr := s.generateContent(ctx, text)
	if genErr != nil {
		log.Printf("Content generation degraded for statement %q: %v", text, genErr)
	}
	if quiz == nil {
		quiz = []models.QuizQuestion{}
	}
	if summary == nil {
		summary = EmptySummary()
	}

	st, err := s.store.CreateStatement(ctx, text, quiz, summary)
	if err != nil {
		return nil, persistence("create statement", err)
	}
	withBalance := WithBalance(*st)
	return &withBalance, nil
}

// FillMissingContent generates the quiz and summary of a statement whose
// generation failed at creation. Content that already exists is left alone.
//
// Whatever part generates successfully is stored even when the other part
// fails. In that case the updated statement is returned together with the
// generation error; the statement is nil only when nothing was stored.
func (s *StatementService) FillMissingContent(ctx context.Context, id string) (*models.Statement, error) {
	st, err := s.store.GetStatement(ctx, id)
	if err != nil {
		return nil, persistence("load statement", err)
	}

	needQuiz := len(st.Quiz) == 0
	needSummary := summaryMissing(st.Summary)
	if !needQuiz && !needSummary {
		withBalance := WithBalance(*st)
		return &withBalance, nil
	}
	if s.generator == nil {
		return nil, &GenerationError{Op: "fill content", Err: errors.New("no generator configured")}
	}

	var (
		quiz                []models.QuizQuestion
		summary             *models.Summary
		quizErr, summaryErr error
	)
	if needQuiz {
		quiz, quizErr = s.generator.GenerateQuiz(ctx, st.Text)
	}
	if needSummary {
		summary, summaryErr = s.generator.GenerateSummary(ctx, st.Text)
	}
	genErr := errors.Join(quizErr, summaryErr)
	if len(quiz) == 0 && summaryMissing(summary) {
		if genErr == nil {
			genErr = &GenerationError{Op: "fill content", Err: errors.New("no content generated")}
		}
		return nil, genErr
	}

	updated, err := s.store.FillGeneratedContent(ctx, id, quiz, summary)
	if err != nil {
		return nil, persistence("fill content", err)
	}
	withBalance := WithBalance(*updated)
	return &withBalance, genErr
}

// generateContent runs quiz and summary generation in parallel. Whatever
// succeeded is returned alongside the joined errors.
func (s *StatementService) generateContent(ctx context.Context, text string) ([]models.QuizQuestion, *models.Summary, error) {
	if s.generator == nil {
		return nil, nil, &GenerationError{Op: "generate content", Err: errors.New("no generator configured")}
	}

	var (
		wg                  sync.WaitGroup
		quiz                []models.QuizQuestion
		summary             *models.Summary
		quizErr, summaryErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quiz, quizErr = s.generator.GenerateQuiz(ctx, text)
	}()
	go func() {
		defer wg.Done()
		summary, summaryErr = s.generator.GenerateSummary(ctx, text)
	}()
	wg.Wait()

	return quiz, summary, errors.Join(quizErr, summaryErr)
}

// GenerateFromTopics turns up to count fresh topics into statements. Topics
// used within RecentTopicWindow are skipped. Unlike CreateStatement a topic
// whose quiz cannot be generated is reported as an error instead of stored,
// so a batch never fills the lanes with statements nobody can vote on.
func (s *StatementService) GenerateFromTopics(ctx context.Context, source TopicSource, count int) (models.GenerationReport, error) {
	if count <= 0 {
		count = DefaultGenerateCount
	}
	if count > MaxGenerateCount {
		return models.GenerationReport{}, invalid("count must be at most %d", MaxGenerateCount)
	}
	if s.generator == nil {
		return models.GenerationReport{}, &GenerationError{Op: "generate statements", Err: errors.New("no generator configured")}
	}

	topics, err := source.Topics(ctx)
	if err != nil {
		return models.GenerationReport{}, &GenerationError{Op: "fetch topics", Err: err}
	}

	report := models.GenerationReport{Statements: []models.GeneratedStatement{}}
	for _, topic := range topics {
		if len(report.Statements) >= count {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		text, err := normalizeStatementText(topic.Text)
		if err != nil {
			report.Errors = append(report.Errors, models.TopicError{Topic: topic.Text, Error: err.Error()})
			continue
		}

		recent, err := IsTopicRecent(ctx, s.store, text, RecentTopicWindow)
		if err != nil {
			report.Errors = append(report.Errors, models.TopicError{Topic: text, Error: err.Error()})
			continue
		}
		if recent {
			continue
		}

		quiz, summary, genErr := s.generateContent(ctx, text)
		if len(quiz) == 0 {
			if genErr == nil {
				genErr = errors.New("no quiz questions generated")
			}
			log.Printf("Error processing topic %q: %v", text, genErr)
			report.Errors = append(report.Errors, models.TopicError{Topic: text, Error: genErr.Error()})
			continue
		}
		if summary == nil {
			log.Printf("Summary generation degraded for topic %q: %v", text, genErr)
			summary = EmptySummary()
		}

		st, err := s.store.CreateStatement(ctx, text, quiz, summary)
		if err != nil {
			log.Printf("Error storing topic %q: %v", text, err)
			report.Errors = append(report.Errors, models.TopicError{Topic: text, Error: "failed to store statement"})
			continue
		}
		report.Statements = append(report.Statements, models.GeneratedStatement{
			Statement: WithBalance(*st),
			Topic:     topic.Text,
			Category:  topic.Category,
		})
	}

	report.Generated = len(report.Statements)
	return report, nil
}

func summaryMissing(summary *models.Summary) bool {
	return summary == nil || (len(summary.ForReasons) == 0 && len(summary.AgainstReasons) == 0)
}

func normalizeStatementText(text string) (string, error) {
	text = CleanStatementText(text)
	if text == "" {
		return "", invalid("invalid statement text")
	}
	if utf8.RuneCountInString(text) > MaxStatementLength {
		return "", invalid("statement text must be at most %d characters", MaxStatementLength)
	}
	return text, nil
}

// CleanStatementText trims whitespace and the quote characters models and
// headlines tend to wrap statements in.
func CleanStatementText(text string) string {
	text = strings.TrimSpace(text)
	for {
		trimmed := strings.TrimSpace(strings.Trim(text, `"'“”‘’`))
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}
