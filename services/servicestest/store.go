// Package servicestest provides in-memory fakes of the services dependencies
// for tests.
package servicestest

import (
	"context"
	"strings"
	"sync"
	"time"

	"arguepulse/models"
	"arguepulse/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is a mutex-guarded services.StatementStore
type MemoryStore struct {
	mu         sync.Mutex
	statements map[string]*models.Statement
	order      []string

	// FailWrites makes every write return this error when set
	FailWrites error
	// IncrementCalls counts IncrementVoteTally invocations
	IncrementCalls int
}

// NewMemoryStore returns a store holding statements
func NewMemoryStore(statements ...models.Statement) *MemoryStore {
	s := &MemoryStore{statements: make(map[string]*models.Statement)}
	for _, st := range statements {
		s.put(st)
	}
	return s
}

func (s *MemoryStore) put(st models.Statement) models.Statement {
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	s.statements[st.ID.Hex()] = &st
	s.order = append(s.order, st.ID.Hex())
	return st
}

func (s *MemoryStore) GetStatement(ctx context.Context, id string) (*models.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.statements[id]
	if !ok {
		return nil, services.ErrStatementNotFound
	}
	clone := cloneStatement(*st)
	return &clone, nil
}

func (s *MemoryStore) GetAllStatements(ctx context.Context) ([]models.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	statements := make([]models.Statement, 0, len(s.order))
	for _, id := range s.order {
		statements = append(statements, cloneStatement(*s.statements[id]))
	}
	return statements, nil
}

func (s *MemoryStore) IncrementVoteTally(ctx context.Context, id, stance string, weight float64) (*models.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.IncrementCalls++
	if s.FailWrites != nil {
		return nil, s.FailWrites
	}
	st, ok := s.statements[id]
	if !ok {
		return nil, services.ErrStatementNotFound
	}
	st.TotalVotes++
	if stance == models.StanceAgree {
		st.AgreeWeight += weight
	} else {
		st.DisagreeWeight += weight
	}
	clone := cloneStatement(*st)
	return &clone, nil
}

func (s *MemoryStore) CreateStatement(ctx context.Context, text string, quiz []models.QuizQuestion, summary *models.Summary) (*models.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return nil, s.FailWrites
	}
	if quiz == nil {
		quiz = []models.QuizQuestion{}
	}
	st := s.put(models.Statement{Text: text, Quiz: quiz, Summary: summary})
	clone := cloneStatement(st)
	return &clone, nil
}

func (s *MemoryStore) FillGeneratedContent(ctx context.Context, id string, quiz []models.QuizQuestion, summary *models.Summary) (*models.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return nil, s.FailWrites
	}
	st, ok := s.statements[id]
	if !ok {
		return nil, services.ErrStatementNotFound
	}
	if len(quiz) > 0 && len(st.Quiz) == 0 {
		st.Quiz = quiz
	}
	if summary != nil && (st.Summary == nil || (len(st.Summary.ForReasons) == 0 && len(st.Summary.AgainstReasons) == 0)) {
		st.Summary = summary
	}
	clone := cloneStatement(*st)
	return &clone, nil
}

func (s *MemoryStore) HasRecentStatement(ctx context.Context, text string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(text)
	for _, st := range s.statements {
		if st.CreatedAt.After(since) && strings.Contains(strings.ToLower(st.Text), needle) {
			return true, nil
		}
	}
	return false, nil
}

// CountStatements and InsertStatements let the store stand in for seeding
func (s *MemoryStore) CountStatements(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.statements)), nil
}

func (s *MemoryStore) InsertStatements(ctx context.Context, statements []models.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}
	for _, st := range statements {
		s.put(st)
	}
	return nil
}

func cloneStatement(st models.Statement) models.Statement {
	if st.Quiz != nil {
		st.Quiz = append([]models.QuizQuestion{}, st.Quiz...)
	}
	if st.Summary != nil {
		summary := *st.Summary
		st.Summary = &summary
	}
	return st
}
