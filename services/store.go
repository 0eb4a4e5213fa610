package services

import (
	"context"
	"time"

	"arguepulse/models"
)

// StatementStore persists statements and their vote tallies.
//
// IncrementVoteTally must apply the increment atomically on the storage side:
// totalVotes += 1 and the stance weight += weight in a single update, returning
// the statement as it is after the update. Implementations return
// ErrStatementNotFound when the id does not resolve to a statement.
type StatementStore interface {
	GetStatement(ctx context.Context, id string) (*models.Statement, error)
	GetAllStatements(ctx context.Context) ([]models.Statement, error)
	IncrementVoteTally(ctx context.Context, id, stance string, weight float64) (*models.Statement, error)
	CreateStatement(ctx context.Context, text string, quiz []models.QuizQuestion, summary *models.Summary) (*models.Statement, error)

	// FillGeneratedContent sets the quiz only while it is still empty and the
	// summary only while it is still missing. Nil or empty arguments are skipped.
	FillGeneratedContent(ctx context.Context, id string, quiz []models.QuizQuestion, summary *models.Summary) (*models.Statement, error)

	// HasRecentStatement reports whether a statement created after since
	// contains text, case-insensitively.
	HasRecentStatement(ctx context.Context, text string, since time.Time) (bool, error)
}
