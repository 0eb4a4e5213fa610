package services

import (
	"context"
	"errors"
	"log"
	"time"

	"arguepulse/models"
)

// Vote weights. Only meaningful comprehension counts: a partial score is worth
// half a vote and guessing everything wrong is worth nothing.
const (
	FullWeight    = 1.0
	PartialWeight = 0.5
	NoWeight      = 0.0
)

// VoteLimiter throttles repeated votes on one statement from one client.
// Reserve must check and count the vote in one atomic step; Release returns
// a reservation whose vote could not be applied.
type VoteLimiter interface {
	Reserve(ctx context.Context, statementID, clientKey string) (bool, error)
	Release(ctx context.Context, statementID, clientKey string) error
}

// TallyPublisher receives the fresh tallies after every applied vote
type TallyPublisher interface {
	PublishTally(event models.TallyEvent)
}

// ErrVoteLimited is returned when a client exceeded its vote allowance
var ErrVoteLimited = errors.New("too many votes on this statement, try again later")

// ScoreVote grades the answers against the quiz and returns the vote weight
// together with the number of correct answers.
func ScoreVote(quiz []models.QuizQuestion, answers []int) (float64, int, error) {
	if len(quiz) == 0 || len(answers) != len(quiz) {
		return NoWeight, 0, invalid("missing answers or quiz")
	}

	correct := 0
	for i, q := range quiz {
		if answers[i] == q.AnswerIndex {
			correct++
		}
	}

	switch {
	case correct == len(quiz):
		return FullWeight, correct, nil
	case correct > 0:
		return PartialWeight, correct, nil
	default:
		return NoWeight, correct, nil
	}
}

// VoteService scores vote submissions and applies them to the stored tallies
type VoteService struct {
	store     StatementStore
	limiter   VoteLimiter
	publisher TallyPublisher
}

// NewVoteService creates a VoteService. limiter and publisher may be nil.
func NewVoteService(store StatementStore, limiter VoteLimiter, publisher TallyPublisher) *VoteService {
	return &VoteService{
		store:     store,
		limiter:   limiter,
		publisher: publisher,
	}
}

// SubmitVote validates and scores a vote, then applies it atomically.
// clientKey identifies the caller for rate limiting and may be empty.
func (s *VoteService) SubmitVote(ctx context.Context, payload models.VotePayload, clientKey string) (models.VoteResult, error) {
	if payload.StatementID == "" {
		return models.VoteResult{}, invalid("statementId is required")
	}
	if payload.Stance != models.StanceAgree && payload.Stance != models.StanceDisagree {
		return models.VoteResult{}, invalid("stance must be %q or %q", models.StanceAgree, models.StanceDisagree)
	}

	st, err := s.store.GetStatement(ctx, payload.StatementID)
	if err != nil {
		return models.VoteResult{}, persistence("load statement", err)
	}

	weight, correct, err := ScoreVote(st.Quiz, payload.Answers)
	if err != nil {
		return models.VoteResult{}, err
	}

	reserved := false
	if s.limiter != nil && clientKey != "" {
		allowed, err := s.limiter.Reserve(ctx, payload.StatementID, clientKey)
		if err != nil {
			// The limiter is best effort; an unavailable backend never blocks voting
			log.Printf("Vote limiter unavailable: %v", err)
		} else if !allowed {
			return models.VoteResult{}, ErrVoteLimited
		} else {
			reserved = true
		}
	}

	updated, err := s.ApplyVote(ctx, payload.StatementID, payload.Stance, weight)
	if err != nil {
		if reserved {
			if releaseErr := s.limiter.Release(ctx, payload.StatementID, clientKey); releaseErr != nil {
				log.Printf("Failed to release vote reservation: %v", releaseErr)
			}
		}
		return models.VoteResult{}, err
	}

	return models.VoteResult{
		WeightAwarded:  weight,
		CorrectCount:   correct,
		TotalQuestions: len(st.Quiz),
		Tallies:        models.TalliesOf(*updated),
	}, nil
}

// ApplyVote adds one raw vote and weight to the stance total and returns the
// updated statement. The increment happens in the store in a single operation.
func (s *VoteService) ApplyVote(ctx context.Context, statementID, stance string, weight float64) (*models.Statement, error) {
	updated, err := s.store.IncrementVoteTally(ctx, statementID, stance, weight)
	if err != nil {
		return nil, persistence("apply vote", err)
	}

	if s.publisher != nil {
		s.publisher.PublishTally(models.TallyEvent{
			Type:         "tally",
			StatementID:  updated.ID.Hex(),
			Agree:        updated.AgreeWeight,
			Disagree:     updated.DisagreeWeight,
			RawVotes:     updated.TotalVotes,
			BalanceScore: ComputeBalance(updated.AgreeWeight, updated.DisagreeWeight),
			Timestamp:    time.Now(),
		})
	}
	return updated, nil
}
