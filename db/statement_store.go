package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"arguepulse/models"
	"arguepulse/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatementsCollection holds one document per statement, quiz and summary embedded
const StatementsCollection = "statements"

// StatementStore is the MongoDB implementation of services.StatementStore
type StatementStore struct {
	collection *mongo.Collection
}

// NewStatementStore creates a store over the statements collection of database
func NewStatementStore(database *mongo.Database) *StatementStore {
	return &StatementStore{collection: database.Collection(StatementsCollection)}
}

// EnsureIndexes creates the indexes used by lane and recency queries
func (s *StatementStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "totalVotes", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create statement indexes: %w", err)
	}
	return nil
}

// GetStatement finds a statement by its hex id
func (s *StatementStore) GetStatement(ctx context.Context, id string) (*models.Statement, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, services.ErrStatementNotFound
	}

	var st models.Statement
	err = s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrStatementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find statement: %w", err)
	}
	return &st, nil
}

// GetAllStatements returns every statement, newest first
func (s *StatementStore) GetAllStatements(ctx context.Context) ([]models.Statement, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements: %w", err)
	}
	defer cursor.Close(ctx)

	statements := []models.Statement{}
	if err := cursor.All(ctx, &statements); err != nil {
		return nil, fmt.Errorf("failed to decode statements: %w", err)
	}
	return statements, nil
}

// IncrementVoteTally applies one vote with a single $inc so concurrent votes
// never overwrite each other, and returns the document after the update.
func (s *StatementStore) IncrementVoteTally(ctx context.Context, id, stance string, weight float64) (*models.Statement, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, services.ErrStatementNotFound
	}

	weightField := "disagreeWeight"
	if stance == models.StanceAgree {
		weightField = "agreeWeight"
	}
	update := bson.M{"$inc": bson.M{
		"totalVotes": int64(1),
		weightField:  weight,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var st models.Statement
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrStatementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment vote tally: %w", err)
	}
	return &st, nil
}

// CreateStatement inserts a statement with zero tallies
func (s *StatementStore) CreateStatement(ctx context.Context, text string, quiz []models.QuizQuestion, summary *models.Summary) (*models.Statement, error) {
	if quiz == nil {
		quiz = []models.QuizQuestion{}
	}
	st := models.Statement{
		ID:        primitive.NewObjectID(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Quiz:      quiz,
		Summary:   summary,
	}
	if _, err := s.collection.InsertOne(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to insert statement: %w", err)
	}
	return &st, nil
}

// InsertStatements stores fully populated statements, tallies included. Used for seeding.
func (s *StatementStore) InsertStatements(ctx context.Context, statements []models.Statement) error {
	documents := make([]interface{}, 0, len(statements))
	for _, st := range statements {
		if st.ID.IsZero() {
			st.ID = primitive.NewObjectID()
		}
		documents = append(documents, st)
	}
	if len(documents) == 0 {
		return nil
	}
	if _, err := s.collection.InsertMany(ctx, documents); err != nil {
		return fmt.Errorf("failed to insert statements: %w", err)
	}
	return nil
}

// CountStatements returns the number of stored statements
func (s *StatementStore) CountStatements(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{})
}

// FillGeneratedContent writes generated content only where it is still
// missing; the filters make a concurrent fill a no-op instead of an overwrite.
func (s *StatementStore) FillGeneratedContent(ctx context.Context, id string, quiz []models.QuizQuestion, summary *models.Summary) (*models.Statement, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, services.ErrStatementNotFound
	}

	if len(quiz) > 0 {
		filter := bson.M{
			"_id": objectID,
			"$or": []bson.M{
				{"quiz": bson.M{"$size": 0}},
				{"quiz": nil},
			},
		}
		if _, err := s.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"quiz": quiz}}); err != nil {
			return nil, fmt.Errorf("failed to set quiz: %w", err)
		}
	}

	if summary != nil {
		filter := bson.M{
			"_id": objectID,
			"$or": []bson.M{
				{"summary": nil},
				{
					"summary.forReasons":     bson.M{"$size": 0},
					"summary.againstReasons": bson.M{"$size": 0},
				},
			},
		}
		if _, err := s.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"summary": summary}}); err != nil {
			return nil, fmt.Errorf("failed to set summary: %w", err)
		}
	}

	return s.GetStatement(ctx, id)
}

// HasRecentStatement reports whether a statement created after since contains text
func (s *StatementStore) HasRecentStatement(ctx context.Context, text string, since time.Time) (bool, error) {
	filter := bson.M{
		"createdAt": bson.M{"$gt": since},
		"text": primitive.Regex{
			Pattern: regexp.QuoteMeta(text),
			Options: "i",
		},
	}
	count, err := s.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check recent statements: %w", err)
	}
	return count > 0, nil
}
