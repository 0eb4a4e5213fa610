package services

import (
	"context"
	"log"
	"time"

	"arguepulse/models"
)

const (
	// RecentTopicWindow is how long a used topic stays off the generation list
	RecentTopicWindow = 7 * 24 * time.Hour

	DefaultGenerateCount = 3
	MaxGenerateCount     = 10
)

// TopicSource yields candidate statement texts, best first
type TopicSource interface {
	Topics(ctx context.Context) ([]models.DebateTopic, error)
}

// IsTopicRecent reports whether a statement containing topic was created within window
func IsTopicRecent(ctx context.Context, store StatementStore, topic string, window time.Duration) (bool, error) {
	recent, err := store.HasRecentStatement(ctx, topic, time.Now().Add(-window))
	if err != nil {
		return false, persistence("check recent topic", err)
	}
	return recent, nil
}

// CuratedTopicSource serves a fixed topic list
type CuratedTopicSource struct {
	List []models.DebateTopic
}

// NewCuratedTopicSource returns a source over DefaultDebateTopics
func NewCuratedTopicSource() *CuratedTopicSource {
	return &CuratedTopicSource{List: DefaultDebateTopics}
}

func (s *CuratedTopicSource) Topics(ctx context.Context) ([]models.DebateTopic, error) {
	topics := make([]models.DebateTopic, len(s.List))
	copy(topics, s.List)
	return topics, nil
}

// FallbackTopicSource asks Primary first and uses Fallback when it fails or is empty
type FallbackTopicSource struct {
	Primary  TopicSource
	Fallback TopicSource
}

func (s *FallbackTopicSource) Topics(ctx context.Context) ([]models.DebateTopic, error) {
	if s.Primary != nil {
		topics, err := s.Primary.Topics(ctx)
		if err == nil && len(topics) > 0 {
			return topics, nil
		}
		if err != nil {
			log.Printf("Primary topic source failed, using fallback: %v", err)
		}
	}
	return s.Fallback.Topics(ctx)
}

// DefaultDebateTopics is the curated list used when no news source is configured
var DefaultDebateTopics = []models.DebateTopic{
	{Text: "College degrees should be free for all students", Category: "education", Relevance: 1},
	{Text: "Online learning should completely replace traditional classrooms", Category: "education", Relevance: 1},
	{Text: "Universities should publish all course materials online for free", Category: "education", Relevance: 1},
	{Text: "Professors should be required to publish grading rubrics before assignments", Category: "education", Relevance: 1},
	{Text: "Campus parking should be replaced with green space and microtransit", Category: "environment", Relevance: 1},
	{Text: "Social media platforms should verify the age of every user", Category: "technology", Relevance: 1},
	{Text: "AI-generated content should always be labeled as such", Category: "technology", Relevance: 1},
	{Text: "Remote work should be a legal right for office jobs", Category: "business", Relevance: 1},
	{Text: "Cities should ban cars from their downtown cores", Category: "environment", Relevance: 1},
	{Text: "Voting should be mandatory in national elections", Category: "politics", Relevance: 1},
	{Text: "Sugary drinks should carry a health tax", Category: "health", Relevance: 1},
	{Text: "Public research should be published open access", Category: "science", Relevance: 1},
}
