package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScoreTopics(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	articles := []newsArticle{
		{Title: "Schools weigh four-day week", URL: "https://a.example/1", PublishedAt: now.Add(-2 * time.Hour), category: "education"},
		{Title: "Schools weigh four-day week!", URL: "https://b.example/1", PublishedAt: now.Add(-6 * time.Hour), category: "education"},
		{Title: "Old budget story", URL: "https://c.example/1", PublishedAt: now.Add(-72 * time.Hour), category: "business"},
		{Title: "   ", PublishedAt: now},
	}

	topics := scoreTopics(articles, now)
	if len(topics) != 2 {
		t.Fatalf("Expected 2 topics, got %d", len(topics))
	}
	if topics[0].Text != "Schools weigh four-day week" || topics[0].Sources != 2 {
		t.Errorf("Expected grouped headline first, got %+v", topics[0])
	}
	if topics[0].Category != "education" {
		t.Errorf("Expected education category, got %q", topics[0].Category)
	}
	if topics[0].Relevance <= topics[1].Relevance {
		t.Errorf("Expected descending relevance, got %v then %v", topics[0].Relevance, topics[1].Relevance)
	}
	if topics[1].Relevance <= 0 || topics[1].Relevance >= 1 {
		t.Errorf("Relevance out of range: %v", topics[1].Relevance)
	}
}

func TestScoreTopicsCapsResults(t *testing.T) {
	now := time.Now()
	var articles []newsArticle
	for i := 0; i < 25; i++ {
		articles = append(articles, newsArticle{
			Title:       "Headline " + string(rune('A'+i)),
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	if topics := scoreTopics(articles, now); len(topics) != maxTrendingTopics {
		t.Errorf("Expected %d topics, got %d", maxTrendingTopics, len(topics))
	}
}

func TestNewsTopicSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v2/top-headlines" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		category := r.URL.Query().Get("category")
		if category == "science" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"articles": []map[string]interface{}{
				{"title": "Debate over " + category, "url": "https://news.example/" + category, "publishedAt": time.Now().Format(time.RFC3339)},
			},
		})
	}))
	defer server.Close()

	source := NewNewsTopicSource("test-key", server.URL+"/")
	source.Categories = []string{"education", "science", "technology"}

	topics, err := source.Topics(context.Background())
	if err != nil {
		t.Fatalf("Topics failed: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("Expected 2 topics, got %+v", topics)
	}
	for _, topic := range topics {
		if topic.Category == "science" {
			t.Errorf("Failed category leaked into topics: %+v", topic)
		}
		if topic.Text != "Debate over "+topic.Category {
			t.Errorf("Topic text does not match category: %+v", topic)
		}
	}
}

func TestNewsTopicSourceAllFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := NewNewsTopicSource("test-key", server.URL)
	if _, err := source.Topics(context.Background()); err == nil {
		t.Error("Expected error when every category fails")
	}

	if _, err := NewNewsTopicSource("", server.URL).Topics(context.Background()); err == nil {
		t.Error("Expected error without api key")
	}
}
