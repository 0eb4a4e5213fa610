package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"arguepulse/models"
)

const (
	defaultNewsAPIURL = "https://newsapi.org"
	newsPageSize      = 10
	maxTrendingTopics = 10
)

// NewsCategories are the headline categories likely to yield debate topics
var NewsCategories = []string{
	"education",
	"technology",
	"science",
	"politics",
	"business",
	"health",
	"environment",
}

// NewsTopicSource ranks current headlines from NewsAPI as debate topics
type NewsTopicSource struct {
	APIKey     string
	BaseURL    string
	Categories []string
	Client     *http.Client
}

// NewNewsTopicSource creates a NewsAPI backed topic source
func NewNewsTopicSource(apiKey, baseURL string) *NewsTopicSource {
	if baseURL == "" {
		baseURL = defaultNewsAPIURL
	}
	return &NewsTopicSource{
		APIKey:     apiKey,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Categories: NewsCategories,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type newsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	category    string
}

type headlinesResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []newsArticle `json:"articles"`
}

// Topics fetches every category in parallel and returns the most relevant headlines
func (s *NewsTopicSource) Topics(ctx context.Context) ([]models.DebateTopic, error) {
	if s.APIKey == "" {
		return nil, errors.New("news api key is required")
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		articles []newsArticle
		failures int
	)
	for _, category := range s.Categories {
		wg.Add(1)
		go func(category string) {
			defer wg.Done()
			batch, err := s.fetchHeadlines(ctx, category)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("Error fetching %s headlines: %v", category, err)
				failures++
				return
			}
			articles = append(articles, batch...)
		}(category)
	}
	wg.Wait()

	if failures == len(s.Categories) && failures > 0 {
		return nil, errors.New("all headline requests failed")
	}
	// goroutines finish in any order
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].category < articles[j].category
	})
	return scoreTopics(articles, time.Now()), nil
}

func (s *NewsTopicSource) fetchHeadlines(ctx context.Context, category string) ([]newsArticle, error) {
	query := url.Values{}
	query.Set("category", category)
	query.Set("language", "en")
	query.Set("country", "us")
	query.Set("pageSize", fmt.Sprint(newsPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/v2/top-headlines?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var data headlinesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if data.Status != "" && data.Status != "ok" {
		return nil, fmt.Errorf("API error: %s", data.Message)
	}

	for i := range data.Articles {
		data.Articles[i].category = category
	}
	return data.Articles, nil
}

var nonWordChars = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

type topicGroup struct {
	title    string
	category string
	count    int
	oldest   time.Time
	urls     map[string]struct{}
}

// scoreTopics groups articles by normalized title and ranks the groups by
// relevance: the mean of frequency share and a 24h recency decay of the
// group's oldest article.
func scoreTopics(articles []newsArticle, now time.Time) []models.DebateTopic {
	groups := make(map[string]*topicGroup)
	var order []string
	total := 0

	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		total++
		key := strings.ToLower(strings.Join(strings.Fields(nonWordChars.ReplaceAllString(title, "")), " "))

		g, ok := groups[key]
		if !ok {
			g = &topicGroup{title: title, category: a.category, oldest: a.PublishedAt, urls: make(map[string]struct{})}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		if a.PublishedAt.Before(g.oldest) {
			g.oldest = a.PublishedAt
		}
		if a.URL != "" {
			g.urls[a.URL] = struct{}{}
		}
	}

	topics := make([]models.DebateTopic, 0, len(order))
	for _, key := range order {
		g := groups[key]
		age := now.Sub(g.oldest)
		if age < 0 {
			age = 0
		}
		recency := math.Exp(-float64(age) / float64(24*time.Hour))
		frequency := float64(g.count) / float64(total)
		topics = append(topics, models.DebateTopic{
			Text:      g.title,
			Category:  g.category,
			Relevance: (recency + frequency) / 2,
			Sources:   len(g.urls),
		})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Relevance > topics[j].Relevance
	})
	if len(topics) > maxTrendingTopics {
		topics = topics[:maxTrendingTopics]
	}
	return topics
}
