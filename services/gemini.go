package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arguepulse/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiGenerator generates quizzes and summaries with the Gemini API
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
}

// NewGeminiGenerator connects a Gemini client. An empty modelName selects the default model.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GeminiGenerator{client: client, modelName: modelName}, nil
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// GenerateQuiz asks for 2-3 multiple-choice questions checking comprehension of the statement
func (g *GeminiGenerator) GenerateQuiz(ctx context.Context, statementText string) ([]models.QuizQuestion, error) {
	prompt := fmt.Sprintf(
		`You produce 2-3 multiple-choice questions to verify comprehension of a short opinion statement.
Each question has exactly 4 choices and exactly one correct choice.

Statement: %s

Required Output Format (JSON):
{
  "quiz": [
    {"question": "text", "choices": ["a", "b", "c", "d"], "answerIndex": 0}
  ]
}

Provide ONLY the JSON output without additional text or markdown formatting.`,
		statementText,
	)

	text, err := g.generateJSON(ctx, 0.3, prompt)
	if err != nil {
		return nil, &GenerationError{Op: "generate quiz", Err: err}
	}
	quiz, err := parseQuiz(text)
	if err != nil {
		return nil, &GenerationError{Op: "generate quiz", Err: err}
	}
	return quiz, nil
}

// GenerateSummary asks for concise reasons for and against the statement
func (g *GeminiGenerator) GenerateSummary(ctx context.Context, statementText string) (*models.Summary, error) {
	prompt := fmt.Sprintf(
		`Given an opinion statement, produce concise bullet-point reasons for both sides.

Statement: %s

Required Output Format (JSON):
{
  "forReasons": ["text", ...],
  "againstReasons": ["text", ...]
}

Provide ONLY the JSON output without additional text or markdown formatting.`,
		statementText,
	)

	text, err := g.generateJSON(ctx, 0.2, prompt)
	if err != nil {
		return nil, &GenerationError{Op: "generate summary", Err: err}
	}
	summary, err := parseSummary(text)
	if err != nil {
		return nil, &GenerationError{Op: "generate summary", Err: err}
	}
	return summary, nil
}

func (g *GeminiGenerator) generateJSON(ctx context.Context, temperature float32, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(temperature)
	model.ResponseMIMEType = "application/json"
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockLowAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockLowAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockLowAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockLowAndAbove},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text returned")
	}
	return cleanModelOutput(sb.String()), nil
}
