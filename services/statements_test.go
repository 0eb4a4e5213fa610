package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"arguepulse/models"
	"arguepulse/services"
	"arguepulse/services/servicestest"
)

func sampleSummary() *models.Summary {
	return &models.Summary{
		ForReasons:     []string{"Equity", "Access"},
		AgainstReasons: []string{"Cost"},
	}
}

func TestCreateStatementWithGeneratedContent(t *testing.T) {
	store := servicestest.NewMemoryStore()
	generator := &servicestest.StubGenerator{Quiz: servicestest.TwoQuestionQuiz(), Summary: sampleSummary()}
	svc := services.NewStatementService(store, generator)

	st, err := svc.CreateStatement(context.Background(), `  "Cities should ban cars downtown"  `)
	if err != nil {
		t.Fatalf("CreateStatement failed: %v", err)
	}
	if st.Text != "Cities should ban cars downtown" {
		t.Errorf("Expected cleaned text, got %q", st.Text)
	}
	if len(st.Quiz) != 2 || st.Summary == nil || len(st.Summary.ForReasons) != 2 {
		t.Errorf("Generated content missing: %+v", st)
	}
	if st.TotalVotes != 0 || st.AgreeWeight != 0 || st.DisagreeWeight != 0 || st.BalanceScore != 0 {
		t.Errorf("New statement should start with zero tallies: %+v", st)
	}
	if generator.CallCount() != 2 {
		t.Errorf("Expected quiz and summary generation, got %d calls", generator.CallCount())
	}
}

func TestCreateStatementDegradesOnGenerationFailure(t *testing.T) {
	store := servicestest.NewMemoryStore()
	generator := &servicestest.StubGenerator{
		QuizErr:    errors.New("model overloaded"),
		SummaryErr: errors.New("model overloaded"),
	}
	svc := services.NewStatementService(store, generator)

	st, err := svc.CreateStatement(context.Background(), "Remote work should be a legal right")
	if err != nil {
		t.Fatalf("Expected degraded success, got %v", err)
	}
	if st.Quiz == nil || len(st.Quiz) != 0 {
		t.Errorf("Expected empty quiz, got %+v", st.Quiz)
	}
	if st.Summary == nil || len(st.Summary.ForReasons) != 0 || len(st.Summary.AgainstReasons) != 0 {
		t.Errorf("Expected empty summary, got %+v", st.Summary)
	}

	all, _ := store.GetAllStatements(context.Background())
	if len(all) != 1 {
		t.Errorf("Expected statement to be stored, got %d", len(all))
	}
}

func TestCreateStatementWithoutGenerator(t *testing.T) {
	svc := services.NewStatementService(servicestest.NewMemoryStore(), nil)

	st, err := svc.CreateStatement(context.Background(), "Sugary drinks should carry a health tax")
	if err != nil {
		t.Fatalf("CreateStatement failed: %v", err)
	}
	if len(st.Quiz) != 0 || st.Summary == nil {
		t.Errorf("Expected empty content, got %+v", st)
	}
}

func TestCreateStatementRejectsInvalidText(t *testing.T) {
	svc := services.NewStatementService(servicestest.NewMemoryStore(), &servicestest.StubGenerator{})

	for _, text := range []string{"", "   ", `""`, strings.Repeat("a", services.MaxStatementLength+1)} {
		_, err := svc.CreateStatement(context.Background(), text)
		if !isValidation(err) {
			t.Errorf("Expected ValidationError for %q, got %v", text, err)
		}
	}
}

func TestCreateThenPerfectVote(t *testing.T) {
	store := servicestest.NewMemoryStore()
	generator := &servicestest.StubGenerator{Quiz: servicestest.TwoQuestionQuiz(), Summary: sampleSummary()}
	statements := services.NewStatementService(store, generator)
	votes := services.NewVoteService(store, nil, nil)

	st, err := statements.CreateStatement(context.Background(), "Voting should be mandatory")
	if err != nil {
		t.Fatalf("CreateStatement failed: %v", err)
	}

	answers := make([]int, len(st.Quiz))
	for i, q := range st.Quiz {
		answers[i] = q.AnswerIndex
	}
	result, err := votes.SubmitVote(context.Background(), models.VotePayload{
		StatementID: st.ID.Hex(),
		Stance:      models.StanceAgree,
		Answers:     answers,
	}, "")
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	want := models.Tallies{Agree: 1.0, Disagree: 0, RawVotes: 1}
	if result.WeightAwarded != 1.0 || result.Tallies != want {
		t.Errorf("Unexpected result %+v", result)
	}

	got, err := statements.GetStatement(context.Background(), st.ID.Hex())
	if err != nil {
		t.Fatalf("GetStatement failed: %v", err)
	}
	if got.BalanceScore != 0 {
		t.Errorf("Expected balance 0 for a one-sided statement, got %v", got.BalanceScore)
	}
}

func TestGetStatementNotFound(t *testing.T) {
	svc := services.NewStatementService(servicestest.NewMemoryStore(), nil)
	_, err := svc.GetStatement(context.Background(), "missing")
	if !errors.Is(err, services.ErrStatementNotFound) {
		t.Errorf("Expected ErrStatementNotFound, got %v", err)
	}
}

func TestListLanes(t *testing.T) {
	store := servicestest.NewMemoryStore(
		models.Statement{Text: "a", TotalVotes: 1, AgreeWeight: 1},
		models.Statement{Text: "b", TotalVotes: 4, AgreeWeight: 2, DisagreeWeight: 2},
	)
	svc := services.NewStatementService(store, nil)

	lanes, err := svc.ListLanes(context.Background())
	if err != nil {
		t.Fatalf("ListLanes failed: %v", err)
	}
	if lanes.MostPopular[0].Text != "b" || lanes.FiftyFifty[0].Text != "b" {
		t.Errorf("Unexpected lanes %+v", lanes)
	}
	if lanes.FiftyFifty[0].BalanceScore != 1 {
		t.Errorf("Expected balance 1, got %v", lanes.FiftyFifty[0].BalanceScore)
	}
}

func TestFillMissingContent(t *testing.T) {
	store := servicestest.NewMemoryStore(
		models.Statement{Text: "needs content", Quiz: []models.QuizQuestion{}, Summary: services.EmptySummary()},
	)
	all, _ := store.GetAllStatements(context.Background())
	id := all[0].ID.Hex()

	generator := &servicestest.StubGenerator{Quiz: servicestest.ThreeQuestionQuiz(), Summary: sampleSummary()}
	svc := services.NewStatementService(store, generator)

	st, err := svc.FillMissingContent(context.Background(), id)
	if err != nil {
		t.Fatalf("FillMissingContent failed: %v", err)
	}
	if len(st.Quiz) != 3 || len(st.Summary.ForReasons) != 2 {
		t.Errorf("Content not filled: %+v", st)
	}

	// a second fill must not regenerate or replace the quiz
	generator.Quiz = servicestest.TwoQuestionQuiz()
	calls := generator.CallCount()
	st, err = svc.FillMissingContent(context.Background(), id)
	if err != nil {
		t.Fatalf("second FillMissingContent failed: %v", err)
	}
	if len(st.Quiz) != 3 {
		t.Errorf("Quiz length changed to %d", len(st.Quiz))
	}
	if generator.CallCount() != calls {
		t.Errorf("Generator called for complete statement")
	}
}

func TestFillMissingContentSurfacesGenerationError(t *testing.T) {
	store := servicestest.NewMemoryStore(models.Statement{Text: "needs content"})
	all, _ := store.GetAllStatements(context.Background())

	cause := &services.GenerationError{Op: "generate quiz", Err: errors.New("quota exceeded")}
	svc := services.NewStatementService(store, &servicestest.StubGenerator{QuizErr: cause})

	_, err := svc.FillMissingContent(context.Background(), all[0].ID.Hex())
	var generationErr *services.GenerationError
	if !errors.As(err, &generationErr) {
		t.Errorf("Expected GenerationError, got %v", err)
	}
}

func TestFillMissingContentKeepsPartialSuccess(t *testing.T) {
	store := servicestest.NewMemoryStore(models.Statement{Text: "needs content"})
	all, _ := store.GetAllStatements(context.Background())
	id := all[0].ID.Hex()

	generator := &servicestest.StubGenerator{
		Quiz:       servicestest.TwoQuestionQuiz(),
		SummaryErr: &services.GenerationError{Op: "generate summary", Err: errors.New("safety block")},
	}
	svc := services.NewStatementService(store, generator)

	st, err := svc.FillMissingContent(context.Background(), id)
	var generationErr *services.GenerationError
	if !errors.As(err, &generationErr) || generationErr.Op != "generate summary" {
		t.Errorf("Expected the summary failure to be reported, got %v", err)
	}
	if st == nil || len(st.Quiz) != 2 {
		t.Fatalf("Expected the generated quiz to be returned, got %+v", st)
	}

	stored, _ := store.GetStatement(context.Background(), id)
	if len(stored.Quiz) != 2 {
		t.Errorf("Generated quiz was not stored")
	}

	// a retry only asks for what is still missing
	generator.SummaryErr = nil
	generator.Summary = sampleSummary()
	calls := generator.CallCount()
	st, err = svc.FillMissingContent(context.Background(), id)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if st.Summary == nil || len(st.Summary.ForReasons) != 2 {
		t.Errorf("Summary not filled on retry: %+v", st.Summary)
	}
	if generator.CallCount() != calls+1 {
		t.Errorf("Expected only the summary to be regenerated, got %d calls", generator.CallCount()-calls)
	}
}

func TestGenerateFromTopics(t *testing.T) {
	store := servicestest.NewMemoryStore()
	if _, err := store.CreateStatement(context.Background(), "Voting should be mandatory in national elections", nil, nil); err != nil {
		t.Fatal(err)
	}

	source := &services.CuratedTopicSource{List: []models.DebateTopic{
		{Text: "Voting should be mandatory in national elections", Category: "politics"},
		{Text: "“Cities should ban cars from their downtown cores”", Category: "environment"},
		{Text: "Sugary drinks should carry a health tax", Category: "health"},
		{Text: "Remote work should be a legal right for office jobs", Category: "business"},
	}}
	generator := &servicestest.StubGenerator{Quiz: servicestest.TwoQuestionQuiz(), Summary: sampleSummary()}
	svc := services.NewStatementService(store, generator)

	report, err := svc.GenerateFromTopics(context.Background(), source, 2)
	if err != nil {
		t.Fatalf("GenerateFromTopics failed: %v", err)
	}
	if report.Generated != 2 || len(report.Statements) != 2 {
		t.Fatalf("Expected 2 statements, got %+v", report)
	}
	if report.Statements[0].Statement.Text != "Cities should ban cars from their downtown cores" {
		t.Errorf("Expected the recent topic to be skipped and quotes stripped, got %q", report.Statements[0].Statement.Text)
	}
	if report.Statements[1].Category != "health" {
		t.Errorf("Expected second statement from health, got %q", report.Statements[1].Category)
	}
	if len(report.Errors) != 0 {
		t.Errorf("Unexpected errors %+v", report.Errors)
	}
}

func TestGenerateFromTopicsReportsQuizFailures(t *testing.T) {
	store := servicestest.NewMemoryStore()
	source := &services.CuratedTopicSource{List: []models.DebateTopic{
		{Text: "Cities should ban cars from their downtown cores"},
	}}
	generator := &servicestest.StubGenerator{QuizErr: errors.New("invalid quiz format"), Summary: sampleSummary()}
	svc := services.NewStatementService(store, generator)

	report, err := svc.GenerateFromTopics(context.Background(), source, 0)
	if err != nil {
		t.Fatalf("GenerateFromTopics failed: %v", err)
	}
	if report.Generated != 0 || len(report.Errors) != 1 {
		t.Fatalf("Expected one topic error, got %+v", report)
	}
	all, _ := store.GetAllStatements(context.Background())
	if len(all) != 0 {
		t.Errorf("Statement without quiz was stored")
	}
}

func TestGenerateFromTopicsRejectsLargeCount(t *testing.T) {
	svc := services.NewStatementService(servicestest.NewMemoryStore(), &servicestest.StubGenerator{})
	_, err := svc.GenerateFromTopics(context.Background(), services.NewCuratedTopicSource(), services.MaxGenerateCount+1)
	if !isValidation(err) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}

func TestCleanStatementText(t *testing.T) {
	tests := map[string]string{
		`"quoted"`:        "quoted",
		"“curly”":         "curly",
		`  ' nested " ' `: "nested",
		"plain text":      "plain text",
		`it's fine`:       "it's fine",
	}
	for in, want := range tests {
		if got := services.CleanStatementText(in); got != want {
			t.Errorf("CleanStatementText(%q) = %q, want %q", in, got, want)
		}
	}
}
