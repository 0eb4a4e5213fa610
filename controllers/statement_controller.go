package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"arguepulse/internal/ratelimit"
	"arguepulse/models"
	"arguepulse/services"
	"arguepulse/websocket"

	"github.com/gin-gonic/gin"
)

// StatementController serves statements, lanes, votes and the admin generation endpoints
type StatementController struct {
	statements *services.StatementService
	votes      *services.VoteService
	topics     services.TopicSource
	hub        *websocket.TallyHub
}

// NewStatementController wires the handlers to their services. hub may be nil.
func NewStatementController(statements *services.StatementService, votes *services.VoteService, topics services.TopicSource, hub *websocket.TallyHub) *StatementController {
	return &StatementController{
		statements: statements,
		votes:      votes,
		topics:     topics,
		hub:        hub,
	}
}

// GetStatements returns the three ranked lanes
func (sc *StatementController) GetStatements(c *gin.Context) {
	lanes, err := sc.statements.ListLanes(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch statements")
		return
	}
	c.JSON(http.StatusOK, lanes)
}

// GetStatement returns one statement with its quiz and summary
func (sc *StatementController) GetStatement(c *gin.Context) {
	st, err := sc.statements.GetStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch statement")
		return
	}
	c.JSON(http.StatusOK, st)
}

// CreateStatement stores a statement and generates its quiz and summary
func (sc *StatementController) CreateStatement(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid statement text"})
		return
	}

	st, err := sc.statements.CreateStatement(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err, "Failed to create statement")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "statement": st})
}

// SubmitVote scores the quiz answers and applies the weighted vote
func (sc *StatementController) SubmitVote(c *gin.Context) {
	var payload models.VotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	clientKey := ratelimit.ClientKey(c.ClientIP())
	result, err := sc.votes.SubmitVote(c.Request.Context(), payload, clientKey)
	if err != nil {
		respondError(c, err, "Failed to submit vote")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GenerateStatements creates statements from the topic source
func (sc *StatementController) GenerateStatements(c *gin.Context) {
	var req struct {
		Count int `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	report, err := sc.statements.GenerateFromTopics(c.Request.Context(), sc.topics, req.Count)
	if err != nil {
		respondError(c, err, "Failed to generate statements")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"generated":  report.Generated,
		"statements": report.Statements,
		"errors":     report.Errors,
	})
}

// FillStatementContent generates the quiz and summary a statement is missing
func (sc *StatementController) FillStatementContent(c *gin.Context) {
	st, err := sc.statements.FillMissingContent(c.Request.Context(), c.Param("id"))
	if st == nil {
		respondError(c, err, "Failed to generate statement content")
		return
	}

	response := gin.H{
		"ok":        err == nil,
		"quizCount": len(st.Quiz),
		"summary":   st.Summary,
	}
	if err != nil {
		// partially filled; the rest can be retried
		log.Printf("Statement %s partially filled: %v", c.Param("id"), err)
		response["error"] = "Some content could not be generated"
	}
	c.JSON(http.StatusOK, response)
}

// StreamTallies upgrades to a websocket that receives every new tally of the statement
func (sc *StatementController) StreamTallies(c *gin.Context) {
	if sc.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live tallies not available"})
		return
	}

	st, err := sc.statements.GetStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch statement")
		return
	}

	initial := models.TallyEvent{
		Type:         "tally",
		StatementID:  st.ID.Hex(),
		Agree:        st.AgreeWeight,
		Disagree:     st.DisagreeWeight,
		RawVotes:     st.TotalVotes,
		BalanceScore: st.BalanceScore,
		Timestamp:    time.Now(),
	}
	sc.hub.Serve(c.Writer, c.Request, st.ID.Hex(), &initial)
}

// respondError maps service errors onto status codes. Only client errors
// expose their message.
func respondError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	var generationErr *services.GenerationError

	switch {
	case errors.Is(err, services.ErrStatementNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Statement not found"})
	case errors.Is(err, services.ErrVoteLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
	case errors.As(err, &generationErr):
		log.Printf("%s: %v", fallback, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	default:
		log.Printf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
