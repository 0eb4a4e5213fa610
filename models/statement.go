package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stance values accepted on a vote
const (
	StanceAgree    = "agree"
	StanceDisagree = "disagree"
)

// Statement is a single debatable assertion shown to voters
type Statement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text           string             `bson:"text" json:"text"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	TotalVotes     int64              `bson:"totalVotes" json:"totalVotes"`
	AgreeWeight    float64            `bson:"agreeWeight" json:"agreeWeight"`
	DisagreeWeight float64            `bson:"disagreeWeight" json:"disagreeWeight"`
	Quiz           []QuizQuestion     `bson:"quiz" json:"quiz"`
	Summary        *Summary           `bson:"summary,omitempty" json:"summary,omitempty"`
	BalanceScore   float64            `bson:"-" json:"balanceScore"` // derived on read
}

// QuizQuestion is one multiple-choice comprehension check.
// AnswerIndex is 0-based into Choices.
type QuizQuestion struct {
	ID          string   `bson:"id" json:"id"`
	Question    string   `bson:"question" json:"question"`
	Choices     []string `bson:"choices" json:"choices"`
	AnswerIndex int      `bson:"answerIndex" json:"answerIndex"`
}

// Summary holds the generated reasons for both sides of a statement
type Summary struct {
	ForReasons     []string `bson:"forReasons" json:"forReasons"`
	AgainstReasons []string `bson:"againstReasons" json:"againstReasons"`
}

// Tallies is the post-vote snapshot reported back to the voter
type Tallies struct {
	Agree    float64 `json:"agree"`
	Disagree float64 `json:"disagree"`
	RawVotes int64   `json:"rawVotes"`
}

// TalliesOf returns the current tallies of a statement
func TalliesOf(st Statement) Tallies {
	return Tallies{
		Agree:    st.AgreeWeight,
		Disagree: st.DisagreeWeight,
		RawVotes: st.TotalVotes,
	}
}

// Unanswered marks a quiz question the voter skipped
const Unanswered = -1

// VotePayload is the request body of a vote submission
type VotePayload struct {
	StatementID string  `json:"statementId"`
	Stance      string  `json:"stance"`
	Answers     Answers `json:"answers"`
}

// Answers holds one chosen choice index per quiz question. Clients send
// skipped questions as null, which decodes to Unanswered rather than 0.
type Answers []int

func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw []*int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*a = nil
		return nil
	}
	answers := make(Answers, len(raw))
	for i, v := range raw {
		if v == nil {
			answers[i] = Unanswered
			continue
		}
		answers[i] = *v
	}
	*a = answers
	return nil
}

// VoteResult is returned after a vote has been applied
type VoteResult struct {
	WeightAwarded  float64 `json:"weightAwarded"`
	CorrectCount   int     `json:"correctCount"`
	TotalQuestions int     `json:"totalQuestions"`
	Tallies        Tallies `json:"tallies"`
}

// Lanes groups the three ranked statement orderings
type Lanes struct {
	MostPopular []Statement `json:"mostPopular"`
	FiftyFifty  []Statement `json:"fiftyFifty"`
	NewHot      []Statement `json:"newHot"`
}

// TallyEvent is pushed to live subscribers of a statement after each vote
type TallyEvent struct {
	Type         string    `json:"type"`
	StatementID  string    `json:"statementId"`
	Agree        float64   `json:"agree"`
	Disagree     float64   `json:"disagree"`
	RawVotes     int64     `json:"rawVotes"`
	BalanceScore float64   `json:"balanceScore"`
	Timestamp    time.Time `json:"timestamp"`
}
