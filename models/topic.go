package models

// DebateTopic is a candidate statement text yielded by a topic source
type DebateTopic struct {
	Text      string  `json:"text"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance"` // 0-1, frequency and recency
	Sources   int     `json:"sources"`
}

// GeneratedStatement reports one statement created from a topic
type GeneratedStatement struct {
	Statement Statement `json:"statement"`
	Topic     string    `json:"topic"`
	Category  string    `json:"category"`
}

// TopicError reports a topic that could not be turned into a statement
type TopicError struct {
	Topic string `json:"topic"`
	Error string `json:"error"`
}

// GenerationReport is the outcome of a batch statement generation run
type GenerationReport struct {
	Generated  int                  `json:"generated"`
	Statements []GeneratedStatement `json:"statements"`
	Errors     []TopicError         `json:"errors,omitempty"`
}
