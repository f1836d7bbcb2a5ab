package domain

// QuestionStatus is the lifecycle state of one question in a run.
type QuestionStatus string

// Question lifecycle: Pending -> Routed -> Retrieved -> Answered, or Failed from any step.
const (
	StatusPending   QuestionStatus = "pending"
	StatusRouted    QuestionStatus = "routed"
	StatusRetrieved QuestionStatus = "retrieved"
	StatusAnswered  QuestionStatus = "answered"
	StatusFailed    QuestionStatus = "failed"
)

// IsTerminal returns true once no further transition is possible.
func (s QuestionStatus) IsTerminal() bool {
	return s == StatusAnswered || s == StatusFailed
}

// String returns the string representation.
func (s QuestionStatus) String() string {
	return string(s)
}

// AnswerRecord is the outcome of running one question through the pipeline.
// It is created once per question and never mutated after the run completes.
type AnswerRecord struct {
	QuestionID     string           `json:"id"`
	Title          string           `json:"title,omitempty"`
	Question       string           `json:"question"`
	Status         QuestionStatus   `json:"status"`
	Routing        *RoutingDecision `json:"routing"`
	Answer         string           `json:"answer,omitempty"`
	Citations      []Citation       `json:"citations"`
	RetrievedCount int              `json:"retrieved_chunks_count"`

	// ErrorKind names the failed step (RoutingError, RetrievalError, SynthesisError).
	ErrorKind string `json:"error_kind,omitempty"`

	// Error is the failure message.
	Error string `json:"error,omitempty"`
}

// Failed returns true if the question did not produce an answer.
func (r *AnswerRecord) Failed() bool {
	return r.Status == StatusFailed
}
