package domain

import "time"

// RunMetadata describes the configuration a report was produced with.
type RunMetadata struct {
	GeneratedAt          time.Time `json:"generated_at"`
	Model                string    `json:"model"`
	EmbeddingModel       string    `json:"embedding_model"`
	Chunker              string    `json:"chunker"`
	ChunkSize            int       `json:"chunk_size"`
	ChunkOverlap         int       `json:"chunk_overlap"`
	BreakpointPercentile float64   `json:"breakpoint_percentile"`
	TopK                 int       `json:"top_k"`
	QuestionCount        int       `json:"question_count"`
	FailedCount          int       `json:"failed_count"`
}

// Report is the output artifact of one analysis run.
type Report struct {
	Metadata RunMetadata             `json:"metadata"`
	Results  map[string]AnswerRecord `json:"results"`

	// Order preserves the run order of result keys for display.
	Order []string `json:"-"`
}

// Records returns the answer records in run order.
func (r *Report) Records() []AnswerRecord {
	records := make([]AnswerRecord, 0, len(r.Order))
	for _, id := range r.Order {
		if rec, ok := r.Results[id]; ok {
			records = append(records, rec)
		}
	}
	return records
}
