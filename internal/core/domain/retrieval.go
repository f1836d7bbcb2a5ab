package domain

// RetrievedMatch is a chunk scored against a single question.
// It is ephemeral and scoped to one question's processing.
type RetrievedMatch struct {
	// Chunk is the matched passage.
	Chunk Chunk

	// Score is the cosine similarity (higher is more relevant).
	Score float64

	// Rank is the 1-based position in the final ordered list.
	Rank int
}

// Citation references a page that substantiates an answer.
type Citation struct {
	// Document is the cited document identifier.
	Document DocumentID `json:"document"`

	// Title is the source document title.
	Title string `json:"title,omitempty"`

	// Page is the cited page number.
	Page int `json:"page"`

	// Excerpt is a truncated preview of the cited passage.
	Excerpt string `json:"text_excerpt"`
}

// Synthesis is the synthesizer's output for one question.
type Synthesis struct {
	// Answer is the generated answer text.
	Answer string

	// Citations are derived from the matches that were supplied to the model.
	Citations []Citation
}
