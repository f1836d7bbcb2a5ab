package domain

import (
	"path/filepath"
	"strings"
)

// DocumentID is the stable identifier assigned to a source document at ingestion.
// Retrieval filters on this identifier, never on file paths.
type DocumentID string

// Known document identifiers.
const (
	// DocumentForecast is the forward-looking outlook published at the start of the year.
	DocumentForecast DocumentID = "forecast"

	// DocumentMidyear is the mid-year review of what actually happened.
	DocumentMidyear DocumentID = "midyear"
)

// Filename markers used to classify source PDFs at load time.
const (
	forecastMarker = "outlook-2025-building"
	midyearMarker  = "mid-year"
	midyearAlt     = "midyear"
)

// IsValid returns true if the identifier is one of the known documents.
func (id DocumentID) IsValid() bool {
	return id == DocumentForecast || id == DocumentMidyear
}

// String returns the string representation.
func (id DocumentID) String() string {
	return string(id)
}

// Label returns a human-readable name used in prompts and terminal output.
func (id DocumentID) Label() string {
	switch id {
	case DocumentForecast:
		return "Outlook 2025 (Forecast)"
	case DocumentMidyear:
		return "Mid-Year Outlook 2025"
	default:
		return unknownDescription
	}
}

// AllDocuments returns the known documents in their canonical order.
// Forecast always precedes midyear; ranking ties rely on this order.
func AllDocuments() []DocumentID {
	return []DocumentID{DocumentForecast, DocumentMidyear}
}

// ClassifyDocument maps a source filename to a document identifier.
// The mid-year markers are checked first because the mid-year file name
// may also mention the outlook.
func ClassifyDocument(filename string) (DocumentID, bool) {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, midyearMarker), strings.Contains(name, midyearAlt):
		return DocumentMidyear, true
	case strings.Contains(name, forecastMarker):
		return DocumentForecast, true
	default:
		return "", false
	}
}

// Document is a loaded source PDF. It is created at ingestion and never mutated.
type Document struct {
	// ID is the stable identifier (forecast or midyear).
	ID DocumentID

	// Title is the file stem of the source PDF.
	Title string

	// Path is the location the document was loaded from.
	Path string

	// Pages holds the non-empty pages in order.
	Pages []Page
}

// PageCount returns the number of extracted pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page is one page of extracted text.
type Page struct {
	// Number is the 1-based page number in the source PDF.
	Number int

	// Text is the raw extracted text.
	Text string
}

// Chunk is a passage derived from exactly one page of one document.
// Chunks are immutable; re-ingestion replaces the whole set.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the source Document.
	DocumentID DocumentID

	// Title is the source document title, kept for citations.
	Title string

	// Page is the source page number.
	Page int

	// Position is the ordinal position within the page.
	Position int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}
