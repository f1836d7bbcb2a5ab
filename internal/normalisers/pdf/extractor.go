// Package pdf extracts page-numbered text from PDF files.
//
// Extraction uses github.com/ledongthuc/pdf, a pure Go reader, so no external
// tools need to be installed. Pages whose text is blank after cleanup are
// skipped; page numbers always refer to the physical page in the file.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.DocumentExtractor = (*Extractor)(nil)

// ErrNoText is returned when a PDF has pages but none with extractable text.
var ErrNoText = errors.New("pdf has no extractable text")

// PageSource abstracts the PDF reader so tests can supply pages directly.
type PageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

// Opener opens a PDF file as a page source.
type Opener func(path string) (PageSource, io.Closer, error)

// Extractor reads PDF files page by page.
type Extractor struct {
	open Opener
}

// New creates a PDF extractor backed by ledongthuc/pdf.
func New() *Extractor {
	return &Extractor{open: openFile}
}

// NewWithOpener creates an extractor with a custom opener.
func NewWithOpener(open Opener) *Extractor {
	return &Extractor{open: open}
}

// SupportedExtensions returns the file extensions this extractor reads.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract returns the non-blank pages of the file, numbered from 1.
func (e *Extractor) Extract(ctx context.Context, path string) (pages []domain.Page, err error) {
	src, closer, err := e.open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer closer.Close()

	// The reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("read pdf %s: malformed content: %v", path, r)
		}
	}()

	total := src.NumPage()
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := src.PageText(n)
		if err != nil {
			return nil, fmt.Errorf("read pdf %s page %d: %w", path, n, err)
		}

		text = cleanText(text)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: n, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return pages, nil
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\v]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// cleanText normalises whitespace in extracted page text.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	text = spaceRun.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// fileSource adapts *pdf.Reader to PageSource.
type fileSource struct {
	reader *pdf.Reader
}

func (s fileSource) NumPage() int {
	return s.reader.NumPage()
}

func (s fileSource) PageText(n int) (string, error) {
	page := s.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func openFile(path string) (PageSource, io.Closer, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return fileSource{reader: r}, f, nil
}
