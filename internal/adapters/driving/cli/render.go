package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vantage-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
)

// summaryWidth wraps answer text in the terminal summary.
const summaryWidth = 88

func renderIngest(out io.Writer, result *driving.IngestResult) {
	s := styles.DefaultStyles()

	if result.Skipped {
		fmt.Fprintf(out, "%s (%d chunks). Use --reingest to rebuild.\n",
			s.Muted.Render("Index already populated"), result.TotalChunks)
		return
	}

	for _, doc := range result.Documents {
		fmt.Fprintf(out, "  %-26s %3d pages  %4d chunks  %s\n",
			doc.ID.Label(), doc.Pages, doc.Chunks, s.Muted.Render(doc.Title))
	}
	fmt.Fprintln(out, s.Success.Render(fmt.Sprintf("Indexed %d chunks.", result.TotalChunks)))
}

// renderReport prints a styled summary of each answer in run order.
func renderReport(out io.Writer, report *domain.Report) {
	if report == nil {
		return
	}
	s := styles.DefaultStyles()
	body := lipgloss.NewStyle().Width(summaryWidth)

	for _, rec := range report.Records() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, s.Title.Render(recordHeading(rec)))

		if rec.Routing != nil {
			fmt.Fprintln(out, s.Muted.Render("Route: "+routeLabel(rec.Routing.Route)))
		}

		if rec.Failed() {
			fmt.Fprintln(out, s.Error.Render(fmt.Sprintf("%s: %s", rec.ErrorKind, rec.Error)))
			continue
		}

		fmt.Fprintln(out, body.Render(rec.Answer))
		if len(rec.Citations) > 0 {
			fmt.Fprintln(out, s.Subtitle.Render("Sources:"))
			for _, c := range rec.Citations {
				fmt.Fprintf(out, "  %s\n", s.Citation.Render(citationLabel(c)))
			}
		}
	}

	fmt.Fprintln(out)
	m := report.Metadata
	summary := fmt.Sprintf("%d question(s), %d failed", m.QuestionCount, m.FailedCount)
	if m.FailedCount > 0 {
		fmt.Fprintln(out, s.Warning.Render(summary))
	} else {
		fmt.Fprintln(out, s.Success.Render(summary))
	}
}

func recordHeading(rec domain.AnswerRecord) string {
	if rec.Title == "" {
		return rec.QuestionID
	}
	return rec.QuestionID + " · " + rec.Title
}

func citationLabel(c domain.Citation) string {
	return fmt.Sprintf("[%s, Page %d] %s", c.Document.Label(), c.Page, strings.Join(strings.Fields(c.Excerpt), " "))
}

func routeLabel(r domain.Route) string {
	docs := r.Documents()
	labels := make([]string, len(docs))
	for i, d := range docs {
		labels[i] = d.Label()
	}
	return fmt.Sprintf("%s (%s)", r, strings.Join(labels, " + "))
}
