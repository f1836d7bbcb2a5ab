package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vantage-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vantage-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vantage-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// transitionsPerQuestion bounds the status events one question can emit.
const transitionsPerQuestion = 4

// titleWidth is the column width of question titles.
const titleWidth = 48

// App shows the progress of an analysis run following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx scopes the run; cancel stops it when the user quits.
	ctx    context.Context
	cancel context.CancelFunc

	styles  *styles.Styles
	keys    *keymap.KeyMap
	spinner spinner.Model

	// questions are the questions being run, in order.
	questions []domain.Question

	// statuses tracks the latest state of each question.
	statuses map[string]domain.QuestionStatus

	// events carries progress from the run goroutine to Update.
	events chan tea.Msg

	// report is set once the run completes.
	report *domain.Report

	// cancelled is set when the user quit before completion.
	cancelled bool

	width int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a progress view for running questions.
func NewApp(ports *Ports, questions []domain.Question) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := styles.DefaultStyles()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	statuses := make(map[string]domain.QuestionStatus, len(questions))
	for _, q := range questions {
		statuses[q.ID] = domain.StatusPending
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		ports:     ports,
		ctx:       ctx,
		cancel:    cancel,
		styles:    s,
		keys:      keymap.DefaultKeyMap(),
		spinner:   sp,
		questions: questions,
		statuses:  statuses,
		events:    make(chan tea.Msg, len(questions)*transitionsPerQuestion+1),
	}, nil
}

// WithContext sets the parent context for the run.
func (a *App) WithContext(ctx context.Context) *App {
	a.cancel()
	a.ctx, a.cancel = context.WithCancel(ctx)
	return a
}

// Init implements tea.Model.
// It starts the spinner, the run and the event listener.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.run(),
		a.listen(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keys.Quit) {
			a.cancelled = true
			a.cancel()
			return a, tea.Quit
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.StatusChanged:
		a.statuses[msg.QuestionID] = msg.Status
		return a, a.listen()

	case messages.RunCompleted:
		a.report = msg.Report
		return a, tea.Quit

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render(fmt.Sprintf("Analysing %d question(s)", len(a.questions))))
	b.WriteString("\n\n")

	for _, q := range a.questions {
		status := a.statuses[q.ID]
		fmt.Fprintf(&b, "  %s %-6s %-*s %s\n",
			a.icon(status),
			q.ID,
			titleWidth,
			displayTitle(q),
			a.styles.Status(status).Render(status.String()),
		)
	}

	if a.report == nil && !a.cancelled {
		b.WriteString("\n")
		b.WriteString(a.styles.Help.Render(a.helpLine()))
		b.WriteString("\n")
	}
	return b.String()
}

// Run starts the progress view on out and blocks until the run completes
// or the user cancels.
func (a *App) Run(out io.Writer) (*domain.Report, error) {
	defer a.cancel()

	p := tea.NewProgram(a, tea.WithOutput(out), tea.WithContext(a.ctx))
	if _, err := p.Run(); err != nil && !a.cancelled {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	if a.cancelled {
		return nil, context.Canceled
	}
	return a.report, nil
}

// Report returns the completed report, or nil while the run is in flight.
func (a *App) Report() *domain.Report {
	return a.report
}

// Cancelled returns true if the user quit before the run completed.
func (a *App) Cancelled() bool {
	return a.cancelled
}

// Status returns the latest state of a question.
func (a *App) Status(questionID string) domain.QuestionStatus {
	return a.statuses[questionID]
}

// run executes the analysis and feeds its progress into the event channel.
func (a *App) run() tea.Cmd {
	ctx, events := a.ctx, a.events
	analysis, questions := a.ports.Analysis, a.questions

	return func() tea.Msg {
		send := func(msg tea.Msg) {
			select {
			case events <- msg:
			case <-ctx.Done():
			}
		}

		analysis.SetProgress(func(id string, status domain.QuestionStatus) {
			send(messages.StatusChanged{QuestionID: id, Status: status})
		})
		defer analysis.SetProgress(nil)

		report := analysis.Analyze(ctx, questions)
		send(messages.RunCompleted{Report: report})
		return nil
	}
}

// listen waits for the next progress event.
func (a *App) listen() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		return <-events
	}
}

func (a *App) icon(status domain.QuestionStatus) string {
	switch status {
	case domain.StatusAnswered:
		return a.styles.Success.Render("✓")
	case domain.StatusFailed:
		return a.styles.Error.Render("✗")
	case domain.StatusPending:
		return a.styles.Muted.Render("·")
	default:
		return a.spinner.View()
	}
}

func (a *App) helpLine() string {
	parts := make([]string, 0, len(a.keys.ShortHelp()))
	for _, b := range a.keys.ShortHelp() {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, " • ")
}

// displayTitle returns the question title, or a shortened question text for
// ad hoc questions.
func displayTitle(q domain.Question) string {
	title := q.Title
	if title == "" {
		title = strings.Join(strings.Fields(q.Text), " ")
	}
	runes := []rune(title)
	if len(runes) > titleWidth {
		return string(runes[:titleWidth-3]) + "..."
	}
	return title
}
