// Package cli provides the vantage command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vantage-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vantage-cli/internal/logger"
)

// Services are the core services the pipeline commands drive.
type Services struct {
	Analysis  driving.AnalysisService
	Ingestion driving.IngestionService
	Reports   driven.ReportWriter

	// Close releases the store and model clients. May be nil.
	Close func() error
}

// Overrides carry command-line values that take precedence over settings.
// Zero values leave the configured setting in place.
type Overrides struct {
	DataDir   string
	StoreDir  string
	OutputDir string
	TopK      int

	// Memory selects the ephemeral in-memory store.
	Memory bool
}

// ServiceBuilder constructs the pipeline services once flags are parsed.
type ServiceBuilder func(ctx context.Context, overrides Overrides) (*Services, error)

var (
	version = "dev"

	settingsService driving.SettingsService
	buildServices   ServiceBuilder
	services        *Services
)

// Root command flags.
var (
	verbose      bool
	ingestFlag   bool
	reingestFlag bool
	analyzeFlag  bool
	allFlag      bool
	questionFlag string
	overrides    Overrides
)

var rootCmd = &cobra.Command{
	Use:   "vantage",
	Short: "Compare the Outlook 2025 forecast with the Mid-Year Outlook",
	Long: `Vantage answers questions about two market outlook PDFs: the Outlook 2025
forecast and the Mid-Year Outlook 2025. Each question is routed to the
relevant document(s), answered from retrieved passages and cited by page.

Examples:
  # Build the index from data/pdfs
  vantage --ingest

  # Run the five predefined questions
  vantage --analyze

  # Ingest if needed, then analyse
  vantage --all

  # Ask your own question
  vantage --question "What did the forecast say about AI capex?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")

	flags := rootCmd.Flags()
	flags.BoolVar(&ingestFlag, "ingest", false, "build the index (no-op if already populated)")
	flags.BoolVar(&reingestFlag, "reingest", false, "reset and rebuild the index")
	flags.BoolVar(&analyzeFlag, "analyze", false, "run the predefined questions Q1-Q5")
	flags.StringVar(&questionFlag, "question", "", "run a single ad hoc question")
	flags.BoolVar(&allFlag, "all", false, "ingest if the index is empty, then analyze")

	rootCmd.PersistentFlags().StringVar(&overrides.DataDir, "data-dir", "", "directory holding the source PDFs")
	rootCmd.PersistentFlags().StringVar(&overrides.StoreDir, "store-dir", "", "directory holding the vector store")
	rootCmd.PersistentFlags().StringVar(&overrides.OutputDir, "output-dir", "", "directory receiving result files")
	rootCmd.PersistentFlags().IntVar(&overrides.TopK, "top-k", 0, "matches retrieved per document (0 = configured)")
	rootCmd.PersistentFlags().BoolVar(&overrides.Memory, "memory", false, "use an in-memory index for this run")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service used by the settings command.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetServiceBuilder sets the constructor for the pipeline services.
// It runs at most once per process, after flags are parsed.
func SetServiceBuilder(b ServiceBuilder) {
	buildServices = b
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// pipeline returns the pipeline services, building them on first use.
func pipeline(ctx context.Context) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if buildServices == nil {
		return nil, errors.New("services not configured")
	}

	s, err := buildServices(ctx, overrides)
	if err != nil {
		return nil, err
	}
	services = s
	return s, nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
}

func runRoot(cmd *cobra.Command, _ []string) error {
	wantIngest := ingestFlag || reingestFlag || allFlag
	questions := selectedQuestions()
	if !wantIngest && len(questions) == 0 {
		return cmd.Help()
	}

	ctx := cmd.Context()
	svc, err := pipeline(ctx)
	if err != nil {
		return err
	}

	// An in-memory index starts empty, so analysis always needs an ingest first.
	if len(questions) > 0 && overrides.Memory {
		wantIngest = true
	}

	if wantIngest {
		opts := driving.IngestOptions{Force: reingestFlag, SkipIfPresent: !reingestFlag}
		if err := runIngest(ctx, cmd.OutOrStdout(), svc.Ingestion, opts); err != nil {
			return err
		}
	}

	if len(questions) == 0 {
		return nil
	}
	return runAnalysis(ctx, cmd.OutOrStdout(), svc, questions)
}

// selectedQuestions returns the questions requested by the flags.
func selectedQuestions() []domain.Question {
	var questions []domain.Question
	if analyzeFlag || allFlag {
		questions = append(questions, domain.DefaultQuestions()...)
	}
	if questionFlag != "" {
		questions = append(questions, domain.Question{ID: domain.AdHocQuestionID, Text: questionFlag})
	}
	return questions
}

func runIngest(ctx context.Context, out io.Writer, ingestion driving.IngestionService, opts driving.IngestOptions) error {
	if ingestion == nil {
		return errors.New("ingestion service not configured")
	}

	if opts.Force {
		fmt.Fprintln(out, "Rebuilding index...")
	} else {
		fmt.Fprintln(out, "Building index...")
	}

	result, err := ingestion.Ingest(ctx, opts)
	if err != nil {
		return err
	}
	renderIngest(out, result)
	return nil
}

func runAnalysis(ctx context.Context, out io.Writer, svc *Services, questions []domain.Question) error {
	if svc.Analysis == nil {
		return errors.New("analysis service not configured")
	}
	if err := requireIndex(ctx, svc.Ingestion); err != nil {
		return err
	}

	report, err := analyse(ctx, out, svc.Analysis, questions)
	if err != nil {
		return err
	}

	renderReport(out, report)

	if svc.Reports == nil {
		return nil
	}
	path, err := svc.Reports.Write(ctx, report)
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	fmt.Fprintf(out, "Results saved to %s\n", path)
	return nil
}

// requireIndex fails when the index holds nothing to retrieve from.
func requireIndex(ctx context.Context, ingestion driving.IngestionService) error {
	if ingestion == nil {
		return nil
	}
	status, err := ingestion.Status(ctx)
	if err != nil {
		return fmt.Errorf("reading index status: %w", err)
	}
	if status.IsEmpty() {
		return fmt.Errorf("%w: run 'vantage --ingest' first", domain.ErrIndexEmpty)
	}
	return nil
}

// analyse runs the questions with live progress on a terminal, or with one
// line per transition otherwise.
func analyse(
	ctx context.Context,
	out io.Writer,
	analysis driving.AnalysisService,
	questions []domain.Question,
) (*domain.Report, error) {
	if isTerminal(out) && !verbose {
		app, err := tui.NewApp(&tui.Ports{Analysis: analysis}, questions)
		if err != nil {
			return nil, err
		}
		return app.WithContext(ctx).Run(out)
	}

	analysis.SetProgress(func(id string, status domain.QuestionStatus) {
		if status != domain.StatusPending {
			fmt.Fprintf(out, "[%s] %s\n", id, status)
		}
	})
	defer analysis.SetProgress(nil)

	return analysis.Analyze(ctx, questions), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
