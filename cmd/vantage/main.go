// Command vantage answers questions over the Outlook 2025 forecast and the
// Mid-Year Outlook 2025 PDFs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/report"
	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vantage-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vantage-cli/internal/core/services"
	"github.com/custodia-labs/vantage-cli/internal/logger"
	"github.com/custodia-labs/vantage-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/vantage-cli/internal/postprocessors"
)

// Set by the release build.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; the environment may already carry the keys.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configDir, err := configDirectory()
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		logger.Error("opening config: %v", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetServiceBuilder(func(ctx context.Context, o cli.Overrides) (*cli.Services, error) {
		return buildServices(ctx, settingsService, filepath.Join(configDir, "prompts"), o)
	})

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Error("cancelled")
			return 130
		}
		logger.Error("%v", err)
		return 1
	}
	return 0
}

// configDirectory returns ~/.vantage, or $VANTAGE_HOME when set.
func configDirectory() (string, error) {
	if dir := os.Getenv("VANTAGE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".vantage"), nil
}

// buildServices wires the pipeline from the effective settings.
func buildServices(
	ctx context.Context,
	settingsService driving.SettingsService,
	promptDir string,
	o cli.Overrides,
) (*cli.Services, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	applyOverrides(settings, o)

	models, err := ai.NewServices(ctx, settings, false)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(settings.Paths.StoreDir, o.Memory)
	if err != nil {
		models.Close()
		return nil, err
	}

	closeAll := func() error {
		models.Close()
		return closeStore()
	}

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	chunker, err := postprocessors.NewDefaultRegistry().Build(settings.Pipeline, models.Embedding)
	if err != nil {
		_ = closeAll()
		return nil, err
	}

	logger.Debug("LLM: %s (%s), embeddings: %s (%s)",
		settings.LLM.Model, settings.LLM.Provider, settings.Embedding.Model, settings.Embedding.Provider)
	logger.Debug("Chunker: %s, top-k: %d", settings.Pipeline.Chunker, settings.Pipeline.TopK)

	analysis := services.NewAnalysisService(
		services.NewRouterService(models.LLM, prompts),
		services.NewRetrieverService(store, models.Embedding, settings.Pipeline.TopK),
		services.NewSynthesizerService(models.LLM, prompts),
		services.AnalysisConfig{
			TopK:           settings.Pipeline.TopK,
			Model:          models.LLM.ModelName(),
			EmbeddingModel: models.Embedding.ModelName(),
			Pipeline:       settings.Pipeline,
		},
	)
	ingestion := services.NewIngestionService(pdf.New(), chunker, models.Embedding, store, settings.Paths.DataDir)

	return &cli.Services{
		Analysis:  analysis,
		Ingestion: ingestion,
		Reports:   report.NewJSONWriter(settings.Paths.OutputDir),
		Close:     closeAll,
	}, nil
}

func applyOverrides(settings *domain.AppSettings, o cli.Overrides) {
	if o.DataDir != "" {
		settings.Paths.DataDir = o.DataDir
	}
	if o.StoreDir != "" {
		settings.Paths.StoreDir = o.StoreDir
	}
	if o.OutputDir != "" {
		settings.Paths.OutputDir = o.OutputDir
	}
	if o.TopK > 0 {
		settings.Pipeline.TopK = o.TopK
	}
}

func openStore(dir string, inMemory bool) (driven.VectorStore, func() error, error) {
	if inMemory {
		logger.Debug("Using in-memory index")
		return memory.NewVectorStore(), func() error { return nil }, nil
	}

	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index: %w", err)
	}
	logger.Debug("Index: %s", store.Path())
	return store, store.Close, nil
}
