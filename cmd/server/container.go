package main

import (
	"database/sql"
	"fmt"

	"go.uber.org/dig"

	"papergen/internal/api"
	"papergen/internal/config"
	"papergen/internal/db"
	"papergen/internal/logging"
	"papergen/internal/services"
)

func buildContainer() (*dig.Container, error) {
	c := dig.New()

	providers := []any{
		loadConfig,
		func(cfg config.Config) logging.Logger { return logging.NewForEnvironment(cfg.Environment) },
		func(cfg config.Config) (*sql.DB, error) { return db.Open(cfg.Database) },
		func(conn *sql.DB) services.QuestionStore { return services.NewQuestionStore(conn) },
		newProvider,
		func(cfg config.Config) *services.DocumentService { return services.NewDocumentService(cfg.UploadDir) },
		func(logger logging.Logger) services.TextExtractor { return services.NewExtractor(logger) },
		services.NewAssembler,
		services.NewGenerationService,
		func() *services.PaperAssembler { return services.NewPaperAssembler(nil) },
		func(cfg config.Config) services.Renderer {
			return services.NewPDFRenderer(services.RendererConfig{Title: cfg.PaperTitle})
		},
		func(cfg config.Config, store services.QuestionStore, assembler *services.PaperAssembler, renderer services.Renderer, logger logging.Logger) *services.PaperService {
			return services.NewPaperService(store, assembler, renderer, services.PaperOptions{
				OutputDir:     cfg.OutputDir,
				PaperCount:    cfg.PaperCount,
				PerPaperLimit: cfg.QuestionsPerPaper,
			}, logger)
		},
		services.NewExporter,
		newServer,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newProvider(cfg config.Config) (services.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return services.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel)
	case config.ProviderOpenAI:
		return services.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIEndpoint, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

type serverParams struct {
	dig.In

	Config     config.Config
	Generation *services.GenerationService
	Papers     *services.PaperService
	Exporter   *services.Exporter
	Store      services.QuestionStore
	Provider   services.Provider
	Logger     logging.Logger
}

func newServer(p serverParams) *api.Server {
	return api.NewServer(api.Deps{
		Generation: p.Generation,
		Papers:     p.Papers,
		Exporter:   p.Exporter,
		Store:      p.Store,
		Provider:   p.Provider,
		OutputDir:  p.Config.OutputDir,
		Logger:     p.Logger,
	})
}
