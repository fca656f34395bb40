package bootstrap

import (
	"context"
	"fmt"
	"time"

	"docchat/internal/config"
	"docchat/internal/core/ports"
	"docchat/internal/core/session"
	"docchat/internal/core/usecase"
	"docchat/internal/infrastructure/chunking"
	"docchat/internal/infrastructure/fetcher"
	"docchat/internal/infrastructure/llm/ollama"
	"docchat/internal/infrastructure/repository/postgres"
	"docchat/internal/infrastructure/resilience"
	"docchat/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	IngestUC   ports.URLIngestor
	ChatUC     ports.ChatService
	SessionsUC ports.SessionDirectory

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSessionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	breakerCfg := resilience.DefaultConfig()
	breakerCfg.Enabled = cfg.BreakerEnabled
	exec := resilience.NewExecutor(breakerCfg)

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, exec)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	fetchClient := fetcher.New(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)
	registry := session.NewRegistry()

	return &App{
		Config: cfg,

		IngestUC:   usecase.NewIngestURLUseCase(fetchClient, chunker, embedder, vectorDB, repo, registry),
		ChatUC:     usecase.NewChatUseCase(embedder, vectorDB, generator, repo, registry, cfg.RAGTopK),
		SessionsUC: usecase.NewSessionsUseCase(repo, vectorDB, registry),

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
