package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat/internal/core/domain"
	"docchat/internal/core/ports"
	"docchat/internal/core/session"
)

// IngestURLUseCase runs the full synchronous ingestion pipeline:
// fetch -> chunk -> embed -> index, then records the session.
type IngestURLUseCase struct {
	fetcher  ports.ContentFetcher
	chunker  ports.Chunker
	embedder ports.Embedder
	vectorDB ports.VectorStore
	repo     ports.SessionRepository
	registry *session.Registry
}

func NewIngestURLUseCase(
	fetcher ports.ContentFetcher,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	repo ports.SessionRepository,
	registry *session.Registry,
) *IngestURLUseCase {
	return &IngestURLUseCase{
		fetcher:  fetcher,
		chunker:  chunker,
		embedder: embedder,
		vectorDB: vectorDB,
		repo:     repo,
		registry: registry,
	}
}

func (uc *IngestURLUseCase) ProcessURL(ctx context.Context, rawURL string) (*domain.IngestResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	content, err := uc.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}

	chunks := uc.chunker.Split(content)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyDocument, "chunk content", fmt.Errorf("url %s", rawURL))
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) == 0 {
		return nil, domain.WrapError(domain.ErrUpstream, "embed chunks", fmt.Errorf("no vectors returned"))
	}

	sessionID := uuid.NewString()
	collection := domain.CollectionName(sessionID)

	if err := uc.vectorDB.CreateCollection(ctx, collection, len(vectors[0])); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if err := uc.vectorDB.UpsertChunks(ctx, collection, rawURL, chunks, vectors); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	now := time.Now().UTC()
	record := &domain.Session{
		ID:          sessionID,
		DocumentURL: rawURL,
		ChunksCount: len(chunks),
		EmbedModel:  uc.embedder.Model(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	uc.registry.Put(sessionID, &session.Active{
		DocumentURL: rawURL,
		Collection:  collection,
		EmbedModel:  record.EmbedModel,
	})

	if err := uc.repo.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	return &domain.IngestResult{
		SessionID:   sessionID,
		ChunksCount: len(chunks),
	}, nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate url", fmt.Errorf("url is required"))
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate url", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.WrapError(domain.ErrInvalidInput, "validate url", fmt.Errorf("unsupported scheme %q", parsed.Scheme))
	}
	if parsed.Host == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate url", fmt.Errorf("missing host"))
	}
	return nil
}
