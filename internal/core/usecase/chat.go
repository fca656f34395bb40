package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat/internal/core/domain"
	"docchat/internal/core/ports"
	"docchat/internal/core/session"
)

const defaultTopK = 5

// ChatUseCase answers a question over one session's collection. Retrieval
// failures are hard errors; generation failures degrade into a user-visible
// apology so the chat turn is still recorded.
type ChatUseCase struct {
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	generator ports.AnswerGenerator
	repo      ports.SessionRepository
	registry  *session.Registry
	topK      int
}

func NewChatUseCase(
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	generator ports.AnswerGenerator,
	repo ports.SessionRepository,
	registry *session.Registry,
	topK int,
) *ChatUseCase {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &ChatUseCase{
		embedder:  embedder,
		vectorDB:  vectorDB,
		generator: generator,
		repo:      repo,
		registry:  registry,
		topK:      topK,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, sessionID, question string) (*domain.ChatAnswer, error) {
	sessionID = strings.TrimSpace(sessionID)
	question = strings.TrimSpace(question)
	if sessionID == "" || question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("session id and question are required"))
	}

	active, ok := uc.registry.Get(sessionID)
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("invalid session id %s", sessionID))
	}

	// Ingestion and query must share one embedding space; a model swap
	// between the two silently ruins relevance, so it is rejected here.
	if active.EmbedModel != "" && active.EmbedModel != uc.embedder.Model() {
		return nil, domain.WrapError(domain.ErrModelMismatch, "chat",
			fmt.Errorf("session embedded with %q, query embedder is %q", active.EmbedModel, uc.embedder.Model()))
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	chunks, err := uc.vectorDB.Search(ctx, active.Collection, queryVector, uc.topK)
	if err != nil {
		return nil, fmt.Errorf("search collection: %w", err)
	}

	answer, err := uc.generator.GenerateAnswer(ctx, question, buildContext(chunks), active.DocumentURL)
	if err != nil {
		answer = fmt.Sprintf("Sorry, I encountered an error while generating the answer: %v", err)
	}

	uc.registry.AppendTurn(sessionID, session.ChatTurn{
		Question:       question,
		Answer:         answer,
		RelevantChunks: len(chunks),
	})

	message := &domain.ChatMessage{
		ID:                  uuid.NewString(),
		SessionID:           sessionID,
		Question:            question,
		Answer:              answer,
		RelevantChunksCount: len(chunks),
		CreatedAt:           time.Now().UTC(),
	}
	if err := uc.repo.SaveChatMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("persist chat message: %w", err)
	}

	return &domain.ChatAnswer{
		Answer:              answer,
		RelevantChunksCount: len(chunks),
	}, nil
}

// buildContext concatenates retrieved chunks in result order, separated by a
// blank line, to form the grounding context.
func buildContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}
