package ports

import (
	"context"

	"docchat/internal/core/domain"
)

// ContentFetcher retrieves a URL and extracts normalized plain text.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Chunker splits normalized text into overlapping segments.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text. Ingestion and query
// must go through the same model; Model reports which one is in use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// VectorStore manages per-session collections and semantic search.
type VectorStore interface {
	CreateCollection(ctx context.Context, collection string, vectorSize int) error
	UpsertChunks(ctx context.Context, collection, sourceURL string, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, collection string, queryVector []float32, limit int) ([]domain.RetrievedChunk, error)
	DeleteCollection(ctx context.Context, collection string) error
}

// AnswerGenerator produces the grounded answer for a question.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText, sourceURL string) (string, error)
}

// SessionRepository persists sessions and their chat history.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ListSessions(ctx context.Context, search string, limit int) ([]domain.Session, error)
	SaveChatMessage(ctx context.Context, message *domain.ChatMessage) error
	ListChatMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
