package ports

import (
	"context"

	"docchat/internal/core/domain"
)

// URLIngestor is the inbound contract for turning a URL into a chat session.
type URLIngestor interface {
	ProcessURL(ctx context.Context, url string) (*domain.IngestResult, error)
}

// ChatService answers questions against a previously ingested session.
type ChatService interface {
	Chat(ctx context.Context, sessionID, question string) (*domain.ChatAnswer, error)
}

// SessionDirectory is the inbound read/lifecycle model for sessions.
type SessionDirectory interface {
	List(ctx context.Context, search string) ([]domain.Session, error)
	Detail(ctx context.Context, sessionID string) (*domain.SessionDetail, error)
	Restore(ctx context.Context, sessionID string) (*domain.SessionDetail, error)
	Delete(ctx context.Context, sessionID string) error
}
