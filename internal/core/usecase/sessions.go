package usecase

import (
	"context"
	"fmt"

	"docchat/internal/core/domain"
	"docchat/internal/core/ports"
	"docchat/internal/core/session"
)

const listLimit = 50

// SessionsUseCase serves the session directory: listing, detail, restoring
// persisted sessions into the in-memory registry, and deletion.
type SessionsUseCase struct {
	repo     ports.SessionRepository
	vectorDB ports.VectorStore
	registry *session.Registry
}

func NewSessionsUseCase(
	repo ports.SessionRepository,
	vectorDB ports.VectorStore,
	registry *session.Registry,
) *SessionsUseCase {
	return &SessionsUseCase{
		repo:     repo,
		vectorDB: vectorDB,
		registry: registry,
	}
}

func (uc *SessionsUseCase) List(ctx context.Context, search string) ([]domain.Session, error) {
	sessions, err := uc.repo.ListSessions(ctx, search, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (uc *SessionsUseCase) Detail(ctx context.Context, sessionID string) (*domain.SessionDetail, error) {
	return uc.loadDetail(ctx, sessionID)
}

// Restore rebuilds the in-memory state of a persisted session. The vector
// collection is re-derived from the id, not looked up: if the collection is
// gone, subsequent retrieval degrades to empty results instead of failing.
func (uc *SessionsUseCase) Restore(ctx context.Context, sessionID string) (*domain.SessionDetail, error) {
	detail, err := uc.loadDetail(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	uc.registry.Put(sessionID, session.FromSession(&detail.Session, detail.ChatHistory))
	return detail, nil
}

func (uc *SessionsUseCase) Delete(ctx context.Context, sessionID string) error {
	if err := uc.repo.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	uc.registry.Delete(sessionID)

	if err := uc.vectorDB.DeleteCollection(ctx, domain.CollectionName(sessionID)); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (uc *SessionsUseCase) loadDetail(ctx context.Context, sessionID string) (*domain.SessionDetail, error) {
	record, err := uc.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := uc.repo.ListChatMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	return &domain.SessionDetail{
		Session:     *record,
		ChatHistory: history,
	}, nil
}
