// Package session holds the process-scoped map of active chat sessions.
// Entries appear on ingestion or on an explicit restore, never eagerly.
package session

import (
	"sync"

	"docchat/internal/core/domain"
)

type ChatTurn struct {
	Question       string
	Answer         string
	RelevantChunks int
}

type Active struct {
	DocumentURL string
	Collection  string
	EmbedModel  string
	History     []ChatTurn
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Active
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Active)}
}

func (r *Registry) Put(sessionID string, active *Active) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = active
}

// Get returns a copy of the session state so callers never share the
// underlying history slice with concurrent writers.
func (r *Registry) Get(sessionID string) (Active, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	active, ok := r.sessions[sessionID]
	if !ok {
		return Active{}, false
	}
	out := *active
	out.History = append([]ChatTurn(nil), active.History...)
	return out, true
}

func (r *Registry) AppendTurn(sessionID string, turn ChatTurn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	active, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	active.History = append(active.History, turn)
	return true
}

func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// FromSession builds a registry entry from persisted state, re-deriving
// the collection name from the session id.
func FromSession(s *domain.Session, history []domain.ChatMessage) *Active {
	turns := make([]ChatTurn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, ChatTurn{
			Question:       msg.Question,
			Answer:         msg.Answer,
			RelevantChunks: msg.RelevantChunksCount,
		})
	}
	return &Active{
		DocumentURL: s.DocumentURL,
		Collection:  s.Collection(),
		EmbedModel:  s.EmbedModel,
		History:     turns,
	}
}
