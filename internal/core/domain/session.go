package domain

import "time"

// CollectionPrefix is prepended to a session id to derive the name of the
// session's vector collection. Collection names are never persisted, only
// re-derived, so a restored session always points at the same collection.
const CollectionPrefix = "doc_"

type Session struct {
	ID          string    `json:"session_id"`
	DocumentURL string    `json:"document_url"`
	ChunksCount int       `json:"chunks_count"`
	EmbedModel  string    `json:"embed_model"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Collection returns the deterministic vector collection name for a session.
func (s Session) Collection() string {
	return CollectionName(s.ID)
}

func CollectionName(sessionID string) string {
	return CollectionPrefix + sessionID
}

type ChatMessage struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	Question            string    `json:"question"`
	Answer              string    `json:"answer"`
	RelevantChunksCount int       `json:"relevant_chunks_count"`
	CreatedAt           time.Time `json:"created_at"`
}

type SessionDetail struct {
	Session     Session       `json:"session_info"`
	ChatHistory []ChatMessage `json:"chat_history"`
}
