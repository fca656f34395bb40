package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"docchat/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	document_url TEXT NOT NULL,
	chunks_count INTEGER NOT NULL,
	embed_model TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	relevant_chunks_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages(session_id, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, document_url, chunks_count, embed_model, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, session.ID, session.DocumentURL, session.ChunksCount, session.EmbedModel, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_url, chunks_count, embed_model, created_at, updated_at
FROM sessions
WHERE id = $1
`, sessionID)

	var session domain.Session
	err := row.Scan(
		&session.ID,
		&session.DocumentURL,
		&session.ChunksCount,
		&session.EmbedModel,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("id %s", sessionID))
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListSessions(ctx context.Context, search string, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
SELECT id, document_url, chunks_count, embed_model, created_at, updated_at
FROM sessions
ORDER BY updated_at DESC
LIMIT $1
`
	args := []any{limit}
	if search != "" {
		query = `
SELECT id, document_url, chunks_count, embed_model, created_at, updated_at
FROM sessions
WHERE document_url ILIKE $1
ORDER BY updated_at DESC
LIMIT $2
`
		args = []any{"%" + search + "%", limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Session, 0, limit)
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(
			&session.ID,
			&session.DocumentURL,
			&session.ChunksCount,
			&session.EmbedModel,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (r *SessionRepository) SaveChatMessage(ctx context.Context, message *domain.ChatMessage) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_messages (id, session_id, question, answer, relevant_chunks_count, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, message.ID, message.SessionID, message.Question, message.Answer, message.RelevantChunksCount, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE sessions SET updated_at = $2 WHERE id = $1
`, message.SessionID, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListChatMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, question, answer, relevant_chunks_count, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Question,
			&msg.Answer,
			&msg.RelevantChunksCount,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return out, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Messages first: they reference the session row.
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete chat messages: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSessionNotFound, "delete session", fmt.Errorf("id %s", sessionID))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}
