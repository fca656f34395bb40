package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"docchat/internal/core/ports"
	"docchat/internal/observability/metrics"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type Router struct {
	cfg      Config
	ingestor ports.URLIngestor
	chat     ports.ChatService
	sessions ports.SessionDirectory
	logger   *slog.Logger
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg Config,
	ingestor ports.URLIngestor,
	chat ports.ChatService,
	sessions ports.SessionDirectory,
	logger *slog.Logger,
	m *metrics.HTTPServerMetrics,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		ingestor: ingestor,
		chat:     chat,
		sessions: sessions,
		logger:   logger,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/process_url", rt.processURL)
	mux.HandleFunc("/api/chat", rt.handleChat)
	mux.HandleFunc("/api/sessions", rt.listSessions)
	mux.HandleFunc("/api/sessions/", rt.sessionSubtree)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = rateLimitMiddleware(rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) processURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "URL is required"})
		return
	}

	start := time.Now()
	result, err := rt.ingestor.ProcessURL(r.Context(), req.URL)
	if err != nil {
		rt.writeError(r, w, "process_url", err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordIngest(result.ChunksCount, time.Since(start))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   result.SessionID,
		"message":      "Document processed successfully",
		"chunks_count": result.ChunksCount,
	})
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Question  string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Session ID and question are required"})
		return
	}

	start := time.Now()
	answer, err := rt.chat.Chat(r.Context(), req.SessionID, req.Question)
	if err != nil {
		rt.writeError(r, w, "chat", err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordChat(answer.RelevantChunksCount, time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	sessions, err := rt.sessions.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		rt.writeError(r, w, "list_sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// sessionSubtree dispatches /api/sessions/{id} and /api/sessions/{id}/restore.
func (rt *Router) sessionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, action, _ := strings.Cut(rest, "/")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		rt.sessionDetail(w, r, sessionID)
	case action == "" && r.Method == http.MethodDelete:
		rt.deleteSession(w, r, sessionID)
	case action == "restore" && r.Method == http.MethodPost:
		rt.restoreSession(w, r, sessionID)
	case action == "" || action == "restore":
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) sessionDetail(w http.ResponseWriter, r *http.Request, sessionID string) {
	detail, err := rt.sessions.Detail(r.Context(), sessionID)
	if err != nil {
		rt.writeError(r, w, "session_detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (rt *Router) restoreSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	detail, err := rt.sessions.Restore(r.Context(), sessionID)
	if err != nil {
		rt.writeError(r, w, "restore_session", err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSessionRestore()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Session restored successfully",
		"session_info": detail.Session,
		"chat_history": detail.ChatHistory,
	})
}

func (rt *Router) deleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := rt.sessions.Delete(r.Context(), sessionID); err != nil {
		rt.writeError(r, w, "delete_session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}

func (rt *Router) writeError(r *http.Request, w http.ResponseWriter, operation string, err error) {
	status := mapErrorToHTTPStatus(err)
	rt.logger.Error("request_failed",
		"request_id", requestIDFromContext(r.Context()),
		"operation", operation,
		"status", status,
		"error", err.Error(),
	)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
