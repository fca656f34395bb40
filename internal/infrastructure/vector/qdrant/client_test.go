package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docchat/internal/core/domain"
)

func TestCreateCollectionSendsCosineConfig(t *testing.T) {
	var payload map[string]any
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.Method + " " + r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	if err := New(server.URL).CreateCollection(context.Background(), "doc_abc", 384); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if path != "PUT /collections/doc_abc" {
		t.Fatalf("unexpected request: %s", path)
	}

	vectors, _ := payload["vectors"].(map[string]any)
	if vectors["size"] != float64(384) || vectors["distance"] != "Cosine" {
		t.Fatalf("unexpected vectors config: %v", vectors)
	}
}

func TestCreateCollectionConflictIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	if err := New(server.URL).CreateCollection(context.Background(), "doc_abc", 4); err != nil {
		t.Fatalf("expected existing collection to be accepted, got %v", err)
	}
}

func TestUpsertChunksBuildsOrdinalPayloads(t *testing.T) {
	var payload struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("wait") != "true" {
			t.Fatalf("expected wait=true, got %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer server.Close()

	err := New(server.URL).UpsertChunks(
		context.Background(),
		"doc_abc",
		"https://example.com",
		[]string{"first", "second"},
		[][]float32{{0.1}, {0.2}},
	)
	if err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}

	if len(payload.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(payload.Points))
	}
	for i, point := range payload.Points {
		if point.ID == "" {
			t.Fatalf("point %d missing id", i)
		}
		if point.Payload["chunk_index"] != float64(i) {
			t.Fatalf("point %d ordinal = %v", i, point.Payload["chunk_index"])
		}
		if point.Payload["source_url"] != "https://example.com" {
			t.Fatalf("point %d source_url = %v", i, point.Payload["source_url"])
		}
	}
	if payload.Points[0].Payload["content"] != "first" || payload.Points[1].Payload["content"] != "second" {
		t.Fatalf("chunk contents out of order")
	}
}

func TestUpsertChunksLengthMismatch(t *testing.T) {
	err := New("http://unreachable.invalid").UpsertChunks(
		context.Background(), "doc_abc", "u", []string{"one"}, nil,
	)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestSearchParsesRankedResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/doc_abc/points/search" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"content":"best","source_url":"u","chunk_index":3}},
			{"score":0.52,"payload":{"content":"worse","source_url":"u","chunk_index":0}}
		]}`))
	}))
	defer server.Close()

	chunks, err := New(server.URL).Search(context.Background(), "doc_abc", []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "best" || chunks[0].Score != 0.91 || chunks[0].ChunkIndex != 3 {
		t.Fatalf("unexpected top chunk: %+v", chunks[0])
	}
	if chunks[0].Score < chunks[1].Score {
		t.Fatalf("results not ordered by descending score")
	}
}

func TestSearchMissingCollectionReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	chunks, err := New(server.URL).Search(context.Background(), "doc_gone", []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("expected missing collection to degrade to empty, got %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestSearchUpstreamErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of memory", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL).Search(context.Background(), "doc_abc", []float32{0.1}, 5)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestDeleteCollectionMissingIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if err := New(server.URL).DeleteCollection(context.Background(), "doc_gone"); err != nil {
		t.Fatalf("expected missing collection delete to succeed, got %v", err)
	}
}
