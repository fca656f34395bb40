// Package qdrant talks to the Qdrant HTTP API. Every ingested document gets
// its own collection, named after the owning session.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat/internal/core/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// CreateCollection creates collection with cosine distance. An existing
// collection of the same name is not an error.
func (c *Client) CreateCollection(ctx context.Context, collection string, vectorSize int) error {
	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", collection), reqBody)
	if err != nil {
		return domain.WrapError(domain.ErrUpstream, "qdrant create collection", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	if resp.StatusCode >= 300 {
		return domain.WrapError(domain.ErrUpstream, "qdrant create collection", statusError(resp))
	}
	return nil
}

func (c *Client) UpsertChunks(ctx context.Context, collection, sourceURL string, chunks []string, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d != %d", len(chunks), len(vectors))
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i := range chunks {
		points = append(points, point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"content":     chunks[i],
				"source_url":  sourceURL,
				"chunk_index": i,
			},
		})
	}

	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", collection), map[string]any{"points": points})
	if err != nil {
		return domain.WrapError(domain.ErrUpstream, "qdrant upsert", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return domain.WrapError(domain.ErrUpstream, "qdrant upsert", statusError(resp))
	}
	return nil
}

// Search returns up to limit chunks ranked by descending similarity. A
// missing collection yields an empty result, not an error: a restored
// session whose collection was dropped must still serve chat requests.
func (c *Client) Search(ctx context.Context, collection string, queryVector []float32, limit int) ([]domain.RetrievedChunk, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", collection), reqBody)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstream, "qdrant search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, domain.WrapError(domain.ErrUpstream, "qdrant search", statusError(resp))
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievedChunk{
			Content:    stringPayload(r.Payload, "content"),
			SourceURL:  stringPayload(r.Payload, "source_url"),
			ChunkIndex: intPayload(r.Payload, "chunk_index"),
			Score:      r.Score,
		})
	}
	return out, nil
}

func (c *Client) DeleteCollection(ctx context.Context, collection string) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/collections/%s", collection), nil)
	if err != nil {
		return domain.WrapError(domain.ErrUpstream, "qdrant delete collection", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		return domain.WrapError(domain.ErrUpstream, "qdrant delete collection", statusError(resp))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("status: %s: %s", resp.Status, msg)
	}
	return fmt.Errorf("status: %s", resp.Status)
}

func stringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func intPayload(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
