package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docchat/internal/core/domain"
	"docchat/internal/core/session"
)

type fetcherFake struct {
	text string
	err  error
	url  string
}

func (f *fetcherFake) Fetch(_ context.Context, url string) (string, error) {
	f.url = url
	return f.text, f.err
}

type chunkerFake struct {
	chunks []string
}

func (f *chunkerFake) Split(string) []string { return f.chunks }

type embedderFake struct {
	model   string
	err     error
	queries []string
	batches [][]string
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.5, 1}, nil
}

func (f *embedderFake) Model() string {
	if f.model == "" {
		return "fake-embed"
	}
	return f.model
}

type vectorStoreFake struct {
	createdCollection string
	createdSize       int
	upsertCollection  string
	upsertChunks      []string
	searchResults     []domain.RetrievedChunk
	searchErr         error
	searchCollection  string
	deletedCollection string
	createErr         error
}

func (f *vectorStoreFake) CreateCollection(_ context.Context, collection string, vectorSize int) error {
	f.createdCollection = collection
	f.createdSize = vectorSize
	return f.createErr
}

func (f *vectorStoreFake) UpsertChunks(_ context.Context, collection, _ string, chunks []string, _ [][]float32) error {
	f.upsertCollection = collection
	f.upsertChunks = chunks
	return nil
}

func (f *vectorStoreFake) Search(_ context.Context, collection string, _ []float32, _ int) ([]domain.RetrievedChunk, error) {
	f.searchCollection = collection
	return f.searchResults, f.searchErr
}

func (f *vectorStoreFake) DeleteCollection(_ context.Context, collection string) error {
	f.deletedCollection = collection
	return nil
}

type repoFake struct {
	created      *domain.Session
	createErr    error
	session      *domain.Session
	getErr       error
	listed       []domain.Session
	messages     []domain.ChatMessage
	savedMessage *domain.ChatMessage
	deleteErr    error
	deletedID    string
}

func (f *repoFake) CreateSession(_ context.Context, s *domain.Session) error {
	f.created = s
	return f.createErr
}

func (f *repoFake) GetSession(_ context.Context, id string) (*domain.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *repoFake) ListSessions(_ context.Context, _ string, _ int) ([]domain.Session, error) {
	return f.listed, nil
}

func (f *repoFake) SaveChatMessage(_ context.Context, msg *domain.ChatMessage) error {
	f.savedMessage = msg
	return nil
}

func (f *repoFake) ListChatMessages(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return f.messages, nil
}

func (f *repoFake) DeleteSession(_ context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func TestProcessURLHappyPath(t *testing.T) {
	fetcher := &fetcherFake{text: "some document text"}
	chunker := &chunkerFake{chunks: []string{"some document", "document text"}}
	embedder := &embedderFake{model: "nomic-embed-text"}
	vectorDB := &vectorStoreFake{}
	repo := &repoFake{}
	registry := session.NewRegistry()

	uc := NewIngestURLUseCase(fetcher, chunker, embedder, vectorDB, repo, registry)
	result, err := uc.ProcessURL(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("ProcessURL() error = %v", err)
	}

	if result.ChunksCount != 2 {
		t.Fatalf("expected 2 chunks, got %d", result.ChunksCount)
	}
	if vectorDB.createdCollection != "doc_"+result.SessionID {
		t.Fatalf("collection not derived from session id: %s", vectorDB.createdCollection)
	}
	if vectorDB.createdSize != 2 {
		t.Fatalf("vector size should come from embeddings, got %d", vectorDB.createdSize)
	}
	if len(vectorDB.upsertChunks) != 2 {
		t.Fatalf("expected chunks upserted, got %d", len(vectorDB.upsertChunks))
	}
	if repo.created == nil || repo.created.EmbedModel != "nomic-embed-text" {
		t.Fatalf("session not persisted with embed model: %+v", repo.created)
	}
	active, ok := registry.Get(result.SessionID)
	if !ok {
		t.Fatalf("session not registered in memory")
	}
	if active.Collection != vectorDB.createdCollection {
		t.Fatalf("registry collection mismatch: %s", active.Collection)
	}
}

func TestProcessURLRejectsMissingURL(t *testing.T) {
	uc := NewIngestURLUseCase(&fetcherFake{}, &chunkerFake{}, &embedderFake{}, &vectorStoreFake{}, &repoFake{}, session.NewRegistry())
	_, err := uc.ProcessURL(context.Background(), "   ")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessURLRejectsNonHTTPScheme(t *testing.T) {
	uc := NewIngestURLUseCase(&fetcherFake{}, &chunkerFake{}, &embedderFake{}, &vectorStoreFake{}, &repoFake{}, session.NewRegistry())
	_, err := uc.ProcessURL(context.Background(), "ftp://example.com/file")
	if err == nil || !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessURLPropagatesFetchError(t *testing.T) {
	fetcher := &fetcherFake{err: domain.WrapError(domain.ErrUpstream, "fetch url", errors.New("connection refused"))}
	uc := NewIngestURLUseCase(fetcher, &chunkerFake{}, &embedderFake{}, &vectorStoreFake{}, &repoFake{}, session.NewRegistry())

	_, err := uc.ProcessURL(context.Background(), "https://example.com")
	if err == nil || !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestProcessURLEmptyChunksIsEmptyDocument(t *testing.T) {
	uc := NewIngestURLUseCase(
		&fetcherFake{text: " "},
		&chunkerFake{chunks: nil},
		&embedderFake{},
		&vectorStoreFake{},
		&repoFake{},
		session.NewRegistry(),
	)
	_, err := uc.ProcessURL(context.Background(), "https://example.com")
	if err == nil || !domain.IsKind(err, domain.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestProcessURLEmbedsEveryChunkInOneBatch(t *testing.T) {
	embedder := &embedderFake{}
	chunks := []string{"a", "b", "c"}
	uc := NewIngestURLUseCase(&fetcherFake{text: "abc"}, &chunkerFake{chunks: chunks}, embedder, &vectorStoreFake{}, &repoFake{}, session.NewRegistry())

	if _, err := uc.ProcessURL(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("ProcessURL() error = %v", err)
	}
	if len(embedder.batches) != 1 || strings.Join(embedder.batches[0], ",") != "a,b,c" {
		t.Fatalf("expected single ordered batch, got %v", embedder.batches)
	}
}
