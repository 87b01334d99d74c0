package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/averene/folio/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	lexicalResults []domain.ScoredMedia
	lexicalErr     error
	listResults    []domain.Media
	listErr        error
	embeddedItems  []domain.Media
	embeddedErr    error

	lexicalCalled bool
	lastTokens    []string
	lastKeywords  []string
	lastType      string
	lastLimit     int
	lastFilter    domain.ListFilter
}

func (m *mockRepo) SearchLexical(
	_ context.Context, tokens, keywords []string, mediaType string, limit int,
) ([]domain.ScoredMedia, error) {
	m.lexicalCalled = true
	m.lastTokens = tokens
	m.lastKeywords = keywords
	m.lastType = mediaType
	m.lastLimit = limit
	return m.lexicalResults, m.lexicalErr
}

func (m *mockRepo) List(_ context.Context, f domain.ListFilter) ([]domain.Media, error) {
	m.lastFilter = f
	return m.listResults, m.listErr
}

func (m *mockRepo) ListEmbedded(_ context.Context, mediaType string) ([]domain.Media, error) {
	m.lastType = mediaType
	return m.embeddedItems, m.embeddedErr
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	m.called = true
	return m.vec, m.err
}

func newTestService(repo *mockRepo, embed domain.Embedder) *Service {
	return New(repo, embed, Limits{Default: 30, Max: 60}, zap.NewNop())
}

func mediaWithEmbedding(id string, vec []float32) domain.Media {
	return domain.Media{
		ID:        id,
		Title:     "t-" + id,
		Type:      domain.MediaImage,
		Embedding: vec,
	}
}

// --- Lexical ---

func TestLexical_ExpandsAndSearches(t *testing.T) {
	repo := &mockRepo{
		lexicalResults: []domain.ScoredMedia{
			{Media: domain.Media{ID: "a"}, Score: 1.0},
		},
	}
	svc := newTestService(repo, nil)

	items := svc.Lexical(context.Background(), Params{Query: "trip to the mountains"})

	if !repo.lexicalCalled {
		t.Fatal("expected lexical search to run")
	}
	if len(repo.lastTokens) != 4 {
		t.Errorf("expected 4 tokens, got %v", repo.lastTokens)
	}
	hasTravel, hasNature := false, false
	for _, kw := range repo.lastKeywords {
		if kw == "journey" {
			hasTravel = true
		}
		if kw == "landscape" {
			hasNature = true
		}
	}
	if !hasTravel || !hasNature {
		t.Errorf("expected travel and nature synonyms, got %v", repo.lastKeywords)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Errorf("unexpected results: %v", items)
	}
}

func TestLexical_BlankQueryListsSorted(t *testing.T) {
	now := time.Now()
	repo := &mockRepo{
		listResults: []domain.Media{
			{ID: "late", Order: 2, CreatedAt: now},
			{ID: "old", Order: 1, CreatedAt: now.Add(-time.Hour)},
			{ID: "new", Order: 1, CreatedAt: now},
		},
	}
	svc := newTestService(repo, nil)

	items := svc.Lexical(context.Background(), Params{Type: "video"})

	if repo.lexicalCalled {
		t.Fatal("blank query must not hit the text index")
	}
	if repo.lastFilter.Type != "video" {
		t.Errorf("expected type filter, got %+v", repo.lastFilter)
	}
	want := []string{"new", "old", "late"}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestLexical_RelevanceOrdering(t *testing.T) {
	now := time.Now()
	repo := &mockRepo{
		lexicalResults: []domain.ScoredMedia{
			{Media: domain.Media{ID: "low", Order: 0, CreatedAt: now}, Score: 0.5},
			{Media: domain.Media{ID: "tie-late", Order: 5, CreatedAt: now}, Score: 2.0},
			{Media: domain.Media{ID: "tie-early", Order: 1, CreatedAt: now}, Score: 2.0},
		},
	}
	svc := newTestService(repo, nil)

	items := svc.Lexical(context.Background(), Params{Query: "anything"})

	want := []string{"tie-early", "tie-late", "low"}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestLexical_StorageErrorYieldsEmpty(t *testing.T) {
	repo := &mockRepo{lexicalErr: errors.New("connection refused")}
	svc := newTestService(repo, nil)

	items := svc.Lexical(context.Background(), Params{Query: "sunset"})
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", items)
	}
}

func TestLexical_LimitClamped(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, nil)

	svc.Lexical(context.Background(), Params{Query: "x", Limit: 500})
	if repo.lastLimit != 60 {
		t.Errorf("expected limit clamped to 60, got %d", repo.lastLimit)
	}

	svc.Lexical(context.Background(), Params{Query: "x"})
	if repo.lastLimit != 30 {
		t.Errorf("expected default limit 30, got %d", repo.lastLimit)
	}
}

// --- Semantic ---

func TestSemantic_RanksByCosine(t *testing.T) {
	repo := &mockRepo{
		embeddedItems: []domain.Media{
			mediaWithEmbedding("aligned", []float32{1, 0}),
			mediaWithEmbedding("orthogonal", []float32{0, 1}),
			mediaWithEmbedding("opposed", []float32{-1, 0}),
			mediaWithEmbedding("partial", []float32{1, 1}),
		},
	}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := newTestService(repo, embed)

	results := svc.Semantic(context.Background(), Params{Query: "mountain"})

	if len(results) != 2 {
		t.Fatalf("expected 2 positive matches, got %d", len(results))
	}
	if results[0].ID != "aligned" || results[1].ID != "partial" {
		t.Errorf("unexpected order: %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores must be descending: %f, %f", results[0].Score, results[1].Score)
	}
}

func TestSemantic_NoProviderYieldsEmpty(t *testing.T) {
	repo := &mockRepo{
		embeddedItems: []domain.Media{mediaWithEmbedding("a", []float32{1})},
	}
	svc := newTestService(repo, nil)

	results := svc.Semantic(context.Background(), Params{Query: "mountain"})
	if len(results) != 0 {
		t.Fatalf("expected empty result without provider, got %v", results)
	}
}

func TestSemantic_BlankQueryYieldsEmpty(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{1}}
	svc := newTestService(&mockRepo{}, embed)

	results := svc.Semantic(context.Background(), Params{})
	if len(results) != 0 {
		t.Fatalf("expected empty result for blank query, got %v", results)
	}
	if embed.called {
		t.Fatal("blank query must not call the provider")
	}
}

func TestSemantic_EmbedErrorYieldsEmpty(t *testing.T) {
	repo := &mockRepo{
		embeddedItems: []domain.Media{mediaWithEmbedding("a", []float32{1})},
	}
	embed := &mockEmbedder{err: errors.New("rate limited")}
	svc := newTestService(repo, embed)

	results := svc.Semantic(context.Background(), Params{Query: "mountain"})
	if len(results) != 0 {
		t.Fatalf("expected empty result on embed failure, got %v", results)
	}
}

func TestSemantic_TypeFilterForwarded(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{1}}
	svc := newTestService(repo, embed)

	svc.Semantic(context.Background(), Params{Query: "q", Type: "image"})
	if repo.lastType != "image" {
		t.Errorf("expected type forwarded, got %q", repo.lastType)
	}
}

func TestSemantic_LimitApplied(t *testing.T) {
	items := make([]domain.Media, 5)
	for i := range items {
		items[i] = mediaWithEmbedding(string(rune('a'+i)), []float32{1})
	}
	repo := &mockRepo{embeddedItems: items}
	embed := &mockEmbedder{vec: []float32{1}}
	svc := newTestService(repo, embed)

	results := svc.Semantic(context.Background(), Params{Query: "q", Limit: 2})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}
