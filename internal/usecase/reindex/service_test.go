package reindex

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/averene/folio/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	items     []domain.Media
	listErr   error
	setErr    map[string]error
	persisted map[string]string // id -> caption
}

func (m *mockRepo) ListImagesWithAssets(_ context.Context) ([]domain.Media, error) {
	return m.items, m.listErr
}

func (m *mockRepo) SetIndex(_ context.Context, id, caption string, _ []float32) error {
	if err := m.setErr[id]; err != nil {
		return err
	}
	if m.persisted == nil {
		m.persisted = make(map[string]string)
	}
	m.persisted[id] = caption
	return nil
}

type mockCaptioner struct {
	captions map[string]string // url -> caption
	errs     map[string]error  // url -> error
}

func (m *mockCaptioner) CaptionImage(_ context.Context, url string) (string, error) {
	if err := m.errs[url]; err != nil {
		return "", err
	}
	return m.captions[url], nil
}

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return m.vec, m.err
}

func image(id, url string) domain.Media {
	return domain.Media{ID: id, Type: domain.MediaImage, AssetURL: url}
}

// --- Run ---

func TestRun_PartialFailureCompletes(t *testing.T) {
	repo := &mockRepo{
		items: []domain.Media{
			image("a", "https://cdn/a.jpg"),
			image("b", "https://cdn/b.jpg"),
			image("c", "https://cdn/c.jpg"),
		},
	}
	captioner := &mockCaptioner{
		captions: map[string]string{
			"https://cdn/a.jpg": "caption a",
			"https://cdn/c.jpg": "caption c",
		},
		errs: map[string]error{
			"https://cdn/b.jpg": errors.New("provider timeout"),
		},
	}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}

	svc := New(repo, captioner, embed, zap.NewNop())
	sum, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.Total != 3 || sum.Updated != 2 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if repo.persisted["a"] != "caption a" || repo.persisted["c"] != "caption c" {
		t.Errorf("expected captions persisted, got %v", repo.persisted)
	}
	if _, ok := repo.persisted["b"]; ok {
		t.Error("failed item must not be persisted")
	}
}

func TestRun_NoProvider(t *testing.T) {
	svc := New(&mockRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestRun_ListFailureAborts(t *testing.T) {
	repo := &mockRepo{listErr: errors.New("connection refused")}
	svc := New(repo, &mockCaptioner{}, &mockEmbedder{}, zap.NewNop())

	_, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when candidate listing fails")
	}
}

func TestRun_EmptyCaptionCountsAsFailed(t *testing.T) {
	repo := &mockRepo{items: []domain.Media{image("a", "https://cdn/a.jpg")}}
	captioner := &mockCaptioner{captions: map[string]string{}}
	embed := &mockEmbedder{vec: []float32{0.1}}

	svc := New(repo, captioner, embed, zap.NewNop())
	sum, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Failed != 1 || sum.Updated != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRun_PersistFailureCountsAsFailed(t *testing.T) {
	repo := &mockRepo{
		items:  []domain.Media{image("a", "https://cdn/a.jpg")},
		setErr: map[string]error{"a": errors.New("OOM")},
	}
	captioner := &mockCaptioner{captions: map[string]string{"https://cdn/a.jpg": "caption a"}}
	embed := &mockEmbedder{vec: []float32{0.1}}

	svc := New(repo, captioner, embed, zap.NewNop())
	sum, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRun_ProgressReported(t *testing.T) {
	repo := &mockRepo{
		items: []domain.Media{
			image("a", "https://cdn/a.jpg"),
			image("b", "https://cdn/b.jpg"),
		},
	}
	captioner := &mockCaptioner{captions: map[string]string{
		"https://cdn/a.jpg": "x",
		"https://cdn/b.jpg": "y",
	}}
	embed := &mockEmbedder{vec: []float32{0.1}}

	var calls [][2]int
	svc := New(repo, captioner, embed, zap.NewNop()).
		WithProgress(func(done, total int) {
			calls = append(calls, [2]int{done, total})
		})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[0] != [2]int{1, 2} || calls[1] != [2]int{2, 2} {
		t.Errorf("unexpected progress calls: %v", calls)
	}
}

func TestRun_CancelledContextStops(t *testing.T) {
	repo := &mockRepo{items: []domain.Media{image("a", "https://cdn/a.jpg")}}
	svc := New(repo, &mockCaptioner{}, &mockEmbedder{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
