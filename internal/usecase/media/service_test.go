package media

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
	saved     *domain.Media
	saveErr   error
	getResult domain.Media
	getErr    error
	deleteErr error
	listItems []domain.Media
	listErr   error
	deletedID string
}

func (m *mockRepo) Save(_ context.Context, media *domain.Media) error {
	m.saved = media
	return m.saveErr
}

func (m *mockRepo) Get(_ context.Context, _ string) (domain.Media, error) {
	return m.getResult, m.getErr
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return m.deleteErr
}

func (m *mockRepo) List(_ context.Context, _ domain.ListFilter) ([]domain.Media, error) {
	return m.listItems, m.listErr
}

func newTestService(repo *mockRepo) *Service {
	return New(repo, zap.NewNop())
}

func strPtr(s string) *string { return &s }

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	m, err := svc.Create(context.Background(), CreateParams{
		Title:    "Dolomites",
		Category: "nature",
		Type:     "image",
		AssetURL: "https://cdn.example.com/a.jpg",
		Tags:     []string{"alps"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID == "" {
		t.Error("expected generated ID")
	}
	if m.CreatedAt.IsZero() || !m.CreatedAt.Equal(m.UpdatedAt) {
		t.Error("expected createdAt == updatedAt on create")
	}
	if repo.saved == nil || repo.saved.ID != m.ID {
		t.Error("expected document persisted")
	}
}

func TestCreate_InvalidType(t *testing.T) {
	svc := newTestService(&mockRepo{})

	_, err := svc.Create(context.Background(), CreateParams{Title: "x", Type: "audio"})
	if !errors.Is(err, domain.ErrInvalidMedia) {
		t.Fatalf("expected ErrInvalidMedia, got %v", err)
	}
}

func TestCreate_MissingTitle(t *testing.T) {
	svc := newTestService(&mockRepo{})

	_, err := svc.Create(context.Background(), CreateParams{Type: "image"})
	if !errors.Is(err, domain.ErrInvalidMedia) {
		t.Fatalf("expected ErrInvalidMedia, got %v", err)
	}
}

// --- Update ---

func existingMedia() domain.Media {
	return domain.Media{
		ID:        "m-1",
		Title:     "Old title",
		Type:      domain.MediaImage,
		AssetURL:  "https://cdn.example.com/old.jpg",
		Caption:   "an old caption",
		Embedding: []float32{0.1, 0.2},
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	repo := &mockRepo{getResult: existingMedia()}
	svc := newTestService(repo)

	m, err := svc.Update(context.Background(), "m-1", UpdateParams{
		Title: strPtr("New title"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Title != "New title" {
		t.Errorf("expected title updated, got %q", m.Title)
	}
	if m.AssetURL != "https://cdn.example.com/old.jpg" {
		t.Errorf("untouched field changed: %q", m.AssetURL)
	}
	if m.Caption == "" || m.Embedding == nil {
		t.Error("caption/embedding must survive when asset URL is unchanged")
	}
	if !m.UpdatedAt.After(m.CreatedAt) {
		t.Error("expected updatedAt bumped")
	}
}

func TestUpdate_AssetChangeInvalidatesIndex(t *testing.T) {
	repo := &mockRepo{getResult: existingMedia()}
	svc := newTestService(repo)

	m, err := svc.Update(context.Background(), "m-1", UpdateParams{
		AssetURL: strPtr("https://cdn.example.com/new.jpg"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Caption != "" || m.Embedding != nil {
		t.Error("expected caption and embedding cleared on asset change")
	}
}

func TestUpdate_SameAssetKeepsIndex(t *testing.T) {
	repo := &mockRepo{getResult: existingMedia()}
	svc := newTestService(repo)

	m, err := svc.Update(context.Background(), "m-1", UpdateParams{
		AssetURL: strPtr("https://cdn.example.com/old.jpg"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Caption == "" || m.Embedding == nil {
		t.Error("identical asset URL must not invalidate the index")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrNotFound}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), "missing", UpdateParams{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_InvalidType(t *testing.T) {
	repo := &mockRepo{getResult: existingMedia()}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), "m-1", UpdateParams{Type: strPtr("audio")})
	if !errors.Is(err, domain.ErrInvalidMedia) {
		t.Fatalf("expected ErrInvalidMedia, got %v", err)
	}
}

// --- Delete / List ---

func TestDelete_Propagates(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), "m-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletedID != "m-1" {
		t.Errorf("expected delete issued for m-1, got %q", repo.deletedID)
	}
}

func TestList_SortsByOrder(t *testing.T) {
	now := time.Now()
	repo := &mockRepo{
		listItems: []domain.Media{
			{ID: "b", Order: 2, CreatedAt: now},
			{ID: "a", Order: 1, CreatedAt: now},
		},
	}
	svc := newTestService(repo)

	items, err := svc.List(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Errorf("unexpected order: %v", items)
	}
}
