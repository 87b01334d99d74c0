package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/averene/folio/internal/domain"
)

// Service handles media lifecycle management.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a media service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateParams carries the fields of a new media document.
type CreateParams struct {
	Title            string
	Category         string
	Type             string
	AssetURL         string
	ExternalVideoRef string
	Featured         bool
	Order            int
	Tags             []string
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Title            *string
	Category         *string
	Type             *string
	AssetURL         *string
	ExternalVideoRef *string
	Featured         *bool
	Order            *int
	Tags             []string
}

// Create validates and stores a new media document.
func (s *Service) Create(ctx context.Context, p CreateParams) (domain.Media, error) {
	mediaType, err := domain.ParseMediaType(p.Type)
	if err != nil {
		return domain.Media{}, err
	}

	now := time.Now().UTC()
	m := domain.Media{
		ID:               uuid.NewString(),
		Title:            p.Title,
		Category:         p.Category,
		Type:             mediaType,
		AssetURL:         p.AssetURL,
		ExternalVideoRef: p.ExternalVideoRef,
		Featured:         p.Featured,
		Order:            p.Order,
		Tags:             p.Tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := m.Validate(); err != nil {
		return domain.Media{}, err
	}

	if err := s.repo.Save(ctx, &m); err != nil {
		return domain.Media{}, fmt.Errorf("create media: %w", err)
	}

	s.logger.Info("media created",
		zap.String("id", m.ID), zap.String("type", string(m.Type)))
	return m, nil
}

// Get returns a media document by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Media, error) {
	return s.repo.Get(ctx, id)
}

// List returns media matching the filter in curated order.
func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.Media, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	domain.SortByOrder(items)
	return items, nil
}

// Update applies a partial update. Changing the asset URL invalidates the
// stored caption and embedding; the reindexing job rebuilds them.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (domain.Media, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Media{}, err
	}

	assetChanged := false

	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Type != nil {
		mediaType, err := domain.ParseMediaType(*p.Type)
		if err != nil {
			return domain.Media{}, err
		}
		m.Type = mediaType
	}
	if p.AssetURL != nil && *p.AssetURL != m.AssetURL {
		m.AssetURL = *p.AssetURL
		assetChanged = true
	}
	if p.ExternalVideoRef != nil {
		m.ExternalVideoRef = *p.ExternalVideoRef
	}
	if p.Featured != nil {
		m.Featured = *p.Featured
	}
	if p.Order != nil {
		m.Order = *p.Order
	}
	if p.Tags != nil {
		m.Tags = p.Tags
	}

	if assetChanged {
		m.Caption = ""
		m.Embedding = nil
	}

	if err := m.Validate(); err != nil {
		return domain.Media{}, err
	}

	m.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, &m); err != nil {
		return domain.Media{}, fmt.Errorf("update media %s: %w", id, err)
	}

	s.logger.Info("media updated",
		zap.String("id", id), zap.Bool("asset_changed", assetChanged))
	return m, nil
}

// Delete removes a media document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("media deleted", zap.String("id", id))
	return nil
}
