package media

import (
	"context"

	"github.com/averene/folio/internal/domain"
)

// Repository defines the storage contract for media management.
type Repository interface {
	Save(ctx context.Context, m *domain.Media) error
	Get(ctx context.Context, id string) (domain.Media, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.ListFilter) ([]domain.Media, error)
}
