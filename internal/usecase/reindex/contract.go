package reindex

import (
	"context"

	"github.com/averene/folio/internal/domain"
)

// Repository defines the storage contract for embedding reindexing.
type Repository interface {
	ListImagesWithAssets(ctx context.Context) ([]domain.Media, error)
	SetIndex(ctx context.Context, id, caption string, vec []float32) error
}
