package search

import (
	"context"

	"github.com/averene/folio/internal/domain"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchLexical(
		ctx context.Context, tokens, keywords []string, mediaType string, limit int,
	) ([]domain.ScoredMedia, error)

	List(ctx context.Context, f domain.ListFilter) ([]domain.Media, error)

	ListEmbedded(ctx context.Context, mediaType string) ([]domain.Media, error)
}
