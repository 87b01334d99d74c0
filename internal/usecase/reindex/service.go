package reindex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/averene/folio/internal/domain"
)

// Summary reports the outcome of a reindexing run.
type Summary struct {
	Total   int
	Updated int
	Failed  int
}

// Service rebuilds captions and embeddings for hosted images. Items are
// processed sequentially; one failure never aborts the run.
type Service struct {
	repo     Repository
	caption  domain.Captioner
	embed    domain.Embedder
	logger   *zap.Logger
	progress func(done, total int)
}

// New creates a reindexing service.
func New(repo Repository, caption domain.Captioner, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, caption: caption, embed: embed, logger: logger}
}

// WithProgress registers a callback invoked after each processed item.
func (s *Service) WithProgress(fn func(done, total int)) *Service {
	s.progress = fn
	return s
}

// Run captions and embeds every hosted image. Returns an error only when the
// candidate listing fails or the provider is absent; per-item failures are
// logged and counted.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	if s.caption == nil || s.embed == nil {
		return Summary{}, domain.ErrProviderNotConfigured
	}

	items, err := s.repo.ListImagesWithAssets(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list reindex candidates: %w", err)
	}

	sum := Summary{Total: len(items)}

	for i, m := range items {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if err := s.reindexOne(ctx, &m); err != nil {
			sum.Failed++
			s.logger.Warn("reindex item failed",
				zap.String("id", m.ID), zap.Error(err))
		} else {
			sum.Updated++
		}

		if s.progress != nil {
			s.progress(i+1, len(items))
		}
	}

	s.logger.Info("reindex complete",
		zap.Int("total", sum.Total),
		zap.Int("updated", sum.Updated),
		zap.Int("failed", sum.Failed))
	return sum, nil
}

func (s *Service) reindexOne(ctx context.Context, m *domain.Media) error {
	caption, err := s.caption.CaptionImage(ctx, m.AssetURL)
	if err != nil {
		return fmt.Errorf("caption: %w", err)
	}
	if caption == "" {
		return fmt.Errorf("caption: empty result")
	}

	vec, err := s.embed.EmbedText(ctx, caption)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	if err := s.repo.SetIndex(ctx, m.ID, caption, vec); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}
