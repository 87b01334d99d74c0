package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/averene/folio/internal/domain"
	"github.com/averene/folio/internal/domain/keyword"
)

// Limits bounds the result count for both search modes.
type Limits struct {
	Default int
	Max     int
}

// Params carries a normalized search request.
type Params struct {
	Query string
	Type  string
	Limit int
}

// Service handles keyword and semantic media search. Search is read-only and
// degrades to empty results on any failure; errors surface in logs, never to
// the gallery.
type Service struct {
	repo   Repository
	embed  domain.Embedder // nil when the provider is not configured
	limits Limits
	logger *zap.Logger
}

// New creates a search service. embed may be nil; semantic search then
// returns empty results.
func New(repo Repository, embed domain.Embedder, limits Limits, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, limits: limits, logger: logger}
}

// Lexical runs the keyword search. A blank query lists everything in
// curated order.
func (s *Service) Lexical(ctx context.Context, p Params) []domain.Media {
	limit := s.clampLimit(p.Limit)

	if p.Query == "" {
		return s.listSorted(ctx, p.Type, limit)
	}

	tokens := keyword.Tokenize(p.Query)
	keywords := keyword.Expand(p.Query)

	scored, err := s.repo.SearchLexical(ctx, tokens, keywords, p.Type, limit)
	if err != nil {
		s.logger.Error("lexical search failed",
			zap.String("query", p.Query), zap.Error(err))
		return []domain.Media{}
	}

	domain.SortByRelevance(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	items := make([]domain.Media, len(scored))
	for i, r := range scored {
		items[i] = r.Media
	}
	return items
}

// Semantic embeds the query and ranks embedded documents by cosine
// similarity. Only positive similarities qualify.
func (s *Service) Semantic(ctx context.Context, p Params) []domain.ScoredMedia {
	if p.Query == "" || s.embed == nil {
		return []domain.ScoredMedia{}
	}

	limit := s.clampLimit(p.Limit)

	vec, err := s.embed.EmbedText(ctx, p.Query)
	if err != nil {
		s.logger.Error("query embedding failed",
			zap.String("query", p.Query), zap.Error(err))
		return []domain.ScoredMedia{}
	}

	candidates, err := s.repo.ListEmbedded(ctx, p.Type)
	if err != nil {
		s.logger.Error("listing embedded media failed", zap.Error(err))
		return []domain.ScoredMedia{}
	}

	scored := make([]domain.ScoredMedia, 0, len(candidates))
	for _, m := range candidates {
		sim := domain.CosineSimilarity(vec, m.Embedding)
		if sim <= 0 {
			continue
		}
		scored = append(scored, domain.ScoredMedia{Media: m, Score: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func (s *Service) listSorted(ctx context.Context, mediaType string, limit int) []domain.Media {
	items, err := s.repo.List(ctx, domain.ListFilter{Type: mediaType, Limit: limit})
	if err != nil {
		s.logger.Error("media listing failed", zap.Error(err))
		return []domain.Media{}
	}
	domain.SortByOrder(items)
	if items == nil {
		return []domain.Media{}
	}
	return items
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limits.Default
	}
	if limit > s.limits.Max {
		return s.limits.Max
	}
	return limit
}
