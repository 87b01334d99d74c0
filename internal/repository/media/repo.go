package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/averene/folio/internal/db"
	"github.com/averene/folio/internal/domain"
)

// maxEmbeddedCandidates bounds how many embedded documents a semantic
// search scores in one pass.
const maxEmbeddedCandidates = 10000

// store is the consumer interface for media persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchSorted(ctx context.Context, q *db.SortQuery) (*db.SearchResult, error)
}

// Repo implements the media repository over Redis hashes plus an FT index.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a media repository. keyPrefix namespaces all keys, e.g. "folio:".
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

func (r *Repo) key(id string) string {
	return r.keyPrefix + "media:" + id
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "media:idx"
}

// returnFieldsBasic is every hash field except the embedding blob.
var returnFieldsBasic = []string{
	fieldID, fieldTitle, fieldCategory, fieldType, fieldAssetURL,
	fieldExternalVideoRef, fieldFeatured, fieldOrder, fieldTags,
	fieldCaption, fieldCreatedAt, fieldUpdatedAt,
}

var returnFieldsWithEmbedding = append(
	append([]string{}, returnFieldsBasic...), fieldEmbedding,
)

// Save writes the full document.
func (r *Repo) Save(ctx context.Context, m *domain.Media) error {
	if err := r.store.HSet(ctx, r.key(m.ID), buildHashFields(m)); err != nil {
		return fmt.Errorf("save media %s: %w", m.ID, err)
	}
	return nil
}

// Get returns a media document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Media, error) {
	fields, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return domain.Media{}, fmt.Errorf("get media %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Media{}, domain.ErrNotFound
	}
	return parseHashFields(id, fields)
}

// Delete removes a media document. Returns domain.ErrNotFound for unknown IDs.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return fmt.Errorf("check media %s: %w", id, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("delete media %s: %w", id, err)
	}
	return nil
}

// List returns documents matching the filter, sorted by order ascending
// storage-side. Ties on order are resolved by the caller.
func (r *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Media, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = maxEmbeddedCandidates
	}

	sr, err := r.store.SearchSorted(ctx, &db.SortQuery{
		IndexName:    r.indexName(),
		Query:        buildFilterQuery(f),
		SortBy:       fieldOrder,
		Limit:        limit,
		ReturnFields: returnFieldsBasic,
	})
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	return r.parseEntries(sr)
}

// SearchLexical runs a relevance-scored keyword search. tokens are the raw
// query words, keywords the expanded synonyms; mediaType optionally narrows
// the result to one type.
func (r *Repo) SearchLexical(
	ctx context.Context, tokens, keywords []string, mediaType string, limit int,
) ([]domain.ScoredMedia, error) {
	query := buildLexicalQuery(tokens, keywords, mediaType)
	if query == "" {
		return nil, nil
	}

	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        query,
		Limit:        limit,
		ReturnFields: returnFieldsBasic,
	})
	if err != nil {
		return nil, fmt.Errorf("search media: %w", err)
	}

	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	scored := make([]domain.ScoredMedia, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		m, err := parseHashFields(r.entryID(entry.Key), entry.Fields)
		if err != nil {
			continue
		}
		scored = append(scored, domain.ScoredMedia{Media: m, Score: entry.Score})
	}
	return scored, nil
}

// ListEmbedded returns every document that carries an embedding, optionally
// narrowed by type. Embeddings are included in the result.
func (r *Repo) ListEmbedded(ctx context.Context, mediaType string) ([]domain.Media, error) {
	query := "@" + fieldIndexed + ":[1 1]"
	if mediaType != "" {
		query = fmt.Sprintf("@type:{%s} %s", escapeTag(mediaType), query)
	}

	sr, err := r.store.SearchSorted(ctx, &db.SortQuery{
		IndexName:    r.indexName(),
		Query:        query,
		Limit:        maxEmbeddedCandidates,
		ReturnFields: returnFieldsWithEmbedding,
	})
	if err != nil {
		return nil, fmt.Errorf("list embedded media: %w", err)
	}

	return r.parseEntries(sr)
}

// ListImagesWithAssets returns every image that has a hosted asset URL,
// the candidate set for embedding reindexing.
func (r *Repo) ListImagesWithAssets(ctx context.Context) ([]domain.Media, error) {
	sr, err := r.store.SearchSorted(ctx, &db.SortQuery{
		IndexName:    r.indexName(),
		Query:        fmt.Sprintf("@type:{%s}", domain.MediaImage),
		SortBy:       fieldOrder,
		Limit:        maxEmbeddedCandidates,
		ReturnFields: returnFieldsBasic,
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	items, err := r.parseEntries(sr)
	if err != nil {
		return nil, err
	}

	withAssets := items[:0]
	for _, m := range items {
		if m.AssetURL != "" {
			withAssets = append(withAssets, m)
		}
	}
	return withAssets, nil
}

// SetIndex stores the caption and embedding produced by reindexing and
// flips the indexed flag.
func (r *Repo) SetIndex(ctx context.Context, id, caption string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("set index %s: empty embedding", id)
	}
	fields := map[string]string{
		fieldCaption:   caption,
		fieldEmbedding: string(domain.EncodeVector(vec)),
		fieldIndexed:   "1",
	}
	if err := r.store.HSet(ctx, r.key(id), fields); err != nil {
		return fmt.Errorf("set index %s: %w", id, err)
	}
	return nil
}

func (r *Repo) entryID(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix+"media:")
}

func (r *Repo) parseEntries(sr *db.SearchResult) ([]domain.Media, error) {
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}
	items := make([]domain.Media, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		m, err := parseHashFields(r.entryID(entry.Key), entry.Fields)
		if err != nil {
			continue
		}
		items = append(items, m)
	}
	return items, nil
}
