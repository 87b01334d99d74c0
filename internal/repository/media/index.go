package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/averene/folio/internal/db"
)

// indexStore is the consumer interface for index lifecycle (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// EnsureIndex creates the media FT index if it does not exist yet.
// Tag fields hold exact category/type/tag filters; the category and tags
// aliases add tokenized TEXT copies so free-text queries can match them.
func EnsureIndex(ctx context.Context, s indexStore, keyPrefix string) error {
	name := keyPrefix + "media:idx"

	exists, err := s.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{keyPrefix + "media:"},
		Fields: []db.IndexField{
			{Name: fieldTitle, Type: db.IndexFieldText},
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldCategory, Alias: "category_text", Type: db.IndexFieldText},
			{Name: fieldType, Type: db.IndexFieldTag},
			{Name: fieldTags, Type: db.IndexFieldTag, TagSeparator: ","},
			{Name: fieldTags, Alias: "tags_text", Type: db.IndexFieldText},
			{Name: fieldFeatured, Type: db.IndexFieldNumeric},
			{Name: fieldOrder, Type: db.IndexFieldNumeric, Sortable: true},
			{Name: fieldCreatedAt, Type: db.IndexFieldNumeric, Sortable: true},
			{Name: fieldIndexed, Type: db.IndexFieldNumeric},
		},
	}

	if err := s.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}
