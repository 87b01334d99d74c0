package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/averene/folio/internal/domain"
)

// Hash field names for a stored media document.
const (
	fieldID               = "id"
	fieldTitle            = "title"
	fieldCategory         = "category"
	fieldType             = "type"
	fieldAssetURL         = "asset_url"
	fieldExternalVideoRef = "external_video_ref"
	fieldFeatured         = "featured"
	fieldOrder            = "order"
	fieldTags             = "tags"
	fieldCaption          = "caption"
	fieldEmbedding        = "embedding"
	fieldIndexed          = "indexed"
	fieldCreatedAt        = "created_at"
	fieldUpdatedAt        = "updated_at"
)

// buildHashFields converts a domain Media into a flat map[string]string for HSET.
func buildHashFields(m *domain.Media) map[string]string {
	fields := map[string]string{
		fieldID:               m.ID,
		fieldTitle:            m.Title,
		fieldCategory:         m.Category,
		fieldType:             string(m.Type),
		fieldAssetURL:         m.AssetURL,
		fieldExternalVideoRef: m.ExternalVideoRef,
		fieldFeatured:         boolToFlag(m.Featured),
		fieldOrder:            strconv.Itoa(m.Order),
		fieldTags:             strings.Join(m.Tags, ","),
		fieldCaption:          m.Caption,
		fieldCreatedAt:        strconv.FormatInt(m.CreatedAt.UnixMilli(), 10),
		fieldUpdatedAt:        strconv.FormatInt(m.UpdatedAt.UnixMilli(), 10),
	}

	if len(m.Embedding) > 0 {
		fields[fieldEmbedding] = string(domain.EncodeVector(m.Embedding))
		fields[fieldIndexed] = "1"
	} else {
		fields[fieldEmbedding] = ""
		fields[fieldIndexed] = "0"
	}

	return fields
}

// parseHashFields converts a flat hash map back into a domain Media.
func parseHashFields(id string, fields map[string]string) (domain.Media, error) {
	m := domain.Media{
		ID:               id,
		Title:            fields[fieldTitle],
		Category:         fields[fieldCategory],
		AssetURL:         fields[fieldAssetURL],
		ExternalVideoRef: fields[fieldExternalVideoRef],
		Featured:         fields[fieldFeatured] == "1",
		Caption:          fields[fieldCaption],
	}

	mediaType, err := domain.ParseMediaType(fields[fieldType])
	if err != nil {
		return domain.Media{}, fmt.Errorf("media %s: %w", id, err)
	}
	m.Type = mediaType

	if v := fields[fieldOrder]; v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			return domain.Media{}, fmt.Errorf("media %s: invalid order %q: %w", id, v, err)
		}
		m.Order = order
	}

	if v := fields[fieldTags]; v != "" {
		m.Tags = strings.Split(v, ",")
	}

	if v := fields[fieldEmbedding]; v != "" {
		vec, err := domain.DecodeVector([]byte(v))
		if err != nil {
			return domain.Media{}, fmt.Errorf("media %s: %w", id, err)
		}
		m.Embedding = vec
	}

	m.CreatedAt = parseMillis(fields[fieldCreatedAt])
	m.UpdatedAt = parseMillis(fields[fieldUpdatedAt])

	return m, nil
}

func parseMillis(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func boolToFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
