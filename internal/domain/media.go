package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MediaType enumerates the two media variants.
type MediaType string

const (
	// MediaImage is a hosted still image.
	MediaImage MediaType = "image"
	// MediaVideo is a video, either hosted or referenced by an external link.
	MediaVideo MediaType = "video"
)

// ParseMediaType validates a raw type string.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaImage, MediaVideo:
		return MediaType(s), nil
	}
	return "", fmt.Errorf("%w: type must be %q or %q, got %q", ErrInvalidMedia, MediaImage, MediaVideo, s)
}

// Media is a single portfolio item. Searches never mutate it; caption and
// embedding are populated only by the reindexing job.
type Media struct {
	ID               string
	Title            string
	Category         string
	Type             MediaType
	AssetURL         string
	ExternalVideoRef string
	Featured         bool
	Order            int
	Tags             []string
	Caption          string
	Embedding        []float32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the invariants every stored document must satisfy.
func (m *Media) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidMedia)
	}
	if _, err := ParseMediaType(string(m.Type)); err != nil {
		return err
	}
	return nil
}

// ListFilter narrows a sorted media listing. Zero values mean "no filter".
type ListFilter struct {
	Type     string
	Category string
	Featured *bool
	Limit    int
}

// ScoredMedia is a media document paired with a response-only relevance score.
type ScoredMedia struct {
	Media
	Score float64
}

// SortByOrder sorts by order ascending, then createdAt descending (newest
// first). This is the deterministic sort applied when no relevance score exists.
func SortByOrder(items []Media) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// SortByRelevance sorts by score descending, then order ascending, then
// createdAt descending.
func SortByRelevance(items []ScoredMedia) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
