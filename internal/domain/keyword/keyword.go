// Package keyword expands free-text queries into synonym sets via a fixed
// topic table.
package keyword

import (
	"sort"
	"strings"
)

// topics maps a topic key to its synonym group. A query token matching either
// the key or any group member pulls the whole group into the expansion.
var topics = map[string][]string{
	"travel":   {"travel", "trip", "journey", "vacation", "wander", "wanderlust"},
	"portrait": {"portrait", "portraits", "headshot", "people", "person"},
	"nature":   {"nature", "forest", "trees", "mountain", "mountains", "landscape"},
	"street":   {"street", "urban", "city", "downtown"},
	"design":   {"design", "graphic", "poster", "branding"},
	"video":    {"video", "film", "cinematic"},
	"image":    {"photo", "image", "picture"},
}

// Expand tokenizes the query and returns the union of all matched synonym
// groups. The result is deduplicated and sorted; membership is what matters,
// not order. An empty slice means no topic matched.
func Expand(query string) []string {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for key, group := range topics {
		if !matchesGroup(tokens, key, group) {
			continue
		}
		for _, syn := range group {
			seen[syn] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Tokenize lower-cases the input and splits on runs of non-alphanumeric
// characters, dropping empties.
func Tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		return !isLower && !isDigit
	})
}

func matchesGroup(tokens []string, key string, group []string) bool {
	for _, t := range tokens {
		if t == key {
			return true
		}
		for _, syn := range group {
			if t == syn {
				return true
			}
		}
	}
	return false
}
