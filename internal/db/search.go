package db

// TextQuery is the input for a relevance-scored text search.
type TextQuery struct {
	IndexName    string
	Query        string
	Limit        int
	ReturnFields []string
}

// SortQuery is the input for a field-sorted search (no relevance scoring).
type SortQuery struct {
	IndexName    string
	Query        string
	SortBy       string
	Descending   bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
