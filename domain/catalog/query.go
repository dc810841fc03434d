package catalog

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// CategoryAll is the sentinel that disables category filtering.
	CategoryAll = "All"

	// DefaultLimit is applied when a query carries no usable limit.
	DefaultLimit = 20
)

// Resource identifies one cached collection (e.g. "prompts", "tools")
// and owns the cache key scheme for everything derived from it. All
// keys for a resource live under "<name>:" so a coarse purge is a
// single prefix pattern.
type Resource struct {
	Name string
}

// ResultPrefix is the key prefix shared by all cached query pages.
func (r Resource) ResultPrefix() string { return r.Name + ":results" }

// ResultPattern matches every cached query page for the resource.
func (r Resource) ResultPattern() string { return r.ResultPrefix() + ":*" }

// DocumentKey is the cache key for a single document entry.
func (r Resource) DocumentKey(id string) string { return r.Name + ":doc:" + id }

// CountKey is the well-known key holding the total document count.
func (r Resource) CountKey() string { return r.Name + ":count:total" }

// CategoryCountKey holds the per-category document count.
func (r Resource) CategoryCountKey(category string) string {
	return r.Name + ":count:category:" + category
}

// Query is the full set of list parameters: free-text search, the
// structured filters, and pagination. It is never persisted; it only
// feeds the query engine and the result cache key.
type Query struct {
	Search    string   `json:"search,omitempty"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Featured  *bool    `json:"featured,omitempty"`
	CreatedBy string   `json:"createdBy,omitempty"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
}

// Normalize coerces malformed pagination and filter input to safe
// defaults instead of rejecting it: non-positive limits become
// DefaultLimit, negative offsets become 0, and an empty category means
// "All".
func (q Query) Normalize() Query {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Category == "" {
		q.Category = CategoryAll
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// CacheKey derives the deterministic result cache key for the query.
// Only non-default components contribute, in a fixed order (search,
// category, tags, featured, creator, then always limit and offset), so
// semantically identical queries share a key and keys for different
// queries never collide. Tags are sorted so request ordering does not
// matter; search tokens are lower-cased and re-joined so whitespace
// variations collapse.
func (q Query) CacheKey(prefix string) string {
	q = q.Normalize()
	parts := []string{prefix}
	if q.Search != "" {
		parts = append(parts, "q="+strings.Join(strings.Fields(strings.ToLower(q.Search)), " "))
	}
	if q.Category != CategoryAll {
		parts = append(parts, "cat="+q.Category)
	}
	if len(q.Tags) > 0 {
		tags := append([]string(nil), q.Tags...)
		sort.Strings(tags)
		parts = append(parts, "tags="+strings.Join(tags, ","))
	}
	if q.Featured != nil {
		parts = append(parts, "feat="+strconv.FormatBool(*q.Featured))
	}
	if q.CreatedBy != "" {
		parts = append(parts, "by="+q.CreatedBy)
	}
	parts = append(parts,
		"limit="+strconv.Itoa(q.Limit),
		"offset="+strconv.Itoa(q.Offset),
	)
	return strings.Join(parts, ":")
}

// Page is one computed (and cacheable) list response.
type Page struct {
	Items       []Document `json:"items"`
	TotalCount  int        `json:"totalCount"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	HasMore     bool       `json:"hasMore"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	FromCache   bool       `json:"fromCache"`
}

// NewPage builds the pagination envelope for a computed slice. limit
// must already be normalized (> 0).
func NewPage(items []Document, total, limit, offset int) *Page {
	return &Page{
		Items:       items,
		TotalCount:  total,
		Limit:       limit,
		Offset:      offset,
		HasMore:     offset+limit < total,
		CurrentPage: offset/limit + 1,
		TotalPages:  (total + limit - 1) / limit,
	}
}
