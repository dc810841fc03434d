package catalog

import (
	"sort"
	"strings"
)

// Execute evaluates a query against a snapshot of the collection and
// returns the requested page plus the total match count before
// pagination. It is a pure function: no I/O, deterministic for a given
// (snapshot, query) pair.
func Execute(docs []Document, q Query) ([]Document, int) {
	q = q.Normalize()

	matched := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if matchesSearch(&doc, q.Search) && matchesFilters(&doc, q) {
			matched = append(matched, doc)
		}
	}

	// Newest first. Zero timestamps compare equal; the stable sort
	// keeps their snapshot order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := q.Offset
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// matchesSearch applies free-text search: every whitespace-separated
// token must match (AND), where a token matches if it appears,
// case-insensitively, in any of the searchable fields (OR). An empty
// search passes everything.
func matchesSearch(doc *Document, search string) bool {
	if search == "" {
		return true
	}
	for _, token := range strings.Fields(strings.ToLower(search)) {
		if !matchesToken(doc, token) {
			return false
		}
	}
	return true
}

func matchesToken(doc *Document, token string) bool {
	if strings.Contains(strings.ToLower(doc.Title), token) ||
		strings.Contains(strings.ToLower(doc.Description), token) ||
		strings.Contains(strings.ToLower(doc.Category), token) ||
		strings.Contains(strings.ToLower(doc.Content), token) {
		return true
	}
	for _, kw := range doc.Keywords {
		if strings.Contains(strings.ToLower(kw), token) {
			return true
		}
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), token) {
			return true
		}
	}
	return false
}

// matchesFilters applies the structured filters with AND semantics.
// Each filter is optional and independent, so application order does
// not change the result set.
func matchesFilters(doc *Document, q Query) bool {
	if q.Category != CategoryAll && doc.Category != q.Category {
		return false
	}
	if len(q.Tags) > 0 && !hasAnyTag(doc.Tags, q.Tags) {
		return false
	}
	if q.Featured != nil && doc.IsFeatured != *q.Featured {
		return false
	}
	if q.CreatedBy != "" && doc.CreatedBy != q.CreatedBy {
		return false
	}
	return true
}

// hasAnyTag reports whether any document tag appears in the requested
// tag set.
func hasAnyTag(docTags, wanted []string) bool {
	for _, dt := range docTags {
		for _, w := range wanted {
			if dt == w {
				return true
			}
		}
	}
	return false
}

// CountByCategory returns how many snapshot documents carry the given
// category; CategoryAll counts everything.
func CountByCategory(docs []Document, category string) int {
	if category == "" || category == CategoryAll {
		return len(docs)
	}
	n := 0
	for i := range docs {
		if docs[i].Category == category {
			n++
		}
	}
	return n
}
