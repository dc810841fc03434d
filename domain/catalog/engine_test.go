package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docAt(id string, age time.Duration) Document {
	return Document{
		ID:        id,
		Title:     "Doc " + id,
		Category:  "AI Prompts",
		CreatedAt: time.Now().Add(-age),
	}
}

func TestExecute_SearchTokensAreANDedAcrossFields(t *testing.T) {
	docs := []Document{
		{ID: "a", Title: "alpha writer", CreatedAt: time.Now()},
		{ID: "b", Tags: []string{"beta"}, CreatedAt: time.Now()},
		{ID: "c", Title: "alpha assistant", Tags: []string{"beta"}, CreatedAt: time.Now()},
	}

	// Both tokens must match somewhere on the same document.
	page, total := Execute(docs, Query{Search: "alpha beta"})
	require.Equal(t, 1, total)
	assert.Equal(t, "c", page[0].ID)

	// A single token matches in any field.
	_, total = Execute(docs, Query{Search: "alpha"})
	assert.Equal(t, 2, total)

	_, total = Execute(docs, Query{Search: "beta"})
	assert.Equal(t, 2, total)
}

func TestExecute_SearchIsCaseInsensitiveAcrossAllFields(t *testing.T) {
	docs := []Document{
		{ID: "title", Title: "Marketing Copy"},
		{ID: "desc", Description: "for MARKETING teams"},
		{ID: "cat", Category: "Marketing"},
		{ID: "kw", Keywords: []string{"marketing"}},
		{ID: "tag", Tags: []string{"Marketing"}},
		{ID: "content", Content: "great marketing prompt"},
		{ID: "none", Title: "unrelated"},
	}

	_, total := Execute(docs, Query{Search: "mArKeTiNg"})
	assert.Equal(t, 6, total)
}

func TestExecute_EmptySearchPassesEverything(t *testing.T) {
	docs := []Document{docAt("a", time.Hour), docAt("b", time.Minute)}

	_, total := Execute(docs, Query{Search: ""})
	assert.Equal(t, 2, total)

	_, total = Execute(docs, Query{Search: "   "})
	assert.Equal(t, 2, total)
}

func TestExecute_FiltersComposeOrderIndependently(t *testing.T) {
	featured := true
	docs := []Document{
		{ID: "a", Category: "Marketing", Tags: []string{"email"}, IsFeatured: true},
		{ID: "b", Category: "Marketing", Tags: []string{"seo"}},
		{ID: "c", Category: "Coding", Tags: []string{"email"}, IsFeatured: true},
		{ID: "d", Category: "Marketing", Tags: []string{"email"}},
	}

	// Independent AND filters: the result set is the intersection no
	// matter how the filters are conceptually ordered.
	page, total := Execute(docs, Query{Category: "Marketing", Tags: []string{"email"}, Featured: &featured})
	require.Equal(t, 1, total)
	assert.Equal(t, "a", page[0].ID)

	// Pairwise combinations agree with manual intersection.
	_, catAndTag := Execute(docs, Query{Category: "Marketing", Tags: []string{"email"}})
	assert.Equal(t, 2, catAndTag) // a, d
}

func TestExecute_CategoryAllIsNoFilter(t *testing.T) {
	docs := []Document{
		{ID: "a", Category: "Marketing"},
		{ID: "b", Category: "Coding"},
	}

	_, total := Execute(docs, Query{Category: CategoryAll})
	assert.Equal(t, 2, total)

	_, total = Execute(docs, Query{Category: ""})
	assert.Equal(t, 2, total)

	_, total = Execute(docs, Query{Category: "Coding"})
	assert.Equal(t, 1, total)
}

func TestExecute_TagFilterMatchesAnyRequestedTag(t *testing.T) {
	docs := []Document{
		{ID: "a", Tags: []string{"email", "copy"}},
		{ID: "b", Tags: []string{"seo"}},
		{ID: "c"},
	}

	page, total := Execute(docs, Query{Tags: []string{"copy", "seo"}})
	require.Equal(t, 2, total)
	ids := []string{page[0].ID, page[1].ID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestExecute_CreatorFilter(t *testing.T) {
	docs := []Document{
		{ID: "a", CreatedBy: "user-1"},
		{ID: "b", CreatedBy: "user-2"},
	}

	page, total := Execute(docs, Query{CreatedBy: "user-2"})
	require.Equal(t, 1, total)
	assert.Equal(t, "b", page[0].ID)
}

func TestExecute_SortsNewestFirst(t *testing.T) {
	docs := []Document{
		docAt("old", 3*time.Hour),
		docAt("new", time.Minute),
		docAt("mid", time.Hour),
	}

	page, _ := Execute(docs, Query{})
	require.Len(t, page, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{page[0].ID, page[1].ID, page[2].ID})
}

func TestExecute_ZeroTimestampsKeepStableOrder(t *testing.T) {
	docs := []Document{
		{ID: "x"},
		{ID: "y"},
		docAt("dated", time.Minute),
	}

	page, _ := Execute(docs, Query{})
	require.Len(t, page, 3)
	assert.Equal(t, "dated", page[0].ID)
	// Undated documents compare equal; stable sort preserves input order.
	assert.Equal(t, "x", page[1].ID)
	assert.Equal(t, "y", page[2].ID)
}

func TestExecute_PaginationBounds(t *testing.T) {
	docs := make([]Document, 0, 8)
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		docs = append(docs, docAt(id, time.Duration(len(docs))*time.Minute))
	}

	// Page length never exceeds limit.
	page, total := Execute(docs, Query{Limit: 3, Offset: 0})
	assert.Equal(t, 8, total)
	assert.Len(t, page, 3)

	// Offset past the end yields an empty page, not an error.
	page, total = Execute(docs, Query{Limit: 3, Offset: 100})
	assert.Equal(t, 8, total)
	assert.Empty(t, page)

	p := NewPage(page, total, 3, 100)
	assert.False(t, p.HasMore)

	// Partial last page.
	page, _ = Execute(docs, Query{Limit: 3, Offset: 6})
	assert.Len(t, page, 2)
}

func TestExecute_CoercesMalformedPagination(t *testing.T) {
	docs := []Document{docAt("a", time.Minute), docAt("b", time.Hour)}

	// limit <= 0 coerced to the default, negative offset to 0.
	page, total := Execute(docs, Query{Limit: 0, Offset: -5})
	assert.Equal(t, 2, total)
	assert.Len(t, page, 2)
}

func TestExecute_CategoryPaging(t *testing.T) {
	var docs []Document
	for i := 0; i < 5; i++ {
		d := docAt("match", time.Duration(i)*time.Minute)
		d.Category = "AI Prompts"
		docs = append(docs, d)
	}
	for i := 0; i < 3; i++ {
		d := docAt("other", time.Duration(i)*time.Hour)
		d.Category = "Coding"
		docs = append(docs, d)
	}

	items, total := Execute(docs, Query{Category: "AI Prompts", Limit: 2, Offset: 0})
	page := NewPage(items, total, 2, 0)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.TotalCount)
	assert.True(t, page.HasMore)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
}

func TestCountByCategory(t *testing.T) {
	docs := []Document{
		{Category: "Marketing"},
		{Category: "Marketing"},
		{Category: "Coding"},
	}

	assert.Equal(t, 2, CountByCategory(docs, "Marketing"))
	assert.Equal(t, 0, CountByCategory(docs, "Missing"))
	assert.Equal(t, 3, CountByCategory(docs, CategoryAll))
	assert.Equal(t, 3, CountByCategory(docs, ""))
}
