package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Coercions(t *testing.T) {
	q := Query{Limit: 0, Offset: -3, Search: "  hello  "}.Normalize()

	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, CategoryAll, q.Category)
	assert.Equal(t, "hello", q.Search)

	q = Query{Limit: -1}.Normalize()
	assert.Equal(t, DefaultLimit, q.Limit)

	q = Query{Limit: 50, Offset: 10, Category: "Coding"}.Normalize()
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, 10, q.Offset)
	assert.Equal(t, "Coding", q.Category)
}

func TestCacheKey_Deterministic(t *testing.T) {
	featured := true

	a := Query{
		Search:    "email copy",
		Category:  "Marketing",
		Tags:      []string{"seo", "ads"},
		Featured:  &featured,
		CreatedBy: "user-1",
		Limit:     10,
		Offset:    20,
	}
	// Same semantics, different tag order and search spacing/case.
	b := Query{
		Search:    "  Email   COPY ",
		Category:  "Marketing",
		Tags:      []string{"ads", "seo"},
		Featured:  &featured,
		CreatedBy: "user-1",
		Limit:     10,
		Offset:    20,
	}

	assert.Equal(t, a.CacheKey("prompts:results"), b.CacheKey("prompts:results"))
}

func TestCacheKey_OmitsDefaults(t *testing.T) {
	plain := Query{}.CacheKey("prompts:results")
	allCat := Query{Category: CategoryAll}.CacheKey("prompts:results")

	assert.Equal(t, plain, allCat)
	assert.Equal(t, "prompts:results:limit=20:offset=0", plain)
}

func TestCacheKey_DistinguishesPagination(t *testing.T) {
	a := Query{Limit: 10}.CacheKey("prompts:results")
	b := Query{Limit: 25}.CacheKey("prompts:results")
	c := Query{Limit: 10, Offset: 10}.CacheKey("prompts:results")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCacheKey_DistinguishesFilters(t *testing.T) {
	featuredTrue, featuredFalse := true, false

	keys := []string{
		Query{}.CacheKey("p:results"),
		Query{Search: "x"}.CacheKey("p:results"),
		Query{Category: "Coding"}.CacheKey("p:results"),
		Query{Tags: []string{"x"}}.CacheKey("p:results"),
		Query{Featured: &featuredTrue}.CacheKey("p:results"),
		Query{Featured: &featuredFalse}.CacheKey("p:results"),
		Query{CreatedBy: "u"}.CacheKey("p:results"),
	}

	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
}

func TestCacheKey_StaysUnderResultPrefix(t *testing.T) {
	r := Resource{Name: "prompts"}
	key := Query{Search: "x", Limit: 5}.CacheKey(r.ResultPrefix())

	assert.True(t, strings.HasPrefix(key, "prompts:results:"))
}

func TestResourceKeys(t *testing.T) {
	r := Resource{Name: "tools"}

	assert.Equal(t, "tools:results:*", r.ResultPattern())
	assert.Equal(t, "tools:doc:abc", r.DocumentKey("abc"))
	assert.Equal(t, "tools:count:total", r.CountKey())
	assert.Equal(t, "tools:count:category:Coding", r.CategoryCountKey("Coding"))
}

func TestNewPage_Envelope(t *testing.T) {
	p := NewPage(nil, 45, 20, 20)

	assert.Equal(t, 45, p.TotalCount)
	assert.True(t, p.HasMore)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)

	last := NewPage(nil, 45, 20, 40)
	assert.False(t, last.HasMore)

	empty := NewPage(nil, 0, 20, 0)
	assert.False(t, empty.HasMore)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestToggleLike_KeepsCountConsistent(t *testing.T) {
	doc := Document{}

	assert.True(t, doc.ToggleLike("u1"))
	assert.True(t, doc.ToggleLike("u2"))
	assert.Equal(t, 2, doc.LikeCount)
	assert.Len(t, doc.Likes, 2)
	assert.True(t, doc.LikedBy("u1"))

	assert.False(t, doc.ToggleLike("u1"))
	assert.Equal(t, 1, doc.LikeCount)
	assert.Len(t, doc.Likes, 1)
	assert.False(t, doc.LikedBy("u1"))
}
