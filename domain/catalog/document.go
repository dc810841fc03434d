// Package catalog holds the marketplace listing domain: the document
// shape shared by prompts and AI tools, the query value used by list
// endpoints, and the pure query engine that evaluates a query against
// an in-memory snapshot of a collection.
package catalog

import "time"

// Document is a single marketplace listing (a prompt or an AI tool).
// Both resource types share this shape; resource-specific payloads go
// into Content.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	IsFeatured  bool      `json:"isFeatured"`
	Likes       []string  `json:"likes,omitempty"`
	LikeCount   int       `json:"likeCount"`
	ViewCount   int       `json:"viewCount"`
	Version     int       `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LikedBy reports whether userID is in the document's like set.
func (d *Document) LikedBy(userID string) bool {
	for _, id := range d.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike adds userID to the like set if absent and removes it if
// present, keeping LikeCount equal to len(Likes). It returns true when
// the document ends up liked by the user.
//
// Callers must only invoke this inside the document store's
// transactional read-modify-write path; toggling a cached copy and
// writing it back loses concurrent likes.
func (d *Document) ToggleLike(userID string) bool {
	for i, id := range d.Likes {
		if id == userID {
			d.Likes = append(d.Likes[:i], d.Likes[i+1:]...)
			d.LikeCount = len(d.Likes)
			return false
		}
	}
	d.Likes = append(d.Likes, userID)
	d.LikeCount = len(d.Likes)
	return true
}

// DocumentPatch is a partial update; nil fields are left untouched.
type DocumentPatch struct {
	Title       *string
	Description *string
	Content     *string
	Category    *string
	Tags        *[]string
	Keywords    *[]string
	IsFeatured  *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Content == nil &&
		p.Category == nil && p.Tags == nil && p.Keywords == nil && p.IsFeatured == nil
}

// Apply copies the non-nil patch fields onto doc.
func (p DocumentPatch) Apply(doc *Document) {
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Description != nil {
		doc.Description = *p.Description
	}
	if p.Content != nil {
		doc.Content = *p.Content
	}
	if p.Category != nil {
		doc.Category = *p.Category
	}
	if p.Tags != nil {
		doc.Tags = *p.Tags
	}
	if p.Keywords != nil {
		doc.Keywords = *p.Keywords
	}
	if p.IsFeatured != nil {
		doc.IsFeatured = *p.IsFeatured
	}
}
