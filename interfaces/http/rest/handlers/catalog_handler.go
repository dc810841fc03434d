// Package handlers contains the HTTP handlers for the catalog API. One
// CatalogHandler serves one cache-backed collection; the router
// instantiates it for prompts and for tools.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"promptbay-backend/application/services"
	"promptbay-backend/domain/catalog"
	"promptbay-backend/pkg/auth"
	"promptbay-backend/pkg/common"
	apperrors "promptbay-backend/pkg/errors"
	"promptbay-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// CatalogHandler handles the HTTP surface of one resource collection.
type CatalogHandler struct {
	collection *services.Collection
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewCatalogHandler creates a handler bound to one collection.
func NewCatalogHandler(collection *services.Collection, errHandler *apperrors.ErrorHandler, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		collection: collection,
		errors:     errHandler,
		logger:     logger,
	}
}

// CreateDocumentRequest is the request body for creating a listing.
type CreateDocumentRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	Content     string   `json:"content,omitempty" validate:"omitempty,max=50000"`
	Category    string   `json:"category" validate:"required,max=100"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Keywords    []string `json:"keywords,omitempty" validate:"omitempty,max=20,dive,max=50"`
	IsFeatured  bool     `json:"isFeatured,omitempty"`
}

// UpdateDocumentRequest is the request body for a partial update.
type UpdateDocumentRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Content     *string   `json:"content,omitempty" validate:"omitempty,max=50000"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Keywords    *[]string `json:"keywords,omitempty" validate:"omitempty,max=20,dive,max=50"`
	IsFeatured  *bool     `json:"isFeatured,omitempty"`
}

// List handles GET /{resource}. The query-parameter contract:
// search|searchQuery, category (default "All"), tags (comma-separated),
// featured, createdBy, limit (default 20), offset (default 0).
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	page, err := h.collection.List(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	setCacheHeader(w, page.FromCache)
	common.RespondJSON(w, http.StatusOK, page)
}

// Get handles GET /{resource}/{id}. skipCache=true (or refresh=true)
// bypasses the single-document cache entry.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	skipCache := common.ExtractBool(r, "skipCache") || common.ExtractBool(r, "refresh")

	doc, fromCache, err := h.collection.Get(r.Context(), id, skipCache)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	setCacheHeader(w, fromCache)
	common.RespondJSON(w, http.StatusOK, doc)
}

// Create handles POST /{resource}.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, apperrors.NewUnauthorizedError(""))
		return
	}

	doc, err := h.collection.Create(r.Context(), catalog.Document{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		Keywords:    req.Keywords,
		IsFeatured:  req.IsFeatured,
		CreatedBy:   user.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, doc)
}

// Update handles PUT /{resource}/{id}.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req UpdateDocumentRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	patch := catalog.DocumentPatch{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		Keywords:    req.Keywords,
		IsFeatured:  req.IsFeatured,
	}
	if patch.IsEmpty() {
		h.errors.Handle(w, r, apperrors.NewValidationError("no fields to update"))
		return
	}

	doc, err := h.collection.Update(r.Context(), id, patch)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /{resource}/{id}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.collection.Delete(r.Context(), id); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ToggleLike handles POST /{resource}/{id}/like.
func (h *CatalogHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, apperrors.NewUnauthorizedError(""))
		return
	}

	doc, liked, err := h.collection.ToggleLike(r.Context(), id, user.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        doc.ID,
		"liked":     liked,
		"likeCount": doc.LikeCount,
	})
}

// RecordView handles POST /{resource}/{id}/view.
func (h *CatalogHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.collection.IncrementView(r.Context(), id); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "recorded"})
}

// Count handles GET /{resource}/count with an optional category
// parameter.
func (h *CatalogHandler) Count(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var (
		n   int
		err error
	)
	if category == "" || category == catalog.CategoryAll {
		n, err = h.collection.Count(r.Context())
	} else {
		n, err = h.collection.CountByCategory(r.Context(), category)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"category": categoryOrAll(category),
		"count":    n,
	})
}

func parseListQuery(r *http.Request) catalog.Query {
	search := r.URL.Query().Get("search")
	if search == "" {
		search = r.URL.Query().Get("searchQuery")
	}
	limit, offset := common.ExtractLimitOffset(r, catalog.DefaultLimit)

	return catalog.Query{
		Search:    search,
		Category:  r.URL.Query().Get("category"),
		Tags:      common.ExtractCSV(r, "tags"),
		Featured:  common.ExtractBoolPtr(r, "featured"),
		CreatedBy: r.URL.Query().Get("createdBy"),
		Limit:     limit,
		Offset:    offset,
	}
}

// documentID validates the path ID. Malformed IDs are rejected instead
// of coerced; they can never match a stored document.
func documentID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "documentID")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid document id")
	}
	return id, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}

func categoryOrAll(category string) string {
	if category == "" {
		return catalog.CategoryAll
	}
	return category
}
