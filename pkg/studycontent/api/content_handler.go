package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// ContentHandler handles HTTP requests for browsing and deleting
// published content.
type ContentHandler struct {
	service studycontent.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(service studycontent.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the routes for content. Listing is public; deletion
// is admin-only.
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListContent)
	r.Get("/{id}", h.GetContent)
	r.With(RequireAdmin).Delete("/{id}", h.DeleteContent)

	return r
}

// ContentItemResponse is the response body for one content item
type ContentItemResponse struct {
	ID         string    `json:"id"`
	Branch     string    `json:"branch"`
	Semester   string    `json:"semester"`
	Subject    string    `json:"subject"`
	Kind       string    `json:"content_type"`
	FileName   string    `json:"file_name,omitempty"`
	FileURL    string    `json:"file_url,omitempty"`
	FileSize   int64     `json:"file_size,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
	VideoTitle string    `json:"video_title,omitempty"`
	VideoURL   string    `json:"video_url,omitempty"`
	VideoID    string    `json:"video_id,omitempty"`
	UploadDate time.Time `json:"upload_date"`
}

func toContentItemResponse(item *studycontent.ContentItem) ContentItemResponse {
	return ContentItemResponse{
		ID:         item.ID.String(),
		Branch:     item.Branch,
		Semester:   item.Semester,
		Subject:    item.Subject,
		Kind:       string(item.Kind),
		FileName:   item.FileName,
		FileURL:    item.FileURL,
		FileSize:   item.FileSize,
		MimeType:   item.MimeType,
		VideoTitle: item.VideoTitle,
		VideoURL:   item.VideoURL,
		VideoID:    item.VideoID,
		UploadDate: item.UploadDate,
	}
}

// ListContentResponse wraps the item list
type ListContentResponse struct {
	Content []ContentItemResponse `json:"content"`
}

// ListContent lists published items, optionally filtered by
// type/subject/branch/semester query parameters.
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	var filters studycontent.ListContentFilters

	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		kind := studycontent.ContentKind(v)
		filters.Kind = &kind
	}
	if v := q.Get("subject"); v != "" {
		filters.Subject = &v
	}
	if v := q.Get("branch"); v != "" {
		filters.Branch = &v
	}
	if v := q.Get("semester"); v != "" {
		filters.Semester = &v
	}

	items, err := h.service.ListContent(r.Context(), studycontent.ListContentRequest{Filters: filters})
	if err != nil {
		slog.Error("Failed to list content", "error", err)
		writeError(w, r, err)
		return
	}

	resp := ListContentResponse{Content: make([]ContentItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Content = append(resp.Content, toContentItemResponse(item))
	}

	render.JSON(w, r, resp)
}

// GetContent retrieves one item by ID
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return
	}

	item, err := h.service.GetContent(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get content", "content_id", idStr, "error", err)
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, toContentItemResponse(item))
}

// DeleteContent deletes an item by ID. Blob removal is best-effort
// inside the service; a missing id yields 404.
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteContent(r.Context(), id); err != nil {
		slog.Error("Failed to delete content", "content_id", idStr, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Content deleted", "content_id", idStr)
	w.WriteHeader(http.StatusNoContent)
}
