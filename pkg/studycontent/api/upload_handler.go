package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// maxUploadMemory bounds how much of a multipart body is held in
// memory before spooling to disk.
const maxUploadMemory = 32 << 20

// UploadHandler handles HTTP requests for publishing content. All
// routes are admin-only.
type UploadHandler struct {
	service studycontent.Service
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service studycontent.Service) *UploadHandler {
	return &UploadHandler{service: service}
}

// Routes returns the routes for publishing
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequireAdmin)

	r.Post("/", h.PublishFiles)
	r.Post("/authorize", h.AuthorizeUpload)
	r.Post("/complete", h.FinalizeUpload)
	r.Post("/videos", h.PublishVideo)

	return r
}

// FileOutcomeResponse reports the result for one file of a batch
type FileOutcomeResponse struct {
	FileName      string                            `json:"file_name"`
	Route         string                            `json:"route"`
	Content       *ContentItemResponse              `json:"content,omitempty"`
	Authorization *studycontent.UploadAuthorization `json:"authorization,omitempty"`
	Error         string                            `json:"error,omitempty"`
}

// BatchPublishResponse is the response body for a batch publish
type BatchPublishResponse struct {
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Files     []FileOutcomeResponse `json:"files"`
}

// PublishFiles accepts a multipart form with classification fields and
// one or more "file" parts. Files are routed independently: small ones
// are published immediately, large ones come back with an upload
// authorization the client must use and then confirm.
func (h *UploadHandler) PublishFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	classification := studycontent.Classification{
		Branch:   r.FormValue("branch"),
		Semester: r.FormValue("semester"),
		Subject:  r.FormValue("subject"),
		Kind:     studycontent.ContentKind(r.FormValue("content_type")),
	}

	fileHeaders := r.MultipartForm.File["file"]
	if len(fileHeaders) == 0 {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}

	var files []studycontent.UploadableFile
	var openFiles []interface{ Close() error }
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()

	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "failed to read file part: "+err.Error(), http.StatusBadRequest)
			return
		}
		openFiles = append(openFiles, f)
		files = append(files, studycontent.UploadableFile{
			Reader:   f,
			FileName: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
		})
	}

	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.PublishFiles(r.Context(), studycontent.PublishFilesRequest{
		Classification: classification,
		Files:          files,
		UploadedBy:     principal.ID,
	})
	if err != nil {
		slog.Error("Failed to publish files", "error", err)
		writeError(w, r, err)
		return
	}

	resp := BatchPublishResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	}
	for _, outcome := range result.Outcomes {
		fr := FileOutcomeResponse{
			FileName:      outcome.FileName,
			Route:         string(outcome.Route),
			Authorization: outcome.Authorization,
		}
		if outcome.Item != nil {
			item := toContentItemResponse(outcome.Item)
			fr.Content = &item
		}
		if outcome.Err != nil {
			fr.Error = outcome.Err.Error()
		}
		resp.Files = append(resp.Files, fr)
	}

	slog.Info("Batch publish processed",
		"succeeded", result.Succeeded, "failed", result.Failed, "uploaded_by", principal.ID)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// AuthorizeUploadRequest is the request body for a direct-upload grant
type AuthorizeUploadRequest struct {
	Branch   string `json:"branch"`
	Semester string `json:"semester"`
	Subject  string `json:"subject"`
	Kind     string `json:"content_type"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// AuthorizeUploadResponse is the response body for a direct-upload grant
type AuthorizeUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ObjectKey string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthorizeUpload issues a time-boxed direct-to-storage write grant
// for the large-file path.
func (h *UploadHandler) AuthorizeUpload(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	auth, err := h.service.AuthorizeUpload(r.Context(), studycontent.AuthorizeUploadRequest{
		Classification: studycontent.Classification{
			Branch:   req.Branch,
			Semester: req.Semester,
			Subject:  req.Subject,
			Kind:     studycontent.ContentKind(req.Kind),
		},
		FileName: req.FileName,
		MimeType: req.MimeType,
		FileSize: req.FileSize,
	})
	if err != nil {
		slog.Error("Failed to authorize upload", "file_name", req.FileName, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Upload authorized", "object_key", auth.ObjectKey)
	render.JSON(w, r, AuthorizeUploadResponse{
		UploadURL: auth.UploadURL,
		ObjectKey: auth.ObjectKey,
		ExpiresAt: auth.ExpiresAt,
	})
}

// FinalizeUploadRequest is the request body confirming a direct upload
type FinalizeUploadRequest struct {
	Branch   string `json:"branch"`
	Semester string `json:"semester"`
	Subject  string `json:"subject"`
	Kind     string `json:"content_type"`
	Key      string `json:"key"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// FinalizeUpload commits the metadata record after a direct upload.
// The retrieval URL is derived server-side from the key.
func (h *UploadHandler) FinalizeUpload(w http.ResponseWriter, r *http.Request) {
	var req FinalizeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	item, err := h.service.FinalizeUpload(r.Context(), studycontent.FinalizeUploadRequest{
		Classification: studycontent.Classification{
			Branch:   req.Branch,
			Semester: req.Semester,
			Subject:  req.Subject,
			Kind:     studycontent.ContentKind(req.Kind),
		},
		ObjectKey:  req.Key,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		MimeType:   req.MimeType,
		UploadedBy: principal.ID,
	})
	if err != nil {
		slog.Error("Failed to finalize upload", "object_key", req.Key, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Upload finalized", "content_id", item.ID.String(), "object_key", req.Key)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toContentItemResponse(item))
}

// PublishVideoRequest is the request body for registering a video link
type PublishVideoRequest struct {
	Branch     string `json:"branch"`
	Semester   string `json:"semester"`
	Subject    string `json:"subject"`
	VideoTitle string `json:"video_title"`
	VideoURL   string `json:"video_url"`
}

// PublishVideo registers an external video link
func (h *UploadHandler) PublishVideo(w http.ResponseWriter, r *http.Request) {
	var req PublishVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	item, err := h.service.PublishVideo(r.Context(), studycontent.PublishVideoRequest{
		Classification: studycontent.Classification{
			Branch:   req.Branch,
			Semester: req.Semester,
			Subject:  req.Subject,
			Kind:     studycontent.KindVideo,
		},
		VideoTitle: req.VideoTitle,
		VideoURL:   req.VideoURL,
		UploadedBy: principal.ID,
	})
	if err != nil {
		slog.Error("Failed to publish video", "video_url", req.VideoURL, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Video published", "content_id", item.ID.String(), "video_id", item.VideoID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toContentItemResponse(item))
}
