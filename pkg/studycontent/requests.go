package studycontent

// Request/Response DTOs

// PublishFileRequest publishes one file through the small-file path.
type PublishFileRequest struct {
	Classification Classification
	File           UploadableFile
	UploadedBy     string
}

// PublishFilesRequest publishes a batch of files. Files are processed
// independently; one failure never rolls back its siblings.
type PublishFilesRequest struct {
	Classification Classification
	Files          []UploadableFile
	UploadedBy     string
}

// FileOutcome reports the result for one file in a batch.
type FileOutcome struct {
	FileName string
	Route    UploadRoute

	// Item is set when the direct path published the file.
	Item *ContentItem

	// Authorization is set when the presigned path was selected; the
	// client must upload to it and then call FinalizeUpload.
	Authorization *UploadAuthorization

	Err error
}

// BatchPublishResult aggregates per-file outcomes.
type BatchPublishResult struct {
	Outcomes  []FileOutcome
	Succeeded int
	Failed    int
}

// AuthorizeUploadRequest requests a direct-to-storage write grant for
// the large-file path.
type AuthorizeUploadRequest struct {
	Classification Classification
	FileName       string
	MimeType       string
	FileSize       int64
}

// FinalizeUploadRequest commits the metadata record after the client
// reports a direct upload finished. The canonical retrieval URL is
// re-derived from ObjectKey; a client-supplied URL is never trusted.
type FinalizeUploadRequest struct {
	Classification Classification
	ObjectKey      string
	FileName       string
	FileSize       int64
	MimeType       string
	UploadedBy     string
}

// PublishVideoRequest registers an external video link.
type PublishVideoRequest struct {
	Classification Classification
	VideoTitle     string
	VideoURL       string
	UploadedBy     string
}

// ListContentRequest lists published items.
type ListContentRequest struct {
	Filters ListContentFilters
}
