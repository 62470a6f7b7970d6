package studycontent

import (
	"context"

	"github.com/google/uuid"
)

// Service is the main interface for publishing and browsing study
// content. Admin gating happens at the API boundary; the service
// assumes its callers are already authorized.
type Service interface {
	// PublishFile uploads one file through the application process and
	// commits its metadata record (small-file path).
	PublishFile(ctx context.Context, req PublishFileRequest) (*ContentItem, error)

	// PublishFiles routes a batch of files: each file below the size
	// threshold is published directly; each file at or above it yields
	// an upload authorization for a direct-to-storage write. Outcomes
	// are per-file; one failure never affects its siblings.
	PublishFiles(ctx context.Context, req PublishFilesRequest) (*BatchPublishResult, error)

	// AuthorizeUpload issues a time-boxed direct-to-storage write grant
	// for the large-file path. Files below the routing threshold are
	// refused; they belong on the direct path.
	AuthorizeUpload(ctx context.Context, req AuthorizeUploadRequest) (*UploadAuthorization, error)

	// FinalizeUpload commits the metadata record after the client
	// reports a direct upload finished. The blob is verified present
	// and the retrieval URL re-derived from the key.
	FinalizeUpload(ctx context.Context, req FinalizeUploadRequest) (*ContentItem, error)

	// PublishVideo registers an external video link. No blob is
	// involved; the URL must contain an extractable video identifier.
	PublishVideo(ctx context.Context, req PublishVideoRequest) (*ContentItem, error)

	// ListContent returns published items matching the filters, newest
	// first.
	ListContent(ctx context.Context, req ListContentRequest) ([]*ContentItem, error)

	// GetContent returns one item by id.
	GetContent(ctx context.Context, id uuid.UUID) (*ContentItem, error)

	// DeleteContent removes an item. For file items the blob delete is
	// best-effort: its failure never blocks metadata removal.
	DeleteContent(ctx context.Context, id uuid.UUID) error
}
