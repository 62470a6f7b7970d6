package studycontent

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for the object-storage backend.
type BlobStore interface {
	// GetUploadURL returns a time-boxed URL authorizing one direct
	// client write of the given key, constrained to mimeType.
	GetUploadURL(ctx context.Context, objectKey, mimeType string) (string, error)

	// Upload writes content through the application process.
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download reads content back directly.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// GetDownloadURL returns a URL for downloading content, optionally
	// forcing a download filename.
	GetDownloadURL(ctx context.Context, objectKey, downloadFilename string) (string, error)

	// Delete removes an object by key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for a stored object.
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for content-item persistence.
type Repository interface {
	// CreateItem inserts a new item. The insert is atomic: it either
	// fully succeeds (id readable) or fully fails.
	CreateItem(ctx context.Context, item *ContentItem) error

	// GetItem returns the item with the given id, or ErrContentNotFound.
	GetItem(ctx context.Context, id uuid.UUID) (*ContentItem, error)

	// ListItems returns items matching the filters, newest first.
	ListItems(ctx context.Context, filters ListContentFilters) ([]*ContentItem, error)

	// DeleteItem removes the item with the given id, or returns
	// ErrContentNotFound.
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// ObjectMeta contains metadata about an object in storage.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for a server-mediated upload.
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
