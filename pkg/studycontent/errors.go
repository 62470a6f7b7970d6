package studycontent

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentNotFound indicates a content item was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrMissingField indicates a required classification field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidContentKind indicates an unknown content kind
	ErrInvalidContentKind = errors.New("invalid content type")

	// ErrDisallowedMimeType indicates the declared MIME type is outside the allow-list
	ErrDisallowedMimeType = errors.New("file type not allowed")

	// ErrEmptyFile indicates a zero-byte upload
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidVideoURL indicates no video identifier could be extracted from the URL
	ErrInvalidVideoURL = errors.New("invalid video URL")

	// ErrInvalidObjectKey indicates a storage key that was not issued by this service
	ErrInvalidObjectKey = errors.New("invalid object key")

	// ErrUnauthenticated indicates the request carried no valid principal
	ErrUnauthenticated = errors.New("authentication required")

	// ErrAdminRequired indicates an admin-only operation attempted by a non-admin
	ErrAdminRequired = errors.New("admin privileges required")
)

// ValidationError reports input rejected before any I/O. It is never
// retried automatically.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError represents an error from the object store.
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PersistenceError represents a metadata-store failure. When it occurs
// after a successful blob write the blob is intentionally left orphaned
// for a later reconciliation sweep.
type PersistenceError struct {
	ContentID uuid.UUID
	Op        string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence operation %s failed for content %s: %v", e.Op, e.ContentID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
