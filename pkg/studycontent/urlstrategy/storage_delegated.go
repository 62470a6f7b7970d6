package urlstrategy

import (
	"context"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// StorageDelegatedStrategy asks the blob store itself for a download
// URL. Useful for private buckets where retrieval goes through
// presigned GETs, and for the fs/memory backends in development.
type StorageDelegatedStrategy struct {
	store studycontent.BlobStore
}

// NewStorageDelegatedStrategy creates a strategy backed by the given
// blob store.
func NewStorageDelegatedStrategy(store studycontent.BlobStore) *StorageDelegatedStrategy {
	return &StorageDelegatedStrategy{store: store}
}

func (s *StorageDelegatedStrategy) PublicURL(ctx context.Context, objectKey string) (string, error) {
	return s.store.GetDownloadURL(ctx, objectKey, "")
}
