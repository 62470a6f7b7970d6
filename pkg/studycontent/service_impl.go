package studycontent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultUploadThreshold is the file size at which the router switches
// from the server-mediated path to the presigned direct path.
const DefaultUploadThreshold int64 = 10 << 20 // 10 MiB

// DefaultAuthorizationTTL is how long an upload authorization stays
// valid if unused.
const DefaultAuthorizationTTL = time.Hour

// KeyGenerator produces one storage key per upload attempt.
type KeyGenerator interface {
	GenerateKey(c Classification, fileName string) string
}

// URLStrategy derives the canonical public retrieval URL for a key.
type URLStrategy interface {
	PublicURL(ctx context.Context, objectKey string) (string, error)
}

// service implements the Service interface
type service struct {
	repository       Repository
	store            BlobStore
	storeName        string
	keys             KeyGenerator
	urls             URLStrategy
	uploadThreshold  int64
	authorizationTTL time.Duration
	now              func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the object-storage backend and its name, used to
// tag storage errors.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		s.storeName = name
		s.store = store
	}
}

// WithKeyGenerator sets the object key generation strategy
func WithKeyGenerator(keys KeyGenerator) Option {
	return func(s *service) {
		s.keys = keys
	}
}

// WithURLStrategy sets the public URL derivation strategy
func WithURLStrategy(urls URLStrategy) Option {
	return func(s *service) {
		s.urls = urls
	}
}

// WithUploadThreshold overrides the small/large routing threshold
func WithUploadThreshold(bytes int64) Option {
	return func(s *service) {
		s.uploadThreshold = bytes
	}
}

// WithAuthorizationTTL overrides the upload-authorization lifetime
func WithAuthorizationTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.authorizationTTL = ttl
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		uploadThreshold:  DefaultUploadThreshold,
		authorizationTTL: DefaultAuthorizationTTL,
		now:              time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.urls == nil {
		return nil, fmt.Errorf("url strategy is required")
	}
	if s.keys == nil {
		return nil, fmt.Errorf("key generator is required")
	}

	return s, nil
}

// Publish operations

func (s *service) PublishFile(ctx context.Context, req PublishFileRequest) (*ContentItem, error) {
	if err := validateClassification(req.Classification, true); err != nil {
		return nil, err
	}
	if err := validateFile(req.File); err != nil {
		return nil, err
	}
	if req.File.Size >= s.uploadThreshold {
		return nil, &ValidationError{
			Field: "file_size",
			Err:   fmt.Errorf("file of %d bytes exceeds the direct upload threshold; request an upload authorization instead", req.File.Size),
		}
	}

	objectKey := s.keys.GenerateKey(req.Classification, req.File.FileName)

	if err := s.store.Upload(ctx, req.File.Reader, UploadParams{
		ObjectKey: objectKey,
		MimeType:  req.File.MimeType,
	}); err != nil {
		return nil, &StorageError{Backend: s.storeName, Key: objectKey, Op: "upload", Err: err}
	}

	fileURL, err := s.urls.PublicURL(ctx, objectKey)
	if err != nil {
		return nil, &StorageError{Backend: s.storeName, Key: objectKey, Op: "public_url", Err: err}
	}

	item := &ContentItem{
		ID:         uuid.New(),
		Branch:     req.Classification.Branch,
		Semester:   req.Classification.Semester,
		Subject:    req.Classification.Subject,
		Kind:       req.Classification.Kind,
		FileName:   req.File.FileName,
		ObjectKey:  objectKey,
		FileURL:    fileURL,
		FileSize:   req.File.Size,
		MimeType:   req.File.MimeType,
		UploadedBy: req.UploadedBy,
		UploadDate: s.now().UTC(),
	}

	if err := s.repository.CreateItem(ctx, item); err != nil {
		// The blob stays behind as an orphan; a reconciliation sweep
		// can reclaim it later.
		slog.Warn("metadata insert failed after blob upload, leaving orphan",
			"object_key", objectKey, "err", err)
		return nil, &PersistenceError{ContentID: item.ID, Op: "create", Err: err}
	}

	return item, nil
}

func (s *service) PublishFiles(ctx context.Context, req PublishFilesRequest) (*BatchPublishResult, error) {
	if err := validateClassification(req.Classification, true); err != nil {
		return nil, err
	}

	result := &BatchPublishResult{}
	for _, file := range req.Files {
		outcome := FileOutcome{FileName: file.FileName}

		if file.Size >= s.uploadThreshold {
			outcome.Route = RoutePresigned
			auth, err := s.AuthorizeUpload(ctx, AuthorizeUploadRequest{
				Classification: req.Classification,
				FileName:       file.FileName,
				MimeType:       file.MimeType,
				FileSize:       file.Size,
			})
			outcome.Authorization = auth
			outcome.Err = err
		} else {
			outcome.Route = RouteDirect
			item, err := s.PublishFile(ctx, PublishFileRequest{
				Classification: req.Classification,
				File:           file,
				UploadedBy:     req.UploadedBy,
			})
			outcome.Item = item
			outcome.Err = err
		}

		if outcome.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

func (s *service) AuthorizeUpload(ctx context.Context, req AuthorizeUploadRequest) (*UploadAuthorization, error) {
	if err := validateClassification(req.Classification, true); err != nil {
		return nil, err
	}
	if req.FileName == "" {
		return nil, &ValidationError{Field: "file_name", Err: ErrMissingField}
	}
	if !MimeTypeAllowed(req.MimeType) {
		return nil, &ValidationError{Field: "mime_type", Err: ErrDisallowedMimeType}
	}
	if req.FileSize < s.uploadThreshold {
		return nil, &ValidationError{
			Field: "file_size",
			Err:   fmt.Errorf("file of %d bytes is below the direct upload threshold; publish it directly instead", req.FileSize),
		}
	}

	objectKey := s.keys.GenerateKey(req.Classification, req.FileName)

	uploadURL, err := s.store.GetUploadURL(ctx, objectKey, req.MimeType)
	if err != nil {
		return nil, &StorageError{Backend: s.storeName, Key: objectKey, Op: "presign", Err: err}
	}

	return &UploadAuthorization{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		MimeType:  req.MimeType,
		ExpiresAt: s.now().UTC().Add(s.authorizationTTL),
	}, nil
}

func (s *service) FinalizeUpload(ctx context.Context, req FinalizeUploadRequest) (*ContentItem, error) {
	if err := validateClassification(req.Classification, true); err != nil {
		return nil, err
	}
	if req.ObjectKey == "" {
		return nil, &ValidationError{Field: "object_key", Err: ErrMissingField}
	}
	if invalidObjectKey(req.ObjectKey) {
		return nil, &ValidationError{Field: "object_key", Err: ErrInvalidObjectKey}
	}

	// Confirm the blob actually landed before making the record
	// visible to readers.
	meta, err := s.store.GetObjectMeta(ctx, req.ObjectKey)
	if err != nil {
		return nil, &StorageError{Backend: s.storeName, Key: req.ObjectKey, Op: "stat", Err: err}
	}

	fileSize := req.FileSize
	if meta.Size > 0 {
		fileSize = meta.Size
	}
	mimeType := req.MimeType
	if meta.ContentType != "" && meta.ContentType != "application/octet-stream" {
		mimeType = meta.ContentType
	}
	// The allow-list applies to what actually landed, not just to what
	// the authorization was requested for.
	if !MimeTypeAllowed(mimeType) {
		return nil, &ValidationError{Field: "mime_type", Err: ErrDisallowedMimeType}
	}

	fileURL, err := s.urls.PublicURL(ctx, req.ObjectKey)
	if err != nil {
		return nil, &StorageError{Backend: s.storeName, Key: req.ObjectKey, Op: "public_url", Err: err}
	}

	item := &ContentItem{
		ID:         uuid.New(),
		Branch:     req.Classification.Branch,
		Semester:   req.Classification.Semester,
		Subject:    req.Classification.Subject,
		Kind:       req.Classification.Kind,
		FileName:   req.FileName,
		ObjectKey:  req.ObjectKey,
		FileURL:    fileURL,
		FileSize:   fileSize,
		MimeType:   mimeType,
		UploadedBy: req.UploadedBy,
		UploadDate: s.now().UTC(),
	}

	if err := s.repository.CreateItem(ctx, item); err != nil {
		slog.Warn("metadata insert failed after direct upload, leaving orphan",
			"object_key", req.ObjectKey, "err", err)
		return nil, &PersistenceError{ContentID: item.ID, Op: "finalize", Err: err}
	}

	return item, nil
}

func (s *service) PublishVideo(ctx context.Context, req PublishVideoRequest) (*ContentItem, error) {
	c := req.Classification
	c.Kind = KindVideo
	if err := validateClassification(c, false); err != nil {
		return nil, err
	}
	if req.VideoTitle == "" {
		return nil, &ValidationError{Field: "video_title", Err: ErrMissingField}
	}

	videoID, ok := ExtractVideoID(req.VideoURL)
	if !ok {
		return nil, &ValidationError{Field: "video_url", Err: ErrInvalidVideoURL}
	}

	item := &ContentItem{
		ID:         uuid.New(),
		Branch:     c.Branch,
		Semester:   c.Semester,
		Subject:    c.Subject,
		Kind:       KindVideo,
		VideoTitle: req.VideoTitle,
		VideoURL:   req.VideoURL,
		VideoID:    videoID,
		UploadedBy: req.UploadedBy,
		UploadDate: s.now().UTC(),
	}

	if err := s.repository.CreateItem(ctx, item); err != nil {
		return nil, &PersistenceError{ContentID: item.ID, Op: "create", Err: err}
	}

	return item, nil
}

// Query and delete facade

func (s *service) ListContent(ctx context.Context, req ListContentRequest) ([]*ContentItem, error) {
	items, err := s.repository.ListItems(ctx, req.Filters)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return items, nil
}

func (s *service) GetContent(ctx context.Context, id uuid.UUID) (*ContentItem, error) {
	return s.repository.GetItem(ctx, id)
}

func (s *service) DeleteContent(ctx context.Context, id uuid.UUID) error {
	item, err := s.repository.GetItem(ctx, id)
	if err != nil {
		return err
	}

	// Blob removal is best-effort: a storage failure must not leave a
	// live record pointing at a blob we intended to delete.
	if item.ObjectKey != "" {
		if err := s.store.Delete(ctx, item.ObjectKey); err != nil {
			slog.Warn("blob delete failed, proceeding with metadata removal",
				"object_key", item.ObjectKey, "backend", s.storeName, "err", err)
		}
	}

	if err := s.repository.DeleteItem(ctx, id); err != nil {
		return &PersistenceError{ContentID: id, Op: "delete", Err: err}
	}

	return nil
}

// Validation helpers

// invalidObjectKey reports whether a client-supplied key is absolute
// or carries a traversal segment. Dots inside a filename are fine;
// a bare ".." path segment is not.
func invalidObjectKey(key string) bool {
	if strings.HasPrefix(key, "/") {
		return true
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." || segment == "" {
			return true
		}
	}
	return false
}

func validateClassification(c Classification, wantFile bool) error {
	if c.Branch == "" {
		return &ValidationError{Field: "branch", Err: ErrMissingField}
	}
	if c.Semester == "" {
		return &ValidationError{Field: "semester", Err: ErrMissingField}
	}
	if c.Subject == "" {
		return &ValidationError{Field: "subject", Err: ErrMissingField}
	}
	if !c.Kind.IsValid() {
		return &ValidationError{Field: "content_type", Err: ErrInvalidContentKind}
	}
	if wantFile && !c.Kind.IsFileKind() {
		return &ValidationError{Field: "content_type", Err: ErrInvalidContentKind}
	}
	return nil
}

func validateFile(f UploadableFile) error {
	if f.FileName == "" {
		return &ValidationError{Field: "file_name", Err: ErrMissingField}
	}
	if f.Size <= 0 {
		return &ValidationError{Field: "file", Err: ErrEmptyFile}
	}
	if !MimeTypeAllowed(f.MimeType) {
		return &ValidationError{Field: "mime_type", Err: ErrDisallowedMimeType}
	}
	return nil
}
