package studycontent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainstack/study-content/pkg/studycontent"
	"github.com/brainstack/study-content/pkg/studycontent/objectkey"
	"github.com/brainstack/study-content/pkg/studycontent/repo/memory"
	memorystorage "github.com/brainstack/study-content/pkg/studycontent/storage/memory"
	"github.com/brainstack/study-content/pkg/studycontent/urlstrategy"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []studycontent.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []studycontent.Option{},
			expectError: true,
		},
		{
			name: "repository alone is not enough",
			options: []studycontent.Option{
				studycontent.WithRepository(memory.New()),
			},
			expectError: true,
		},
		{
			name: "full wiring succeeds",
			options: []studycontent.Option{
				studycontent.WithRepository(memory.New()),
				studycontent.WithBlobStore("memory", memorystorage.New()),
				studycontent.WithKeyGenerator(objectkey.NewClassifiedGenerator()),
				studycontent.WithURLStrategy(urlstrategy.NewPublicBucketStrategy("https://cdn.example.com")),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := studycontent.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

// failingRepository rejects every write so tests can observe
// publish-after-upload failures.
type failingRepository struct {
	studycontent.Repository
}

func (r *failingRepository) CreateItem(ctx context.Context, item *studycontent.ContentItem) error {
	return errors.New("insert refused")
}

// brokenDeleteStore behaves like a working store except that every
// delete fails.
type brokenDeleteStore struct {
	*memorystorage.Backend
}

func (s *brokenDeleteStore) Delete(ctx context.Context, objectKey string) error {
	return errors.New("delete refused")
}

func setupTestService(t *testing.T, opts ...studycontent.Option) studycontent.Service {
	base := []studycontent.Option{
		studycontent.WithRepository(memory.New()),
		studycontent.WithBlobStore("memory", memorystorage.New()),
		studycontent.WithKeyGenerator(objectkey.NewClassifiedGenerator()),
		studycontent.WithURLStrategy(urlstrategy.NewPublicBucketStrategy("https://cdn.example.com")),
	}
	svc, err := studycontent.New(append(base, opts...)...)
	require.NoError(t, err)
	require.NotNil(t, svc)
	return svc
}

func testClassification() studycontent.Classification {
	return studycontent.Classification{
		Branch:   "CSE",
		Semester: "3",
		Subject:  "Data Structures",
		Kind:     studycontent.KindNotes,
	}
}

func pdfFile(name string, size int64) studycontent.UploadableFile {
	return studycontent.UploadableFile{
		Reader:   strings.NewReader(strings.Repeat("x", 16)),
		FileName: name,
		MimeType: "application/pdf",
		Size:     size,
	}
}

func TestPublishFile(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("small file is stored and recorded", func(t *testing.T) {
		item, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: testClassification(),
			File:           pdfFile("lecture notes.pdf", 2<<20),
			UploadedBy:     "admin@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, item)

		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, "lecture notes.pdf", item.FileName)
		assert.Equal(t, studycontent.KindNotes, item.Kind)
		assert.Equal(t, "admin@example.com", item.UploadedBy)
		assert.False(t, item.UploadDate.IsZero())

		// URL is derived from the generated key, never client-supplied
		assert.Equal(t, "https://cdn.example.com/"+item.ObjectKey, item.FileURL)
		assert.Contains(t, item.ObjectKey, "uploads/cse/3/data_structures/notes/")
		assert.Contains(t, item.ObjectKey, "lecture_notes.pdf")

		// And the record is visible through the query facade
		got, err := svc.GetContent(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ObjectKey, got.ObjectKey)
	})

	t.Run("file at the threshold is refused", func(t *testing.T) {
		_, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: testClassification(),
			File:           pdfFile("big.pdf", studycontent.DefaultUploadThreshold),
		})
		require.Error(t, err)

		var verr *studycontent.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "file_size", verr.Field)
	})

	t.Run("disallowed mime type is rejected before storage", func(t *testing.T) {
		f := pdfFile("payload.exe", 1024)
		f.MimeType = "application/x-msdownload"

		_, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: testClassification(),
			File:           f,
		})
		assert.ErrorIs(t, err, studycontent.ErrDisallowedMimeType)
	})

	t.Run("empty file is rejected", func(t *testing.T) {
		_, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: testClassification(),
			File:           pdfFile("empty.pdf", 0),
		})
		assert.ErrorIs(t, err, studycontent.ErrEmptyFile)
	})

	t.Run("missing classification field is rejected", func(t *testing.T) {
		c := testClassification()
		c.Subject = ""
		_, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: c,
			File:           pdfFile("notes.pdf", 1024),
		})
		assert.ErrorIs(t, err, studycontent.ErrMissingField)
	})

	t.Run("video kind cannot carry a file", func(t *testing.T) {
		c := testClassification()
		c.Kind = studycontent.KindVideo
		_, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: c,
			File:           pdfFile("notes.pdf", 1024),
		})
		assert.ErrorIs(t, err, studycontent.ErrInvalidContentKind)
	})

	t.Run("metadata failure after upload surfaces a persistence error", func(t *testing.T) {
		svc := setupTestService(t, studycontent.WithRepository(&failingRepository{}))

		_, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: testClassification(),
			File:           pdfFile("notes.pdf", 1024),
		})
		require.Error(t, err)

		var perr *studycontent.PersistenceError
		assert.ErrorAs(t, err, &perr)
	})
}

func TestPublishFilesRouting(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("batch splits small and large files", func(t *testing.T) {
		small := pdfFile("summary.pdf", 2<<20)
		large := studycontent.UploadableFile{
			FileName: "recorded lecture.mp4",
			MimeType: "video/mp4",
			Size:     50 << 20,
		}

		result, err := svc.PublishFiles(ctx, studycontent.PublishFilesRequest{
			Classification: testClassification(),
			Files:          []studycontent.UploadableFile{small, large},
			UploadedBy:     "admin@example.com",
		})
		require.NoError(t, err)
		require.Len(t, result.Outcomes, 2)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 0, result.Failed)

		direct := result.Outcomes[0]
		assert.Equal(t, studycontent.RouteDirect, direct.Route)
		require.NotNil(t, direct.Item)
		assert.Nil(t, direct.Authorization)

		presigned := result.Outcomes[1]
		assert.Equal(t, studycontent.RoutePresigned, presigned.Route)
		assert.Nil(t, presigned.Item)
		require.NotNil(t, presigned.Authorization)
		assert.Contains(t, presigned.Authorization.ObjectKey, "recorded_lecture.mp4")
		assert.NotEmpty(t, presigned.Authorization.UploadURL)
	})

	t.Run("one failure does not fail its siblings", func(t *testing.T) {
		bad := pdfFile("script.sh", 512)
		bad.MimeType = "application/x-sh"
		good := pdfFile("tutorial.pdf", 512)

		result, err := svc.PublishFiles(ctx, studycontent.PublishFilesRequest{
			Classification: testClassification(),
			Files:          []studycontent.UploadableFile{bad, good},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		assert.Error(t, result.Outcomes[0].Err)
		assert.NoError(t, result.Outcomes[1].Err)
		assert.NotNil(t, result.Outcomes[1].Item)
	})
}

func TestAuthorizeUpload(t *testing.T) {
	svc := setupTestService(t, studycontent.WithAuthorizationTTL(30*time.Minute))
	ctx := context.Background()

	t.Run("grants a keyed upload authorization", func(t *testing.T) {
		auth, err := svc.AuthorizeUpload(ctx, studycontent.AuthorizeUploadRequest{
			Classification: testClassification(),
			FileName:       "heavy textbook.pdf",
			MimeType:       "application/pdf",
			FileSize:       120 << 20,
		})
		require.NoError(t, err)

		assert.Contains(t, auth.ObjectKey, "uploads/cse/3/data_structures/notes/")
		assert.Contains(t, auth.ObjectKey, "heavy_textbook.pdf")
		assert.Equal(t, "application/pdf", auth.MimeType)
		assert.NotEmpty(t, auth.UploadURL)
		assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), auth.ExpiresAt, 5*time.Second)
	})

	t.Run("rejects disallowed mime type", func(t *testing.T) {
		_, err := svc.AuthorizeUpload(ctx, studycontent.AuthorizeUploadRequest{
			Classification: testClassification(),
			FileName:       "tool.exe",
			MimeType:       "application/octet-stream",
			FileSize:       64 << 20,
		})
		assert.ErrorIs(t, err, studycontent.ErrDisallowedMimeType)
	})

	t.Run("rejects a file below the threshold", func(t *testing.T) {
		_, err := svc.AuthorizeUpload(ctx, studycontent.AuthorizeUploadRequest{
			Classification: testClassification(),
			FileName:       "small.pdf",
			MimeType:       "application/pdf",
			FileSize:       2 << 20,
		})
		require.Error(t, err)

		var verr *studycontent.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "file_size", verr.Field)
	})
}

func TestFinalizeUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("commits metadata for a landed blob", func(t *testing.T) {
		store := memorystorage.New()
		svc := setupTestService(t, studycontent.WithBlobStore("memory", store))

		auth, err := svc.AuthorizeUpload(ctx, studycontent.AuthorizeUploadRequest{
			Classification: testClassification(),
			FileName:       "lab manual.pdf",
			MimeType:       "application/pdf",
			FileSize:       40 << 20,
		})
		require.NoError(t, err)

		// Simulate the direct upload against the granted key
		payload := strings.Repeat("y", 4096)
		err = store.Upload(ctx, strings.NewReader(payload), studycontent.UploadParams{
			ObjectKey: auth.ObjectKey,
			MimeType:  "application/pdf",
		})
		require.NoError(t, err)

		item, err := svc.FinalizeUpload(ctx, studycontent.FinalizeUploadRequest{
			Classification: testClassification(),
			ObjectKey:      auth.ObjectKey,
			FileName:       "lab manual.pdf",
			FileSize:       40 << 20,
			MimeType:       "application/pdf",
			UploadedBy:     "admin@example.com",
		})
		require.NoError(t, err)

		// The stored size wins over the client-reported one
		assert.Equal(t, int64(len(payload)), item.FileSize)
		assert.Equal(t, "https://cdn.example.com/"+auth.ObjectKey, item.FileURL)

		got, err := svc.GetContent(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.ObjectKey, got.ObjectKey)
	})

	t.Run("refuses a key that was never written", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.FinalizeUpload(ctx, studycontent.FinalizeUploadRequest{
			Classification: testClassification(),
			ObjectKey:      "uploads/cse/3/data_structures/notes/123_ghost.pdf",
			FileName:       "ghost.pdf",
		})
		require.Error(t, err)

		var serr *studycontent.StorageError
		assert.ErrorAs(t, err, &serr)
	})

	t.Run("refuses a blob with a disallowed stored type", func(t *testing.T) {
		store := memorystorage.New()
		svc := setupTestService(t, studycontent.WithBlobStore("memory", store))

		key := "uploads/cse/3/data_structures/notes/456_page.html"
		err := store.Upload(ctx, strings.NewReader("<html></html>"), studycontent.UploadParams{
			ObjectKey: key,
			MimeType:  "text/html",
		})
		require.NoError(t, err)

		_, err = svc.FinalizeUpload(ctx, studycontent.FinalizeUploadRequest{
			Classification: testClassification(),
			ObjectKey:      key,
			FileName:       "page.html",
			MimeType:       "text/html",
		})
		assert.ErrorIs(t, err, studycontent.ErrDisallowedMimeType)
	})

	t.Run("refuses traversal in the object key", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.FinalizeUpload(ctx, studycontent.FinalizeUploadRequest{
			Classification: testClassification(),
			ObjectKey:      "uploads/../secrets.pdf",
			FileName:       "secrets.pdf",
		})
		assert.ErrorIs(t, err, studycontent.ErrInvalidObjectKey)
	})
}

func TestPublishVideo(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	classification := studycontent.Classification{
		Branch:   "ECE",
		Semester: "5",
		Subject:  "Signals",
	}

	t.Run("accepts standard watch URL", func(t *testing.T) {
		item, err := svc.PublishVideo(ctx, studycontent.PublishVideoRequest{
			Classification: classification,
			VideoTitle:     "Fourier Series Explained",
			VideoURL:       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			UploadedBy:     "admin@example.com",
		})
		require.NoError(t, err)

		assert.Equal(t, studycontent.KindVideo, item.Kind)
		assert.Equal(t, "dQw4w9WgXcQ", item.VideoID)
		assert.Empty(t, item.ObjectKey)
		assert.Empty(t, item.FileURL)
	})

	t.Run("accepts short URL", func(t *testing.T) {
		item, err := svc.PublishVideo(ctx, studycontent.PublishVideoRequest{
			Classification: classification,
			VideoTitle:     "Sampling Theorem",
			VideoURL:       "https://youtu.be/abcdefghijk",
		})
		require.NoError(t, err)
		assert.Equal(t, "abcdefghijk", item.VideoID)
	})

	t.Run("rejects a non-video URL", func(t *testing.T) {
		_, err := svc.PublishVideo(ctx, studycontent.PublishVideoRequest{
			Classification: classification,
			VideoTitle:     "Not a video",
			VideoURL:       "https://example.com/watch?v=nope",
		})
		assert.ErrorIs(t, err, studycontent.ErrInvalidVideoURL)
	})

	t.Run("requires a title", func(t *testing.T) {
		_, err := svc.PublishVideo(ctx, studycontent.PublishVideoRequest{
			Classification: classification,
			VideoURL:       "https://youtu.be/abcdefghijk",
		})
		assert.ErrorIs(t, err, studycontent.ErrMissingField)
	})
}

func TestListContent(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	seed := []struct {
		subject string
		kind    studycontent.ContentKind
	}{
		{"Data Structures", studycontent.KindNotes},
		{"Data Structures", studycontent.KindPYQ},
		{"Operating Systems", studycontent.KindNotes},
	}
	for i, s := range seed {
		_, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: studycontent.Classification{
				Branch:   "CSE",
				Semester: "3",
				Subject:  s.subject,
				Kind:     s.kind,
			},
			File: pdfFile(strings.Repeat("f", i+1)+".pdf", 1024),
		})
		require.NoError(t, err)
	}

	t.Run("no filters returns everything", func(t *testing.T) {
		items, err := svc.ListContent(ctx, studycontent.ListContentRequest{})
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("filters combine", func(t *testing.T) {
		subject := "Data Structures"
		kind := studycontent.KindNotes
		items, err := svc.ListContent(ctx, studycontent.ListContentRequest{
			Filters: studycontent.ListContentFilters{
				Subject: &subject,
				Kind:    &kind,
			},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, subject, items[0].Subject)
		assert.Equal(t, kind, items[0].Kind)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		limit := 2
		items, err := svc.ListContent(ctx, studycontent.ListContentRequest{
			Filters: studycontent.ListContentFilters{Limit: &limit},
		})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestDeleteContent(t *testing.T) {
	ctx := context.Background()

	t.Run("removes blob and record", func(t *testing.T) {
		store := memorystorage.New()
		svc := setupTestService(t, studycontent.WithBlobStore("memory", store))

		item, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: testClassification(),
			File:           pdfFile("doomed.pdf", 1024),
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteContent(ctx, item.ID))

		_, err = svc.GetContent(ctx, item.ID)
		assert.ErrorIs(t, err, studycontent.ErrContentNotFound)

		_, err = store.GetObjectMeta(ctx, item.ObjectKey)
		assert.Error(t, err)
	})

	t.Run("blob delete failure does not abort metadata removal", func(t *testing.T) {
		store := &brokenDeleteStore{Backend: memorystorage.New()}
		svc := setupTestService(t, studycontent.WithBlobStore("memory", store))

		item, err := svc.PublishFile(ctx, studycontent.PublishFileRequest{
			Classification: testClassification(),
			File:           pdfFile("stubborn.pdf", 1024),
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteContent(ctx, item.ID))

		// The record is gone; the blob stays behind as an orphan.
		_, err = svc.GetContent(ctx, item.ID)
		assert.ErrorIs(t, err, studycontent.ErrContentNotFound)

		_, err = store.GetObjectMeta(ctx, item.ObjectKey)
		assert.NoError(t, err)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		svc := setupTestService(t)
		err := svc.DeleteContent(ctx, uuid.New())
		assert.ErrorIs(t, err, studycontent.ErrContentNotFound)
	})

	t.Run("video delete skips blob storage", func(t *testing.T) {
		svc := setupTestService(t)

		item, err := svc.PublishVideo(ctx, studycontent.PublishVideoRequest{
			Classification: studycontent.Classification{
				Branch:   "CSE",
				Semester: "3",
				Subject:  "Data Structures",
			},
			VideoTitle: "Trees",
			VideoURL:   "https://youtu.be/abcdefghijk",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteContent(ctx, item.ID))
	})
}
