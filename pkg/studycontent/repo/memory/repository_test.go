package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainstack/study-content/pkg/studycontent"
	"github.com/brainstack/study-content/pkg/studycontent/repo/memory"
)

func newItem(subject string, kind studycontent.ContentKind, uploadDate time.Time) *studycontent.ContentItem {
	return &studycontent.ContentItem{
		ID:         uuid.New(),
		Branch:     "CSE",
		Semester:   "3",
		Subject:    subject,
		Kind:       kind,
		FileName:   "notes.pdf",
		ObjectKey:  fmt.Sprintf("uploads/cse/3/%s/%s/%d_notes.pdf", subject, kind, uploadDate.UnixMilli()),
		FileURL:    "https://cdn.example.com/notes.pdf",
		FileSize:   1024,
		MimeType:   "application/pdf",
		UploadDate: uploadDate,
	}
}

func TestMemoryRepository_ItemOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("CreateItem", func(t *testing.T) {
		item := newItem("dsa", studycontent.KindNotes, time.Now())
		err := repo.CreateItem(ctx, item)
		assert.NoError(t, err)
	})

	t.Run("GetItem", func(t *testing.T) {
		item := newItem("os", studycontent.KindPYQ, time.Now())
		require.NoError(t, repo.CreateItem(ctx, item))

		retrieved, err := repo.GetItem(ctx, item.ID)
		assert.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, item.ID, retrieved.ID)
		assert.Equal(t, item.ObjectKey, retrieved.ObjectKey)

		// The returned item is a copy
		retrieved.Subject = "mutated"
		again, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "os", again.Subject)
	})

	t.Run("GetItem_NotFound", func(t *testing.T) {
		item, err := repo.GetItem(ctx, uuid.New())
		assert.Nil(t, item)
		assert.ErrorIs(t, err, studycontent.ErrContentNotFound)
	})

	t.Run("DeleteItem", func(t *testing.T) {
		item := newItem("maths", studycontent.KindFormulas, time.Now())
		require.NoError(t, repo.CreateItem(ctx, item))

		assert.NoError(t, repo.DeleteItem(ctx, item.ID))

		_, err := repo.GetItem(ctx, item.ID)
		assert.ErrorIs(t, err, studycontent.ErrContentNotFound)
	})

	t.Run("DeleteItem_NotFound", func(t *testing.T) {
		err := repo.DeleteItem(ctx, uuid.New())
		assert.ErrorIs(t, err, studycontent.ErrContentNotFound)
	})
}

func TestMemoryRepository_ListItems(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	oldest := newItem("dsa", studycontent.KindNotes, base)
	middle := newItem("dsa", studycontent.KindPYQ, base.Add(time.Hour))
	newest := newItem("os", studycontent.KindNotes, base.Add(2*time.Hour))

	for _, item := range []*studycontent.ContentItem{oldest, middle, newest} {
		require.NoError(t, repo.CreateItem(ctx, item))
	}

	t.Run("newest first", func(t *testing.T) {
		items, err := repo.ListItems(ctx, studycontent.ListContentFilters{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, newest.ID, items[0].ID)
		assert.Equal(t, middle.ID, items[1].ID)
		assert.Equal(t, oldest.ID, items[2].ID)
	})

	t.Run("filter by subject", func(t *testing.T) {
		subject := "dsa"
		items, err := repo.ListItems(ctx, studycontent.ListContentFilters{Subject: &subject})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("filter by kind", func(t *testing.T) {
		kind := studycontent.KindPYQ
		items, err := repo.ListItems(ctx, studycontent.ListContentFilters{Kind: &kind})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, middle.ID, items[0].ID)
	})

	t.Run("offset and limit", func(t *testing.T) {
		offset, limit := 1, 1
		items, err := repo.ListItems(ctx, studycontent.ListContentFilters{Offset: &offset, Limit: &limit})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, middle.ID, items[0].ID)
	})

	t.Run("offset past the end", func(t *testing.T) {
		offset := 10
		items, err := repo.ListItems(ctx, studycontent.ListContentFilters{Offset: &offset})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
