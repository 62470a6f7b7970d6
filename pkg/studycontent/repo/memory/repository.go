package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// Repository implements studycontent.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*studycontent.ContentItem
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		items: make(map[uuid.UUID]*studycontent.ContentItem),
	}
}

func (r *Repository) CreateItem(ctx context.Context, item *studycontent.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	itemCopy := *item
	r.items[item.ID] = &itemCopy
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*studycontent.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, studycontent.ErrContentNotFound
	}
	itemCopy := *item
	return &itemCopy, nil
}

func (r *Repository) ListItems(ctx context.Context, filters studycontent.ListContentFilters) ([]*studycontent.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*studycontent.ContentItem
	for _, item := range r.items {
		if !matches(item, filters) {
			continue
		}
		itemCopy := *item
		result = append(result, &itemCopy)
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadDate.After(result[j].UploadDate)
	})

	if filters.Offset != nil {
		if *filters.Offset >= len(result) {
			result = nil
		} else {
			result = result[*filters.Offset:]
		}
	}
	if filters.Limit != nil && *filters.Limit < len(result) {
		result = result[:*filters.Limit]
	}

	return result, nil
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return studycontent.ErrContentNotFound
	}
	delete(r.items, id)
	return nil
}

func matches(item *studycontent.ContentItem, filters studycontent.ListContentFilters) bool {
	if filters.Kind != nil && item.Kind != *filters.Kind {
		return false
	}
	if filters.Subject != nil && item.Subject != *filters.Subject {
		return false
	}
	if filters.Branch != nil && item.Branch != *filters.Branch {
		return false
	}
	if filters.Semester != nil && item.Semester != *filters.Semester {
		return false
	}
	return true
}
