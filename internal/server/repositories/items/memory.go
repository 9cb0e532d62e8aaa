package items

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps items in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Item
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*models.Item), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now

	stored := *item
	r.items[item.ID] = &stored
	return item, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, userID string) ([]*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Item, 0)
	for _, it := range r.items {
		if it.UserID == userID {
			cp := *it
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) Get(_ context.Context, id, userID string) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || it.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *MemoryRepository) Update(_ context.Context, id, userID string, patch Patch) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok || it.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if v := deref(patch.Name); v != "" {
		it.Name = v
	}
	if v := deref(patch.Description); v != "" {
		it.Description = v
	}
	it.UpdatedAt = r.now().UTC()

	cp := *it
	return &cp, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok || it.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	return nil
}
