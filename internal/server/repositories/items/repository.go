// Package items stores items. Every query is scoped to the owning user, so
// a foreign item is indistinguishable from a missing one.
package items

import (
	"context"

	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
)

// Patch carries the fields to change on Update. Nil leaves a field as is.
type Patch struct {
	Name        *string
	Description *string
}

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Item, error)
	Get(ctx context.Context, id, userID string) (*models.Item, error)
	Update(ctx context.Context, id, userID string, patch Patch) (*models.Item, error)
	Delete(ctx context.Context, id, userID string) error
}
