// Package repomanager hands out the repositories of one storage backend:
// PostgreSQL for deployments, process memory for development and tests.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Items() items.Repository
	Close() error
}
