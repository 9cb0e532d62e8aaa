package repomanager

import (
	"context"

	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. Data does
// not survive a restart.
type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
	items *items.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		items: items.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *InMemoryRepositoryManager) Users() users.Repository             { return m.users }
func (m *InMemoryRepositoryManager) Items() items.Repository             { return m.items }
func (m *InMemoryRepositoryManager) Close() error                        { return nil }
