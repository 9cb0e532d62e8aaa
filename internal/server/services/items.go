package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ErrInvalidID is returned for item ids that are not uuids.
var ErrInvalidID = errors.New("invalid id")

// ItemService is owner-scoped CRUD over items. Another user's item is
// reported as common.ErrorNotFound, never as forbidden.
type ItemService struct {
	repomanager repomanager.RepositoryManager
}

func NewItemService(m repomanager.RepositoryManager) *ItemService {
	return &ItemService{repomanager: m}
}

func (s *ItemService) Create(ctx context.Context, userID, name, description string) (*models.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrorValidation
	}

	item, err := s.repomanager.Items().Create(ctx, &models.Item{UserID: userID, Name: name, Description: description})
	if err != nil {
		return nil, fmt.Errorf("error creating item: %w", err)
	}
	return item, nil
}

func (s *ItemService) List(ctx context.Context, userID string) ([]*models.Item, error) {
	list, err := s.repomanager.Items().ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return list, nil
}

func (s *ItemService) Get(ctx context.Context, userID, id string) (*models.Item, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	item, err := s.repomanager.Items().Get(ctx, id, userID)
	if err != nil {
		return nil, wrapNotFound(err, "error getting item")
	}
	return item, nil
}

// Update changes only the non-empty fields of patch.
func (s *ItemService) Update(ctx context.Context, userID, id string, patch items.Patch) (*models.Item, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	item, err := s.repomanager.Items().Update(ctx, id, userID, patch)
	if err != nil {
		return nil, wrapNotFound(err, "error updating item")
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repomanager.Items().Delete(ctx, id, userID); err != nil {
		return wrapNotFound(err, "error deleting item")
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func wrapNotFound(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
