package services

import (
	"context"
	"fmt"
	"strings"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/logger"
)

// InventoryService manages the menu catalog and its stock ledger.
type InventoryService struct {
	store core.IStore
	mylog logger.Logger
}

func NewInventoryService(store core.IStore, mylogger logger.Logger) *InventoryService {
	return &InventoryService{store: store, mylog: mylogger}
}

func (is *InventoryService) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := is.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		items, err = repos.Menu().List(ctx)
		return err
	})
	if err != nil {
		is.mylog.Action("list_menu").Error("Failed to list menu", err)
		return nil, storageErr(err)
	}
	return items, nil
}

func (is *InventoryService) Quantity(ctx context.Context, id string) (int, error) {
	var item models.MenuItem
	err := is.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		item, err = repos.Menu().Get(ctx, id)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("menu item %s: %w", id, storageErr(err))
	}
	return item.Quantity, nil
}

func (is *InventoryService) Create(ctx context.Context, req dto.MenuItemRequest) (models.MenuItem, error) {
	if err := validateMenuItem(req); err != nil {
		return models.MenuItem{}, err
	}

	var created models.MenuItem
	err := is.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		created, err = repos.Menu().Create(ctx, models.MenuItem{
			Name:     strings.TrimSpace(req.Name),
			Price:    req.Price,
			Quantity: req.Quantity,
			Image:    req.Image,
		})
		return err
	})
	if err != nil {
		return models.MenuItem{}, storageErr(err)
	}

	is.mylog.Action("menu_item_created").Info("Menu item created", "item_id", created.ID, "name", created.Name)
	return created, nil
}

// Update replaces the item's fields. An empty image keeps the current one.
func (is *InventoryService) Update(ctx context.Context, id string, req dto.MenuItemRequest) (models.MenuItem, error) {
	if err := validateMenuItem(req); err != nil {
		return models.MenuItem{}, err
	}

	var updated models.MenuItem
	err := is.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		current, err := repos.Menu().Get(ctx, id)
		if err != nil {
			return err
		}
		current.Name = strings.TrimSpace(req.Name)
		current.Price = req.Price
		current.Quantity = req.Quantity
		if req.Image != "" {
			current.Image = req.Image
		}
		updated, err = repos.Menu().Update(ctx, current)
		return err
	})
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, storageErr(err))
	}

	is.mylog.Action("menu_item_updated").Info("Menu item updated", "item_id", id)
	return updated, nil
}

// Delete removes the item and returns it so the caller can clean up its image.
func (is *InventoryService) Delete(ctx context.Context, id string) (models.MenuItem, error) {
	var removed models.MenuItem
	err := is.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		removed, err = repos.Menu().Delete(ctx, id)
		return err
	})
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, storageErr(err))
	}

	is.mylog.Action("menu_item_deleted").Info("Menu item deleted", "item_id", id, "name", removed.Name)
	return removed, nil
}

// Adjust applies a signed manual stock correction. Stock never drops below zero.
func (is *InventoryService) Adjust(ctx context.Context, id string, delta int) (models.MenuItem, error) {
	var item models.MenuItem
	err := is.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		item, err = repos.Menu().Adjust(ctx, id, delta)
		return err
	})
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, storageErr(err))
	}

	is.mylog.Action("stock_adjusted").Info("Stock adjusted", "item_id", id, "delta", delta, "quantity", item.Quantity)
	return item, nil
}

func validateMenuItem(req dto.MenuItemRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name: %w", core.ErrFieldIsEmpty)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", core.ErrValidation)
	}
	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", core.ErrValidation)
	}
	return nil
}
