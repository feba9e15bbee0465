package menu

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
	"restaurant-ordering/internal/store"
	"restaurant-ordering/internal/telemetry"
)

// Service manages the menu catalog
type Service struct {
	store  store.MenuQueries
	logger *logger.Logger
}

func NewService(st store.MenuQueries, log *logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
	}
}

func (s *Service) Create(ctx context.Context, req *models.MenuItemRequest) (item *models.MenuItem, err error) {
	ctx, span := telemetry.StartSpan(ctx, "menu.create")
	defer func() { telemetry.End(span, err) }()

	item, err = req.Validate()
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to insert menu item: %w", err)
	}

	s.logger.Info("menu_item_created", "Menu item created", logger.RequestID(ctx), map[string]interface{}{
		"menu_item_id": item.ID,
		"name":         item.Name,
		"category":     item.Category,
		"price":        item.Price.StringFixed(2),
	})

	return item, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.MenuItem, error) {
	return s.store.GetMenuItem(ctx, id)
}

// List returns one page of the catalog in ascending id order
func (s *Service) List(ctx context.Context, page models.PageRequest) (models.Page[models.MenuItem], error) {
	items, total, err := s.store.ListMenuItems(ctx, page)
	if err != nil {
		return models.Page[models.MenuItem]{}, fmt.Errorf("failed to list menu items: %w", err)
	}
	return models.NewPage(items, page, total), nil
}

// Update replaces every field of the item
func (s *Service) Update(ctx context.Context, id int64, req *models.MenuItemRequest) (item *models.MenuItem, err error) {
	ctx, span := telemetry.StartSpan(ctx, "menu.update", attribute.Int64("menu_item.id", id))
	defer func() { telemetry.End(span, err) }()

	item, err = req.Validate()
	if err != nil {
		return nil, err
	}
	item.ID = id

	if err := s.store.UpdateMenuItem(ctx, item); err != nil {
		if models.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	s.logger.Info("menu_item_updated", "Menu item updated", logger.RequestID(ctx), map[string]interface{}{
		"menu_item_id": item.ID,
		"available":    item.Available,
	})

	return item, nil
}

// Delete removes the item. Existing orders keep their copied line items.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "menu.delete", attribute.Int64("menu_item.id", id))
	defer func() { telemetry.End(span, err) }()

	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		if models.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	s.logger.Info("menu_item_deleted", "Menu item deleted", logger.RequestID(ctx), map[string]interface{}{
		"menu_item_id": id,
	})
	return nil
}
