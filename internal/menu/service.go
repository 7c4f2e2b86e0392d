package menu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-resto/internal/common"
	"github.com/noah-isme/backend-resto/internal/promo"
)

type store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (Item, error)
	GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Item, error)
	CreateItem(ctx context.Context, in ItemInput) (Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, in ItemInput) (Item, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) (Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, name string, sortOrder int32) (Category, error)
}

const (
	categoriesCacheKey = "menu:categories"
	itemsCacheKey      = "menu:items:available"
)

// Service orchestrates catalog queries, caching, and input validation.
type Service struct {
	Store store
	Cache *Cache
}

// ListCategories returns all categories, served from cache when possible.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var cached []Category
	if ok, err := s.Cache.GetJSON(ctx, categoriesCacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, categoriesCacheKey, rows)
	return rows, nil
}

// ListItems returns menu items. The unfiltered available-only listing is the
// hot path for the register and is cached.
func (s *Service) ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]Item, error) {
	cacheable := categoryID == nil && availableOnly
	if cacheable {
		var cached []Item
		if ok, err := s.Cache.GetJSON(ctx, itemsCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}
	rows, err := s.Store.ListItems(ctx, categoryID, availableOnly)
	if err != nil {
		return nil, err
	}
	if cacheable {
		_ = s.Cache.SetJSON(ctx, itemsCacheKey, rows)
	}
	return rows, nil
}

// GetItem fetches a single item.
func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	it, err := s.Store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, common.NotFound("menu item not found")
		}
		return Item{}, fmt.Errorf("get menu item: %w", err)
	}
	return it, nil
}

// Snapshot resolves menu item ids into the immutable pricing view. Every
// requested id must exist.
func (s *Service) Snapshot(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]promo.Item, error) {
	items, err := s.Store.GetItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]promo.Item, len(items))
	for id, it := range items {
		out[id] = promo.Item{ID: it.ID, BasePrice: it.BasePrice, CategoryID: it.CategoryID}
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, &common.AppError{
				Code:       "NOT_FOUND",
				Message:    "menu item not found",
				HTTPStatus: http.StatusNotFound,
				Details:    map[string]any{"menuItemId": id.String()},
			}
		}
	}
	return out, nil
}

// CreateItem validates and inserts a new item.
func (s *Service) CreateItem(ctx context.Context, in ItemInput) (Item, error) {
	if err := validateItemInput(in); err != nil {
		return Item{}, err
	}
	it, err := s.Store.CreateItem(ctx, in)
	if err != nil {
		return Item{}, fmt.Errorf("create menu item: %w", err)
	}
	s.Cache.Invalidate(ctx, itemsCacheKey)
	return it, nil
}

// UpdateItem validates and overwrites an existing item.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, in ItemInput) (Item, error) {
	if err := validateItemInput(in); err != nil {
		return Item{}, err
	}
	it, err := s.Store.UpdateItem(ctx, id, in)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, common.NotFound("menu item not found")
		}
		return Item{}, fmt.Errorf("update menu item: %w", err)
	}
	s.Cache.Invalidate(ctx, itemsCacheKey)
	return it, nil
}

// SetAvailability flips the 86-list flag for an item.
func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (Item, error) {
	it, err := s.Store.SetAvailability(ctx, id, available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, common.NotFound("menu item not found")
		}
		return Item{}, fmt.Errorf("set availability: %w", err)
	}
	s.Cache.Invalidate(ctx, itemsCacheKey)
	return it, nil
}

// DeleteItem removes an item from the catalog.
func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFound("menu item not found")
		}
		return fmt.Errorf("delete menu item: %w", err)
	}
	s.Cache.Invalidate(ctx, itemsCacheKey)
	return nil
}

// CreateCategory validates and inserts a category.
func (s *Service) CreateCategory(ctx context.Context, name string, sortOrder int32) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, common.Invalid("category name is required", nil)
	}
	c, err := s.Store.CreateCategory(ctx, name, sortOrder)
	if err != nil {
		return Category{}, err
	}
	s.Cache.Invalidate(ctx, categoriesCacheKey)
	return c, nil
}

func validateItemInput(in ItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return common.Invalid("name is required", map[string]any{"field": "name"})
	}
	if in.BasePrice <= 0 {
		return common.Invalid("basePrice must be positive", map[string]any{"field": "basePrice"})
	}
	if in.CategoryID == uuid.Nil {
		return common.Invalid("categoryId is required", map[string]any{"field": "categoryId"})
	}
	return nil
}
