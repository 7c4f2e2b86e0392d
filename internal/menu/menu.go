// Package menu manages the restaurant catalog: categories and the items
// staff can ring up. Prices are stored in minor currency units.
package menu

import (
	"github.com/google/uuid"
)

// Category groups menu items for display ordering on the register.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sortOrder"`
}

// Item is a sellable menu entry. BasePrice is the undiscounted price in
// minor units; promotions never mutate it.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	BasePrice   int64     `json:"basePrice"`
	CategoryID  uuid.UUID `json:"categoryId"`
	Available   bool      `json:"isAvailable"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
}

// ItemInput carries create/update fields for an item.
type ItemInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	BasePrice   int64     `json:"basePrice"`
	CategoryID  uuid.UUID `json:"categoryId"`
	Available   *bool     `json:"isAvailable"`
	ImageURL    *string   `json:"imageUrl"`
}
