package promo

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the promotion variants.
type Kind string

const (
	// KindFixed subtracts a flat amount from the unit price.
	KindFixed Kind = "FIXED"
	// KindPercent subtracts a percentage of the base price.
	KindPercent Kind = "PERCENT"
	// KindCombo bundles several units for a flat price.
	KindCombo Kind = "COMBO"
)

// Scope narrows a simple promotion to one item or one category.
type Scope string

const (
	ScopeItem     Scope = "ITEM"
	ScopeCategory Scope = "CATEGORY"
)

// Rule is one demand of a combo promotion: requiredQuantity units matching
// either a menu item or a category. Discounted rules mark the reward portion;
// the rest are triggers kept at full price.
type Rule struct {
	ID               uuid.UUID
	RequiredQuantity int
	MenuItemID       *uuid.UUID
	CategoryID       *uuid.UUID
	IsDiscounted     bool
}

// Promotion captures the runtime shape of a promotion. Kind selects which
// fields are meaningful: FIXED uses Value as an absolute amount, PERCENT uses
// PercentBps, COMBO uses Value as the bundle price and Rules as its demands.
type Promotion struct {
	ID         uuid.UUID
	Name       string
	Kind       Kind
	Value      int64
	PercentBps int32
	Scope      Scope
	MenuItemID *uuid.UUID
	CategoryID *uuid.UUID
	Active     bool
	StartsAt   *time.Time
	EndsAt     *time.Time
	Rules      []Rule
}

// Item is the catalog snapshot the promotion engine prices against.
type Item struct {
	ID         uuid.UUID
	BasePrice  int64
	CategoryID uuid.UUID
}

// IsCombo reports whether the promotion is a combo bundle.
func (p Promotion) IsCombo() bool {
	return p.Kind == KindCombo
}

// Matches reports whether the unit satisfies the rule, by menu item id first,
// then by category id. A rule with neither target set never matches.
func (r Rule) Matches(item Item) bool {
	if r.MenuItemID != nil && *r.MenuItemID == item.ID {
		return true
	}
	if r.CategoryID != nil && *r.CategoryID == item.CategoryID {
		return true
	}
	return false
}
