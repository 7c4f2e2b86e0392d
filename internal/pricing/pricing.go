// Package pricing computes frozen order prices from a cart, a catalog
// snapshot and the currently active promotions. It is pure: no I/O, no
// clock, no shared state, so a retried transaction recomputes identical
// results from identical inputs.
package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-resto/internal/promo"
)

// Money is a monetary value in minor units.
type Money = int64

// ErrUnknownMenuItem rejects calculations referencing items missing from the
// catalog snapshot. The whole calculation fails; partial pricing is never
// returned.
var ErrUnknownMenuItem = errors.New("pricing: unknown menu item")

// CartLine is one raw cart entry: an item and how many units of it.
type CartLine struct {
	MenuItemID uuid.UUID
	Quantity   int
}

// CalculatedLine is one priced output group. FrozenPrice is the per-unit
// price after all discounts and never changes once persisted on an order
// line. Discount is always BasePrice - FrozenPrice.
type CalculatedLine struct {
	MenuItemID         uuid.UUID
	Quantity           int
	BasePrice          Money
	FrozenPrice        Money
	Discount           Money
	AppliedPromotionID *uuid.UUID
}

// Result aggregates the priced lines and the order totals. ComboInstances
// counts how many combo promotions were allocated, for observability.
type Result struct {
	Lines          []CalculatedLine
	Subtotal       Money
	Discount       Money
	Tax            Money
	Total          Money
	ComboInstances int
}

// Calculate prices the cart. Combo promotions are allocated first, greedily
// and highest bundle value first; leftover units fall through to simple
// promotion resolution. Tax is applied to the discounted subtotal at the
// given basis-point rate.
func Calculate(lines []CartLine, catalog map[uuid.UUID]promo.Item, promotions []promo.Promotion, taxBps int) (Result, error) {
	pool := make([]uuid.UUID, 0)
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if _, ok := catalog[line.MenuItemID]; !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownMenuItem, line.MenuItemID)
		}
		for i := 0; i < line.Quantity; i++ {
			pool = append(pool, line.MenuItemID)
		}
	}

	combos := make([]promo.Promotion, 0)
	simple := make([]promo.Promotion, 0, len(promotions))
	for _, p := range promotions {
		if p.IsCombo() {
			combos = append(combos, p)
		} else {
			simple = append(simple, p)
		}
	}
	// Big-ticket combos claim units first. This is a heuristic, not an
	// optimal assignment, and is the documented production behaviour.
	sort.SliceStable(combos, func(i, j int) bool { return combos[i].Value > combos[j].Value })

	units, pool, comboInstances := allocateCombos(pool, catalog, combos)

	for _, id := range pool {
		item := catalog[id]
		res := promo.ResolveSimple(item, simple)
		var applied *uuid.UUID
		if res.Applied != nil {
			promoID := res.Applied.ID
			applied = &promoID
		}
		units = append(units, pricedUnit{
			menuItemID:  id,
			basePrice:   item.BasePrice,
			frozenPrice: res.EffectivePrice,
			promotionID: applied,
		})
	}

	grouped := groupUnits(units)

	var subtotal, baseTotal Money
	for _, g := range grouped {
		subtotal += g.FrozenPrice * Money(g.Quantity)
		baseTotal += g.BasePrice * Money(g.Quantity)
	}
	tax := subtotal * Money(taxBps) / 10000
	return Result{
		Lines:          grouped,
		Subtotal:       subtotal,
		Discount:       baseTotal - subtotal,
		Tax:            tax,
		Total:          subtotal + tax,
		ComboInstances: comboInstances,
	}, nil
}

// pricedUnit is a single expanded cart unit with its frozen price attached.
type pricedUnit struct {
	menuItemID  uuid.UUID
	basePrice   Money
	frozenPrice Money
	promotionID *uuid.UUID
}

// groupUnits folds per-unit results back into lines. Units merge only when
// item, applied promotion and unit price all agree, so a group's frozen
// price is uniform by construction.
func groupUnits(units []pricedUnit) []CalculatedLine {
	grouped := make([]CalculatedLine, 0, len(units))
	for _, u := range units {
		merged := false
		for i := range grouped {
			g := &grouped[i]
			if g.MenuItemID != u.menuItemID || g.FrozenPrice != u.frozenPrice {
				continue
			}
			if !samePromotion(g.AppliedPromotionID, u.promotionID) {
				continue
			}
			g.Quantity++
			merged = true
			break
		}
		if merged {
			continue
		}
		grouped = append(grouped, CalculatedLine{
			MenuItemID:         u.menuItemID,
			Quantity:           1,
			BasePrice:          u.basePrice,
			FrozenPrice:        u.frozenPrice,
			Discount:           u.basePrice - u.frozenPrice,
			AppliedPromotionID: u.promotionID,
		})
	}
	return grouped
}

func samePromotion(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
