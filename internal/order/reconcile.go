package order

import (
	"github.com/google/uuid"

	"github.com/noah-isme/backend-resto/internal/pricing"
)

// newLine is a priced row about to be inserted, carrying the note from the
// request line it was split from.
type newLine struct {
	MenuItemID         uuid.UUID
	Quantity           int32
	FrozenPrice        int64
	AppliedPromotionID *uuid.UUID
	Notes              *string
}

// splitOntoNotes maps the engine's grouped output back onto the request
// lines so guest notes land on concrete rows. The engine groups by price,
// not by note, so one request line can split into several rows and one
// priced group can span several notes. Matching is greedy by item id.
func splitOntoNotes(calc []pricing.CalculatedLine, input []CartLine) []newLine {
	type slot struct {
		menuItemID uuid.UUID
		remaining  int32
		notes      *string
	}
	pool := make([]slot, 0, len(input))
	for _, in := range input {
		pool = append(pool, slot{menuItemID: in.MenuItemID, remaining: in.Quantity, notes: in.Notes})
	}

	var out []newLine
	for _, line := range calc {
		needed := int32(line.Quantity)
		for needed > 0 {
			idx := -1
			for i := range pool {
				if pool[i].menuItemID == line.MenuItemID && pool[i].remaining > 0 {
					idx = i
					break
				}
			}
			if idx == -1 {
				break
			}
			take := needed
			if pool[idx].remaining < take {
				take = pool[idx].remaining
			}
			out = append(out, newLine{
				MenuItemID:         line.MenuItemID,
				Quantity:           take,
				FrozenPrice:        line.FrozenPrice,
				AppliedPromotionID: line.AppliedPromotionID,
				Notes:              pool[idx].notes,
			})
			pool[idx].remaining -= take
			needed -= take
		}
	}
	return out
}

// typeAverages flattens the engine output to one weighted-average unit
// price per menu item. Amending an open order cannot split persisted rows,
// so rows of the same item all get the average; order totals still come
// from the engine directly.
func typeAverages(calc []pricing.CalculatedLine) map[uuid.UUID]int64 {
	sums := make(map[uuid.UUID]int64)
	counts := make(map[uuid.UUID]int64)
	for _, line := range calc {
		sums[line.MenuItemID] += line.FrozenPrice * int64(line.Quantity)
		counts[line.MenuItemID] += int64(line.Quantity)
	}
	out := make(map[uuid.UUID]int64, len(sums))
	for id, sum := range sums {
		qty := counts[id]
		if qty == 0 {
			continue
		}
		// round half up
		out[id] = (sum + qty/2) / qty
	}
	return out
}

func totalsOf(res pricing.Result) Totals {
	return Totals{Subtotal: res.Subtotal, Discount: res.Discount, Tax: res.Tax, Total: res.Total}
}

func toEngineLines(items []CartLine) []pricing.CartLine {
	out := make([]pricing.CartLine, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.CartLine{MenuItemID: it.MenuItemID, Quantity: int(it.Quantity)})
	}
	return out
}

func menuItemIDs(items []CartLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.MenuItemID]; ok {
			continue
		}
		seen[it.MenuItemID] = struct{}{}
		out = append(out, it.MenuItemID)
	}
	return out
}
