package promo

// SimpleResult is the outcome of resolving simple promotions for one unit.
type SimpleResult struct {
	EffectivePrice int64
	Discount       int64
	Applied        *Promotion
}

// discountFor computes the absolute discount a simple promotion grants on the
// item. Combo promotions always yield zero here; they are allocated elsewhere.
func discountFor(p Promotion, item Item) int64 {
	switch p.Kind {
	case KindFixed:
		return p.Value
	case KindPercent:
		return item.BasePrice * int64(p.PercentBps) / 10000
	default:
		return 0
	}
}

// appliesTo reports whether a simple promotion targets the item, either
// directly or through its category.
func appliesTo(p Promotion, item Item) bool {
	switch p.Scope {
	case ScopeItem:
		return p.MenuItemID != nil && *p.MenuItemID == item.ID
	case ScopeCategory:
		return p.CategoryID != nil && *p.CategoryID == item.CategoryID
	default:
		return false
	}
}

// ResolveSimple picks the single best applicable non-combo promotion for the
// item. The strictly largest discount wins; on equal discounts the promotion
// listed first is kept, so callers must hand promotions over in a stable
// order. The effective price is clamped at zero.
func ResolveSimple(item Item, promotions []Promotion) SimpleResult {
	var (
		best         *Promotion
		bestDiscount int64
	)
	for i := range promotions {
		p := promotions[i]
		if p.IsCombo() || !appliesTo(p, item) {
			continue
		}
		discount := discountFor(p, item)
		if discount > bestDiscount {
			bestDiscount = discount
			best = &promotions[i]
		}
	}
	if best == nil {
		return SimpleResult{EffectivePrice: item.BasePrice}
	}
	price := item.BasePrice - bestDiscount
	if price < 0 {
		price = 0
	}
	return SimpleResult{
		EffectivePrice: price,
		Discount:       item.BasePrice - price,
		Applied:        best,
	}
}
