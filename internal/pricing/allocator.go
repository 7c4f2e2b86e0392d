package pricing

import (
	"github.com/google/uuid"

	"github.com/noah-isme/backend-resto/internal/promo"
)

// allocateCombos repeatedly extracts combo instances from the unit pool,
// highest-value combo first, each combo re-attempted until its rules can no
// longer be satisfied by the remaining units. Consumed units are removed
// from the pool; the shrunken pool is returned for simple-promotion
// resolution. Greedy and non-backtracking: units claimed by one combo are
// never reconsidered for another, even when a different assignment would
// discount more.
func allocateCombos(pool []uuid.UUID, catalog map[uuid.UUID]promo.Item, combos []promo.Promotion) ([]pricedUnit, []uuid.UUID, int) {
	priced := make([]pricedUnit, 0)
	instances := 0
	for _, combo := range combos {
		if len(combo.Rules) == 0 {
			continue
		}
		for {
			consumed, ok := matchCombo(pool, catalog, combo)
			if !ok {
				break
			}
			instances++
			var triggers, rewards []promo.Item
			for _, m := range consumed {
				pool = removeUnit(pool, m.item.ID)
				if m.discounted {
					rewards = append(rewards, m.item)
				} else {
					triggers = append(triggers, m.item)
				}
			}
			priced = append(priced, priceInstance(combo, triggers, rewards)...)
		}
	}
	return priced, pool, instances
}

type matchedUnit struct {
	item       promo.Item
	discounted bool
}

// matchCombo trial-allocates one instance of the combo against the pool. Each
// rule must find its required quantity among the units not yet claimed by an
// earlier rule of the same instance; any shortfall fails the whole instance.
func matchCombo(pool []uuid.UUID, catalog map[uuid.UUID]promo.Item, combo promo.Promotion) ([]matchedUnit, bool) {
	remaining := make([]uuid.UUID, len(pool))
	copy(remaining, pool)

	matched := make([]matchedUnit, 0)
	for _, rule := range combo.Rules {
		for i := 0; i < rule.RequiredQuantity; i++ {
			idx := -1
			for j, id := range remaining {
				if rule.Matches(catalog[id]) {
					idx = j
					break
				}
			}
			if idx == -1 {
				return nil, false
			}
			matched = append(matched, matchedUnit{item: catalog[remaining[idx]], discounted: rule.IsDiscounted})
			remaining = append(remaining[:idx], remaining[idx+1:]...)
		}
	}
	return matched, true
}

// priceInstance freezes the prices of one matched combo instance. With both
// triggers and rewards present, triggers keep their base price and the
// rewards share the bundle price. Otherwise the bundle price is spread over
// every matched unit. Either way the shared amount is distributed
// proportionally to base price.
func priceInstance(combo promo.Promotion, triggers, rewards []promo.Item) []pricedUnit {
	promoID := combo.ID
	units := make([]pricedUnit, 0, len(triggers)+len(rewards))

	shared := rewards
	if len(triggers) == 0 || len(rewards) == 0 {
		shared = append(triggers, rewards...)
		triggers = nil
	}

	for _, item := range triggers {
		units = append(units, pricedUnit{
			menuItemID:  item.ID,
			basePrice:   item.BasePrice,
			frozenPrice: item.BasePrice,
			promotionID: &promoID,
		})
	}
	return append(units, distributeBundle(combo.Value, shared, promoID)...)
}

// distributeBundle splits the bundle price across the items proportionally
// to their base prices, in minor units, using largest-remainder rounding so
// the frozen prices sum to the bundle exactly. A zero base total makes every
// item free. A bundle above the base total is honoured as configured, even
// though it prices units above base; that configuration is the operator's
// mistake, not the engine's to correct.
func distributeBundle(bundle Money, items []promo.Item, promoID uuid.UUID) []pricedUnit {
	var baseTotal Money
	for _, item := range items {
		baseTotal += item.BasePrice
	}
	if bundle < 0 {
		bundle = 0
	}

	frozen := make([]Money, len(items))
	remainders := make([]Money, len(items))
	var allocated Money
	if baseTotal > 0 {
		for i, item := range items {
			share := item.BasePrice * bundle
			frozen[i] = share / baseTotal
			remainders[i] = share % baseTotal
			allocated += frozen[i]
		}
	}
	// Hand the leftover cents to the largest fractional shares, earliest
	// item first on ties, so the distributed prices sum to the bundle.
	for leftover := bundle - allocated; leftover > 0; leftover-- {
		best := -1
		for i := range items {
			if remainders[i] > 0 && (best == -1 || remainders[i] > remainders[best]) {
				best = i
			}
		}
		if best == -1 {
			break
		}
		frozen[best]++
		remainders[best] = 0
	}

	units := make([]pricedUnit, 0, len(items))
	for i, item := range items {
		units = append(units, pricedUnit{
			menuItemID:  item.ID,
			basePrice:   item.BasePrice,
			frozenPrice: frozen[i],
			promotionID: &promoID,
		})
	}
	return units
}

func removeUnit(pool []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range pool {
		if v == id {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
