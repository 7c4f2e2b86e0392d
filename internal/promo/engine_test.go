package promo

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveSimplePercent(t *testing.T) {
	catID := uuid.New()
	item := Item{ID: uuid.New(), BasePrice: 1000, CategoryID: catID}
	promos := []Promotion{{
		ID:         uuid.New(),
		Kind:       KindPercent,
		PercentBps: 1500,
		Scope:      ScopeCategory,
		CategoryID: &catID,
	}}
	res := ResolveSimple(item, promos)
	if res.EffectivePrice != 850 {
		t.Fatalf("expected effective price 850, got %d", res.EffectivePrice)
	}
	if res.Discount != 150 {
		t.Fatalf("expected discount 150, got %d", res.Discount)
	}
}

func TestResolveSimpleNoMatch(t *testing.T) {
	item := Item{ID: uuid.New(), BasePrice: 1000, CategoryID: uuid.New()}
	otherItem := uuid.New()
	promos := []Promotion{{
		ID:         uuid.New(),
		Kind:       KindFixed,
		Value:      200,
		Scope:      ScopeItem,
		MenuItemID: &otherItem,
	}}
	res := ResolveSimple(item, promos)
	if res.EffectivePrice != 1000 || res.Discount != 0 || res.Applied != nil {
		t.Fatalf("expected untouched price, got %+v", res)
	}
}

func TestResolveSimpleClampsAtZero(t *testing.T) {
	itemID := uuid.New()
	item := Item{ID: itemID, BasePrice: 699, CategoryID: uuid.New()}
	promos := []Promotion{{
		ID:         uuid.New(),
		Kind:       KindFixed,
		Value:      1000,
		Scope:      ScopeItem,
		MenuItemID: &itemID,
	}}
	res := ResolveSimple(item, promos)
	if res.EffectivePrice != 0 {
		t.Fatalf("expected clamped price 0, got %d", res.EffectivePrice)
	}
	if res.Discount != 699 {
		t.Fatalf("expected discount 699, got %d", res.Discount)
	}
}

func TestResolveSimpleLargestDiscountWins(t *testing.T) {
	itemID := uuid.New()
	catID := uuid.New()
	item := Item{ID: itemID, BasePrice: 1000, CategoryID: catID}
	small := Promotion{ID: uuid.New(), Kind: KindFixed, Value: 100, Scope: ScopeItem, MenuItemID: &itemID}
	big := Promotion{ID: uuid.New(), Kind: KindPercent, PercentBps: 2500, Scope: ScopeCategory, CategoryID: &catID}
	res := ResolveSimple(item, []Promotion{small, big})
	if res.Applied == nil || res.Applied.ID != big.ID {
		t.Fatalf("expected the 25%% promotion to win, got %+v", res.Applied)
	}
}

func TestResolveSimpleTieKeepsFirst(t *testing.T) {
	itemID := uuid.New()
	item := Item{ID: itemID, BasePrice: 1000, CategoryID: uuid.New()}
	first := Promotion{ID: uuid.New(), Kind: KindFixed, Value: 100, Scope: ScopeItem, MenuItemID: &itemID}
	second := Promotion{ID: uuid.New(), Kind: KindPercent, PercentBps: 1000, Scope: ScopeItem, MenuItemID: &itemID}
	res := ResolveSimple(item, []Promotion{first, second})
	if res.Applied == nil || res.Applied.ID != first.ID {
		t.Fatalf("expected the first-listed promotion on a tie, got %+v", res.Applied)
	}
}

func TestRuleMatches(t *testing.T) {
	itemID := uuid.New()
	catID := uuid.New()
	item := Item{ID: itemID, BasePrice: 500, CategoryID: catID}

	byItem := Rule{MenuItemID: &itemID}
	if !byItem.Matches(item) {
		t.Fatal("expected item-targeted rule to match")
	}
	byCategory := Rule{CategoryID: &catID}
	if !byCategory.Matches(item) {
		t.Fatal("expected category-targeted rule to match")
	}
	empty := Rule{}
	if empty.Matches(item) {
		t.Fatal("expected untargeted rule to never match")
	}
}
