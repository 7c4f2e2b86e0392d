package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-resto/internal/promo"
)

const taxBps = 700

var (
	mainsID    = uuid.MustParse("a1111111-1111-1111-1111-111111111111")
	sidesID    = uuid.MustParse("a2222222-2222-2222-2222-222222222222")
	drinksID   = uuid.MustParse("a3333333-3333-3333-3333-333333333333")
	dessertsID = uuid.MustParse("a4444444-4444-4444-4444-444444444444")

	burgerID      = uuid.MustParse("b1111111-1111-1111-1111-111111111111")
	veggieID      = uuid.MustParse("b2222222-2222-2222-2222-222222222222")
	friesID       = uuid.MustParse("b3333333-3333-3333-3333-333333333333")
	cokeID        = uuid.MustParse("b4444444-4444-4444-4444-444444444444")
	garlicBreadID = uuid.MustParse("b5555555-5555-5555-5555-555555555555")
	iceCreamID    = uuid.MustParse("b6666666-6666-6666-6666-666666666666")
)

func testCatalog() map[uuid.UUID]promo.Item {
	return map[uuid.UUID]promo.Item{
		burgerID:      {ID: burgerID, BasePrice: 1000, CategoryID: mainsID},
		veggieID:      {ID: veggieID, BasePrice: 1699, CategoryID: mainsID},
		friesID:       {ID: friesID, BasePrice: 599, CategoryID: sidesID},
		cokeID:        {ID: cokeID, BasePrice: 349, CategoryID: drinksID},
		garlicBreadID: {ID: garlicBreadID, BasePrice: 699, CategoryID: sidesID},
		iceCreamID:    {ID: iceCreamID, BasePrice: 450, CategoryID: dessertsID},
	}
}

func itemRule(itemID uuid.UUID, qty int, discounted bool) promo.Rule {
	id := itemID
	return promo.Rule{ID: uuid.New(), RequiredQuantity: qty, MenuItemID: &id, IsDiscounted: discounted}
}

func categoryRule(categoryID uuid.UUID, qty int, discounted bool) promo.Rule {
	id := categoryID
	return promo.Rule{ID: uuid.New(), RequiredQuantity: qty, CategoryID: &id, IsDiscounted: discounted}
}

func requireInvariants(t *testing.T, res Result) {
	t.Helper()
	var subtotal, baseTotal Money
	for _, line := range res.Lines {
		require.GreaterOrEqual(t, line.FrozenPrice, Money(0))
		require.Equal(t, line.BasePrice-line.FrozenPrice, line.Discount)
		subtotal += line.FrozenPrice * Money(line.Quantity)
		baseTotal += line.BasePrice * Money(line.Quantity)
	}
	require.Equal(t, subtotal, res.Subtotal)
	require.Equal(t, baseTotal-subtotal, res.Discount)
	require.Equal(t, res.Subtotal*taxBps/10000, res.Tax)
	require.Equal(t, res.Subtotal+res.Tax, res.Total)
}

func TestCalculateNoPromotions(t *testing.T) {
	res, err := Calculate(
		[]CartLine{{MenuItemID: burgerID, Quantity: 2}},
		testCatalog(), nil, taxBps,
	)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	require.Equal(t, Money(2000), res.Subtotal)
	require.Equal(t, Money(0), res.Discount)
	require.Equal(t, Money(140), res.Tax)
	require.Equal(t, Money(2140), res.Total)
	requireInvariants(t, res)
}

func TestCalculatePercentCategoryPromo(t *testing.T) {
	catID := mainsID
	promos := []promo.Promotion{{
		ID:         uuid.New(),
		Kind:       promo.KindPercent,
		PercentBps: 1500,
		Scope:      promo.ScopeCategory,
		CategoryID: &catID,
	}}
	res, err := Calculate(
		[]CartLine{{MenuItemID: burgerID, Quantity: 2}},
		testCatalog(), promos, taxBps,
	)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	require.Equal(t, Money(850), res.Lines[0].FrozenPrice)
	require.Equal(t, Money(1700), res.Subtotal)
	require.Equal(t, Money(300), res.Discount)
	requireInvariants(t, res)
}

func TestCalculateFixedPromoClampsAtZero(t *testing.T) {
	itemID := garlicBreadID
	promos := []promo.Promotion{{
		ID:         uuid.New(),
		Kind:       promo.KindFixed,
		Value:      1000,
		Scope:      promo.ScopeItem,
		MenuItemID: &itemID,
	}}
	res, err := Calculate(
		[]CartLine{{MenuItemID: garlicBreadID, Quantity: 1}},
		testCatalog(), promos, taxBps,
	)
	require.NoError(t, err)
	require.Equal(t, Money(0), res.Lines[0].FrozenPrice)
	require.Equal(t, Money(699), res.Lines[0].Discount)
	require.Equal(t, Money(699), res.Discount)
	requireInvariants(t, res)
}

func TestCalculateComboTriggerReward(t *testing.T) {
	combo := promo.Promotion{
		ID:    uuid.New(),
		Name:  "Lunch Special",
		Kind:  promo.KindCombo,
		Value: 1500,
		Rules: []promo.Rule{
			itemRule(veggieID, 1, false),
			itemRule(friesID, 1, true),
			itemRule(cokeID, 1, true),
		},
	}
	res, err := Calculate(
		[]CartLine{
			{MenuItemID: veggieID, Quantity: 1},
			{MenuItemID: friesID, Quantity: 1},
			{MenuItemID: cokeID, Quantity: 1},
		},
		testCatalog(), []promo.Promotion{combo}, taxBps,
	)
	require.NoError(t, err)

	prices := map[uuid.UUID]Money{}
	for _, line := range res.Lines {
		prices[line.MenuItemID] = line.FrozenPrice
		require.NotNil(t, line.AppliedPromotionID)
		require.Equal(t, combo.ID, *line.AppliedPromotionID)
	}
	// Trigger keeps full price; rewards share the $15 bundle at cent
	// precision: 948 + 552 == 1500.
	require.Equal(t, Money(1699), prices[veggieID])
	require.Equal(t, Money(948), prices[friesID])
	require.Equal(t, Money(552), prices[cokeID])
	require.Equal(t, Money(1699+1500), res.Subtotal)
	// The $15 bundle sits above the rewards' $9.48 base total, so the
	// order-level discount goes negative. The configured price wins.
	require.Equal(t, Money(-552), res.Discount)
	requireInvariants(t, res)
}

func TestCalculateComboBundleOnlyRewards(t *testing.T) {
	combo := promo.Promotion{
		ID:    uuid.New(),
		Kind:  promo.KindCombo,
		Value: 800,
		Rules: []promo.Rule{categoryRule(dessertsID, 2, true)},
	}
	res, err := Calculate(
		[]CartLine{{MenuItemID: iceCreamID, Quantity: 2}},
		testCatalog(), []promo.Promotion{combo}, taxBps,
	)
	require.NoError(t, err)
	require.Equal(t, Money(800), res.Subtotal)
	require.Equal(t, Money(100), res.Discount)
	requireInvariants(t, res)
}

func TestCalculateComboInsufficientUnits(t *testing.T) {
	combo := promo.Promotion{
		ID:    uuid.New(),
		Kind:  promo.KindCombo,
		Value: 800,
		Rules: []promo.Rule{categoryRule(dessertsID, 2, true)},
	}
	res, err := Calculate(
		[]CartLine{{MenuItemID: iceCreamID, Quantity: 1}},
		testCatalog(), []promo.Promotion{combo}, taxBps,
	)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	require.Equal(t, Money(450), res.Lines[0].FrozenPrice)
	require.Nil(t, res.Lines[0].AppliedPromotionID)
	requireInvariants(t, res)
}

func TestCalculateComboRepeatsUntilExhausted(t *testing.T) {
	combo := promo.Promotion{
		ID:    uuid.New(),
		Kind:  promo.KindCombo,
		Value: 800,
		Rules: []promo.Rule{categoryRule(dessertsID, 2, true)},
	}
	res, err := Calculate(
		[]CartLine{{MenuItemID: iceCreamID, Quantity: 5}},
		testCatalog(), []promo.Promotion{combo}, taxBps,
	)
	require.NoError(t, err)
	// Two instances at 800, one leftover unit at base price.
	require.Equal(t, Money(800+800+450), res.Subtotal)
	require.Equal(t, Money(200), res.Discount)
	requireInvariants(t, res)
}

func TestCalculateHighValueComboFirst(t *testing.T) {
	small := promo.Promotion{
		ID:    uuid.New(),
		Kind:  promo.KindCombo,
		Value: 700,
		Rules: []promo.Rule{itemRule(friesID, 1, true), itemRule(cokeID, 1, true)},
	}
	big := promo.Promotion{
		ID:    uuid.New(),
		Kind:  promo.KindCombo,
		Value: 1500,
		Rules: []promo.Rule{
			itemRule(veggieID, 1, false),
			itemRule(friesID, 1, true),
			itemRule(cokeID, 1, true),
		},
	}
	res, err := Calculate(
		[]CartLine{
			{MenuItemID: veggieID, Quantity: 1},
			{MenuItemID: friesID, Quantity: 1},
			{MenuItemID: cokeID, Quantity: 1},
		},
		testCatalog(), []promo.Promotion{small, big}, taxBps,
	)
	require.NoError(t, err)
	// The $15 combo claims the fries and coke before the $7 one sees them.
	for _, line := range res.Lines {
		require.NotNil(t, line.AppliedPromotionID)
		require.Equal(t, big.ID, *line.AppliedPromotionID)
	}
	require.Equal(t, Money(-552), res.Discount)
	requireInvariants(t, res)
}

func TestCalculateBiggerSimpleDiscountWins(t *testing.T) {
	itemID := burgerID
	smaller := promo.Promotion{
		ID:         uuid.New(),
		Kind:       promo.KindFixed,
		Value:      100,
		Scope:      promo.ScopeItem,
		MenuItemID: &itemID,
	}
	catID := mainsID
	bigger := promo.Promotion{
		ID:         uuid.New(),
		Kind:       promo.KindPercent,
		PercentBps: 2500,
		Scope:      promo.ScopeCategory,
		CategoryID: &catID,
	}
	res, err := Calculate(
		[]CartLine{{MenuItemID: burgerID, Quantity: 1}},
		testCatalog(), []promo.Promotion{smaller, bigger}, taxBps,
	)
	require.NoError(t, err)
	require.Equal(t, Money(750), res.Lines[0].FrozenPrice)
	require.Equal(t, bigger.ID, *res.Lines[0].AppliedPromotionID)
	requireInvariants(t, res)
}

func TestCalculateUnknownMenuItem(t *testing.T) {
	_, err := Calculate(
		[]CartLine{{MenuItemID: uuid.New(), Quantity: 1}},
		testCatalog(), nil, taxBps,
	)
	require.ErrorIs(t, err, ErrUnknownMenuItem)
}

func TestCalculateZeroRuleComboNeverMatches(t *testing.T) {
	combo := promo.Promotion{ID: uuid.New(), Kind: promo.KindCombo, Value: 100}
	res, err := Calculate(
		[]CartLine{{MenuItemID: burgerID, Quantity: 1}},
		testCatalog(), []promo.Promotion{combo}, taxBps,
	)
	require.NoError(t, err)
	require.Equal(t, Money(1000), res.Subtotal)
	require.Nil(t, res.Lines[0].AppliedPromotionID)
}

func TestCalculateIdempotent(t *testing.T) {
	combo := promo.Promotion{
		ID:    uuid.New(),
		Kind:  promo.KindCombo,
		Value: 1500,
		Rules: []promo.Rule{
			categoryRule(mainsID, 1, false),
			categoryRule(sidesID, 1, true),
		},
	}
	lines := []CartLine{
		{MenuItemID: burgerID, Quantity: 2},
		{MenuItemID: friesID, Quantity: 1},
		{MenuItemID: garlicBreadID, Quantity: 1},
	}
	first, err := Calculate(lines, testCatalog(), []promo.Promotion{combo}, taxBps)
	require.NoError(t, err)
	second, err := Calculate(lines, testCatalog(), []promo.Promotion{combo}, taxBps)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCalculateGroupsIdenticalUnits(t *testing.T) {
	catID := mainsID
	promos := []promo.Promotion{{
		ID:         uuid.New(),
		Kind:       promo.KindPercent,
		PercentBps: 1000,
		Scope:      promo.ScopeCategory,
		CategoryID: &catID,
	}}
	res, err := Calculate(
		[]CartLine{{MenuItemID: burgerID, Quantity: 3}},
		testCatalog(), promos, taxBps,
	)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	require.Equal(t, 3, res.Lines[0].Quantity)
}

func TestDistributeBundleZeroBaseTotal(t *testing.T) {
	free := promo.Item{ID: uuid.New(), BasePrice: 0, CategoryID: sidesID}
	units := distributeBundle(500, []promo.Item{free, free}, uuid.New())
	for _, u := range units {
		require.Equal(t, Money(0), u.frozenPrice)
	}
}

func TestDistributeBundleExactSum(t *testing.T) {
	items := []promo.Item{
		{ID: uuid.New(), BasePrice: 333, CategoryID: sidesID},
		{ID: uuid.New(), BasePrice: 333, CategoryID: sidesID},
		{ID: uuid.New(), BasePrice: 333, CategoryID: sidesID},
	}
	units := distributeBundle(500, items, uuid.New())
	var sum Money
	for _, u := range units {
		sum += u.frozenPrice
		require.LessOrEqual(t, u.frozenPrice, u.basePrice)
	}
	require.Equal(t, Money(500), sum)
}
