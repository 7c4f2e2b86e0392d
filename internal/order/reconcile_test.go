package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-resto/internal/pricing"
)

func strptr(s string) *string { return &s }

func TestSplitOntoNotesPreservesNotes(t *testing.T) {
	burger := uuid.New()
	promoID := uuid.New()

	// The engine split two identical burgers into a comboed unit and a
	// full-price unit; the request had one note per unit.
	calc := []pricing.CalculatedLine{
		{MenuItemID: burger, Quantity: 1, BasePrice: 1000, FrozenPrice: 750, AppliedPromotionID: &promoID},
		{MenuItemID: burger, Quantity: 1, BasePrice: 1000, FrozenPrice: 1000},
	}
	input := []CartLine{
		{MenuItemID: burger, Quantity: 1, Notes: strptr("no onion")},
		{MenuItemID: burger, Quantity: 1, Notes: strptr("extra cheese")},
	}

	rows := splitOntoNotes(calc, input)
	require.Len(t, rows, 2)
	require.Equal(t, int64(750), rows[0].FrozenPrice)
	require.Equal(t, "no onion", *rows[0].Notes)
	require.Equal(t, int64(1000), rows[1].FrozenPrice)
	require.Equal(t, "extra cheese", *rows[1].Notes)
}

func TestSplitOntoNotesSplitsOneRequestLine(t *testing.T) {
	fries := uuid.New()
	promoID := uuid.New()

	calc := []pricing.CalculatedLine{
		{MenuItemID: fries, Quantity: 2, BasePrice: 599, FrozenPrice: 400, AppliedPromotionID: &promoID},
		{MenuItemID: fries, Quantity: 1, BasePrice: 599, FrozenPrice: 599},
	}
	input := []CartLine{{MenuItemID: fries, Quantity: 3, Notes: strptr("extra salt")}}

	rows := splitOntoNotes(calc, input)
	require.Len(t, rows, 2)
	require.Equal(t, int32(2), rows[0].Quantity)
	require.Equal(t, int64(400), rows[0].FrozenPrice)
	require.Equal(t, int32(1), rows[1].Quantity)
	require.Equal(t, int64(599), rows[1].FrozenPrice)
	for _, row := range rows {
		require.Equal(t, "extra salt", *row.Notes)
	}

	var total int64
	for _, row := range rows {
		total += row.FrozenPrice * int64(row.Quantity)
	}
	require.Equal(t, int64(2*400+599), total)
}

func TestTypeAveragesWeighted(t *testing.T) {
	burger := uuid.New()
	coke := uuid.New()

	calc := []pricing.CalculatedLine{
		{MenuItemID: burger, Quantity: 1, FrozenPrice: 1200},
		{MenuItemID: burger, Quantity: 3, FrozenPrice: 1000},
		{MenuItemID: coke, Quantity: 2, FrozenPrice: 349},
	}

	avg := typeAverages(calc)
	// (1200 + 3000) / 4 = 1050
	require.Equal(t, int64(1050), avg[burger])
	require.Equal(t, int64(349), avg[coke])
}

func TestTypeAveragesRoundsHalfUp(t *testing.T) {
	item := uuid.New()
	calc := []pricing.CalculatedLine{
		{MenuItemID: item, Quantity: 1, FrozenPrice: 100},
		{MenuItemID: item, Quantity: 1, FrozenPrice: 101},
	}
	avg := typeAverages(calc)
	require.Equal(t, int64(101), avg[item])
}
