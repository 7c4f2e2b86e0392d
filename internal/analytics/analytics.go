// Package analytics produces the sales dashboard report: revenue and
// ticket metrics over paid orders, void and refund tallies, trends, and
// the item, category, order type, and payment breakdowns.
package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Summary holds the headline numbers for a reporting window.
type Summary struct {
	GrossSales      int64 `json:"grossSales"`
	OrderCount      int64 `json:"orderCount"`
	AverageTicket   int64 `json:"averageTicket"`
	TotalDiscount   int64 `json:"totalDiscount"`
	TotalTax        int64 `json:"totalTax"`
	VoidedItemCount int64 `json:"voidedItemCount"`
	VoidedItemValue int64 `json:"voidedItemValue"`
	TotalRefunds    int64 `json:"totalRefunds"`
	RefundCount     int64 `json:"refundCount"`
}

// TrendPoint is one bucket on the revenue chart. Buckets are hours for a
// single-day window and days otherwise, with empty buckets kept so the
// axis stays continuous.
type TrendPoint struct {
	Label   string `json:"label"`
	Revenue int64  `json:"revenue"`
	Count   int64  `json:"count"`
}

// ItemSales is one row of the top sellers table. Revenue uses the frozen
// price the guest actually paid.
type ItemSales struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
	Name       string    `json:"name"`
	Count      int64     `json:"count"`
	Revenue    int64     `json:"revenue"`
}

// CategorySales is revenue attributed to one menu category.
type CategorySales struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// TypeSales is revenue and order count for one order type.
type TypeSales struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Count int64  `json:"count"`
}

// PaymentSlice is one payment method's share of settled orders.
type PaymentSlice struct {
	Count int64 `json:"count"`
	Total int64 `json:"total"`
}

// PaymentBreakdown splits settled orders by how they were paid.
type PaymentBreakdown struct {
	Cash PaymentSlice `json:"cash"`
	Card PaymentSlice `json:"card"`
}

// Report is the full dashboard payload for one window.
type Report struct {
	Summary
	SalesTrend         []TrendPoint     `json:"salesTrend"`
	TopItems           []ItemSales      `json:"topItems"`
	CategorySales      []CategorySales  `json:"categorySales"`
	OrderTypeBreakdown []TypeSales      `json:"orderTypeBreakdown"`
	PaymentBreakdown   PaymentBreakdown `json:"paymentBreakdown"`
}

// TrendRow is a raw grouped bucket from storage, keyed by hour of day or
// by calendar day depending on the query.
type TrendRow struct {
	Hour    int
	Day     time.Time
	Revenue int64
	Count   int64
}
