// Package order owns the order lifecycle: firing carts to the kitchen,
// amending open orders, payments, voids, and refunds. All pricing goes
// through the pricing engine; rows only ever store its output.
package order

import (
	"time"

	"github.com/google/uuid"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusPaid     Status = "PAID"
	StatusVoid     Status = "VOID"
	StatusRefunded Status = "REFUNDED"
)

// Type distinguishes how the order was taken.
type Type string

const (
	TypeDineIn    Type = "DINE_IN"
	TypeTakeout   Type = "TAKEOUT"
	TypeQuickSale Type = "QUICK_SALE"
)

// ItemStatus tracks a line through the kitchen.
type ItemStatus string

const (
	ItemPending ItemStatus = "PENDING"
	ItemReady   ItemStatus = "READY"
	ItemServed  ItemStatus = "SERVED"
	ItemVoided  ItemStatus = "VOIDED"
)

// PaymentMethod is how the guest settled the bill.
type PaymentMethod string

const (
	PayCash  PaymentMethod = "CASH"
	PayCard  PaymentMethod = "CARD_EXTERNAL"
	PayLater PaymentMethod = "LATER_PAY"
)

// Line is one priced row on an order. FrozenPrice is the unit price the
// pricing engine assigned at fire time and never silently drifts.
type Line struct {
	ID                 uuid.UUID  `json:"id"`
	OrderID            uuid.UUID  `json:"orderId"`
	MenuItemID         uuid.UUID  `json:"menuItemId"`
	Quantity           int32      `json:"quantity"`
	FrozenPrice        int64      `json:"frozenPrice"`
	AppliedPromotionID *uuid.UUID `json:"appliedPromotionId,omitempty"`
	Status             ItemStatus `json:"status"`
	Notes              *string    `json:"notes,omitempty"`
	Refunded           bool       `json:"refunded"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// Totals is the persisted money summary of an order.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Order is the aggregate root.
type Order struct {
	ID            uuid.UUID      `json:"id"`
	Number        int64          `json:"orderNumber"`
	TableID       *uuid.UUID     `json:"tableId,omitempty"`
	CreatedBy     uuid.UUID      `json:"createdById"`
	Type          Type           `json:"orderType"`
	Status        Status         `json:"status"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	CustomerName  *string        `json:"customerName,omitempty"`
	CustomerPhone *string        `json:"customerPhone,omitempty"`
	Totals
	RefundAmount int64      `json:"refundAmount"`
	RefundReason *string    `json:"refundReason,omitempty"`
	RefundedAt   *time.Time `json:"refundedAt,omitempty"`
	Items        []Line     `json:"items,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// CartLine is an incoming request line: what the guest asked for, with
// the note that must survive pricing.
type CartLine struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
	Quantity   int32     `json:"quantity"`
	Notes      *string   `json:"notes,omitempty"`
}

// FireInput is the payload for creating an order.
type FireInput struct {
	TableID       *uuid.UUID     `json:"tableId"`
	UserID        uuid.UUID      `json:"userId"`
	Type          Type           `json:"orderType"`
	PaymentMethod *PaymentMethod `json:"paymentMethod"`
	CustomerName  *string        `json:"customerName"`
	CustomerPhone *string        `json:"customerPhone"`
	Items         []CartLine     `json:"items"`
}

// RefundInput is the payload for refunding a paid order.
type RefundInput struct {
	UserID  uuid.UUID   `json:"userId"`
	Reason  string      `json:"reason"`
	Notes   *string     `json:"notes"`
	Full    bool        `json:"full"`
	ItemIDs []uuid.UUID `json:"itemIds"`
}

// ListFilters narrows the order history listing.
type ListFilters struct {
	From   time.Time
	To     time.Time
	Status Status
	Type   Type
	Limit  int32
}
