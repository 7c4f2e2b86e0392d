package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-resto/internal/common"
	"github.com/noah-isme/backend-resto/internal/pricing"
	"github.com/noah-isme/backend-resto/internal/promo"
)

type store interface {
	Create(ctx context.Context, o Order, lines []newLine, lineStatus ItemStatus) (Order, error)
	Get(ctx context.Context, id uuid.UUID) (Order, error)
	List(ctx context.Context, f ListFilters) ([]Order, error)
	GetLine(ctx context.Context, id uuid.UUID) (Line, error)
	Amend(ctx context.Context, orderID uuid.UUID, reprices map[uuid.UUID]int64, inserts []newLine, t Totals) error
	VoidLine(ctx context.Context, orderID, lineID uuid.UUID, t Totals) error
	VoidOrder(ctx context.Context, orderID uuid.UUID, tableID *uuid.UUID) error
	SetPaid(ctx context.Context, orderID uuid.UUID, method PaymentMethod, tableID *uuid.UUID) error
	SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method PaymentMethod) error
	MarkBillPrinted(ctx context.Context, tableID uuid.UUID) error
	Refund(ctx context.Context, orderID uuid.UUID, amount int64, in RefundInput, at time.Time) error
}

// Catalog provides the immutable item snapshot the engine prices against.
type Catalog interface {
	Snapshot(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]promo.Item, error)
}

// Promotions yields the promotions eligible right now.
type Promotions interface {
	Active(ctx context.Context) ([]promo.Promotion, error)
}

// Metrics receives domain events from the order flow.
type Metrics interface {
	OrderFired(orderType string)
	PricingComputed(seconds float64, comboInstances int)
}

// Service drives the order lifecycle. Every price on every row comes out
// of the pricing engine; the service only decides when to run it and how
// to map its output onto rows.
type Service struct {
	Store   store
	Catalog Catalog
	Promos  Promotions
	TaxBps  int
	Log     zerolog.Logger
	Metrics Metrics
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Fire creates an order from a cart. Quick sales are born paid with all
// items ready; everything else opens as pending kitchen work.
func (s *Service) Fire(ctx context.Context, in FireInput) (Order, error) {
	if err := validateFire(in); err != nil {
		return Order{}, err
	}
	calc, err := s.price(ctx, in.Items)
	if err != nil {
		return Order{}, err
	}
	lines := splitOntoNotes(calc.Lines, in.Items)

	o := Order{
		CreatedBy: in.UserID,
		Type:      in.Type,
		Status:    StatusOpen,
		Totals:    totalsOf(calc),
	}
	lineStatus := ItemPending
	switch in.Type {
	case TypeDineIn:
		o.TableID = in.TableID
	case TypeTakeout:
		o.CustomerName = in.CustomerName
		o.CustomerPhone = in.CustomerPhone
	case TypeQuickSale:
		o.Status = StatusPaid
		o.PaymentMethod = in.PaymentMethod
		lineStatus = ItemReady
	}

	created, err := s.Store.Create(ctx, o, lines, lineStatus)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.OrderFired(string(in.Type))
	}
	s.Log.Info().
		Str("order_id", created.ID.String()).
		Int64("order_number", created.Number).
		Str("order_type", string(created.Type)).
		Int64("total", created.Total).
		Msg("order fired")
	return created, nil
}

// AddItems amends an open order. The whole surviving cart plus the new
// lines is repriced so combos can span old and new items; existing rows
// of an item take the type's weighted-average unit price, new rows are
// inserted pending.
func (s *Service) AddItems(ctx context.Context, orderID uuid.UUID, items []CartLine) (Order, error) {
	if len(items) == 0 {
		return Order{}, common.Invalid("must add at least one item", nil)
	}
	if err := validateLines(items); err != nil {
		return Order{}, err
	}
	existing, err := s.get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if existing.Status != StatusOpen {
		return Order{}, common.InvalidState("order is not open")
	}

	combined := make([]CartLine, 0, len(existing.Items)+len(items))
	for _, line := range existing.Items {
		if line.Status == ItemVoided {
			continue
		}
		combined = append(combined, CartLine{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}
	combined = append(combined, items...)

	calc, err := s.price(ctx, combined)
	if err != nil {
		return Order{}, err
	}
	averages := typeAverages(calc.Lines)

	reprices := make(map[uuid.UUID]int64)
	for _, line := range existing.Items {
		if line.Status == ItemVoided {
			continue
		}
		if avg, ok := averages[line.MenuItemID]; ok && avg != line.FrozenPrice {
			reprices[line.ID] = avg
		}
	}
	inserts := make([]newLine, 0, len(items))
	for _, in := range items {
		avg, ok := averages[in.MenuItemID]
		if !ok {
			continue
		}
		inserts = append(inserts, newLine{
			MenuItemID:  in.MenuItemID,
			Quantity:    in.Quantity,
			FrozenPrice: avg,
			Notes:       in.Notes,
		})
	}

	if err := s.Store.Amend(ctx, orderID, reprices, inserts, totalsOf(calc)); err != nil {
		return Order{}, fmt.Errorf("amend order: %w", err)
	}
	return s.get(ctx, orderID)
}

// RemoveItem voids one line on an open order and recomputes the totals
// from the survivors. Surviving rows keep their frozen prices even when a
// combo breaks; only the totals move.
func (s *Service) RemoveItem(ctx context.Context, lineID uuid.UUID) (Order, error) {
	line, err := s.Store.GetLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, common.NotFound("order item not found")
		}
		return Order{}, fmt.Errorf("get order item: %w", err)
	}
	o, err := s.get(ctx, line.OrderID)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusOpen {
		return Order{}, common.InvalidState("order is not open")
	}
	if line.Status == ItemVoided {
		return Order{}, common.InvalidState("item is already voided")
	}

	var survivors []CartLine
	for _, l := range o.Items {
		if l.ID == lineID || l.Status == ItemVoided {
			continue
		}
		survivors = append(survivors, CartLine{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	totals := Totals{}
	if len(survivors) > 0 {
		calc, err := s.price(ctx, survivors)
		if err != nil {
			return Order{}, err
		}
		totals = totalsOf(calc)
	}
	if err := s.Store.VoidLine(ctx, o.ID, lineID, totals); err != nil {
		return Order{}, fmt.Errorf("void order item: %w", err)
	}
	return s.get(ctx, o.ID)
}

// Void cancels an open order, voiding all its lines and freeing the table.
func (s *Service) Void(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != StatusOpen {
		return common.InvalidState("only open orders can be voided")
	}
	if err := s.Store.VoidOrder(ctx, orderID, o.TableID); err != nil {
		return fmt.Errorf("void order: %w", err)
	}
	s.Log.Info().Str("order_id", orderID.String()).Msg("order voided")
	return nil
}

// RecordPayment settles an open order. Deferred payment keeps the order
// open until handover; cash and card close it and free the table.
func (s *Service) RecordPayment(ctx context.Context, orderID uuid.UUID, method PaymentMethod) error {
	if method != PayCash && method != PayCard && method != PayLater {
		return common.Invalid("unknown payment method", map[string]any{"field": "method"})
	}
	o, err := s.get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != StatusOpen {
		return common.InvalidState("order is not open")
	}
	if method == PayLater {
		return s.Store.SetPaymentMethod(ctx, orderID, method)
	}
	if err := s.Store.SetPaid(ctx, orderID, method, o.TableID); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

// CollectLaterPayment settles a deferred-payment order at handover.
func (s *Service) CollectLaterPayment(ctx context.Context, orderID uuid.UUID, method PaymentMethod) error {
	if method != PayCash && method != PayCard {
		return common.Invalid("deferred orders settle with cash or card", map[string]any{"field": "method"})
	}
	o, err := s.get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != StatusOpen {
		return common.InvalidState("order is not open")
	}
	if err := s.Store.SetPaid(ctx, orderID, method, o.TableID); err != nil {
		return fmt.Errorf("collect payment: %w", err)
	}
	return nil
}

// PrintBill flips the table status so the floor sees the bill is out.
func (s *Service) PrintBill(ctx context.Context, tableID uuid.UUID) error {
	if err := s.Store.MarkBillPrinted(ctx, tableID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFound("table not found")
		}
		return fmt.Errorf("print bill: %w", err)
	}
	return nil
}

// Refund refunds a paid order, fully or per line. Partial amounts come
// from the frozen prices of the selected lines.
func (s *Service) Refund(ctx context.Context, orderID uuid.UUID, in RefundInput) (int64, error) {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if o.Status != StatusPaid {
		return 0, common.InvalidState("only paid orders can be refunded")
	}

	var amount int64
	if in.Full {
		amount = o.Total
	} else {
		if len(in.ItemIDs) == 0 {
			return 0, common.Invalid("no items selected for partial refund", map[string]any{"field": "itemIds"})
		}
		selected := make(map[uuid.UUID]struct{}, len(in.ItemIDs))
		for _, id := range in.ItemIDs {
			selected[id] = struct{}{}
		}
		// Only lines that contribute to the amount get flagged refunded;
		// voided or already refunded selections are dropped.
		eligible := make([]uuid.UUID, 0, len(in.ItemIDs))
		for _, line := range o.Items {
			if _, ok := selected[line.ID]; !ok {
				continue
			}
			if line.Refunded || line.Status == ItemVoided {
				continue
			}
			amount += line.FrozenPrice * int64(line.Quantity)
			eligible = append(eligible, line.ID)
		}
		in.ItemIDs = eligible
	}

	if err := s.Store.Refund(ctx, orderID, amount, in, s.now()); err != nil {
		return 0, fmt.Errorf("refund order: %w", err)
	}
	s.Log.Info().Str("order_id", orderID.String()).Int64("amount", amount).Bool("full", in.Full).Msg("order refunded")
	return amount, nil
}

// Get returns one order with its lines.
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (Order, error) {
	return s.get(ctx, orderID)
}

// List returns the order history for the given filters.
func (s *Service) List(ctx context.Context, f ListFilters) ([]Order, error) {
	return s.Store.List(ctx, f)
}

func (s *Service) get(ctx context.Context, orderID uuid.UUID) (Order, error) {
	o, err := s.Store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, common.NotFound("order not found")
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *Service) price(ctx context.Context, items []CartLine) (pricing.Result, error) {
	snapshot, err := s.Catalog.Snapshot(ctx, menuItemIDs(items))
	if err != nil {
		return pricing.Result{}, err
	}
	promos, err := s.Promos.Active(ctx)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("load promotions: %w", err)
	}
	start := time.Now()
	calc, err := pricing.Calculate(toEngineLines(items), snapshot, promos, s.TaxBps)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownMenuItem) {
			return pricing.Result{}, common.NotFound("menu item not found")
		}
		return pricing.Result{}, fmt.Errorf("calculate: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.PricingComputed(time.Since(start).Seconds(), calc.ComboInstances)
	}
	return calc, nil
}

func validateFire(in FireInput) error {
	if in.UserID == uuid.Nil {
		return common.Invalid("userId is required", map[string]any{"field": "userId"})
	}
	if len(in.Items) == 0 {
		return common.Invalid("order must have at least one item", map[string]any{"field": "items"})
	}
	if err := validateLines(in.Items); err != nil {
		return err
	}
	switch in.Type {
	case TypeDineIn:
		if in.TableID == nil {
			return common.Invalid("tableId is required for dine-in", map[string]any{"field": "tableId"})
		}
	case TypeTakeout:
	case TypeQuickSale:
		if in.PaymentMethod == nil {
			return common.Invalid("payment method required for quick sale", map[string]any{"field": "paymentMethod"})
		}
		if *in.PaymentMethod != PayCash && *in.PaymentMethod != PayCard {
			return common.Invalid("quick sales settle with cash or card", map[string]any{"field": "paymentMethod"})
		}
	default:
		return common.Invalid("orderType must be DINE_IN, TAKEOUT, or QUICK_SALE", map[string]any{"field": "orderType"})
	}
	return nil
}

func validateLines(items []CartLine) error {
	for _, it := range items {
		if it.MenuItemID == uuid.Nil {
			return common.Invalid("menuItemId is required", map[string]any{"field": "items"})
		}
		if it.Quantity <= 0 {
			return common.Invalid("quantity must be positive", map[string]any{"field": "items"})
		}
	}
	return nil
}
