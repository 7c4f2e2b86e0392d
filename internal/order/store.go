package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Store provides Postgres access to orders, their lines, and the table
// status flips that ride along in the same transaction.
type Store struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, order_number, table_id, created_by, order_type, status, payment_method,
	customer_name, customer_phone, subtotal, discount, tax, total,
	refund_amount, refund_reason, refunded_at, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o          Order
		tableID    pgtype.UUID
		method     pgtype.Text
		custName   pgtype.Text
		custPhone  pgtype.Text
		reason     pgtype.Text
		refundedAt pgtype.Timestamptz
	)
	if err := row.Scan(&o.ID, &o.Number, &tableID, &o.CreatedBy, &o.Type, &o.Status, &method,
		&custName, &custPhone, &o.Subtotal, &o.Discount, &o.Tax, &o.Total,
		&o.RefundAmount, &reason, &refundedAt, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	o.TableID = common.UUIDPtr(tableID)
	if method.Valid {
		m := PaymentMethod(method.String)
		o.PaymentMethod = &m
	}
	o.CustomerName = common.TextPtr(custName)
	o.CustomerPhone = common.TextPtr(custPhone)
	o.RefundReason = common.TextPtr(reason)
	o.RefundedAt = common.TimePtr(refundedAt)
	return o, nil
}

const lineColumns = `id, order_id, menu_item_id, quantity, frozen_price, applied_promotion_id, status, notes, refunded, created_at`

func scanLine(row pgx.Row) (Line, error) {
	var (
		l       Line
		promoID pgtype.UUID
		notes   pgtype.Text
	)
	if err := row.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.FrozenPrice, &promoID, &l.Status, &notes, &l.Refunded, &l.CreatedAt); err != nil {
		return Line{}, err
	}
	l.AppliedPromotionID = common.UUIDPtr(promoID)
	l.Notes = common.TextPtr(notes)
	return l, nil
}

// Create inserts the order with its lines and, for dine-in, occupies the
// table, all in one transaction.
func (s *Store) Create(ctx context.Context, o Order, lines []newLine, lineStatus ItemStatus) (Order, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	var method pgtype.Text
	if o.PaymentMethod != nil {
		method = pgtype.Text{String: string(*o.PaymentMethod), Valid: true}
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, table_id, created_by, order_type, status, payment_method,
		                     customer_name, customer_phone, subtotal, discount, tax, total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING order_number, created_at`,
		o.ID, common.PGUUID(o.TableID), o.CreatedBy, o.Type, o.Status, method,
		common.PGText(o.CustomerName), common.PGText(o.CustomerPhone),
		o.Subtotal, o.Discount, o.Tax, o.Total).Scan(&o.Number, &o.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range lines {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, menu_item_id, quantity, frozen_price, applied_promotion_id, status, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), o.ID, line.MenuItemID, line.Quantity, line.FrozenPrice,
			common.PGUUID(line.AppliedPromotionID), lineStatus, common.PGText(line.Notes))
		if err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if o.Type == TypeDineIn && o.TableID != nil {
		_, err := tx.Exec(ctx,
			`UPDATE tables SET status = 'OCCUPIED', current_order_id = $2 WHERE id = $1`,
			*o.TableID, o.ID)
		if err != nil {
			return Order{}, fmt.Errorf("occupy table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit: %w", err)
	}
	return s.Get(ctx, o.ID)
}

// Get fetches an order with all its lines.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	o, err := scanOrder(s.Pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return Order{}, err
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+lineColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return Order{}, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, l)
	}
	return o, rows.Err()
}

// List returns the order history, newest first, lines included.
func (s *Store) List(ctx context.Context, f ListFilters) ([]Order, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	to := f.To
	if to.IsZero() {
		to = time.Now()
	}
	var status pgtype.Text
	if f.Status != "" {
		status = pgtype.Text{String: string(f.Status), Valid: true}
	}
	var typ pgtype.Text
	if f.Type != "" {
		typ = pgtype.Text{String: string(f.Type), Valid: true}
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE created_at >= $1 AND created_at <= $2
		   AND ($3::text IS NULL OR status = $3)
		   AND ($4::text IS NULL OR order_type = $4)
		 ORDER BY created_at DESC
		 LIMIT $5`, f.From, to, status, typ, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var out []Order
	index := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		index[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	lineRows, err := s.Pool.Query(ctx, `SELECT `+lineColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		l, err := scanLine(lineRows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[l.OrderID]; ok {
			out[i].Items = append(out[i].Items, l)
		}
	}
	return out, lineRows.Err()
}

// GetLine fetches one order line.
func (s *Store) GetLine(ctx context.Context, id uuid.UUID) (Line, error) {
	return scanLine(s.Pool.QueryRow(ctx, `SELECT `+lineColumns+` FROM order_items WHERE id = $1`, id))
}

// Amend applies a recalculation to an open order: reprices surviving rows,
// inserts the added rows as pending, and stores the fresh totals.
func (s *Store) Amend(ctx context.Context, orderID uuid.UUID, reprices map[uuid.UUID]int64, inserts []newLine, t Totals) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for lineID, price := range reprices {
		if _, err := tx.Exec(ctx, `UPDATE order_items SET frozen_price = $2 WHERE id = $1`, lineID, price); err != nil {
			return fmt.Errorf("reprice order item: %w", err)
		}
	}
	for _, line := range inserts {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, menu_item_id, quantity, frozen_price, applied_promotion_id, status, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), orderID, line.MenuItemID, line.Quantity, line.FrozenPrice,
			common.PGUUID(line.AppliedPromotionID), ItemPending, common.PGText(line.Notes))
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := updateTotals(ctx, tx, orderID, t); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// VoidLine marks one line voided and stores the recomputed totals.
// Surviving rows keep their frozen prices.
func (s *Store) VoidLine(ctx context.Context, orderID, lineID uuid.UUID, t Totals) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE order_items SET status = $2 WHERE id = $1`, lineID, ItemVoided); err != nil {
		return fmt.Errorf("void order item: %w", err)
	}
	if err := updateTotals(ctx, tx, orderID, t); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// VoidOrder voids every remaining line, the order itself, and frees the
// table if one was occupied.
func (s *Store) VoidOrder(ctx context.Context, orderID uuid.UUID, tableID *uuid.UUID) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE order_items SET status = $2 WHERE order_id = $1 AND status <> $2`, orderID, ItemVoided); err != nil {
		return fmt.Errorf("void order items: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, StatusVoid); err != nil {
		return fmt.Errorf("void order: %w", err)
	}
	if tableID != nil {
		if err := freeTable(ctx, tx, *tableID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetPaid marks the order paid with the given method and frees the table.
func (s *Store) SetPaid(ctx context.Context, orderID uuid.UUID, method PaymentMethod, tableID *uuid.UUID) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, payment_method = $3 WHERE id = $1`, orderID, StatusPaid, string(method)); err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if tableID != nil {
		if err := freeTable(ctx, tx, *tableID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetPaymentMethod records the method without closing the order. Used for
// deferred payment: the order stays open until handover.
func (s *Store) SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method PaymentMethod) error {
	_, err := s.Pool.Exec(ctx, `UPDATE orders SET payment_method = $2 WHERE id = $1`, orderID, string(method))
	if err != nil {
		return fmt.Errorf("set payment method: %w", err)
	}
	return nil
}

// MarkBillPrinted flips the table so the floor knows the bill is out.
func (s *Store) MarkBillPrinted(ctx context.Context, tableID uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE tables SET status = 'BILL_PRINTED' WHERE id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("mark bill printed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Refund marks lines refunded and accumulates the refund on the order.
// Full refunds also move the order to REFUNDED.
func (s *Store) Refund(ctx context.Context, orderID uuid.UUID, amount int64, in RefundInput, at time.Time) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if in.Full {
		if _, err := tx.Exec(ctx, `UPDATE order_items SET refunded = TRUE WHERE order_id = $1`, orderID); err != nil {
			return fmt.Errorf("refund order items: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`UPDATE order_items SET refunded = TRUE
			 WHERE order_id = $1 AND id = ANY($2) AND status <> 'VOIDED' AND NOT refunded`,
			orderID, in.ItemIDs); err != nil {
			return fmt.Errorf("refund order items: %w", err)
		}
	}
	query := `UPDATE orders
	          SET refund_amount = refund_amount + $2, refund_reason = $3, refund_notes = $4,
	              refunded_by = $5, refunded_at = $6`
	if in.Full {
		query += `, status = 'REFUNDED'`
	}
	query += ` WHERE id = $1`
	if _, err := tx.Exec(ctx, query, orderID, amount, in.Reason, common.PGText(in.Notes), in.UserID, at); err != nil {
		return fmt.Errorf("record refund: %w", err)
	}
	return tx.Commit(ctx)
}

func updateTotals(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, t Totals) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders SET subtotal = $2, discount = $3, tax = $4, total = $5 WHERE id = $1`,
		orderID, t.Subtotal, t.Discount, t.Tax, t.Total)
	if err != nil {
		return fmt.Errorf("update totals: %w", err)
	}
	return nil
}

func freeTable(ctx context.Context, tx pgx.Tx, tableID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE tables SET status = 'VACANT', current_order_id = NULL WHERE id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("free table: %w", err)
	}
	return nil
}
