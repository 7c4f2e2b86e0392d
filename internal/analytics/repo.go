package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo runs the report queries. Every query is bounded by created_at and
// most of them only look at settled (PAID) orders; voids and refunds have
// their own statuses and are tallied separately.
type Repo struct {
	Pool *pgxpool.Pool
}

// PaidTotals returns gross sales, order count, and collected tax over
// settled orders in the window.
func (r *Repo) PaidTotals(ctx context.Context, from, to time.Time) (gross, count, tax int64, err error) {
	err = r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0), COUNT(*), COALESCE(SUM(tax), 0)
		 FROM orders
		 WHERE status = 'PAID' AND created_at BETWEEN $1 AND $2`, from, to).
		Scan(&gross, &count, &tax)
	if err != nil {
		err = fmt.Errorf("paid totals: %w", err)
	}
	return
}

// DiscountTotal recomputes the discount per item as base price minus
// frozen price, so it stays correct even after menu prices move. Items
// priced above base by a combo do not offset it.
func (r *Repo) DiscountTotal(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM((mi.base_price - oi.frozen_price) * oi.quantity), 0)
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN menu_items mi ON mi.id = oi.menu_item_id
		 WHERE o.status = 'PAID' AND o.created_at BETWEEN $1 AND $2
		   AND oi.status <> 'VOIDED'
		   AND mi.base_price > oi.frozen_price`, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("discount total: %w", err)
	}
	return total, nil
}

// VoidTotals counts voided items across the window at their base price.
// A voided order contributes every one of its items.
func (r *Repo) VoidTotals(ctx context.Context, from, to time.Time) (count, value int64, err error) {
	err = r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(oi.quantity), 0), COALESCE(SUM(mi.base_price * oi.quantity), 0)
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN menu_items mi ON mi.id = oi.menu_item_id
		 WHERE o.created_at BETWEEN $1 AND $2
		   AND (o.status = 'VOID' OR oi.status = 'VOIDED')`, from, to).
		Scan(&count, &value)
	if err != nil {
		err = fmt.Errorf("void totals: %w", err)
	}
	return
}

// RefundTotals sums the accumulated refund amounts of refunded orders.
func (r *Repo) RefundTotals(ctx context.Context, from, to time.Time) (total, count int64, err error) {
	err = r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(refund_amount), 0), COUNT(*)
		 FROM orders
		 WHERE status = 'REFUNDED' AND created_at BETWEEN $1 AND $2`, from, to).
		Scan(&total, &count)
	if err != nil {
		err = fmt.Errorf("refund totals: %w", err)
	}
	return
}

// HourlyTrend groups settled revenue by hour of day.
func (r *Repo) HourlyTrend(ctx context.Context, from, to time.Time) ([]TrendRow, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT EXTRACT(HOUR FROM created_at)::int, COALESCE(SUM(total), 0), COUNT(*)
		 FROM orders
		 WHERE status = 'PAID' AND created_at BETWEEN $1 AND $2
		 GROUP BY 1 ORDER BY 1`, from, to)
	if err != nil {
		return nil, fmt.Errorf("hourly trend: %w", err)
	}
	defer rows.Close()
	var out []TrendRow
	for rows.Next() {
		var t TrendRow
		if err := rows.Scan(&t.Hour, &t.Revenue, &t.Count); err != nil {
			return nil, fmt.Errorf("scan hourly trend: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DailyTrend groups settled revenue by calendar day.
func (r *Repo) DailyTrend(ctx context.Context, from, to time.Time) ([]TrendRow, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT date_trunc('day', created_at), COALESCE(SUM(total), 0), COUNT(*)
		 FROM orders
		 WHERE status = 'PAID' AND created_at BETWEEN $1 AND $2
		 GROUP BY 1 ORDER BY 1`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	defer rows.Close()
	var out []TrendRow
	for rows.Next() {
		var t TrendRow
		if err := rows.Scan(&t.Day, &t.Revenue, &t.Count); err != nil {
			return nil, fmt.Errorf("scan daily trend: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TopItems returns the best sellers by settled revenue, voided lines
// excluded.
func (r *Repo) TopItems(ctx context.Context, from, to time.Time, limit int32) ([]ItemSales, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT oi.menu_item_id, mi.name,
		        SUM(oi.quantity)::bigint,
		        SUM(oi.frozen_price * oi.quantity)::bigint AS revenue
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN menu_items mi ON mi.id = oi.menu_item_id
		 WHERE o.status = 'PAID' AND o.created_at BETWEEN $1 AND $2
		   AND oi.status <> 'VOIDED'
		 GROUP BY oi.menu_item_id, mi.name
		 ORDER BY revenue DESC
		 LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()
	var out []ItemSales
	for rows.Next() {
		var s ItemSales
		if err := rows.Scan(&s.MenuItemID, &s.Name, &s.Count, &s.Revenue); err != nil {
			return nil, fmt.Errorf("scan top item: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CategoryTotals returns settled revenue per menu category.
func (r *Repo) CategoryTotals(ctx context.Context, from, to time.Time) ([]CategorySales, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT COALESCE(c.name, 'Uncategorized'),
		        SUM(oi.frozen_price * oi.quantity)::bigint AS value
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN menu_items mi ON mi.id = oi.menu_item_id
		 LEFT JOIN categories c ON c.id = mi.category_id
		 WHERE o.status = 'PAID' AND o.created_at BETWEEN $1 AND $2
		   AND oi.status <> 'VOIDED'
		 GROUP BY 1 ORDER BY value DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()
	var out []CategorySales
	for rows.Next() {
		var s CategorySales
		if err := rows.Scan(&s.Name, &s.Value); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TypeBreakdown returns settled revenue and counts per order type, with
// the underscore dropped for display.
func (r *Repo) TypeBreakdown(ctx context.Context, from, to time.Time) ([]TypeSales, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT replace(order_type, '_', ' '), COALESCE(SUM(total), 0), COUNT(*)
		 FROM orders
		 WHERE status = 'PAID' AND created_at BETWEEN $1 AND $2
		 GROUP BY order_type ORDER BY order_type`, from, to)
	if err != nil {
		return nil, fmt.Errorf("type breakdown: %w", err)
	}
	defer rows.Close()
	var out []TypeSales
	for rows.Next() {
		var s TypeSales
		if err := rows.Scan(&s.Name, &s.Value, &s.Count); err != nil {
			return nil, fmt.Errorf("scan type breakdown: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PaymentTotals splits settled orders between cash and external card.
// Orders settled later through collection carry the final method here.
func (r *Repo) PaymentTotals(ctx context.Context, from, to time.Time) (cash, card PaymentSlice, err error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT payment_method, COUNT(*), COALESCE(SUM(total), 0)
		 FROM orders
		 WHERE status = 'PAID' AND created_at BETWEEN $1 AND $2
		   AND payment_method IN ('CASH', 'CARD_EXTERNAL')
		 GROUP BY payment_method`, from, to)
	if err != nil {
		return cash, card, fmt.Errorf("payment totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var slice PaymentSlice
		if err := rows.Scan(&method, &slice.Count, &slice.Total); err != nil {
			return cash, card, fmt.Errorf("scan payment totals: %w", err)
		}
		if method == "CASH" {
			cash = slice
		} else {
			card = slice
		}
	}
	return cash, card, rows.Err()
}
