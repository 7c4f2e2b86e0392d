// Package kds backs the kitchen display and the serve board: what needs
// cooking, what is ready to run, and the bump/serve transitions.
package kds

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-resto/internal/common"
	"github.com/noah-isme/backend-resto/internal/order"
)

// Counts are the sidebar badge numbers.
type Counts struct {
	Pending int64 `json:"pending"`
	Ready   int64 `json:"ready"`
}

// Repo provides the kitchen views over the order tables. Quick sales are
// born ready and never reach the kitchen queue.
type Repo struct {
	Pool *pgxpool.Pool
}

// ActiveOrders returns open or paid orders that still have pending items,
// oldest first, with their lines.
func (r *Repo) ActiveOrders(ctx context.Context) ([]order.Order, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, order_number, table_id, created_by, order_type, status, created_at
		 FROM orders
		 WHERE status IN ('OPEN', 'PAID')
		   AND order_type <> 'QUICK_SALE'
		   AND EXISTS (SELECT 1 FROM order_items WHERE order_id = orders.id AND status = 'PENDING')
		 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	index := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.TableID, &o.CreatedBy, &o.Type, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan active order: %w", err)
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

	lineRows, err := r.Pool.Query(ctx,
		`SELECT id, order_id, menu_item_id, quantity, status, notes, created_at
		 FROM order_items
		 WHERE order_id = ANY($1) AND status <> 'VOIDED'
		 ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("list kitchen items: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l order.Line
		var notes *string
		if err := lineRows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.Status, &notes, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan kitchen item: %w", err)
		}
		l.Notes = notes
		if i, ok := index[l.OrderID]; ok {
			out[i].Items = append(out[i].Items, l)
		}
	}
	return out, lineRows.Err()
}

// SidebarCounts returns how many items are waiting on the kitchen and how
// many are plated waiting on the floor.
func (r *Repo) SidebarCounts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.Pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE oi.status = 'PENDING'),
		   COUNT(*) FILTER (WHERE oi.status = 'READY')
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.status IN ('OPEN', 'PAID') AND o.order_type <> 'QUICK_SALE'`).Scan(&c.Pending, &c.Ready)
	if err != nil {
		return Counts{}, fmt.Errorf("sidebar counts: %w", err)
	}
	return c, nil
}

// BumpItem marks one pending item ready.
func (r *Repo) BumpItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE order_items SET status = 'READY' WHERE id = $1 AND status = 'PENDING'`, itemID)
	if err != nil {
		return fmt.Errorf("bump item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.InvalidState("item is not pending")
	}
	return nil
}

// BumpOrder marks every pending item on the order ready.
func (r *Repo) BumpOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.Pool.Exec(ctx,
		`UPDATE order_items SET status = 'READY' WHERE order_id = $1 AND status = 'PENDING'`, orderID)
	if err != nil {
		return fmt.Errorf("bump order: %w", err)
	}
	return nil
}

// ServeItem marks one ready item served.
func (r *Repo) ServeItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE order_items SET status = 'SERVED' WHERE id = $1 AND status = 'READY'`, itemID)
	if err != nil {
		return fmt.Errorf("serve item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.InvalidState("item is not ready to serve")
	}
	return nil
}

// ServeAll marks every ready item on the order served.
func (r *Repo) ServeAll(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.Pool.Exec(ctx,
		`UPDATE order_items SET status = 'SERVED' WHERE order_id = $1 AND status = 'READY'`, orderID)
	if err != nil {
		return fmt.Errorf("serve order: %w", err)
	}
	return nil
}
