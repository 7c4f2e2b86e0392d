package table

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Repo provides Postgres access to floor tables.
type Repo struct {
	Pool *pgxpool.Pool
}

func scanTable(row pgx.Row) (Table, error) {
	var (
		t       Table
		orderID pgtype.UUID
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &orderID); err != nil {
		return Table{}, err
	}
	t.CurrentOrderID = common.UUIDPtr(orderID)
	return t, nil
}

// List returns all tables ordered by name.
func (r *Repo) List(ctx context.Context) ([]Table, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, seats, status, current_order_id FROM tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var out []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get fetches one table.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(r.Pool.QueryRow(ctx, `SELECT id, name, seats, status, current_order_id FROM tables WHERE id = $1`, id))
}

// Create inserts a vacant table.
func (r *Repo) Create(ctx context.Context, name string, seats int32) (Table, error) {
	return scanTable(r.Pool.QueryRow(ctx,
		`INSERT INTO tables (id, name, seats, status) VALUES ($1, $2, $3, 'VACANT')
		 RETURNING id, name, seats, status, current_order_id`,
		uuid.New(), name, seats))
}

// SetStatus overrides a table's status from the floor plan.
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Table, error) {
	return scanTable(r.Pool.QueryRow(ctx,
		`UPDATE tables SET status = $2 WHERE id = $1 RETURNING id, name, seats, status, current_order_id`,
		id, status))
}

// Delete removes a table.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
