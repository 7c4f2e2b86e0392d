package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Repo provides Postgres access to the menu catalog.
type Repo struct {
	Pool *pgxpool.Pool
}

const itemColumns = `id, name, description, base_price, category_id, is_available, image_url`

func scanItem(row pgx.Row) (Item, error) {
	var (
		it   Item
		desc pgtype.Text
		img  pgtype.Text
	)
	if err := row.Scan(&it.ID, &it.Name, &desc, &it.BasePrice, &it.CategoryID, &it.Available, &img); err != nil {
		return Item{}, err
	}
	it.Description = common.TextPtr(desc)
	it.ImageURL = common.TextPtr(img)
	return it, nil
}

// ListCategories returns all categories ordered for display.
func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListItems returns menu items, optionally filtered to one category or to
// available items only.
func (r *Repo) ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE ($1::uuid IS NULL OR category_id = $1) AND (NOT $2 OR is_available) ORDER BY name`
	rows, err := r.Pool.Query(ctx, query, common.PGUUID(categoryID), availableOnly)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItem fetches a single item by id.
func (r *Repo) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = $1`, id)
	return scanItem(row)
}

// GetItems fetches the items named by ids. Missing ids are simply absent
// from the result, callers decide whether that is an error.
func (r *Repo) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Item, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]Item{}, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get menu items: %w", err)
	}
	defer rows.Close()
	out := make(map[uuid.UUID]Item, len(ids))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

// CreateItem inserts a new menu item and returns it.
func (r *Repo) CreateItem(ctx context.Context, in ItemInput) (Item, error) {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO menu_items (id, name, description, base_price, category_id, is_available, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+itemColumns,
		uuid.New(), in.Name, common.PGText(in.Description), in.BasePrice, in.CategoryID, available, common.PGText(in.ImageURL))
	return scanItem(row)
}

// UpdateItem overwrites the mutable fields of an item.
func (r *Repo) UpdateItem(ctx context.Context, id uuid.UUID, in ItemInput) (Item, error) {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	row := r.Pool.QueryRow(ctx,
		`UPDATE menu_items
		 SET name = $2, description = $3, base_price = $4, category_id = $5, is_available = $6, image_url = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING `+itemColumns,
		id, in.Name, common.PGText(in.Description), in.BasePrice, in.CategoryID, available, common.PGText(in.ImageURL))
	return scanItem(row)
}

// SetAvailability toggles the 86-list flag without touching other fields.
func (r *Repo) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (Item, error) {
	row := r.Pool.QueryRow(ctx,
		`UPDATE menu_items SET is_available = $2, updated_at = now() WHERE id = $1 RETURNING `+itemColumns,
		id, available)
	return scanItem(row)
}

// DeleteItem removes an item from the catalog.
func (r *Repo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateCategory inserts a category.
func (r *Repo) CreateCategory(ctx context.Context, name string, sortOrder int32) (Category, error) {
	var c Category
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO categories (id, name, sort_order) VALUES ($1, $2, $3) RETURNING id, name, sort_order`,
		uuid.New(), name, sortOrder).Scan(&c.ID, &c.Name, &c.SortOrder)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}
