package promo

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

// Repo provides Postgres access to promotions and their combo rules.
type Repo struct {
	Pool *pgxpool.Pool
}

const promoColumns = `id, name, kind, value, percent_bps, scope, menu_item_id, category_id, active, starts_at, ends_at`

func scanPromotion(row pgx.Row) (Promotion, error) {
	var (
		p        Promotion
		itemID   pgtype.UUID
		catID    pgtype.UUID
		startsAt pgtype.Timestamptz
		endsAt   pgtype.Timestamptz
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Kind, &p.Value, &p.PercentBps, &p.Scope, &itemID, &catID, &p.Active, &startsAt, &endsAt); err != nil {
		return Promotion{}, err
	}
	p.MenuItemID = common.UUIDPtr(itemID)
	p.CategoryID = common.UUIDPtr(catID)
	p.StartsAt = common.TimePtr(startsAt)
	p.EndsAt = common.TimePtr(endsAt)
	return p, nil
}

// ListActive returns promotions that are flagged active and inside their
// schedule window at the given instant, newest first, with combo rules
// attached.
func (r *Repo) ListActive(ctx context.Context, at time.Time) ([]Promotion, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+promoColumns+` FROM promotions
		 WHERE active
		   AND (starts_at IS NULL OR starts_at <= $1)
		   AND (ends_at IS NULL OR ends_at >= $1)
		 ORDER BY created_at DESC`, at)
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}
	promos, err := collectPromotions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachRules(ctx, promos); err != nil {
		return nil, err
	}
	return promos, nil
}

// ListAll returns every promotion regardless of state, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]Promotion, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+promoColumns+` FROM promotions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	promos, err := collectPromotions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachRules(ctx, promos); err != nil {
		return nil, err
	}
	return promos, nil
}

// Get fetches one promotion with its rules.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Promotion, error) {
	p, err := scanPromotion(r.Pool.QueryRow(ctx, `SELECT `+promoColumns+` FROM promotions WHERE id = $1`, id))
	if err != nil {
		return Promotion{}, err
	}
	promos := []Promotion{p}
	if err := r.attachRules(ctx, promos); err != nil {
		return Promotion{}, err
	}
	return promos[0], nil
}

// Create inserts a promotion and its rules in one transaction.
func (r *Repo) Create(ctx context.Context, p Promotion) (Promotion, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Promotion{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO promotions (id, name, kind, value, percent_bps, scope, menu_item_id, category_id, active, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Kind, p.Value, p.PercentBps, p.Scope,
		common.PGUUID(p.MenuItemID), common.PGUUID(p.CategoryID), p.Active,
		common.PGTime(p.StartsAt), common.PGTime(p.EndsAt))
	if err != nil {
		return Promotion{}, fmt.Errorf("insert promotion: %w", err)
	}
	if err := insertRules(ctx, tx, p.ID, p.Rules); err != nil {
		return Promotion{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Promotion{}, fmt.Errorf("commit: %w", err)
	}
	return r.Get(ctx, p.ID)
}

// Update overwrites a promotion and replaces its rule set.
func (r *Repo) Update(ctx context.Context, p Promotion) (Promotion, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Promotion{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE promotions
		 SET name = $2, kind = $3, value = $4, percent_bps = $5, scope = $6,
		     menu_item_id = $7, category_id = $8, active = $9, starts_at = $10, ends_at = $11
		 WHERE id = $1`,
		p.ID, p.Name, p.Kind, p.Value, p.PercentBps, p.Scope,
		common.PGUUID(p.MenuItemID), common.PGUUID(p.CategoryID), p.Active,
		common.PGTime(p.StartsAt), common.PGTime(p.EndsAt))
	if err != nil {
		return Promotion{}, fmt.Errorf("update promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Promotion{}, pgx.ErrNoRows
	}
	if _, err := tx.Exec(ctx, `DELETE FROM promotion_rules WHERE promotion_id = $1`, p.ID); err != nil {
		return Promotion{}, fmt.Errorf("clear rules: %w", err)
	}
	if err := insertRules(ctx, tx, p.ID, p.Rules); err != nil {
		return Promotion{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Promotion{}, fmt.Errorf("commit: %w", err)
	}
	return r.Get(ctx, p.ID)
}

// SetActive flips the active flag.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE promotions SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set promotion active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a promotion. Rules cascade in the schema.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectPromotions(rows pgx.Rows) ([]Promotion, error) {
	defer rows.Close()
	var out []Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) attachRules(ctx context.Context, promos []Promotion) error {
	if len(promos) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(promos))
	index := make(map[uuid.UUID]int, len(promos))
	for i, p := range promos {
		ids[i] = p.ID
		index[p.ID] = i
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT id, promotion_id, required_quantity, menu_item_id, category_id, is_discounted
		 FROM promotion_rules WHERE promotion_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return fmt.Errorf("list promotion rules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rule    Rule
			promoID uuid.UUID
			itemID  pgtype.UUID
			catID   pgtype.UUID
		)
		if err := rows.Scan(&rule.ID, &promoID, &rule.RequiredQuantity, &itemID, &catID, &rule.IsDiscounted); err != nil {
			return fmt.Errorf("scan promotion rule: %w", err)
		}
		rule.MenuItemID = common.UUIDPtr(itemID)
		rule.CategoryID = common.UUIDPtr(catID)
		if i, ok := index[promoID]; ok {
			promos[i].Rules = append(promos[i].Rules, rule)
		}
	}
	return rows.Err()
}

func insertRules(ctx context.Context, tx pgx.Tx, promoID uuid.UUID, rules []Rule) error {
	for _, rule := range rules {
		id := rule.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO promotion_rules (id, promotion_id, required_quantity, menu_item_id, category_id, is_discounted)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, promoID, rule.RequiredQuantity, common.PGUUID(rule.MenuItemID), common.PGUUID(rule.CategoryID), rule.IsDiscounted)
		if err != nil {
			return fmt.Errorf("insert promotion rule: %w", err)
		}
	}
	return nil
}
