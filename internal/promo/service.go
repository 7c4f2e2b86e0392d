package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-resto/internal/common"
)

type store interface {
	ListActive(ctx context.Context, at time.Time) ([]Promotion, error)
	ListAll(ctx context.Context) ([]Promotion, error)
	Get(ctx context.Context, id uuid.UUID) (Promotion, error)
	Create(ctx context.Context, p Promotion) (Promotion, error)
	Update(ctx context.Context, p Promotion) (Promotion, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages the promotion catalog. Pricing consumes Active; the
// admin surface uses the CRUD methods.
type Service struct {
	Store store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Active returns promotions eligible right now. Temporal filtering happens
// here so the pricing engine never needs a clock.
func (s *Service) Active(ctx context.Context) ([]Promotion, error) {
	return s.Store.ListActive(ctx, s.now())
}

// List returns every promotion for the admin view.
func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	return s.Store.ListAll(ctx)
}

// Get fetches one promotion.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Promotion, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Promotion{}, common.NotFound("promotion not found")
		}
		return Promotion{}, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

// Create validates and stores a new promotion.
func (s *Service) Create(ctx context.Context, p Promotion) (Promotion, error) {
	if err := validate(p); err != nil {
		return Promotion{}, err
	}
	return s.Store.Create(ctx, p)
}

// Update validates and replaces an existing promotion, rules included.
func (s *Service) Update(ctx context.Context, p Promotion) (Promotion, error) {
	if err := validate(p); err != nil {
		return Promotion{}, err
	}
	updated, err := s.Store.Update(ctx, p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Promotion{}, common.NotFound("promotion not found")
		}
		return Promotion{}, fmt.Errorf("update promotion: %w", err)
	}
	return updated, nil
}

// SetActive toggles a promotion on or off.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.Store.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFound("promotion not found")
		}
		return fmt.Errorf("set promotion active: %w", err)
	}
	return nil
}

// Delete removes a promotion.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFound("promotion not found")
		}
		return fmt.Errorf("delete promotion: %w", err)
	}
	return nil
}

func validate(p Promotion) error {
	if strings.TrimSpace(p.Name) == "" {
		return common.Invalid("name is required", map[string]any{"field": "name"})
	}
	switch p.Kind {
	case KindFixed:
		if p.Value <= 0 {
			return common.Invalid("value must be positive", map[string]any{"field": "value"})
		}
	case KindPercent:
		if p.PercentBps <= 0 || p.PercentBps > 10000 {
			return common.Invalid("percentBps must be between 1 and 10000", map[string]any{"field": "percentBps"})
		}
	case KindCombo:
		if p.Value <= 0 {
			return common.Invalid("value must be positive", map[string]any{"field": "value"})
		}
		if len(p.Rules) == 0 {
			return common.Invalid("combo promotions need at least one rule", map[string]any{"field": "rules"})
		}
		for _, rule := range p.Rules {
			if rule.RequiredQuantity <= 0 {
				return common.Invalid("rule requiredQuantity must be positive", map[string]any{"field": "rules"})
			}
			if rule.MenuItemID == nil && rule.CategoryID == nil {
				return common.Invalid("rule needs a menuItemId or categoryId", map[string]any{"field": "rules"})
			}
		}
	default:
		return common.Invalid("kind must be FIXED, PERCENT, or COMBO", map[string]any{"field": "kind"})
	}
	if p.Kind != KindCombo {
		switch p.Scope {
		case ScopeItem:
			if p.MenuItemID == nil {
				return common.Invalid("menuItemId is required for ITEM scope", map[string]any{"field": "menuItemId"})
			}
		case ScopeCategory:
			if p.CategoryID == nil {
				return common.Invalid("categoryId is required for CATEGORY scope", map[string]any{"field": "categoryId"})
			}
		default:
			return common.Invalid("scope must be ITEM or CATEGORY", map[string]any{"field": "scope"})
		}
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return common.Invalid("endsAt must not be before startsAt", map[string]any{"field": "endsAt"})
	}
	return nil
}
