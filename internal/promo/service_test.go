package promo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingStore struct {
	store
	activeAt time.Time
}

func (r *recordingStore) ListActive(ctx context.Context, at time.Time) ([]Promotion, error) {
	r.activeAt = at
	return nil, nil
}

func TestActiveUsesInjectedClock(t *testing.T) {
	rs := &recordingStore{}
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := &Service{Store: rs, Now: func() time.Time { return fixed }}
	if _, err := svc.Active(context.Background()); err != nil {
		t.Fatalf("active: %v", err)
	}
	if !rs.activeAt.Equal(fixed) {
		t.Fatalf("expected query at %v, got %v", fixed, rs.activeAt)
	}
}

func TestValidate(t *testing.T) {
	item := uuid.New()
	cat := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	cases := []struct {
		name    string
		p       Promotion
		wantErr bool
	}{
		{"valid fixed", Promotion{Name: "x", Kind: KindFixed, Value: 200, Scope: ScopeItem, MenuItemID: &item}, false},
		{"valid percent", Promotion{Name: "x", Kind: KindPercent, PercentBps: 1500, Scope: ScopeCategory, CategoryID: &cat}, false},
		{"valid combo", Promotion{Name: "x", Kind: KindCombo, Value: 800, Rules: []Rule{{RequiredQuantity: 2, CategoryID: &cat}}}, false},
		{"missing name", Promotion{Kind: KindFixed, Value: 200, Scope: ScopeItem, MenuItemID: &item}, true},
		{"fixed zero value", Promotion{Name: "x", Kind: KindFixed, Scope: ScopeItem, MenuItemID: &item}, true},
		{"percent out of range", Promotion{Name: "x", Kind: KindPercent, PercentBps: 10001, Scope: ScopeCategory, CategoryID: &cat}, true},
		{"combo without rules", Promotion{Name: "x", Kind: KindCombo, Value: 800}, true},
		{"combo rule without target", Promotion{Name: "x", Kind: KindCombo, Value: 800, Rules: []Rule{{RequiredQuantity: 1}}}, true},
		{"item scope without item", Promotion{Name: "x", Kind: KindFixed, Value: 100, Scope: ScopeItem}, true},
		{"category scope without category", Promotion{Name: "x", Kind: KindPercent, PercentBps: 100, Scope: ScopeCategory}, true},
		{"inverted window", Promotion{Name: "x", Kind: KindFixed, Value: 100, Scope: ScopeItem, MenuItemID: &item, StartsAt: &start, EndsAt: &end}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate(tc.p)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
