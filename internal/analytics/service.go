package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Querier defines the database access required to assemble a report.
type Querier interface {
	PaidTotals(ctx context.Context, from, to time.Time) (gross, count, tax int64, err error)
	DiscountTotal(ctx context.Context, from, to time.Time) (int64, error)
	VoidTotals(ctx context.Context, from, to time.Time) (count, value int64, err error)
	RefundTotals(ctx context.Context, from, to time.Time) (total, count int64, err error)
	HourlyTrend(ctx context.Context, from, to time.Time) ([]TrendRow, error)
	DailyTrend(ctx context.Context, from, to time.Time) ([]TrendRow, error)
	TopItems(ctx context.Context, from, to time.Time, limit int32) ([]ItemSales, error)
	CategoryTotals(ctx context.Context, from, to time.Time) ([]CategorySales, error)
	TypeBreakdown(ctx context.Context, from, to time.Time) ([]TypeSales, error)
	PaymentTotals(ctx context.Context, from, to time.Time) (cash, card PaymentSlice, err error)
}

const topItemLimit = 10

// Service provides cached access to the sales report.
type Service struct {
	Q   Querier
	R   *redis.Client
	TTL time.Duration
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// Sales assembles the dashboard report for the window. A window of 24
// hours or less is charted hourly, anything longer daily.
func (s *Service) Sales(ctx context.Context, from, to time.Time) (Report, error) {
	if s == nil || s.Q == nil {
		return Report{}, fmt.Errorf("analytics service not configured")
	}
	key := cacheKey("an", "sales", from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	var rep Report
	gross, count, tax, err := s.Q.PaidTotals(ctx, from, to)
	if err != nil {
		return Report{}, err
	}
	rep.GrossSales, rep.OrderCount, rep.TotalTax = gross, count, tax
	if count > 0 {
		rep.AverageTicket = gross / count
	}
	if rep.TotalDiscount, err = s.Q.DiscountTotal(ctx, from, to); err != nil {
		return Report{}, err
	}
	if rep.VoidedItemCount, rep.VoidedItemValue, err = s.Q.VoidTotals(ctx, from, to); err != nil {
		return Report{}, err
	}
	if rep.TotalRefunds, rep.RefundCount, err = s.Q.RefundTotals(ctx, from, to); err != nil {
		return Report{}, err
	}
	if rep.SalesTrend, err = s.trend(ctx, from, to); err != nil {
		return Report{}, err
	}
	if rep.TopItems, err = s.Q.TopItems(ctx, from, to, topItemLimit); err != nil {
		return Report{}, err
	}
	if rep.CategorySales, err = s.Q.CategoryTotals(ctx, from, to); err != nil {
		return Report{}, err
	}
	if rep.OrderTypeBreakdown, err = s.Q.TypeBreakdown(ctx, from, to); err != nil {
		return Report{}, err
	}
	cash, card, err := s.Q.PaymentTotals(ctx, from, to)
	if err != nil {
		return Report{}, err
	}
	rep.PaymentBreakdown = PaymentBreakdown{Cash: cash, Card: card}

	s.store(ctx, key, rep)
	return rep, nil
}

func (s *Service) trend(ctx context.Context, from, to time.Time) ([]TrendPoint, error) {
	if to.Sub(from) <= 24*time.Hour {
		rows, err := s.Q.HourlyTrend(ctx, from, to)
		if err != nil {
			return nil, err
		}
		points := make([]TrendPoint, 24)
		for i := range points {
			points[i].Label = fmt.Sprintf("%02d:00", i)
		}
		for _, r := range rows {
			if r.Hour >= 0 && r.Hour < 24 {
				points[r.Hour].Revenue = r.Revenue
				points[r.Hour].Count = r.Count
			}
		}
		return points, nil
	}

	rows, err := s.Q.DailyTrend(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]TrendRow, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format("2006-01-02")] = r
	}
	var points []TrendPoint
	for d := from.Truncate(24 * time.Hour); !d.After(to); d = d.AddDate(0, 0, 1) {
		p := TrendPoint{Label: d.Format("Jan 2")}
		if r, ok := byDay[d.Format("2006-01-02")]; ok {
			p.Revenue, p.Count = r.Revenue, r.Count
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (Report, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Report{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Report{}, false
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return Report{}, false
	}
	return rep, true
}

func (s *Service) store(ctx context.Context, key string, rep Report) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(rep)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
