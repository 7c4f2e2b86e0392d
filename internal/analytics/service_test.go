package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	calls  int
	hourly []TrendRow
	daily  []TrendRow
}

func (f *fakeQuerier) PaidTotals(ctx context.Context, from, to time.Time) (int64, int64, int64, error) {
	f.calls++
	return 10000, 4, 654, nil
}

func (f *fakeQuerier) DiscountTotal(ctx context.Context, from, to time.Time) (int64, error) {
	return 750, nil
}

func (f *fakeQuerier) VoidTotals(ctx context.Context, from, to time.Time) (int64, int64, error) {
	return 2, 1198, nil
}

func (f *fakeQuerier) RefundTotals(ctx context.Context, from, to time.Time) (int64, int64, error) {
	return 1500, 1, nil
}

func (f *fakeQuerier) HourlyTrend(ctx context.Context, from, to time.Time) ([]TrendRow, error) {
	return f.hourly, nil
}

func (f *fakeQuerier) DailyTrend(ctx context.Context, from, to time.Time) ([]TrendRow, error) {
	return f.daily, nil
}

func (f *fakeQuerier) TopItems(ctx context.Context, from, to time.Time, limit int32) ([]ItemSales, error) {
	return []ItemSales{{Name: "Classic Burger", Count: 6, Revenue: 7794}}, nil
}

func (f *fakeQuerier) CategoryTotals(ctx context.Context, from, to time.Time) ([]CategorySales, error) {
	return []CategorySales{{Name: "Mains", Value: 7794}}, nil
}

func (f *fakeQuerier) TypeBreakdown(ctx context.Context, from, to time.Time) ([]TypeSales, error) {
	return []TypeSales{{Name: "DINE IN", Value: 10000, Count: 4}}, nil
}

func (f *fakeQuerier) PaymentTotals(ctx context.Context, from, to time.Time) (PaymentSlice, PaymentSlice, error) {
	return PaymentSlice{Count: 3, Total: 7500}, PaymentSlice{Count: 1, Total: 2500}, nil
}

func TestSalesComposesReport(t *testing.T) {
	q := &fakeQuerier{hourly: []TrendRow{{Hour: 12, Revenue: 6000, Count: 2}}}
	svc := &Service{Q: q}

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rep, err := svc.Sales(context.Background(), from, from.Add(10*time.Hour))
	require.NoError(t, err)

	require.Equal(t, int64(10000), rep.GrossSales)
	require.Equal(t, int64(2500), rep.AverageTicket)
	require.Equal(t, int64(750), rep.TotalDiscount)
	require.Equal(t, int64(1500), rep.TotalRefunds)
	require.Equal(t, int64(7500), rep.PaymentBreakdown.Cash.Total)
	require.Equal(t, int64(2500), rep.PaymentBreakdown.Card.Total)
}

func TestSalesHourlyTrendKeepsAxisContinuous(t *testing.T) {
	q := &fakeQuerier{hourly: []TrendRow{{Hour: 9, Revenue: 4000, Count: 1}}}
	svc := &Service{Q: q}

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rep, err := svc.Sales(context.Background(), from, from.Add(12*time.Hour))
	require.NoError(t, err)

	require.Len(t, rep.SalesTrend, 24)
	require.Equal(t, "09:00", rep.SalesTrend[9].Label)
	require.Equal(t, int64(4000), rep.SalesTrend[9].Revenue)
	require.Zero(t, rep.SalesTrend[10].Revenue)
}

func TestSalesDailyTrendFillsMissingDays(t *testing.T) {
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	q := &fakeQuerier{daily: []TrendRow{{Day: day, Revenue: 8000, Count: 3}}}
	svc := &Service{Q: q}

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rep, err := svc.Sales(context.Background(), from, from.AddDate(0, 0, 6))
	require.NoError(t, err)

	require.Len(t, rep.SalesTrend, 7)
	require.Equal(t, "Mar 4", rep.SalesTrend[2].Label)
	require.Equal(t, int64(8000), rep.SalesTrend[2].Revenue)
	require.Zero(t, rep.SalesTrend[3].Revenue)
}

func TestSalesServesSecondCallFromCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := &fakeQuerier{hourly: []TrendRow{{Hour: 12, Revenue: 6000, Count: 2}}}
	svc := &Service{Q: q, R: client, TTL: time.Minute}

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(10 * time.Hour)

	first, err := svc.Sales(context.Background(), from, to)
	require.NoError(t, err)
	second, err := svc.Sales(context.Background(), from, to)
	require.NoError(t, err)

	require.Equal(t, 1, q.calls)
	require.Equal(t, first.GrossSales, second.GrossSales)
	require.Equal(t, first.SalesTrend, second.SalesTrend)
}
