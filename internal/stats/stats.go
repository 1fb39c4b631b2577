package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/billkhata/api/internal/billing"
	"github.com/billkhata/api/internal/enum"
	"github.com/billkhata/api/internal/shop"
)

// DailyStats summarizes the bills created on the calendar day of the
// reference instant.
type DailyStats struct {
	TotalSalesToday decimal.Decimal
	CashTotal       decimal.Decimal
	UpiTotal        decimal.Decimal
	BillCount       int
	ShopSales       map[shop.ID]decimal.Decimal
	// SkippedBills counts history entries with no usable createdAt. They
	// are excluded from every figure; callers decide whether to report.
	SkippedBills int
}

// DailyPoint is one day of the monthly sales series.
type DailyPoint struct {
	Date  string
	Sales decimal.Decimal
}

// MonthlySummary covers the calendar month of the reference instant plus a
// fixed 30-day sales series ending on it.
type MonthlySummary struct {
	TotalRevenue decimal.Decimal
	DailySales   []DailyPoint
	SkippedBills int
}

const dateLayout = "2006-01-02"

// Daily aggregates history into the dashboard's same-day figures. The
// reference instant is always passed in; calendar-day equality is evaluated
// in its location. Bills without a payment mode still count toward the
// total and the bill count, just not the cash/UPI split.
func Daily(history []billing.Bill, now time.Time) DailyStats {
	stats := DailyStats{
		TotalSalesToday: decimal.Zero,
		CashTotal:       decimal.Zero,
		UpiTotal:        decimal.Zero,
		ShopSales:       make(map[shop.ID]decimal.Decimal, len(shop.All())),
	}
	for _, info := range shop.All() {
		stats.ShopSales[info.ID] = decimal.Zero
	}

	for _, b := range history {
		if b.CreatedAt.IsZero() {
			stats.SkippedBills++
			continue
		}
		if !sameDay(b.CreatedAt, now) {
			continue
		}

		stats.TotalSalesToday = stats.TotalSalesToday.Add(b.TotalAmount)
		stats.BillCount++

		switch b.PaymentMode {
		case enum.PaymentModeCash:
			stats.CashTotal = stats.CashTotal.Add(b.TotalAmount)
		case enum.PaymentModeUPI:
			stats.UpiTotal = stats.UpiTotal.Add(b.TotalAmount)
		}

		if prev, ok := stats.ShopSales[b.ShopID]; ok {
			stats.ShopSales[b.ShopID] = prev.Add(b.TotalAmount)
		}
	}

	return stats
}

// Monthly aggregates history into the calendar-month revenue and the
// 30-day sales series ending at now, oldest day first. Days with no bills
// yield zero-valued points, so the series always has exactly 30 entries.
func Monthly(history []billing.Bill, now time.Time) MonthlySummary {
	summary := MonthlySummary{
		TotalRevenue: decimal.Zero,
		DailySales:   make([]DailyPoint, 0, 30),
	}

	loc := now.Location()
	daily := make(map[string]decimal.Decimal, 30)

	for _, b := range history {
		if b.CreatedAt.IsZero() {
			summary.SkippedBills++
			continue
		}
		created := b.CreatedAt.In(loc)
		if created.Year() == now.Year() && created.Month() == now.Month() {
			summary.TotalRevenue = summary.TotalRevenue.Add(b.TotalAmount)
		}
		key := created.Format(dateLayout)
		daily[key] = daily[key].Add(b.TotalAmount)
	}

	for i := 29; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format(dateLayout)
		sales := decimal.Zero
		if v, ok := daily[key]; ok {
			sales = v
		}
		summary.DailySales = append(summary.DailySales, DailyPoint{Date: key, Sales: sales})
	}

	return summary
}

// sameDay reports calendar-day equality in ref's location, ignoring
// time-of-day. This is not a rolling 24h window.
func sameDay(t, ref time.Time) bool {
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.YearDay() == ref.YearDay()
}
