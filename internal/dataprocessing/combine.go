package dataprocessing

import (
	"sort"
	"time"

	"mktintel/pkg/contracts/domain"
)

// JoinStats reports informational join mismatches. Marketing dates outside
// the business calendar are dropped, never fatal.
type JoinStats struct {
	BusinessDates           int `json:"business_dates"`
	MatchedDates            int `json:"matched_dates"`
	UnmatchedMarketingDates int `json:"unmatched_marketing_dates"`
}

// Combine left-joins marketing aggregates onto the business table keyed on
// date. Business is the driving side: every business date yields exactly one
// output row, days without marketing activity carry zeroed marketing fields,
// and marketing dates with no business row are dropped and counted. The join
// is a single map lookup per row, O(n+m).
func Combine(business []domain.BusinessRecord, marketing []domain.AggregatedMarketingRow) ([]domain.CombinedRow, JoinStats) {
	type marketingSums struct {
		impressions, clicks int64
		spend, revenue      float64
	}

	byDate := make(map[string]*marketingSums, len(marketing))
	for _, agg := range marketing {
		k := dateKey(agg.Date)
		sums, ok := byDate[k]
		if !ok {
			sums = &marketingSums{}
			byDate[k] = sums
		}
		sums.impressions += agg.Impressions
		sums.clicks += agg.Clicks
		sums.spend += agg.Spend
		sums.revenue += agg.AttributedRevenue
	}

	stats := JoinStats{BusinessDates: len(business)}
	matched := make(map[string]bool, len(business))
	rows := make([]domain.CombinedRow, 0, len(business))
	for _, biz := range business {
		row := domain.CombinedRow{
			Date:         biz.Date,
			Orders:       biz.Orders,
			NewOrders:    biz.NewOrders,
			NewCustomers: biz.NewCustomers,
			TotalRevenue: biz.TotalRevenue,
			GrossProfit:  biz.GrossProfit,
			COGS:         biz.COGS,
		}
		k := dateKey(biz.Date)
		if sums, ok := byDate[k]; ok {
			row.Impressions = sums.impressions
			row.Clicks = sums.clicks
			row.Spend = sums.spend
			row.AttributedRevenue = sums.revenue
			if !matched[k] {
				matched[k] = true
				stats.MatchedDates++
			}
		}
		row.DeriveRatios()
		rows = append(rows, row)
	}

	for k := range byDate {
		if !matched[k] {
			stats.UnmatchedMarketingDates++
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, stats
}

// FilterCombined returns the combined rows inside the inclusive date bounds.
// It is a pure filter over already-derived rows; platform restrictions must
// instead re-run aggregation via FilterRecords.
func FilterCombined(rows []domain.CombinedRow, from, to time.Time) []domain.CombinedRow {
	out := make([]domain.CombinedRow, 0, len(rows))
	for _, row := range rows {
		if inRange(row.Date, from, to) {
			out = append(out, row)
		}
	}
	return out
}
