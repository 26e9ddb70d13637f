package dataprocessing

import (
	"log/slog"
	"time"

	"mktintel/pkg/contracts/domain"
)

// Summarizer condenses combined rows and platform aggregates into the
// snapshot consumed by dashboard cards and insight prompt construction.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With(slog.String("component", "summarizer"))}
}

// Summarize computes period totals from the combined rows plus per-platform
// performance from the date+platform aggregates covering the same period.
// previous may be nil when no preceding period exists.
func (s *Summarizer) Summarize(rows []domain.CombinedRow, aggs []domain.AggregatedMarketingRow, previous []domain.CombinedRow) domain.SummaryStats {
	stats := domain.SummaryStats{Days: len(rows)}
	if len(rows) == 0 {
		return stats
	}

	stats.From = rows[0].Date
	stats.To = rows[len(rows)-1].Date

	var impressions, clicks int64
	for _, row := range rows {
		stats.TotalSpend += row.Spend
		stats.TotalAttributedRevenue += row.AttributedRevenue
		stats.TotalBusinessRevenue += row.TotalRevenue
		stats.TotalOrders += row.Orders
		stats.TotalNewCustomers += row.NewCustomers
		impressions += row.Impressions
		clicks += row.Clicks
	}
	stats.OverallROAS = ratio(stats.TotalAttributedRevenue, stats.TotalSpend)
	stats.OverallCTR = ratio(float64(clicks), float64(impressions))
	stats.AverageAOV = ratio(stats.TotalBusinessRevenue, float64(stats.TotalOrders))
	stats.AttributionGap = stats.TotalBusinessRevenue - stats.TotalAttributedRevenue
	stats.AttributionGapPct = ratio(stats.AttributionGap, stats.TotalBusinessRevenue)

	stats.Platforms = s.platformPerformance(aggs)
	stats.BestPlatform, stats.WorstPlatform = rankPlatforms(stats.Platforms)

	if len(previous) > 0 {
		stats.PreviousPeriod = periodDelta(rows, previous)
	}
	return stats
}

// platformPerformance folds date+platform aggregates into one row per
// platform, again deriving ratios only after summation.
func (s *Summarizer) platformPerformance(aggs []domain.AggregatedMarketingRow) []domain.PlatformPerformance {
	byPlatform := make(map[domain.Platform]*domain.PlatformPerformance)
	order := make([]domain.Platform, 0, len(domain.Platforms))
	for _, agg := range aggs {
		if agg.Platform == "" {
			continue
		}
		perf, ok := byPlatform[agg.Platform]
		if !ok {
			perf = &domain.PlatformPerformance{Platform: agg.Platform}
			byPlatform[agg.Platform] = perf
			order = append(order, agg.Platform)
		}
		perf.Impressions += agg.Impressions
		perf.Clicks += agg.Clicks
		perf.Spend += agg.Spend
		perf.AttributedRevenue += agg.AttributedRevenue
	}

	out := make([]domain.PlatformPerformance, 0, len(order))
	for _, p := range order {
		perf := byPlatform[p]
		perf.CTR = ratio(float64(perf.Clicks), float64(perf.Impressions))
		perf.CPC = ratio(perf.Spend, float64(perf.Clicks))
		perf.ROAS = ratio(perf.AttributedRevenue, perf.Spend)
		out = append(out, *perf)
	}
	return out
}

// rankPlatforms picks the best and worst platform by ROAS among platforms
// that actually spent money. A single-platform period ranks it as both.
func rankPlatforms(platforms []domain.PlatformPerformance) (best, worst domain.Platform) {
	var bestROAS, worstROAS float64
	for _, perf := range platforms {
		if perf.Spend == 0 {
			continue
		}
		if best == "" || perf.ROAS > bestROAS {
			best, bestROAS = perf.Platform, perf.ROAS
		}
		if worst == "" || perf.ROAS < worstROAS {
			worst, worstROAS = perf.Platform, perf.ROAS
		}
	}
	return best, worst
}

func periodDelta(current, previous []domain.CombinedRow) *domain.PeriodDelta {
	sum := func(rows []domain.CombinedRow) (spend, attributed, revenue float64, orders int64) {
		for _, row := range rows {
			spend += row.Spend
			attributed += row.AttributedRevenue
			revenue += row.TotalRevenue
			orders += row.Orders
		}
		return
	}
	curSpend, curAttr, curRev, curOrders := sum(current)
	prevSpend, prevAttr, prevRev, prevOrders := sum(previous)

	return &domain.PeriodDelta{
		SpendPct:   pctChange(curSpend, prevSpend),
		RevenuePct: pctChange(curRev, prevRev),
		OrdersPct:  pctChange(float64(curOrders), float64(prevOrders)),
		ROASDiff:   ratio(curAttr, curSpend) - ratio(prevAttr, prevSpend),
	}
}

// PreviousPeriod returns the window of equal length immediately before
// [from, to], for period-over-period comparison.
func PreviousPeriod(from, to time.Time) (time.Time, time.Time) {
	length := to.Sub(from) + 24*time.Hour
	return from.Add(-length), from.Add(-24 * time.Hour)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func pctChange(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev
}
