package domain

import "time"

// PlatformPerformance holds per-platform totals for the selected period.
type PlatformPerformance struct {
	Platform          Platform `json:"platform"`
	Impressions       int64    `json:"impressions"`
	Clicks            int64    `json:"clicks"`
	Spend             float64  `json:"spend"`
	AttributedRevenue float64  `json:"attributed_revenue"`
	CTR               float64  `json:"ctr"`
	CPC               float64  `json:"cpc"`
	ROAS              float64  `json:"roas"`
}

// PeriodDelta compares the selected period against the preceding period of
// equal length. Pct fields are 0 when the previous period value is 0.
type PeriodDelta struct {
	SpendPct   float64 `json:"spend_pct"`
	RevenuePct float64 `json:"revenue_pct"`
	OrdersPct  float64 `json:"orders_pct"`
	ROASDiff   float64 `json:"roas_diff"`
}

// SummaryStats is the read-only snapshot handed to the dashboard cards and
// to insight prompt construction. It is produced from already-combined rows
// and never feeds back into the pipeline.
type SummaryStats struct {
	From                   time.Time             `json:"from"`
	To                     time.Time             `json:"to"`
	Days                   int                   `json:"days"`
	TotalSpend             float64               `json:"total_spend"`
	TotalAttributedRevenue float64               `json:"total_attributed_revenue"`
	TotalBusinessRevenue   float64               `json:"total_business_revenue"`
	TotalOrders            int64                 `json:"total_orders"`
	TotalNewCustomers      int64                 `json:"total_new_customers"`
	OverallROAS            float64               `json:"overall_roas"`
	OverallCTR             float64               `json:"overall_ctr"`
	AverageAOV             float64               `json:"average_aov"`
	AttributionGap         float64               `json:"attribution_gap"`
	AttributionGapPct      float64               `json:"attribution_gap_pct"`
	Platforms              []PlatformPerformance `json:"platforms"`
	BestPlatform           Platform              `json:"best_platform,omitempty"`
	WorstPlatform          Platform              `json:"worst_platform,omitempty"`
	PreviousPeriod         *PeriodDelta          `json:"previous_period,omitempty"`
}

// DataQuality reports non-fatal ingestion and join issues alongside results
// so the dashboard can render a data-quality note instead of failing.
type DataQuality struct {
	RowsLoaded              int      `json:"rows_loaded"`
	RowsRejected            int      `json:"rows_rejected"`
	RowsCoerced             int      `json:"rows_coerced"`
	UnmatchedMarketingDates int      `json:"unmatched_marketing_dates"`
	Warnings                []string `json:"warnings,omitempty"`
}
