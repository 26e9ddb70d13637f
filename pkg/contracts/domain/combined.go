package domain

import "time"

// CombinedRow joins one business day with the marketing totals for that day
// summed across all platforms. Every business date produces exactly one row;
// days without marketing activity carry zeroed marketing fields.
type CombinedRow struct {
	Date time.Time `json:"date" csv:"date"`

	// Business side
	Orders       int64   `json:"orders" csv:"orders"`
	NewOrders    int64   `json:"new_orders" csv:"new_orders"`
	NewCustomers int64   `json:"new_customers" csv:"new_customers"`
	TotalRevenue float64 `json:"total_revenue" csv:"total_revenue"`
	GrossProfit  float64 `json:"gross_profit" csv:"gross_profit"`
	COGS         float64 `json:"cogs" csv:"cogs"`

	// Marketing side, summed across platforms
	Impressions       int64   `json:"impressions" csv:"impressions"`
	Clicks            int64   `json:"clicks" csv:"clicks"`
	Spend             float64 `json:"spend" csv:"spend"`
	AttributedRevenue float64 `json:"attributed_revenue" csv:"attributed_revenue"`
	CTR               float64 `json:"ctr" csv:"ctr"`
	CPC               float64 `json:"cpc" csv:"cpc"`
	CPM               float64 `json:"cpm" csv:"cpm"`
	ROAS              float64 `json:"roas" csv:"roas"`

	// Derived business ratios
	AOV             float64 `json:"aov" csv:"aov"`
	ProfitMargin    float64 `json:"profit_margin" csv:"profit_margin"`
	NewCustomerRate float64 `json:"new_customer_rate" csv:"new_customer_rate"`

	// Attribution
	AttributionGap    float64 `json:"attribution_gap" csv:"attribution_gap"`
	AttributionGapPct float64 `json:"attribution_gap_pct" csv:"attribution_gap_pct"`
}

// DeriveRatios recomputes every derived field from the raw counters.
// All ratios are 0 when their denominator is 0.
func (c *CombinedRow) DeriveRatios() {
	c.CTR = safeDiv(float64(c.Clicks), float64(c.Impressions))
	c.CPC = safeDiv(c.Spend, float64(c.Clicks))
	c.CPM = safeDiv(c.Spend, float64(c.Impressions)) * 1000
	c.ROAS = safeDiv(c.AttributedRevenue, c.Spend)
	c.AOV = safeDiv(c.TotalRevenue, float64(c.Orders))
	c.ProfitMargin = safeDiv(c.GrossProfit, c.TotalRevenue)
	c.NewCustomerRate = safeDiv(float64(c.NewCustomers), float64(c.Orders))
	c.AttributionGap = c.TotalRevenue - c.AttributedRevenue
	c.AttributionGapPct = safeDiv(c.AttributionGap, c.TotalRevenue)
}
