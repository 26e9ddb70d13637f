package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the advertising platform a marketing record came from.
type Platform string

const (
	PlatformFacebook Platform = "Facebook"
	PlatformGoogle   Platform = "Google"
	PlatformTikTok   Platform = "TikTok"
)

// Platforms lists every supported advertising platform in canonical order.
var Platforms = []Platform{PlatformFacebook, PlatformGoogle, PlatformTikTok}

// ParsePlatform normalizes a platform name from a CSV export or query string.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "facebook", "fb", "meta":
		return PlatformFacebook, nil
	case "google", "google ads", "adwords":
		return PlatformGoogle, nil
	case "tiktok", "tik tok":
		return PlatformTikTok, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// MarketingRecord is one campaign-day-platform row as ingested from a
// platform CSV export. Counters are raw, pre-aggregation values.
// Clicks may exceed impressions in dirty exports; downstream ratio
// computation must tolerate that rather than reject the row.
type MarketingRecord struct {
	Date              time.Time `json:"date" csv:"date"`
	Platform          Platform  `json:"platform" csv:"platform"`
	Tactic            string    `json:"tactic,omitempty" csv:"tactic"`
	State             string    `json:"state,omitempty" csv:"state"`
	Campaign          string    `json:"campaign,omitempty" csv:"campaign"`
	Impressions       int64     `json:"impressions" csv:"impressions" validate:"min=0"`
	Clicks            int64     `json:"clicks" csv:"clicks" validate:"min=0"`
	Spend             float64   `json:"spend" csv:"spend" validate:"min=0"`
	AttributedRevenue float64   `json:"attributed_revenue" csv:"attributed_revenue" validate:"min=0"`
}

// AggregatedMarketingRow is the sum of marketing records over a grouping key
// (typically date+platform) with ratios derived from the summed counters.
// Renaming a JSON field here is a breaking change: the dashboard frontend
// binds to these names.
type AggregatedMarketingRow struct {
	Date              time.Time `json:"date" csv:"date"`
	Platform          Platform  `json:"platform,omitempty" csv:"platform"`
	Tactic            string    `json:"tactic,omitempty" csv:"tactic"`
	State             string    `json:"state,omitempty" csv:"state"`
	Campaign          string    `json:"campaign,omitempty" csv:"campaign"`
	Impressions       int64     `json:"impressions" csv:"impressions"`
	Clicks            int64     `json:"clicks" csv:"clicks"`
	Spend             float64   `json:"spend" csv:"spend"`
	AttributedRevenue float64   `json:"attributed_revenue" csv:"attributed_revenue"`
	CTR               float64   `json:"ctr" csv:"ctr"`
	CPC               float64   `json:"cpc" csv:"cpc"`
	CPM               float64   `json:"cpm" csv:"cpm"`
	ROAS              float64   `json:"roas" csv:"roas"`
}

// DeriveRatios recomputes the ratio fields from the summed counters.
// Every ratio is 0 when its denominator is 0: charts render a flat zero for
// missing-spend days instead of breaking on NaN.
func (r *AggregatedMarketingRow) DeriveRatios() {
	r.CTR = safeDiv(float64(r.Clicks), float64(r.Impressions))
	r.CPC = safeDiv(r.Spend, float64(r.Clicks))
	r.CPM = safeDiv(r.Spend, float64(r.Impressions)) * 1000
	r.ROAS = safeDiv(r.AttributedRevenue, r.Spend)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
