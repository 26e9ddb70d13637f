package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktintel/pkg/contracts/domain"
)

func statsWith(roas, gapPct float64) domain.SummaryStats {
	spend := 1000.0
	return domain.SummaryStats{
		Days:                   30,
		TotalSpend:             spend,
		TotalAttributedRevenue: spend * roas,
		TotalBusinessRevenue:   spend * roas / (1 - gapPct),
		OverallROAS:            roas,
		AttributionGapPct:      gapPct,
	}
}

func TestPerformanceInsightThresholds(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name string
		roas float64
		gap  float64
		want []string
	}{
		{name: "excellent healthy", roas: 4.0, gap: 0.1, want: []string{"Excellent marketing ROI", "Healthy attribution"}},
		{name: "good moderate gap", roas: 3.0, gap: 0.35, want: []string{"Good marketing performance", "Moderate attribution gap"}},
		{name: "poor critical gap", roas: 1.5, gap: 0.6, want: []string{"ROAS requires attention", "Critical attribution gap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Generate(statsWith(tt.roas, tt.gap))
			for _, fragment := range tt.want {
				assert.Contains(t, got.Performance, fragment)
			}
		})
	}
}

func TestRecommendations(t *testing.T) {
	e := NewEngine(nil)

	stats := statsWith(2.8, 0.25)
	stats.Platforms = []domain.PlatformPerformance{
		{Platform: domain.PlatformFacebook, Spend: 500, ROAS: 4.2},
		{Platform: domain.PlatformGoogle, Spend: 500, ROAS: 1.1},
	}
	stats.BestPlatform = domain.PlatformFacebook
	stats.WorstPlatform = domain.PlatformGoogle

	recs := e.Generate(stats).Recommendations
	require.NotEmpty(t, recs)

	joined := strings.Join(recs, "\n")
	assert.Contains(t, joined, "Capitalize on Facebook")
	assert.Contains(t, joined, "Optimize Google")
	assert.Contains(t, joined, "A/B testing")
}

func TestRecommendationsNoPlatforms(t *testing.T) {
	e := NewEngine(nil)
	recs := e.Generate(statsWith(2.0, 0.2)).Recommendations
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "No platform data")
}

func TestTrendsContribution(t *testing.T) {
	e := NewEngine(nil)

	stats := domain.SummaryStats{
		TotalAttributedRevenue: 400,
		TotalBusinessRevenue:   1000,
	}
	got := e.Generate(stats).Trends
	assert.Contains(t, got, "40.0%")

	// Zero revenue yields zero contribution, not NaN.
	got = e.Generate(domain.SummaryStats{}).Trends
	assert.Contains(t, got, "0.0%")
}

func TestAttributionInsight(t *testing.T) {
	e := NewEngine(nil)

	assert.Contains(t, e.Generate(statsWith(3.0, 0.1)).Attribution, "Excellent attribution")
	assert.Contains(t, e.Generate(statsWith(3.0, 0.45)).Attribution, "Attribution gap")
}

func TestExecutiveSummary(t *testing.T) {
	e := NewEngine(nil)

	assert.Contains(t, e.Generate(statsWith(3.5, 0.2)).ExecutiveSummary, "strong")
	assert.Contains(t, e.Generate(statsWith(2.0, 0.2)).ExecutiveSummary, "moderate")
}
