package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktintel/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateSumThenDivide(t *testing.T) {
	records := []domain.MarketingRecord{
		{Date: day(1), Platform: domain.PlatformFacebook, Impressions: 100, Clicks: 10},
		{Date: day(1), Platform: domain.PlatformFacebook, Impressions: 200, Clicks: 30},
	}

	rows := Aggregate(records, DefaultGroupKeys)
	require.Len(t, rows, 1)

	// CTR of the aggregate is total clicks over total impressions, not the
	// mean of per-row CTRs (which would be 12.5%).
	assert.InDelta(t, 40.0/300.0, rows[0].CTR, 1e-12)
	assert.Equal(t, int64(300), rows[0].Impressions)
	assert.Equal(t, int64(40), rows[0].Clicks)
}

func TestAggregateZeroDenominators(t *testing.T) {
	records := []domain.MarketingRecord{
		{Date: day(1), Platform: domain.PlatformTikTok},
	}

	rows := Aggregate(records, DefaultGroupKeys)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, float64(0), row.CTR)
	assert.Equal(t, float64(0), row.CPC)
	assert.Equal(t, float64(0), row.CPM)
	assert.Equal(t, float64(0), row.ROAS)
}

func TestAggregateClicksExceedImpressions(t *testing.T) {
	// Dirty upstream data: the pipeline must not reject it, only produce a
	// CTR above 100%.
	records := []domain.MarketingRecord{
		{Date: day(1), Platform: domain.PlatformGoogle, Impressions: 10, Clicks: 25},
	}

	rows := Aggregate(records, DefaultGroupKeys)
	require.Len(t, rows, 1)
	assert.InDelta(t, 2.5, rows[0].CTR, 1e-12)
}

func TestAggregateNoGroupingRoundTrip(t *testing.T) {
	records := []domain.MarketingRecord{
		{Date: day(1), Platform: domain.PlatformFacebook, Impressions: 100, Clicks: 10, Spend: 50, AttributedRevenue: 75},
		{Date: day(2), Platform: domain.PlatformGoogle, Impressions: 200, Clicks: 20, Spend: 30.25, AttributedRevenue: 60.50},
		{Date: day(3), Platform: domain.PlatformTikTok, Impressions: 300, Clicks: 30, Spend: 19.75, AttributedRevenue: 14.50},
	}

	rows := Aggregate(records, nil)
	require.Len(t, rows, 1)

	total := rows[0]
	assert.Equal(t, int64(600), total.Impressions)
	assert.Equal(t, int64(60), total.Clicks)
	assert.InDelta(t, 100.0, total.Spend, 1e-12)
	assert.InDelta(t, 150.0, total.AttributedRevenue, 1e-12)
}

func TestAggregateDrillDownKeys(t *testing.T) {
	records := []domain.MarketingRecord{
		{Date: day(1), Platform: domain.PlatformFacebook, Tactic: "ASC", State: "NY", Impressions: 100},
		{Date: day(1), Platform: domain.PlatformFacebook, Tactic: "Retargeting", State: "NY", Impressions: 50},
		{Date: day(1), Platform: domain.PlatformFacebook, Tactic: "ASC", State: "CA", Impressions: 25},
	}

	byTactic := Aggregate(records, []GroupKey{GroupDate, GroupPlatform, GroupTactic})
	require.Len(t, byTactic, 2)
	assert.Equal(t, "ASC", byTactic[0].Tactic)
	assert.Equal(t, int64(125), byTactic[0].Impressions)
	// Ungrouped dimensions stay empty on merged rows.
	assert.Empty(t, byTactic[0].State)

	byState := Aggregate(records, []GroupKey{GroupDate, GroupState})
	require.Len(t, byState, 2)
	assert.Equal(t, "CA", byState[0].State)
	assert.Equal(t, "NY", byState[1].State)
}

func TestAggregateDeterministicOrder(t *testing.T) {
	records := []domain.MarketingRecord{
		{Date: day(2), Platform: domain.PlatformTikTok},
		{Date: day(1), Platform: domain.PlatformGoogle},
		{Date: day(2), Platform: domain.PlatformFacebook},
		{Date: day(1), Platform: domain.PlatformFacebook},
	}

	rows := Aggregate(records, DefaultGroupKeys)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.PlatformFacebook, rows[0].Platform)
	assert.True(t, rows[0].Date.Equal(day(1)))
	assert.Equal(t, domain.PlatformGoogle, rows[1].Platform)
	assert.Equal(t, domain.PlatformFacebook, rows[2].Platform)
	assert.True(t, rows[3].Date.Equal(day(2)))
	assert.Equal(t, domain.PlatformTikTok, rows[3].Platform)
}

func TestParseGroupKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []GroupKey
		ok    bool
	}{
		{name: "empty", input: "", want: nil, ok: true},
		{name: "default pair", input: "date,platform", want: []GroupKey{GroupDate, GroupPlatform}, ok: true},
		{name: "drill down", input: "date, platform, tactic", want: []GroupKey{GroupDate, GroupPlatform, GroupTactic}, ok: true},
		{name: "unknown", input: "date,color", want: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGroupKeys(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFilterRecords(t *testing.T) {
	records := []domain.MarketingRecord{
		{Date: day(1), Platform: domain.PlatformFacebook},
		{Date: day(2), Platform: domain.PlatformGoogle},
		{Date: day(3), Platform: domain.PlatformFacebook},
	}

	// Inclusive date bounds.
	got := FilterRecords(records, day(2), day(3), nil)
	assert.Len(t, got, 2)

	// Platform restriction.
	got = FilterRecords(records, time.Time{}, time.Time{}, []domain.Platform{domain.PlatformFacebook})
	assert.Len(t, got, 2)

	// Open bounds keep everything.
	got = FilterRecords(records, time.Time{}, time.Time{}, nil)
	assert.Len(t, got, 3)
}
