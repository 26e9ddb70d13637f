package dataprocessing

import (
	"sort"
	"strings"
	"time"

	"mktintel/pkg/contracts/domain"
)

// GroupKey selects one dimension of the aggregation key tuple.
type GroupKey string

const (
	GroupDate     GroupKey = "date"
	GroupPlatform GroupKey = "platform"
	GroupTactic   GroupKey = "tactic"
	GroupState    GroupKey = "state"
	GroupCampaign GroupKey = "campaign"
)

// ParseGroupKeys converts a comma-separated query value ("date,platform")
// into a key tuple, rejecting unknown dimensions.
func ParseGroupKeys(s string) ([]GroupKey, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	var keys []GroupKey
	for _, part := range strings.Split(s, ",") {
		switch GroupKey(strings.ToLower(strings.TrimSpace(part))) {
		case GroupDate:
			keys = append(keys, GroupDate)
		case GroupPlatform:
			keys = append(keys, GroupPlatform)
		case GroupTactic:
			keys = append(keys, GroupTactic)
		case GroupState:
			keys = append(keys, GroupState)
		case GroupCampaign:
			keys = append(keys, GroupCampaign)
		default:
			return nil, false
		}
	}
	return keys, true
}

// DefaultGroupKeys is the date+platform grouping the dashboard charts use.
var DefaultGroupKeys = []GroupKey{GroupDate, GroupPlatform}

// accumulator carries the raw sums for one grouping tuple. Ratios are
// derived only after the fold completes; averaging per-row ratios would
// let a low-volume day distort the aggregate.
type accumulator struct {
	row domain.AggregatedMarketingRow
}

// Aggregate folds records into one row per distinct grouping tuple. With an
// empty key tuple every record collapses into a single grand-total row.
// Output order is deterministic: date, then platform, then the remaining
// dimensions lexicographically.
func Aggregate(records []domain.MarketingRecord, keys []GroupKey) []domain.AggregatedMarketingRow {
	groups := make(map[string]*accumulator)
	order := make([]string, 0)

	for _, rec := range records {
		k := groupKeyOf(rec, keys)
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{row: seedRow(rec, keys)}
			groups[k] = acc
			order = append(order, k)
		}
		acc.row.Impressions += rec.Impressions
		acc.row.Clicks += rec.Clicks
		acc.row.Spend += rec.Spend
		acc.row.AttributedRevenue += rec.AttributedRevenue
	}

	rows := make([]domain.AggregatedMarketingRow, 0, len(groups))
	for _, k := range order {
		row := groups[k].row
		row.DeriveRatios()
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		}
		if a.Tactic != b.Tactic {
			return a.Tactic < b.Tactic
		}
		if a.State != b.State {
			return a.State < b.State
		}
		return a.Campaign < b.Campaign
	})
	return rows
}

// seedRow carries only the grouped dimensions into the output row; ungrouped
// dimensions stay zero so rows from different tactics merge cleanly.
func seedRow(rec domain.MarketingRecord, keys []GroupKey) domain.AggregatedMarketingRow {
	row := domain.AggregatedMarketingRow{}
	for _, key := range keys {
		switch key {
		case GroupDate:
			row.Date = rec.Date
		case GroupPlatform:
			row.Platform = rec.Platform
		case GroupTactic:
			row.Tactic = rec.Tactic
		case GroupState:
			row.State = rec.State
		case GroupCampaign:
			row.Campaign = rec.Campaign
		}
	}
	return row
}

func groupKeyOf(rec domain.MarketingRecord, keys []GroupKey) string {
	if len(keys) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		switch key {
		case GroupDate:
			parts = append(parts, dateKey(rec.Date))
		case GroupPlatform:
			parts = append(parts, string(rec.Platform))
		case GroupTactic:
			parts = append(parts, rec.Tactic)
		case GroupState:
			parts = append(parts, rec.State)
		case GroupCampaign:
			parts = append(parts, rec.Campaign)
		}
	}
	return strings.Join(parts, "\x1f")
}

// FilterRecords returns the records inside the inclusive date bounds and,
// when platforms is non-empty, belonging to one of the given platforms.
// Platform drill-downs must filter records before aggregation: summed
// ratios are not separable afterwards.
func FilterRecords(records []domain.MarketingRecord, from, to time.Time, platforms []domain.Platform) []domain.MarketingRecord {
	allowed := platformSet(platforms)
	out := make([]domain.MarketingRecord, 0, len(records))
	for _, rec := range records {
		if !inRange(rec.Date, from, to) {
			continue
		}
		if allowed != nil && !allowed[rec.Platform] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func platformSet(platforms []domain.Platform) map[domain.Platform]bool {
	if len(platforms) == 0 {
		return nil
	}
	set := make(map[domain.Platform]bool, len(platforms))
	for _, p := range platforms {
		set[p] = true
	}
	return set
}

// inRange checks inclusive date bounds; a zero bound is open.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
