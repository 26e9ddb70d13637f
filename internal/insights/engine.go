// Package insights narrates dashboard data: a deterministic rule-based
// engine always works, and an optional LLM provider answers free-form
// questions when an API key is configured. Insight generation only reads
// already-computed summary snapshots; it never touches the pipeline.
package insights

import (
	"fmt"
	"log/slog"

	"mktintel/pkg/contracts/domain"
)

// ROAS and attribution-gap thresholds behind the rule-based narration.
const (
	roasExcellent = 3.5
	roasGood      = 2.5
	roasScaleUp   = 3.0
	roasOptimize  = 2.0

	gapCritical = 0.5
	gapModerate = 0.3
	gapTracking = 0.4
	gapHealthy  = 0.2
)

// Bundle is the full set of rule-based insights for the dashboard tabs.
type Bundle struct {
	Performance      string   `json:"performance"`
	Recommendations  []string `json:"recommendations"`
	Trends           string   `json:"trends"`
	Attribution      string   `json:"attribution"`
	ExecutiveSummary string   `json:"executive_summary"`
}

// Engine produces deterministic insights from a summary snapshot.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a rule-based insight engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "insight_engine"))}
}

// Generate builds the complete insight bundle from the snapshot.
func (e *Engine) Generate(stats domain.SummaryStats) Bundle {
	return Bundle{
		Performance:      e.performance(stats),
		Recommendations:  e.recommendations(stats),
		Trends:           e.trends(stats),
		Attribution:      e.attribution(stats),
		ExecutiveSummary: e.executiveSummary(stats),
	}
}

func (e *Engine) performance(stats domain.SummaryStats) string {
	var out string
	switch {
	case stats.OverallROAS > roasExcellent:
		out = fmt.Sprintf("Excellent marketing ROI: overall ROAS of %.2fx indicates highly efficient spend and strong profitability. ", stats.OverallROAS)
	case stats.OverallROAS > roasGood:
		out = fmt.Sprintf("Good marketing performance: ROAS of %.2fx is solid, with clear room to optimize individual channels. ", stats.OverallROAS)
	default:
		out = fmt.Sprintf("ROAS requires attention: at %.2fx, overall ROAS is below the %.1fx threshold; review spend allocation. ", stats.OverallROAS, roasGood)
	}

	gap := stats.AttributionGapPct
	switch {
	case gap > gapCritical:
		out += fmt.Sprintf("Critical attribution gap: %.1f%% of revenue is not tracked back to marketing; fixing tracking should be the top priority.", gap*100)
	case gap > gapModerate:
		out += fmt.Sprintf("Moderate attribution gap: %.1f%% of revenue is unattributed; better tracking would sharpen the channel picture.", gap*100)
	default:
		out += fmt.Sprintf("Healthy attribution: a gap of %.1f%% shows effective tracking.", gap*100)
	}
	return out
}

func (e *Engine) recommendations(stats domain.SummaryStats) []string {
	if len(stats.Platforms) == 0 {
		return []string{"No platform data to generate recommendations."}
	}

	var recs []string
	if best := findPlatform(stats.Platforms, stats.BestPlatform); best != nil && best.ROAS > roasScaleUp {
		recs = append(recs, fmt.Sprintf(
			"Capitalize on %s: with a ROAS of %.2fx, consider scaling budget here and building lookalike audiences from its top campaigns.",
			best.Platform, best.ROAS))
	}
	if worst := findPlatform(stats.Platforms, stats.WorstPlatform); worst != nil &&
		worst.ROAS < roasOptimize && len(stats.Platforms) > 1 && stats.WorstPlatform != stats.BestPlatform {
		recs = append(recs, fmt.Sprintf(
			"Optimize %s: ROAS is low at %.2fx; audit creatives and audience targeting, and reallocate budget if performance does not improve.",
			worst.Platform, worst.ROAS))
	}
	if stats.AttributionGapPct > gapTracking {
		recs = append(recs,
			"Enhance tracking precision: the attribution gap may be hiding channel performance; prioritize server-side tagging or a CDP.")
	} else {
		recs = append(recs,
			"Continuous A/B testing: tracking is solid, so aggressively test ad copy, visuals and landing pages for new winners.")
	}
	return recs
}

func (e *Engine) trends(stats domain.SummaryStats) string {
	contribution := float64(0)
	if stats.TotalBusinessRevenue > 0 {
		contribution = stats.TotalAttributedRevenue / stats.TotalBusinessRevenue * 100
	}
	out := fmt.Sprintf("Marketing impact: tracked campaigns account for %.1f%% of total revenue.", contribution)
	if stats.PreviousPeriod != nil {
		out += fmt.Sprintf(" Versus the previous period, spend moved %+.1f%% and revenue %+.1f%%.",
			stats.PreviousPeriod.SpendPct*100, stats.PreviousPeriod.RevenuePct*100)
	}
	return out
}

func (e *Engine) attribution(stats domain.SummaryStats) string {
	gap := stats.AttributionGapPct
	if gap < gapHealthy {
		return fmt.Sprintf("Excellent attribution: only %.1f%% unattributed revenue indicates strong tracking.", gap*100)
	}
	return fmt.Sprintf("Attribution gap: %.1f%% of revenue is unattributed, indicating a need for improved tracking.", gap*100)
}

func (e *Engine) executiveSummary(stats domain.SummaryStats) string {
	strength := "moderate"
	if stats.OverallROAS > roasScaleUp {
		strength = "strong"
	}
	return fmt.Sprintf(
		"Overall ROAS %.2fx on $%.0f spend across %d days; attribution gap %.1f%%. Marketing performance shows %s ROI with clear optimization opportunities.",
		stats.OverallROAS, stats.TotalSpend, stats.Days, stats.AttributionGapPct*100, strength)
}

func findPlatform(platforms []domain.PlatformPerformance, name domain.Platform) *domain.PlatformPerformance {
	for i := range platforms {
		if platforms[i].Platform == name {
			return &platforms[i]
		}
	}
	return nil
}
