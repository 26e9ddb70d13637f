// Package dataprocessing implements the KPI aggregation pipeline: it parses
// platform and business CSV exports, aggregates marketing rows per grouping
// key, derives marketing and business ratios, and joins both sides into one
// combined table keyed by date.
//
// The package is organized into four components:
//
//  1. Parser: reads CSV exports, coerces numeric fields, tallies rejects
//  2. Aggregate: single-pass fold into per-key accumulators, sum-then-divide
//  3. Combine: left join of marketing aggregates onto the business calendar
//  4. Summarizer: totals, period deltas and platform rankings for cards
//
// Data flow:
//
//	CSV sources → Parser → records → Aggregate → rows → Combine → CombinedRow set
//
// All ratios follow one policy: a zero denominator yields 0, never NaN and
// never an error. Per-row failures are recovered by exclusion and counted in
// LoadStats; an absent or empty business source fails the whole invocation.
package dataprocessing
