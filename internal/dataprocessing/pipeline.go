package dataprocessing

import (
	"log/slog"
	"sort"

	"mktintel/pkg/contracts/domain"
)

// Sources names the input files of one pipeline invocation.
type Sources struct {
	BusinessFile   string
	MarketingFiles map[domain.Platform]string
}

// Result is the immutable output of one pipeline invocation. Rows are
// produced fresh from the latest source data; nothing persists across runs.
type Result struct {
	Business   []domain.BusinessRecord
	Marketing  []domain.MarketingRecord
	Aggregates []domain.AggregatedMarketingRow
	Combined   []domain.CombinedRow
	Join       JoinStats
	Quality    domain.DataQuality
}

// Pipeline runs the full clean → aggregate → combine sequence over a set of
// sources. It is synchronous and holds no mutable state between runs.
type Pipeline struct {
	parser *Parser
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the given parser config.
func NewPipeline(logger *slog.Logger, cfg ParserConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		parser: NewParser(logger, cfg),
		logger: logger.With(slog.String("component", "pipeline")),
	}
}

// Run loads every source, aggregates marketing rows by date+platform and
// joins them onto the business calendar.
//
// An absent source is fatal. A business source with zero usable rows is
// fatal as EmptyResultError, since the combined table has no date domain
// without it. Marketing sources with zero rows are recoverable: the combined
// table still covers every business date with zeroed marketing fields.
func (p *Pipeline) Run(sources Sources) (*Result, error) {
	business, err := p.parser.LoadBusinessFile(sources.BusinessFile)
	if err != nil {
		return nil, err
	}
	if len(business.Records) == 0 {
		return nil, &EmptyResultError{Source: "business"}
	}
	sort.Slice(business.Records, func(i, j int) bool {
		return business.Records[i].Date.Before(business.Records[j].Date)
	})

	res := &Result{Business: business.Records}
	res.Quality.RowsLoaded = business.Stats.Loaded
	res.Quality.RowsRejected = business.Stats.Rejected
	res.Quality.RowsCoerced = business.Stats.Coerced
	res.Quality.Warnings = append(res.Quality.Warnings, business.Stats.Warnings...)

	for _, platform := range domain.Platforms {
		path, ok := sources.MarketingFiles[platform]
		if !ok {
			continue
		}
		load, err := p.parser.LoadMarketingFile(path, platform)
		if err != nil {
			return nil, err
		}
		if len(load.Records) == 0 {
			p.logger.Warn("marketing source has no usable rows",
				slog.String("platform", string(platform)))
			res.Quality.Warnings = append(res.Quality.Warnings,
				"no usable rows in "+string(platform)+" source")
		}
		res.Marketing = append(res.Marketing, load.Records...)
		res.Quality.RowsLoaded += load.Stats.Loaded
		res.Quality.RowsRejected += load.Stats.Rejected
		res.Quality.RowsCoerced += load.Stats.Coerced
		res.Quality.Warnings = append(res.Quality.Warnings, load.Stats.Warnings...)
	}

	res.Aggregates = Aggregate(res.Marketing, DefaultGroupKeys)
	res.Combined, res.Join = Combine(res.Business, res.Aggregates)
	res.Quality.UnmatchedMarketingDates = res.Join.UnmatchedMarketingDates

	p.logger.Info("pipeline run complete",
		slog.Int("business_rows", len(res.Business)),
		slog.Int("marketing_rows", len(res.Marketing)),
		slog.Int("combined_rows", len(res.Combined)),
		slog.Int("rejected_rows", res.Quality.RowsRejected),
		slog.Int("unmatched_marketing_dates", res.Join.UnmatchedMarketingDates))
	return res, nil
}
