package services

import (
	"context"
	"log/slog"
	"time"

	"mktintel/internal/cache"
	"mktintel/internal/config"
	"mktintel/internal/dataprocessing"
	"mktintel/internal/metrics"
	"mktintel/pkg/contracts/domain"
)

// Query narrows a dashboard request: inclusive date bounds, an optional
// platform restriction and an optional drill-down grouping.
type Query struct {
	From      time.Time
	To        time.Time
	Platforms []domain.Platform
	GroupBy   []dataprocessing.GroupKey
}

func (q Query) restricted() bool { return len(q.Platforms) > 0 }

// CombinedResult is a filtered combined table plus its data-quality note.
type CombinedResult struct {
	Rows    []domain.CombinedRow `json:"rows"`
	Quality domain.DataQuality   `json:"quality"`
}

// DashboardService runs the pipeline behind the result cache and serves the
// filtered views the dashboard binds to.
type DashboardService struct {
	cfg        *config.Config
	pipeline   *dataprocessing.Pipeline
	summarizer *dataprocessing.Summarizer
	store      *cache.Store[*dataprocessing.Result]
	logger     *slog.Logger
}

// NewDashboardService creates the service with its own pipeline and cache.
func NewDashboardService(cfg *config.Config, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	parserCfg := dataprocessing.ParserConfig{CoerceMissingNumeric: cfg.Dataset.CoerceMissingNumeric}
	return &DashboardService{
		cfg:        cfg,
		pipeline:   dataprocessing.NewPipeline(logger, parserCfg),
		summarizer: dataprocessing.NewSummarizer(logger),
		store:      cache.NewStore[*dataprocessing.Result](logger),
		logger:     logger.With(slog.String("component", "dashboard_service")),
	}
}

// OnRefresh registers a callback fired when replaced source files invalidate
// the cached result.
func (s *DashboardService) OnRefresh(fn func()) {
	s.store.OnInvalidate(fn)
}

// result returns the pipeline output for the current source files,
// recomputing only when their fingerprint changed.
func (s *DashboardService) result(ctx context.Context) (*dataprocessing.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fp := cache.FingerprintSources(s.cfg.SourcePaths()...)
	res, hit, err := s.store.GetOrCompute(fp, func() (*dataprocessing.Result, error) {
		start := time.Now()
		res, err := s.pipeline.Run(dataprocessing.Sources{
			BusinessFile:   s.cfg.BusinessPath(),
			MarketingFiles: s.cfg.MarketingPaths(),
		})
		if err != nil {
			metrics.PipelineRuns.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.PipelineRuns.WithLabelValues("ok").Inc()
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
		metrics.RowsRejected.Add(float64(res.Quality.RowsRejected))
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return res, nil
}

// Combined returns the combined per-date table for the query, ordered by
// date ascending. A platform restriction re-aggregates the raw records
// before the join; summed ratios cannot be carved out of the combined rows.
func (s *DashboardService) Combined(ctx context.Context, q Query) (*CombinedResult, error) {
	res, err := s.result(ctx)
	if err != nil {
		return nil, err
	}

	rows := res.Combined
	if q.restricted() {
		records := dataprocessing.FilterRecords(res.Marketing, time.Time{}, time.Time{}, q.Platforms)
		aggs := dataprocessing.Aggregate(records, dataprocessing.DefaultGroupKeys)
		rows, _ = dataprocessing.Combine(res.Business, aggs)
	}
	rows = dataprocessing.FilterCombined(rows, q.From, q.To)

	return &CombinedResult{Rows: rows, Quality: res.Quality}, nil
}

// Marketing returns marketing aggregates for the query. GroupBy defaults to
// date+platform; drill-down keys (tactic, state, campaign) are appended by
// the caller.
func (s *DashboardService) Marketing(ctx context.Context, q Query) ([]domain.AggregatedMarketingRow, error) {
	res, err := s.result(ctx)
	if err != nil {
		return nil, err
	}

	keys := q.GroupBy
	if len(keys) == 0 {
		keys = dataprocessing.DefaultGroupKeys
	}
	records := dataprocessing.FilterRecords(res.Marketing, q.From, q.To, q.Platforms)
	return dataprocessing.Aggregate(records, keys), nil
}

// Summary returns the read-only snapshot for cards and insight prompts,
// including deltas against the preceding period of equal length when the
// query carries explicit date bounds.
func (s *DashboardService) Summary(ctx context.Context, q Query) (domain.SummaryStats, error) {
	res, err := s.result(ctx)
	if err != nil {
		return domain.SummaryStats{}, err
	}

	combined, err := s.Combined(ctx, q)
	if err != nil {
		return domain.SummaryStats{}, err
	}

	records := dataprocessing.FilterRecords(res.Marketing, q.From, q.To, q.Platforms)
	aggs := dataprocessing.Aggregate(records, dataprocessing.DefaultGroupKeys)

	var previous []domain.CombinedRow
	if !q.From.IsZero() && !q.To.IsZero() {
		prevFrom, prevTo := dataprocessing.PreviousPeriod(q.From, q.To)
		prevQ := Query{From: prevFrom, To: prevTo, Platforms: q.Platforms}
		if prev, err := s.Combined(ctx, prevQ); err == nil {
			previous = prev.Rows
		}
	}

	return s.summarizer.Summarize(combined.Rows, aggs, previous), nil
}

// Invalidate drops the cached result, forcing a recomputation on next use.
func (s *DashboardService) Invalidate() {
	s.store.Invalidate()
	s.logger.Info("result cache invalidated on request")
}
