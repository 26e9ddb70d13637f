package http

import (
	"context"

	"mktintel/internal/insights"
	"mktintel/internal/services"
	"mktintel/pkg/contracts/domain"
)

// DashboardServiceInterface is the transport-side contract for dashboard
// data, kept narrow so handler tests can stub it.
type DashboardServiceInterface interface {
	Combined(ctx context.Context, q services.Query) (*services.CombinedResult, error)
	Marketing(ctx context.Context, q services.Query) ([]domain.AggregatedMarketingRow, error)
	Summary(ctx context.Context, q services.Query) (domain.SummaryStats, error)
	Invalidate()
}

// InsightServiceInterface is the transport-side contract for insights.
type InsightServiceInterface interface {
	Bundle(ctx context.Context, q services.Query) (insights.Bundle, error)
	Chat(ctx context.Context, question string, q services.Query) (*services.ChatAnswer, error)
}
