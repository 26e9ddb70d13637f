package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apierrors "mktintel/internal/errors"
	"mktintel/internal/insights"
	"mktintel/internal/metrics"
	"mktintel/pkg/contracts/domain"
)

// InsightService generates narrated insights from dashboard snapshots. The
// rule-based engine always answers; the LLM provider is consulted for
// free-form questions only when configured, and its failures degrade to the
// rule-based fallback rather than erroring the dashboard.
type InsightService struct {
	engine    *insights.Engine
	provider  insights.Provider
	dashboard *DashboardService
	logger    *slog.Logger
}

// ChatAnswer is the response to a free-form question.
type ChatAnswer struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
}

// NewInsightService wires the engine and optional provider.
func NewInsightService(engine *insights.Engine, provider insights.Provider, dashboard *DashboardService, logger *slog.Logger) *InsightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightService{
		engine:    engine,
		provider:  provider,
		dashboard: dashboard,
		logger:    logger.With(slog.String("component", "insight_service")),
	}
}

// Bundle returns the rule-based insight bundle for the query window.
func (s *InsightService) Bundle(ctx context.Context, q Query) (insights.Bundle, error) {
	stats, err := s.dashboard.Summary(ctx, q)
	if err != nil {
		return insights.Bundle{}, err
	}
	metrics.InsightRequests.WithLabelValues("rules", "ok").Inc()
	return s.engine.Generate(stats), nil
}

// Chat answers a free-form question about the query window. Without a
// configured provider it falls back to a template answer derived from the
// rule-based bundle; provider timeouts surface as APIErrors so the handler
// can return 504 instead of hanging the dashboard.
func (s *InsightService) Chat(ctx context.Context, question string, q Query) (*ChatAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apierrors.ErrValidation("question", "question must not be empty")
	}

	stats, err := s.dashboard.Summary(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.provider == nil || !s.provider.Enabled() {
		metrics.InsightRequests.WithLabelValues("fallback", "ok").Inc()
		return &ChatAnswer{Answer: s.fallbackAnswer(stats), Provider: "rules"}, nil
	}

	answer, err := s.provider.Ask(ctx, question, stats)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.InsightRequests.WithLabelValues("llm", "timeout").Inc()
			return nil, apierrors.ErrInsightTimeout
		}
		metrics.InsightRequests.WithLabelValues("llm", "error").Inc()
		s.logger.Warn("llm provider failed, serving rule-based fallback",
			slog.String("error", err.Error()))
		return &ChatAnswer{Answer: s.fallbackAnswer(stats), Provider: "rules"}, nil
	}

	metrics.InsightRequests.WithLabelValues("llm", "ok").Inc()
	return &ChatAnswer{Answer: answer, Provider: "llm"}, nil
}

// fallbackAnswer composes a deterministic answer from the rule-based bundle.
func (s *InsightService) fallbackAnswer(stats domain.SummaryStats) string {
	bundle := s.engine.Generate(stats)
	var sb strings.Builder
	sb.WriteString(bundle.ExecutiveSummary)
	sb.WriteString("\n\n")
	sb.WriteString(bundle.Performance)
	if len(bundle.Recommendations) > 0 {
		sb.WriteString("\n\nRecommendations:")
		for _, rec := range bundle.Recommendations {
			sb.WriteString("\n- ")
			sb.WriteString(rec)
		}
	}
	return sb.String()
}
