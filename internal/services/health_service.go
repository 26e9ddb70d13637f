package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"mktintel/internal/config"
)

// HealthStatus is the health check response body.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Uptime    string                   `json:"uptime"`
	Checks    map[string]ServiceHealth `json:"checks,omitempty"`
}

// ServiceHealth describes a single dependency check.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthService reports process liveness and readiness of the data sources.
type HealthService struct {
	version   string
	cfg       *config.Config
	startTime time.Time
	logger    *slog.Logger
}

func NewHealthService(version string, cfg *config.Config, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		cfg:       cfg,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports liveness plus readability of the configured sources.
// A missing marketing file degrades the status; a missing business file
// makes it unhealthy since the whole combined view depends on it.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	checks := map[string]ServiceHealth{
		"business_source": hs.checkSource(hs.cfg.BusinessPath()),
	}
	for platform, path := range hs.cfg.MarketingPaths() {
		checks["marketing_"+string(platform)] = hs.checkSource(path)
	}

	status := "healthy"
	if checks["business_source"].Status != "healthy" {
		status = "unhealthy"
	} else {
		for name, check := range checks {
			if name != "business_source" && check.Status != "healthy" {
				status = "degraded"
				break
			}
		}
	}

	return HealthStatus{
		Status:    status,
		Version:   hs.version,
		Timestamp: time.Now(),
		Uptime:    time.Since(hs.startTime).String(),
		Checks:    checks,
	}
}

// LivenessCheck reports only that the process is running.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Version:   hs.version,
		Timestamp: time.Now(),
		Uptime:    time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkSource(path string) ServiceHealth {
	info, err := os.Stat(path)
	if err != nil {
		return ServiceHealth{Status: "unhealthy", Message: err.Error()}
	}
	if info.Size() == 0 {
		return ServiceHealth{Status: "degraded", Message: "source file is empty"}
	}
	return ServiceHealth{Status: "healthy"}
}
