package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckHealthy(t *testing.T) {
	svc := NewHealthService("1.0.0", testConfig(t), nil)

	status := svc.HealthCheck(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, "healthy", status.Checks["business_source"].Status)
	assert.Equal(t, "healthy", status.Checks["marketing_Facebook"].Status)
}

func TestHealthCheckDegradedOnMissingMarketing(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Dataset.Dir, "Google.csv")))

	status := NewHealthService("1.0.0", cfg, nil).HealthCheck(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unhealthy", status.Checks["marketing_Google"].Status)
}

func TestHealthCheckUnhealthyOnMissingBusiness(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Dataset.Dir, "business.csv")))

	status := NewHealthService("1.0.0", cfg, nil).HealthCheck(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
}

func TestLivenessCheck(t *testing.T) {
	status := NewHealthService("dev", testConfig(t), nil).LivenessCheck(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.NotEmpty(t, status.Uptime)
}
