package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktintel/internal/dataprocessing"
	apierrors "mktintel/internal/errors"
	"mktintel/internal/services"
	"mktintel/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockDashboardService struct {
	combined    *services.CombinedResult
	marketing   []domain.AggregatedMarketingRow
	summary     domain.SummaryStats
	err         error
	lastQuery   services.Query
	invalidated bool
}

func (m *mockDashboardService) Combined(ctx context.Context, q services.Query) (*services.CombinedResult, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.combined, nil
}

func (m *mockDashboardService) Marketing(ctx context.Context, q services.Query) ([]domain.AggregatedMarketingRow, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.marketing, nil
}

func (m *mockDashboardService) Summary(ctx context.Context, q services.Query) (domain.SummaryStats, error) {
	m.lastQuery = q
	if m.err != nil {
		return domain.SummaryStats{}, m.err
	}
	return m.summary, nil
}

func (m *mockDashboardService) Invalidate() { m.invalidated = true }

func sampleResult() *services.CombinedResult {
	row := domain.CombinedRow{
		Date:              time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Orders:            100,
		TotalRevenue:      5000,
		Spend:             180,
		AttributedRevenue: 540,
	}
	row.DeriveRatios()
	return &services.CombinedResult{
		Rows:    []domain.CombinedRow{row},
		Quality: domain.DataQuality{RowsLoaded: 5},
	}
}

func newDashboardServer(svc DashboardServiceInterface) *httptest.Server {
	handler := NewDashboardHandler(svc, testLogger(), apierrors.NewErrorHandler(testLogger()))
	return httptest.NewServer(handler.Routes())
}

func TestGetCombined(t *testing.T) {
	svc := &mockDashboardService{combined: sampleResult()}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/combined")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status  string               `json:"status"`
		Data    []domain.CombinedRow `json:"data"`
		Count   int                  `json:"count"`
		Quality domain.DataQuality   `json:"quality"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 5, body.Quality.RowsLoaded)
	assert.InDelta(t, 3.0, body.Data[0].ROAS, 1e-9)
}

func TestGetCombinedQueryParsing(t *testing.T) {
	svc := &mockDashboardService{combined: sampleResult()}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/combined?from=2024-01-01&to=2024-01-31&platforms=Facebook,Google")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), svc.lastQuery.From)
	assert.Equal(t, []domain.Platform{domain.PlatformFacebook, domain.PlatformGoogle}, svc.lastQuery.Platforms)
}

func TestGetCombinedInvalidDate(t *testing.T) {
	srv := newDashboardServer(&mockDashboardService{combined: sampleResult()})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/combined?from=01-31-2024")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, float64(http.StatusBadRequest), problem["status"])
}

func TestGetCombinedUnknownPlatform(t *testing.T) {
	srv := newDashboardServer(&mockDashboardService{combined: sampleResult()})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/combined?platforms=Bing")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCombinedSourceMissing(t *testing.T) {
	svc := &mockDashboardService{err: &dataprocessing.SourceMissingError{Source: "business.csv"}}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/combined")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "/errors/data/source-missing", problem["type"])
}

func TestGetMarketingGroupBy(t *testing.T) {
	svc := &mockDashboardService{marketing: []domain.AggregatedMarketingRow{{Platform: domain.PlatformFacebook}}}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/marketing?group_by=platform,tactic")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []dataprocessing.GroupKey{dataprocessing.GroupPlatform, dataprocessing.GroupTactic}, svc.lastQuery.GroupBy)
}

func TestGetMarketingInvalidGroupBy(t *testing.T) {
	srv := newDashboardServer(&mockDashboardService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/marketing?group_by=region")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSummary(t *testing.T) {
	svc := &mockDashboardService{summary: domain.SummaryStats{OverallROAS: 3.0, Days: 3}}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/summary")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data domain.SummaryStats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.InDelta(t, 3.0, body.Data.OverallROAS, 1e-9)
}

func TestExportCombinedCSV(t *testing.T) {
	svc := &mockDashboardService{combined: sampleResult()}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/export?format=csv&view=combined")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "combined_")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-01")
}

func TestExportXLSX(t *testing.T) {
	svc := &mockDashboardService{
		combined:  sampleResult(),
		marketing: []domain.AggregatedMarketingRow{{Platform: domain.PlatformFacebook}},
	}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/export?format=xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestExportInvalidFormat(t *testing.T) {
	srv := newDashboardServer(&mockDashboardService{combined: sampleResult()})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/export?format=pdf")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefresh(t *testing.T) {
	svc := &mockDashboardService{combined: sampleResult()}
	srv := newDashboardServer(svc)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, svc.invalidated)
}
