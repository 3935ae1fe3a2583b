package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolio_tracker/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPortfolioService struct {
	report *entity.PortfolioReport
	err    error
}

func (s *stubPortfolioService) BuildReport(context.Context) (*entity.PortfolioReport, error) {
	return s.report, s.err
}

func testReport() *entity.PortfolioReport {
	return &entity.PortfolioReport{
		CryptoRows: []entity.PortfolioRow{
			{Symbol: "ETH", Amount: 2, Class: entity.AssetClassCrypto, LocalValue: 8_400_000, USDValue: 6000},
			{Symbol: "DUST", Amount: 100, Class: entity.AssetClassCrypto, LocalValue: 0},
		},
		StockRows: []entity.PortfolioRow{
			{Symbol: "AAPL", Amount: 4, Class: entity.AssetClassStock, LocalValue: 1_120_000, USDValue: 800},
		},
		TotalLocal:    9_520_000,
		LocalCurrency: "KRW",
	}
}

func setupTestRouter(svc *stubPortfolioService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(NewReportHandler(svc, zap.NewNop()))
}

func TestGetReportHandler(t *testing.T) {
	router := setupTestRouter(&stubPortfolioService{report: testReport()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp APIReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Report)
	assert.Equal(t, "KRW", resp.Data.Report.LocalCurrency)
	assert.Len(t, resp.Data.Report.CryptoRows, 2)
}

func TestGetReportHandlerServiceFailure(t *testing.T) {
	router := setupTestRouter(&stubPortfolioService{err: fmt.Errorf("rates unavailable")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetChartHandlerExcludesAggregatesAndZeroRows(t *testing.T) {
	router := setupTestRouter(&stubPortfolioService{report: testReport()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/report/chart", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp APIChartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Slices, 2)
	assert.Equal(t, "ETH", resp.Data.Slices[0].Label)
	assert.Equal(t, "AAPL", resp.Data.Slices[1].Label)
}

func TestDashboardAndHealth(t *testing.T) {
	router := setupTestRouter(&stubPortfolioService{report: testReport()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
