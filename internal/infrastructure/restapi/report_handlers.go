package restapi

import (
	"net/http"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIReportResponse is the envelope for the report endpoint.
type APIReportResponse struct {
	Data struct {
		Report *entity.PortfolioReport `json:"report"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// ChartSlice is one wedge of the allocation chart: an asset and its share of
// the portfolio in local currency. Aggregate rows are excluded.
type ChartSlice struct {
	Label      string  `json:"label"`
	LocalValue float64 `json:"local_value"`
}

// APIChartResponse is the envelope for the chart endpoint.
type APIChartResponse struct {
	Data struct {
		Slices        []ChartSlice `json:"slices"`
		LocalCurrency string       `json:"local_currency"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// ReportHandler serves portfolio valuation over HTTP.
type ReportHandler struct {
	portfolioService port.PortfolioService
	logger           *zap.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(ps port.PortfolioService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		portfolioService: ps,
		logger:           logger.Named("report_handler"),
	}
}

// GetReportHandler runs a full valuation pass and returns the report.
func (h *ReportHandler) GetReportHandler(c *gin.Context) {
	report, err := h.portfolioService.BuildReport(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build portfolio report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status_message": "Failed to build portfolio report."})
		return
	}

	var response APIReportResponse
	response.Data.Report = report
	response.StatusMessage = "Report built successfully."
	c.JSON(http.StatusOK, response)
}

// GetChartHandler returns per-asset allocation slices for the dashboard pie
// chart. Only priced asset rows contribute; investment, total and profit are
// derived values and never appear as slices.
func (h *ReportHandler) GetChartHandler(c *gin.Context) {
	report, err := h.portfolioService.BuildReport(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build portfolio report for chart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status_message": "Failed to build portfolio report."})
		return
	}

	var response APIChartResponse
	response.Data.LocalCurrency = report.LocalCurrency
	for _, row := range append(report.CryptoRows, report.StockRows...) {
		if row.LocalValue <= 0 {
			continue
		}
		response.Data.Slices = append(response.Data.Slices, ChartSlice{
			Label:      row.Symbol,
			LocalValue: row.LocalValue,
		})
	}
	response.StatusMessage = "Chart data built successfully."
	c.JSON(http.StatusOK, response)
}
