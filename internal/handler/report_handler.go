package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proavijit/projectpulse-api/internal/service"
	"github.com/proavijit/projectpulse-api/pkg/response"
)

// ReportHandler exposes the portfolio export endpoint.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Portfolio godoc
// @Summary Export the portfolio health report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Router /reports/projects [get]
func (h *ReportHandler) Portfolio(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = service.ReportFormatCSV
	}

	report, err := h.reports.Portfolio(c.Request.Context(), claimsFromContext(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(200, report.ContentType, report.Data)
}
