package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/reporting"
)

// ReportService computes the dashboard and monthly figures.
type ReportService interface {
	Dashboard(ctx context.Context) (models.DashboardMetrics, error)
	MonthlySummary(ctx context.Context, month format.Month) (models.MonthlySummary, error)
	Trend(ctx context.Context, month format.Month, n int) ([]models.RevenueHistory, error)
}

// ReportHandler serves the dashboard and reports.
type ReportHandler struct {
	svc    ReportService
	now    func() time.Time
	logger *zap.Logger
}

// NewReportHandler constructs the reporting HTTP adapter.
func NewReportHandler(svc ReportService, now func() time.Time, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{svc: svc, now: now, logger: logger}
}

// Register mounts the report routes under g.
func (h *ReportHandler) Register(g *gin.RouterGroup) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/summary", h.Summary)
	g.GET("/trend", h.Trend)
}

// Dashboard returns the headline metrics.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	m, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Summary returns the month's result; ?format=text renders the message form.
func (h *ReportHandler) Summary(c *gin.Context) {
	month, err := monthParam(c, h.now)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sum, err := h.svc.MonthlySummary(c.Request.Context(), month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, reporting.SummaryText(sum))
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Trend returns the revenue of the ?months months ending at ?month.
func (h *ReportHandler) Trend(c *gin.Context) {
	month, err := monthParam(c, h.now)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	n, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	items, err := h.svc.Trend(c.Request.Context(), month, n)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
