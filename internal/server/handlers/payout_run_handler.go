package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/service/payoutrun"
	"github.com/mamadbah2/franchise/internal/tenant"
)

// PayoutRunService drives the payout wizard.
type PayoutRunService interface {
	Start(ctx context.Context) *payoutrun.Session
	Get(ctx context.Context, id string) (*payoutrun.Session, error)
	Discard(ctx context.Context, id string)
	Preview(ctx context.Context, id string, cfg payoutrun.RunConfig) (*payoutrun.Session, error)
	Toggle(ctx context.Context, id, key string) (*payoutrun.Session, error)
	SelectAll(ctx context.Context, id string, on bool) (*payoutrun.Session, error)
	Back(ctx context.Context, id string) (*payoutrun.Session, error)
	Confirm(ctx context.Context, id string) (*payoutrun.Session, payoutrun.ConfirmReport, error)
}

// RunHistory lists journaled payout runs.
type RunHistory interface {
	ListRuns(ctx context.Context, tenant, month string, limit int64) ([]models.PayoutRun, error)
}

// PayoutRunHandler exposes the payout wizard as a small state machine resource.
type PayoutRunHandler struct {
	svc     PayoutRunService
	history RunHistory
	logger  *zap.Logger
}

// NewPayoutRunHandler constructs the wizard HTTP adapter.
func NewPayoutRunHandler(svc PayoutRunService, history RunHistory, logger *zap.Logger) *PayoutRunHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayoutRunHandler{svc: svc, history: history, logger: logger}
}

// Register mounts the wizard routes under g.
func (h *PayoutRunHandler) Register(g *gin.RouterGroup) {
	g.POST("", h.Start)
	g.GET("/history", h.History)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Discard)
	g.POST("/:id/preview", h.Preview)
	g.POST("/:id/toggle", h.Toggle)
	g.POST("/:id/select-all", h.SelectAll)
	g.POST("/:id/back", h.Back)
	g.POST("/:id/confirm", h.Confirm)
}

// Start opens a wizard in the config step.
func (h *PayoutRunHandler) Start(c *gin.Context) {
	c.JSON(http.StatusCreated, h.svc.Start(c.Request.Context()))
}

// Get returns the current state of a wizard.
func (h *PayoutRunHandler) Get(c *gin.Context) {
	h.session(c)(h.svc.Get(c.Request.Context(), c.Param("id")))
}

// Discard drops a wizard.
func (h *PayoutRunHandler) Discard(c *gin.Context) {
	h.svc.Discard(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Preview computes the payout preview for the submitted config.
func (h *PayoutRunHandler) Preview(c *gin.Context) {
	var cfg payoutrun.RunConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	h.session(c)(h.svc.Preview(c.Request.Context(), c.Param("id"), cfg))
}

type toggleRequest struct {
	Key string `json:"key" binding:"required"`
}

// Toggle flips the selection of one preview row.
func (h *PayoutRunHandler) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	h.session(c)(h.svc.Toggle(c.Request.Context(), c.Param("id"), req.Key))
}

type selectAllRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

// SelectAll selects or clears every row not yet confirmed.
func (h *PayoutRunHandler) SelectAll(c *gin.Context) {
	var req selectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	h.session(c)(h.svc.SelectAll(c.Request.Context(), c.Param("id"), *req.Selected))
}

// Back returns the wizard to the config step.
func (h *PayoutRunHandler) Back(c *gin.Context) {
	h.session(c)(h.svc.Back(c.Request.Context(), c.Param("id")))
}

// Confirm creates the selected payouts. Once the loop has run, every answer
// carries its report so the operator sees what was created, even when the
// session expired meanwhile.
func (h *PayoutRunHandler) Confirm(c *gin.Context) {
	sess, report, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil && report.RunID == "" {
		respondError(c, h.logger, err)
		return
	}
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
			msg = err.Error()
		}
		h.logger.Error("payout run stopped", zap.String("session", c.Param("id")), zap.Error(err))
		c.JSON(status, gin.H{"error": msg, "session": sess, "report": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "report": report})
}

// History lists the journaled runs of the tenant, optionally of ?month.
func (h *PayoutRunHandler) History(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	ctx := c.Request.Context()
	runs, err := h.history.ListRuns(ctx, tenant.FromContext(ctx), c.Query("month"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if runs == nil {
		runs = []models.PayoutRun{}
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

func (h *PayoutRunHandler) session(c *gin.Context) func(*payoutrun.Session, error) {
	return func(sess *payoutrun.Session, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, sess)
	}
}
