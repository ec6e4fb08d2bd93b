package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/service/whatsapp"
)

// MessagingHandler renders and sends WhatsApp messages and manages templates.
type MessagingHandler struct {
	svc    whatsapp.MessagingService
	logger *zap.Logger
}

// NewMessagingHandler constructs the messaging HTTP adapter.
func NewMessagingHandler(svc whatsapp.MessagingService, logger *zap.Logger) *MessagingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagingHandler{svc: svc, logger: logger}
}

// Register mounts the messaging routes under g.
func (h *MessagingHandler) Register(g *gin.RouterGroup) {
	g.POST("/invoices/:id", h.InvoiceMessage)
	g.POST("/payouts/:id", h.PayoutMessage)
	g.POST("/send-message", h.SendMessage)
}

// RegisterSettings mounts the template and PIX settings under g.
func (h *MessagingHandler) RegisterSettings(g *gin.RouterGroup) {
	g.GET("/templates", h.ListTemplates)
	g.POST("/templates", h.SaveTemplate)
	g.DELETE("/templates/:id", h.DeleteTemplate)
	g.GET("/pix", h.PixConfig)
	g.PUT("/pix", h.SavePixConfig)
}

// InvoiceMessage renders the billing message of an invoice.
func (h *MessagingHandler) InvoiceMessage(c *gin.Context) {
	d, err := h.svc.InvoiceMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// PayoutMessage renders the payout notice of a professional.
func (h *MessagingHandler) PayoutMessage(c *gin.Context) {
	d, err := h.svc.PayoutMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SendMessage sends a free-form message.
func (h *MessagingHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	d, err := h.svc.SendOutbound(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if d.Sent {
		c.JSON(http.StatusAccepted, d)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ListTemplates returns the saved message templates.
func (h *MessagingHandler) ListTemplates(c *gin.Context) {
	items, err := h.svc.ListTemplates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SaveTemplate creates or replaces a template.
func (h *MessagingHandler) SaveTemplate(c *gin.Context) {
	var in whatsapp.TemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	tpl, err := h.svc.SaveTemplate(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// DeleteTemplate removes a template.
func (h *MessagingHandler) DeleteTemplate(c *gin.Context) {
	if err := h.svc.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PixConfig returns the banking data quoted in messages.
func (h *MessagingHandler) PixConfig(c *gin.Context) {
	cfg, err := h.svc.PixConfig(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SavePixConfig replaces the banking data.
func (h *MessagingHandler) SavePixConfig(c *gin.Context) {
	var cfg models.PixConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if err := h.svc.SavePixConfig(c.Request.Context(), cfg); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
