package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/listing"
	"github.com/mamadbah2/franchise/internal/service/payoutrun"
	"github.com/mamadbah2/franchise/internal/service/whatsapp"
	"github.com/mamadbah2/franchise/internal/validation"
	"github.com/mamadbah2/franchise/pkg/clients/backend"
	whatsappclient "github.com/mamadbah2/franchise/pkg/clients/whatsapp"
)

// statusFor maps service errors to HTTP statuses and client messages.
func statusFor(err error) (int, string) {
	var (
		backendErr *backend.APIError
		metaErr    *whatsappclient.APIError
	)
	switch {
	case errors.Is(err, validation.ErrValidation), errors.Is(err, format.ErrInvalidMonth):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrNotFound), errors.Is(err, payoutrun.ErrSessionNotFound), errors.Is(err, payoutrun.ErrUnknownRow):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, payoutrun.ErrInvalidTransition), errors.Is(err, payoutrun.ErrRowConfirmed),
		errors.Is(err, payoutrun.ErrBusy), errors.Is(err, payoutrun.ErrEmptySelection):
		return http.StatusConflict, err.Error()
	case errors.Is(err, whatsapp.ErrUnsupportedRecipient), errors.Is(err, whatsapp.ErrMissingPhone):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &backendErr):
		if backendErr.StatusCode >= 400 && backendErr.StatusCode < 500 {
			return backendErr.StatusCode, backendErr.Error()
		}
		return http.StatusBadGateway, backendErr.Error()
	case errors.As(err, &metaErr):
		return http.StatusBadGateway, metaErr.Message
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := statusFor(err)
	body := gin.H{"error": msg}

	var verr *validation.Error
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// monthParam reads ?month=YYYY-MM, defaulting to the month of now.
func monthParam(c *gin.Context, now func() time.Time) (format.Month, error) {
	raw := c.Query("month")
	if raw == "" {
		return format.MonthOf(now()), nil
	}
	return format.ParseMonth(raw)
}

// windowParam reads ?page, ?page_size and the ?view token of the previous page.
func windowParam(c *gin.Context, defaultSize int) listing.Window {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	if size == 0 {
		size = defaultSize
	}
	return listing.Window{
		Prior:    listing.Fingerprint(c.Query("view")),
		Page:     page,
		PageSize: size,
	}
}
