package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/export"
	"github.com/mamadbah2/franchise/internal/service/finance"
)

// FinanceService is the financial surface exposed over HTTP.
type FinanceService interface {
	ListInvoices(ctx context.Context, q finance.InvoiceQuery) (finance.InvoiceList, error)
	InvoiceRows(ctx context.Context, q finance.InvoiceQuery) ([]models.Invoice, error)
	GenerateInvoices(ctx context.Context, month format.Month, dueDay int) (int, error)
	CreateInvoice(ctx context.Context, in finance.InvoiceInput) (models.Invoice, error)
	MarkInvoicePaid(ctx context.Context, id string, in finance.MarkInvoicePaidInput) error
	MarkInvoiceCanceled(ctx context.Context, id string) error

	ListExpenses(ctx context.Context, q finance.ExpenseQuery) (finance.ExpenseList, error)
	ExpenseRows(ctx context.Context, q finance.ExpenseQuery) ([]models.Expense, error)
	CreateExpense(ctx context.Context, in finance.ExpenseInput) (models.Expense, error)
	MarkExpensePaid(ctx context.Context, id string) error

	ListMovements(ctx context.Context, q finance.MovementQuery) (finance.MovementList, error)
	CreateMovement(ctx context.Context, in finance.MovementInput) (models.Movement, error)

	ListPayouts(ctx context.Context, q finance.PayoutQuery) (finance.PayoutList, error)
	PayoutRows(ctx context.Context, q finance.PayoutQuery) ([]models.Payout, error)
	PayoutDetails(ctx context.Context, id string) (models.PayoutDetails, error)
	MarkPayoutPaid(ctx context.Context, id string, in finance.MarkPayoutPaidInput) error
}

// FinanceHandler serves invoices, expenses, movements and payouts.
type FinanceHandler struct {
	svc      FinanceService
	pageSize int
	dueDay   int
	now      func() time.Time
	logger   *zap.Logger
}

// NewFinanceHandler constructs the finance HTTP adapter. dueDay is used when
// a generation request does not name one.
func NewFinanceHandler(svc FinanceService, pageSize, dueDay int, now func() time.Time, logger *zap.Logger) *FinanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &FinanceHandler{svc: svc, pageSize: pageSize, dueDay: dueDay, now: now, logger: logger}
}

// Register mounts the finance routes under g.
func (h *FinanceHandler) Register(g *gin.RouterGroup) {
	inv := g.Group("/invoices")
	inv.GET("", h.ListInvoices)
	inv.GET("/export", h.ExportInvoices)
	inv.POST("", h.CreateInvoice)
	inv.POST("/generate", h.GenerateInvoices)
	inv.POST("/:id/paid", h.MarkInvoicePaid)
	inv.POST("/:id/cancel", h.MarkInvoiceCanceled)

	exp := g.Group("/expenses")
	exp.GET("", h.ListExpenses)
	exp.GET("/export", h.ExportExpenses)
	exp.POST("", h.CreateExpense)
	exp.POST("/:id/paid", h.MarkExpensePaid)

	mov := g.Group("/movements")
	mov.GET("", h.ListMovements)
	mov.POST("", h.CreateMovement)

	pay := g.Group("/payouts")
	pay.GET("", h.ListPayouts)
	pay.GET("/export", h.ExportPayouts)
	pay.GET("/:id", h.PayoutDetails)
	pay.POST("/:id/paid", h.MarkPayoutPaid)
}

func (h *FinanceHandler) invoiceQuery(c *gin.Context) (finance.InvoiceQuery, error) {
	month, err := monthParam(c, h.now)
	if err != nil {
		return finance.InvoiceQuery{}, err
	}
	return finance.InvoiceQuery{
		Month:  month,
		Status: models.InvoiceStatus(c.Query("status")),
		UnitID: c.Query("unit_id"),
		Search: c.Query("q"),
		Window: windowParam(c, h.pageSize),
	}, nil
}

// ListInvoices returns a page of the month's invoices with totals.
func (h *FinanceHandler) ListInvoices(c *gin.Context) {
	q, err := h.invoiceQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	list, err := h.svc.ListInvoices(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ExportInvoices downloads the filtered invoices as a spreadsheet.
func (h *FinanceHandler) ExportInvoices(c *gin.Context) {
	q, err := h.invoiceQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows, err := h.svc.InvoiceRows(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.spreadsheet(c, "mensalidades", q.Month, func(w io.Writer) error { return export.InvoicesXLSX(w, rows) })
}

type generateRequest struct {
	Month  string `json:"month"`
	DueDay int    `json:"due_day"`
}

// GenerateInvoices creates the month's invoices for every active student.
func (h *FinanceHandler) GenerateInvoices(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, h.logger, err)
		return
	}
	month := format.MonthOf(h.now())
	if req.Month != "" {
		m, err := format.ParseMonth(req.Month)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		month = m
	}
	dueDay := req.DueDay
	if dueDay == 0 {
		dueDay = h.dueDay
	}

	count, err := h.svc.GenerateInvoices(c.Request.Context(), month, dueDay)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month.String(), "generated": count})
}

// CreateInvoice registers a manual invoice.
func (h *FinanceHandler) CreateInvoice(c *gin.Context) {
	var in finance.InvoiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	inv, err := h.svc.CreateInvoice(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// MarkInvoicePaid records the payment of an invoice.
func (h *FinanceHandler) MarkInvoicePaid(c *gin.Context) {
	var in finance.MarkInvoicePaidInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, h.logger, err)
		return
	}
	if err := h.svc.MarkInvoicePaid(c.Request.Context(), c.Param("id"), in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkInvoiceCanceled cancels an invoice.
func (h *FinanceHandler) MarkInvoiceCanceled(c *gin.Context) {
	if err := h.svc.MarkInvoiceCanceled(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHandler) expenseQuery(c *gin.Context) (finance.ExpenseQuery, error) {
	month, err := monthParam(c, h.now)
	if err != nil {
		return finance.ExpenseQuery{}, err
	}
	return finance.ExpenseQuery{
		Month:    month,
		Status:   models.ExpenseStatus(c.Query("status")),
		Category: c.Query("category"),
		UnitID:   c.Query("unit_id"),
		Search:   c.Query("q"),
		Window:   windowParam(c, h.pageSize),
	}, nil
}

// ListExpenses returns a page of the month's expenses with totals.
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	q, err := h.expenseQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	list, err := h.svc.ListExpenses(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ExportExpenses downloads the filtered expenses as a spreadsheet.
func (h *FinanceHandler) ExportExpenses(c *gin.Context) {
	q, err := h.expenseQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows, err := h.svc.ExpenseRows(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.spreadsheet(c, "despesas", q.Month, func(w io.Writer) error { return export.ExpensesXLSX(w, rows) })
}

// CreateExpense registers an expense.
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var in finance.ExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	e, err := h.svc.CreateExpense(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// MarkExpensePaid settles an expense.
func (h *FinanceHandler) MarkExpensePaid(c *gin.Context) {
	if err := h.svc.MarkExpensePaid(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMovements returns a page of the month's advances and bonuses.
func (h *FinanceHandler) ListMovements(c *gin.Context) {
	month, err := monthParam(c, h.now)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	list, err := h.svc.ListMovements(c.Request.Context(), finance.MovementQuery{
		Month:  month,
		Type:   models.MovementType(c.Query("type")),
		Search: c.Query("q"),
		Window: windowParam(c, h.pageSize),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateMovement registers an advance or a bonus.
func (h *FinanceHandler) CreateMovement(c *gin.Context) {
	var in finance.MovementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	m, err := h.svc.CreateMovement(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *FinanceHandler) payoutQuery(c *gin.Context) (finance.PayoutQuery, error) {
	month, err := monthParam(c, h.now)
	if err != nil {
		return finance.PayoutQuery{}, err
	}
	return finance.PayoutQuery{
		Month:      month,
		Status:     models.PayoutStatus(c.Query("status")),
		EntityType: models.EntityType(c.Query("entity_type")),
		Window:     windowParam(c, h.pageSize),
	}, nil
}

// ListPayouts returns a page of the month's payouts with totals.
func (h *FinanceHandler) ListPayouts(c *gin.Context) {
	q, err := h.payoutQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	list, err := h.svc.ListPayouts(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ExportPayouts downloads the filtered payouts as a spreadsheet.
func (h *FinanceHandler) ExportPayouts(c *gin.Context) {
	q, err := h.payoutQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows, err := h.svc.PayoutRows(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.spreadsheet(c, "repasses", q.Month, func(w io.Writer) error { return export.PayoutsXLSX(w, rows) })
}

// PayoutDetails returns a payout with its invoices and movements.
func (h *FinanceHandler) PayoutDetails(c *gin.Context) {
	details, err := h.svc.PayoutDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// MarkPayoutPaid settles a payout.
func (h *FinanceHandler) MarkPayoutPaid(c *gin.Context) {
	var in finance.MarkPayoutPaidInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, h.logger, err)
		return
	}
	if err := h.svc.MarkPayoutPaid(c.Request.Context(), c.Param("id"), in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// spreadsheet buffers the workbook before any header is written.
func (h *FinanceHandler) spreadsheet(c *gin.Context, kind string, month format.Month, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(kind, month.String())+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
