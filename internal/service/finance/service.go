// Package finance serves the month-scoped financial lists (invoices, expenses,
// movements and payouts) and their mutations.
package finance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/listing"
	"github.com/mamadbah2/franchise/pkg/clients/backend"
)

// Store is the persistence used by the finance service.
type Store interface {
	ListInvoicesForMonth(ctx context.Context, month format.Month, unitID, status string) ([]models.Invoice, error)
	GenerateInvoices(ctx context.Context, generationDate time.Time, dueDay int) (int, error)
	CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error)
	MarkInvoiceCanceled(ctx context.Context, id string) error

	ListExpenses(ctx context.Context, month format.Month) ([]models.Expense, error)
	CreateExpense(ctx context.Context, e models.Expense) (models.Expense, error)

	ListMovements(ctx context.Context, month format.Month, movementType models.MovementType) ([]models.Movement, error)
	CreateMovement(ctx context.Context, m models.Movement) (models.Movement, error)
	EntityNames(ctx context.Context) (map[string]string, error)

	ListPayouts(ctx context.Context, month format.Month) ([]models.Payout, error)
	GetPayout(ctx context.Context, id string) (models.Payout, error)
	PayoutInvoices(ctx context.Context, payoutID string) ([]models.PayoutInvoice, error)
	PayoutMovements(ctx context.Context, payoutID string) ([]models.Movement, error)
	PendingUnitInvoices(ctx context.Context, unitID string, start, end time.Time) ([]models.PayoutInvoice, error)
}

// Payments registers payments through the backend.
type Payments interface {
	MarkInvoicePaid(ctx context.Context, id string, in backend.MarkInvoicePaidInput) error
	MarkExpensePaid(ctx context.Context, id string) error
	MarkRepassPaid(ctx context.Context, id string, in backend.MarkRepassPaidInput) error
}

// Service implements the finance lists.
type Service struct {
	store    Store
	payments Payments
	cache    *cache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the finance service. A nil cache disables caching.
func NewService(store Store, payments Payments, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.New(nil, 0, logger)
	}
	return &Service{store: store, payments: payments, cache: c, logger: logger, now: time.Now}
}

// Window is the paging part of a list query.
type Window = listing.Window

// List is one page of a financial list with its KPI totals and the view
// token to send back with the next request.
type List[T any, Totals any] struct {
	listing.Page[T]
	Month  string            `json:"month"`
	Totals Totals            `json:"totals"`
	View   listing.ViewState `json:"view"`
}

func page[T any, Totals any](month format.Month, filtered []T, totals Totals, w Window, filters map[string]string) List[T, Totals] {
	filters["month"] = month.String()
	view := listing.Resume(w.Prior, filters, w.Page, w.PageSize)
	return List[T, Totals]{
		Page:   listing.Paginate(filtered, view.Page, view.Size),
		Month:  month.String(),
		Totals: totals,
		View:   view,
	}
}
