package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/listing"
	"github.com/mamadbah2/franchise/internal/validation"
	"github.com/mamadbah2/franchise/pkg/clients/backend"
)

// InvoiceQuery selects a page of a month's invoices. Status is applied by the
// listing procedure; search and unit are applied in memory.
type InvoiceQuery struct {
	Month  format.Month
	Status models.InvoiceStatus
	UnitID string
	Search string
	Window
}

// InvoiceList is a page of invoices.
type InvoiceList = List[models.Invoice, models.InvoiceTotals]

// InvoiceInput is a manually created invoice.
type InvoiceInput struct {
	UnitID        string               `json:"unit_id" validate:"notblank"`
	StudentID     string               `json:"student_id" validate:"notblank"`
	Amount        decimal.Decimal      `json:"amount" validate:"gt=0"`
	DueDate       string               `json:"due_date" validate:"required,datetime=2006-01-02"`
	PaymentMethod string               `json:"payment_method" validate:"omitempty,oneof=Dinheiro PIX Crédito Débito"`
	Status        models.InvoiceStatus `json:"status" validate:"omitempty,oneof=Pendente Pago Cancelado"`
}

// MarkInvoicePaidInput is the payment data an operator provides.
type MarkInvoicePaidInput struct {
	PaymentMethod  string `json:"payment_method"`
	ReceiptURL     string `json:"receipt_url" validate:"omitempty,url"`
	ProfessionalID string `json:"professional_id"`
}

func (s *Service) monthInvoices(ctx context.Context, month format.Month, status string) ([]models.Invoice, error) {
	key := cache.Key(ctx, cache.Invoices, month.String(), status)
	return cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) ([]models.Invoice, error) {
		return s.store.ListInvoicesForMonth(ctx, month, "", status)
	})
}

// ListInvoices returns a page of the month's invoices with totals over the
// whole fetched month.
func (s *Service) ListInvoices(ctx context.Context, q InvoiceQuery) (InvoiceList, error) {
	invoices, filtered, err := s.invoiceRows(ctx, q)
	if err != nil {
		return InvoiceList{}, err
	}
	filters := map[string]string{"status": string(q.Status), "unit": q.UnitID, "q": q.Search}
	return page(q.Month, filtered, InvoiceTotalsOf(invoices), q.Window, filters), nil
}

// InvoiceRows returns every invoice matching q, unpaged.
func (s *Service) InvoiceRows(ctx context.Context, q InvoiceQuery) ([]models.Invoice, error) {
	_, filtered, err := s.invoiceRows(ctx, q)
	return filtered, err
}

func (s *Service) invoiceRows(ctx context.Context, q InvoiceQuery) (all, filtered []models.Invoice, err error) {
	backendStatus := ""
	if q.Status != "" && q.Status != "all" {
		st, ok := q.Status.Backend()
		if !ok {
			return nil, nil, validation.Field("status", "status desconhecido")
		}
		backendStatus = st
	}

	all, err = s.monthInvoices(ctx, q.Month, backendStatus)
	if err != nil {
		return nil, nil, fmt.Errorf("list invoices: %w", err)
	}

	filtered = listing.Filter(all,
		func(inv models.Invoice) bool { return listing.Contains(inv.StudentName, q.Search) },
		func(inv models.Invoice) bool { return listing.Equals(inv.UnitID, q.UnitID) },
	)
	return all, filtered, nil
}

// InvoiceTotalsOf sums the KPI cards. Overdue includes Atrasado.
func InvoiceTotalsOf(invoices []models.Invoice) models.InvoiceTotals {
	var t models.InvoiceTotals
	for _, inv := range invoices {
		t.Total = t.Total.Add(inv.AmountNet)
		switch {
		case inv.Status == models.InvoicePending:
			t.Pending = t.Pending.Add(inv.AmountNet)
		case inv.Status == models.InvoicePaid:
			t.Paid = t.Paid.Add(inv.AmountNet)
		case inv.Status.Overdue():
			t.Overdue = t.Overdue.Add(inv.AmountNet)
		}
	}
	return t
}

// GenerateInvoices creates the month's invoices for active students.
func (s *Service) GenerateInvoices(ctx context.Context, month format.Month, dueDay int) (int, error) {
	if dueDay < 1 || dueDay > 28 {
		return 0, validation.Field("due_day", "deve estar entre 1 e 28")
	}
	count, err := s.store.GenerateInvoices(ctx, month.Start(), dueDay)
	if err != nil {
		return 0, fmt.Errorf("generate invoices for %s: %w", month, err)
	}
	s.cache.Invalidate(ctx, cache.Invoices)
	s.cache.Invalidate(ctx, cache.Dashboard)
	s.logger.Info("monthly invoices generated", zap.String("month", month.String()), zap.Int("count", count))
	return count, nil
}

// CreateInvoice records a manual invoice.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (models.Invoice, error) {
	if err := validation.Struct(in); err != nil {
		return models.Invoice{}, err
	}
	due, err := time.Parse("2006-01-02", in.DueDate)
	if err != nil {
		return models.Invoice{}, validation.Field("due_date", "data inválida")
	}
	status := in.Status
	if status == "" {
		status = models.InvoicePending
	}

	inv, err := s.store.CreateInvoice(ctx, models.Invoice{
		StudentID:     in.StudentID,
		UnitID:        in.UnitID,
		DueDate:       due,
		AmountTotal:   in.Amount,
		PaymentMethod: in.PaymentMethod,
		Status:        status,
	})
	if err != nil {
		return models.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	s.cache.Invalidate(ctx, cache.Invoices)
	return inv, nil
}

// MarkInvoicePaid registers an invoice payment.
func (s *Service) MarkInvoicePaid(ctx context.Context, id string, in MarkInvoicePaidInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	err := s.payments.MarkInvoicePaid(ctx, id, backend.MarkInvoicePaidInput{
		PaymentMethod:  in.PaymentMethod,
		PaidAt:         s.now().UTC(),
		ReceiptURL:     in.ReceiptURL,
		ProfessionalID: in.ProfessionalID,
	})
	if err != nil {
		return fmt.Errorf("mark invoice %s paid: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.Invoices)
	s.cache.Invalidate(ctx, cache.Dashboard)
	return nil
}

// MarkInvoiceCanceled cancels an invoice.
func (s *Service) MarkInvoiceCanceled(ctx context.Context, id string) error {
	if err := s.store.MarkInvoiceCanceled(ctx, id); err != nil {
		return fmt.Errorf("cancel invoice %s: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.Invoices)
	s.cache.Invalidate(ctx, cache.Dashboard)
	return nil
}
