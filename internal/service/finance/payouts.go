package finance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/listing"
	"github.com/mamadbah2/franchise/internal/validation"
	"github.com/mamadbah2/franchise/pkg/clients/backend"
)

// PayoutQuery selects a page of a month's payouts.
type PayoutQuery struct {
	Month      format.Month
	Status     models.PayoutStatus
	EntityType models.EntityType
	Window
}

// PayoutList is a page of payouts.
type PayoutList = List[models.Payout, models.PayoutTotals]

// MarkPayoutPaidInput is the payment data of a payout.
type MarkPayoutPaidInput struct {
	ReceiptURL string `json:"receipt_url" validate:"omitempty,url"`
}

func (s *Service) monthPayouts(ctx context.Context, month format.Month) ([]models.Payout, error) {
	key := cache.Key(ctx, cache.Payouts, month.String())
	return cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) ([]models.Payout, error) {
		return s.store.ListPayouts(ctx, month)
	})
}

// ListPayouts returns a page of the month's payouts.
func (s *Service) ListPayouts(ctx context.Context, q PayoutQuery) (PayoutList, error) {
	filtered, err := s.PayoutRows(ctx, q)
	if err != nil {
		return PayoutList{}, err
	}
	filters := map[string]string{"status": string(q.Status), "entity_type": string(q.EntityType)}
	return page(q.Month, filtered, PayoutTotalsOf(filtered), q.Window, filters), nil
}

// PayoutRows returns every payout matching q, unpaged.
func (s *Service) PayoutRows(ctx context.Context, q PayoutQuery) ([]models.Payout, error) {
	payouts, err := s.monthPayouts(ctx, q.Month)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	return listing.Filter(payouts,
		func(p models.Payout) bool { return listing.Equals(string(p.Status), string(q.Status)) },
		func(p models.Payout) bool { return listing.Equals(string(p.EntityType), string(q.EntityType)) },
	), nil
}

// PayoutTotalsOf sums the KPI cards of the filtered payouts.
func PayoutTotalsOf(payouts []models.Payout) models.PayoutTotals {
	var t models.PayoutTotals
	for _, p := range payouts {
		t.Total = t.Total.Add(p.NetValue)
		switch p.Status {
		case models.PayoutPending:
			t.Pending = t.Pending.Add(p.NetValue)
		case models.PayoutPaid:
			t.Paid = t.Paid.Add(p.NetValue)
		}
	}
	return t
}

// MarkPayoutPaid registers a payout payment.
func (s *Service) MarkPayoutPaid(ctx context.Context, id string, in MarkPayoutPaidInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	err := s.payments.MarkRepassPaid(ctx, id, backend.MarkRepassPaidInput{
		PaidAt:     s.now().UTC(),
		ReceiptURL: in.ReceiptURL,
	})
	if err != nil {
		return fmt.Errorf("mark payout %s paid: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.Payouts)
	return nil
}

// PayoutDetails builds the statement of a payout: linked invoices and
// movements, bonus and advance sums and, for units, the invoices of the
// period still unpaid.
func (s *Service) PayoutDetails(ctx context.Context, id string) (models.PayoutDetails, error) {
	p, err := s.store.GetPayout(ctx, id)
	if err != nil {
		return models.PayoutDetails{}, fmt.Errorf("load payout: %w", err)
	}

	invoices, err := s.store.PayoutInvoices(ctx, id)
	if err != nil {
		return models.PayoutDetails{}, fmt.Errorf("load payout invoices: %w", err)
	}
	movements, err := s.store.PayoutMovements(ctx, id)
	if err != nil {
		return models.PayoutDetails{}, fmt.Errorf("load payout movements: %w", err)
	}

	details := models.PayoutDetails{
		Payout:          p,
		EntityName:      p.EntityName,
		Invoices:        nonNil(invoices),
		Movements:       nonNil(movements),
		PendingInvoices: []models.PayoutInvoice{},
		BonusTotal:      decimal.Zero,
		AdvanceTotal:    decimal.Zero,
	}
	for _, m := range movements {
		switch m.Type {
		case models.MovementBonus:
			details.BonusTotal = details.BonusTotal.Add(m.Amount)
		case models.MovementAdvance:
			details.AdvanceTotal = details.AdvanceTotal.Add(m.Amount)
		}
	}

	if p.EntityType == models.EntityUnit {
		pending, err := s.store.PendingUnitInvoices(ctx, p.EntityID, p.PeriodStart, p.PeriodEnd)
		if err != nil {
			s.logger.Warn("pending unit invoices unavailable", zap.String("payout_id", id), zap.Error(err))
		} else {
			details.PendingInvoices = nonNil(pending)
		}
	}
	return details, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
