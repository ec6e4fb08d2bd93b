package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

const (
	dashboardTTL = time.Minute
	maxTrend     = 12
)

// Metrics returns the backend-computed KPIs.
type Metrics interface {
	DashboardMetrics(ctx context.Context) (models.DashboardMetrics, error)
}

// Ledger is the month-scoped financial data a summary is computed from.
type Ledger interface {
	ListInvoicesForMonth(ctx context.Context, month format.Month, unitID, status string) ([]models.Invoice, error)
	ListExpenses(ctx context.Context, month format.Month) ([]models.Expense, error)
	ListPayouts(ctx context.Context, month format.Month) ([]models.Payout, error)
}

// Service exposes the dashboard and monthly cash summaries.
type Service struct {
	metrics Metrics
	ledger  Ledger
	cache   *cache.Cache
	logger  *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(metrics Metrics, ledger Ledger, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.New(nil, 0, logger)
	}
	return &Service{metrics: metrics, ledger: ledger, cache: c, logger: logger}
}

// Dashboard returns the franchise KPIs, cached for one minute.
func (s *Service) Dashboard(ctx context.Context) (models.DashboardMetrics, error) {
	m, err := cache.Remember(ctx, s.cache, cache.Key(ctx, cache.Dashboard, "metrics"), dashboardTTL, s.metrics.DashboardMetrics)
	if err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("load dashboard metrics: %w", err)
	}
	return m, nil
}

// MonthlySummary computes the cash result of a month: paid invoices minus
// paid expenses minus the net value of the month's payouts.
func (s *Service) MonthlySummary(ctx context.Context, month format.Month) (models.MonthlySummary, error) {
	invoices, err := s.ledger.ListInvoicesForMonth(ctx, month, "", "")
	if err != nil {
		return models.MonthlySummary{}, fmt.Errorf("load invoices: %w", err)
	}
	expenses, err := s.ledger.ListExpenses(ctx, month)
	if err != nil {
		return models.MonthlySummary{}, fmt.Errorf("load expenses: %w", err)
	}
	payouts, err := s.ledger.ListPayouts(ctx, month)
	if err != nil {
		return models.MonthlySummary{}, fmt.Errorf("load payouts: %w", err)
	}

	sum := models.MonthlySummary{
		Month:          month.String(),
		Revenue:        decimal.Zero,
		PendingRevenue: decimal.Zero,
		Expenses:       decimal.Zero,
		Payouts:        decimal.Zero,
	}
	for _, inv := range invoices {
		switch {
		case inv.Status == models.InvoicePaid:
			sum.Revenue = sum.Revenue.Add(inv.AmountNet)
			sum.PaidInvoices++
		case inv.Status.Overdue():
			sum.PendingRevenue = sum.PendingRevenue.Add(inv.AmountNet)
			sum.OverdueInvoices++
		case inv.Status == models.InvoicePending:
			sum.PendingRevenue = sum.PendingRevenue.Add(inv.AmountNet)
		}
	}
	for _, e := range expenses {
		if e.Status == models.ExpensePaid {
			sum.Expenses = sum.Expenses.Add(e.Amount)
		}
	}
	for _, p := range payouts {
		sum.Payouts = sum.Payouts.Add(p.NetValue)
	}
	sum.Result = sum.Revenue.Sub(sum.Expenses).Sub(sum.Payouts)
	return sum, nil
}

// Trend returns the summaries of the n months ending at month, oldest first.
func (s *Service) Trend(ctx context.Context, month format.Month, n int) ([]models.RevenueHistory, error) {
	if n < 1 {
		n = 1
	}
	if n > maxTrend {
		n = maxTrend
	}
	out := make([]models.RevenueHistory, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := format.MonthOf(month.Start().AddDate(0, -i, 0))
		sum, err := s.MonthlySummary(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("summary %s: %w", m, err)
		}
		out = append(out, models.RevenueHistory{
			Month:    sum.Month,
			Revenue:  sum.Revenue,
			Expenses: sum.Expenses.Add(sum.Payouts),
			Profit:   sum.Result,
		})
	}
	return out, nil
}

// SummaryText renders a month summary as a short message for sharing.
func SummaryText(sum models.MonthlySummary) string {
	if sum.PaidInvoices == 0 && sum.Expenses.IsZero() && sum.Payouts.IsZero() {
		return fmt.Sprintf("Resumo %s: nenhum lançamento ainda.", sum.Month)
	}
	return fmt.Sprintf("Resumo %s: receita %s (%d faturas pagas), a receber %s (%d vencidas), despesas %s, repasses %s. Resultado %s.",
		sum.Month,
		format.Currency(sum.Revenue), sum.PaidInvoices,
		format.Currency(sum.PendingRevenue), sum.OverdueInvoices,
		format.Currency(sum.Expenses),
		format.Currency(sum.Payouts),
		format.Currency(sum.Result))
}
