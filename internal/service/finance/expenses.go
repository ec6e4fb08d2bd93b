package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/listing"
	"github.com/mamadbah2/franchise/internal/validation"
)

// ExpenseQuery selects a page of a month's expenses.
type ExpenseQuery struct {
	Month    format.Month
	Status   models.ExpenseStatus
	Category string
	UnitID   string
	Search   string
	Window
}

// ExpenseList is a page of expenses.
type ExpenseList = List[models.Expense, models.ExpenseTotals]

// ExpenseInput is a new expense.
type ExpenseInput struct {
	UnitID      string          `json:"unit_id" validate:"notblank"`
	Category    string          `json:"category" validate:"notblank"`
	Description string          `json:"description" validate:"notblank,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// ListExpenses returns a page of the month's expenses.
func (s *Service) ListExpenses(ctx context.Context, q ExpenseQuery) (ExpenseList, error) {
	filtered, err := s.ExpenseRows(ctx, q)
	if err != nil {
		return ExpenseList{}, err
	}
	filters := map[string]string{"status": string(q.Status), "category": q.Category, "unit": q.UnitID, "q": q.Search}
	return page(q.Month, filtered, ExpenseTotalsOf(filtered), q.Window, filters), nil
}

// ExpenseRows returns every expense matching q, unpaged.
func (s *Service) ExpenseRows(ctx context.Context, q ExpenseQuery) ([]models.Expense, error) {
	key := cache.Key(ctx, cache.Expenses, q.Month.String())
	expenses, err := cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) ([]models.Expense, error) {
		return s.store.ListExpenses(ctx, q.Month)
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return listing.Filter(expenses,
		func(e models.Expense) bool { return listing.Contains(e.Description, q.Search) },
		func(e models.Expense) bool { return listing.Equals(string(e.Status), string(q.Status)) },
		func(e models.Expense) bool { return listing.Equals(e.Category, q.Category) },
		func(e models.Expense) bool { return listing.Equals(e.UnitID, q.UnitID) },
	), nil
}

// ExpenseTotalsOf sums the KPI cards of the filtered expenses.
func ExpenseTotalsOf(expenses []models.Expense) models.ExpenseTotals {
	var t models.ExpenseTotals
	for _, e := range expenses {
		t.Total = t.Total.Add(e.Amount)
		switch e.Status {
		case models.ExpensePending:
			t.Pending = t.Pending.Add(e.Amount)
		case models.ExpensePaid:
			t.Paid = t.Paid.Add(e.Amount)
		}
	}
	return t
}

// CreateExpense records an open expense.
func (s *Service) CreateExpense(ctx context.Context, in ExpenseInput) (models.Expense, error) {
	if err := validation.Struct(in); err != nil {
		return models.Expense{}, err
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return models.Expense{}, validation.Field("date", "data inválida")
	}

	e, err := s.store.CreateExpense(ctx, models.Expense{
		UnitID:      in.UnitID,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        date,
		Status:      models.ExpensePending,
	})
	if err != nil {
		return models.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.cache.Invalidate(ctx, cache.Expenses)
	return e, nil
}

// MarkExpensePaid registers an expense payment.
func (s *Service) MarkExpensePaid(ctx context.Context, id string) error {
	if err := s.payments.MarkExpensePaid(ctx, id); err != nil {
		return fmt.Errorf("mark expense %s paid: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.Expenses)
	return nil
}
