package postgres

import (
	"context"
	"fmt"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

// ListExpenses returns the expenses dated within the month.
func (r *Repository) ListExpenses(ctx context.Context, month format.Month) ([]models.Expense, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, COALESCE(unit_id::text, ''), COALESCE(category, ''), COALESCE(description, ''),
       COALESCE(amount, 0)::text, expense_date, COALESCE(status, 'Aberta'), COALESCE(receipt_url, '')
FROM expenses
WHERE expense_date >= $1::date AND expense_date <= $2::date
ORDER BY expense_date DESC, id`, month.FirstDay(), month.End().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list expenses for %s: %w", month, err)
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var (
			e           models.Expense
			raw, status string
		)
		if err := rows.Scan(&e.ID, &e.UnitID, &e.Category, &e.Description, &raw, &e.Date, &status, &e.ReceiptURL); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = amount(raw)
		e.Status = models.ExpenseStatusFromBackend(status)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// CreateExpense inserts an open expense and returns it with its id.
func (r *Repository) CreateExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO expenses (unit_id, category, description, amount, expense_date, status)
VALUES ($1::uuid, $2, $3, $4::numeric, $5::date, $6)
RETURNING id::text`,
		optional(e.UnitID), e.Category, e.Description, e.Amount.String(), e.Date.Format("2006-01-02"), e.Status.Backend(),
	).Scan(&e.ID)
	if err != nil {
		return models.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}
