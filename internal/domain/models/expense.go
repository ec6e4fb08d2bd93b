package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the operator-facing state of an expense.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "Pendente"
	ExpensePaid     ExpenseStatus = "Pago"
	ExpenseCanceled ExpenseStatus = "Cancelado"
)

// ExpenseStatusFromBackend maps the stored status to the operator vocabulary.
func ExpenseStatusFromBackend(s string) ExpenseStatus {
	switch s {
	case backendPaid:
		return ExpensePaid
	case backendCanceled:
		return ExpenseCanceled
	default:
		return ExpensePending
	}
}

// Backend returns the stored status.
func (s ExpenseStatus) Backend() string {
	switch s {
	case ExpensePaid:
		return backendPaid
	case ExpenseCanceled:
		return backendCanceled
	default:
		return backendOpen
	}
}

// Expense categories offered by the expense form.
var ExpenseCategories = []string{"Salário", "Aluguel", "Utilidades", "Equipamentos", "Marketing", "Outros"}

// Expense is an operating cost of a unit.
type Expense struct {
	ID          string          `json:"id"`
	UnitID      string          `json:"unit_id"`
	Category    string          `json:"tipo"`
	Description string          `json:"fornecedor"`
	Amount      decimal.Decimal `json:"valor"`
	Date        time.Time       `json:"vencimento"`
	Status      ExpenseStatus   `json:"status"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
}

// ExpenseTotals are the KPI cards shown above the expense list.
type ExpenseTotals struct {
	Total   decimal.Decimal `json:"total"`
	Pending decimal.Decimal `json:"pendentes"`
	Paid    decimal.Decimal `json:"pagas"`
}
