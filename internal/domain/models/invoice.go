package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the operator-facing state of a student invoice.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "Pendente"
	InvoicePaid     InvoiceStatus = "Pago"
	InvoiceOverdue  InvoiceStatus = "Vencido"
	InvoiceLate     InvoiceStatus = "Atrasado"
	InvoiceCanceled InvoiceStatus = "Cancelado"
)

// Backend invoice statuses.
const (
	backendOpen     = "Aberta"
	backendPaid     = "Paga"
	backendOverdue  = "Vencida"
	backendCanceled = "Cancelada"
)

// InvoiceStatusFromBackend maps the stored status to the operator vocabulary.
// Unknown values are treated as pending.
func InvoiceStatusFromBackend(s string) InvoiceStatus {
	switch s {
	case backendPaid:
		return InvoicePaid
	case backendOverdue:
		return InvoiceOverdue
	case backendCanceled:
		return InvoiceCanceled
	default:
		return InvoicePending
	}
}

// Backend returns the stored status used to filter invoices server-side. The
// backend does not distinguish late from overdue.
func (s InvoiceStatus) Backend() (string, bool) {
	switch s {
	case InvoicePending:
		return backendOpen, true
	case InvoicePaid:
		return backendPaid, true
	case InvoiceOverdue, InvoiceLate:
		return backendOverdue, true
	case InvoiceCanceled:
		return backendCanceled, true
	default:
		return "", false
	}
}

// Overdue reports whether the invoice should be charged with the collection template.
func (s InvoiceStatus) Overdue() bool {
	return s == InvoiceOverdue || s == InvoiceLate
}

// Invoice is a student's periodic billing record.
type Invoice struct {
	ID            string          `json:"id"`
	StudentID     string          `json:"student_id"`
	StudentName   string          `json:"aluno"`
	UnitID        string          `json:"unit_id"`
	UnitName      string          `json:"unidade"`
	Month         string          `json:"mes"`
	DueDate       time.Time       `json:"vencimento"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	AmountNet     decimal.Decimal `json:"valor"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Status        InvoiceStatus   `json:"status"`
	ReceiptURL    string          `json:"comprovante,omitempty"`
}

// InvoiceTotals are the KPI cards shown above the invoice list.
type InvoiceTotals struct {
	Total   decimal.Decimal `json:"total"`
	Pending decimal.Decimal `json:"pendentes"`
	Paid    decimal.Decimal `json:"pagas"`
	Overdue decimal.Decimal `json:"vencidas"`
}
