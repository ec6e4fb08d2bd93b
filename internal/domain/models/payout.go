package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus is the operator-facing state of a payout.
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "Pendente"
	PayoutPaid    PayoutStatus = "Pago"
)

// PayoutStatusFromBackend maps the stored status to the operator vocabulary.
func PayoutStatusFromBackend(s string) PayoutStatus {
	if s == backendPaid {
		return PayoutPaid
	}
	return PayoutPending
}

// Backend returns the stored status.
func (s PayoutStatus) Backend() string {
	if s == PayoutPaid {
		return backendPaid
	}
	return backendOpen
}

// Payout ("repasse") is a periodic payment owed to a professional or unit.
type Payout struct {
	ID               string          `json:"id"`
	EntityType       EntityType      `json:"entity_type"`
	EntityID         string          `json:"entity_id"`
	EntityName       string          `json:"referencia"`
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
	GrossValue       decimal.Decimal `json:"gross_value"`
	AdvanceDeduction decimal.Decimal `json:"advance_deduction"`
	NetValue         decimal.Decimal `json:"valor"`
	Status           PayoutStatus    `json:"status"`
	ReceiptURL       string          `json:"receipt_url,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
}

// Month returns the YYYY-MM reference of the payout period.
func (p Payout) Month() string {
	return p.PeriodStart.Format("2006-01")
}

// PayoutTotals are the KPI cards shown above the payout list.
type PayoutTotals struct {
	Total   decimal.Decimal `json:"total"`
	Pending decimal.Decimal `json:"pendentes"`
	Paid    decimal.Decimal `json:"pagos"`
}

// PayoutInvoice is an invoice that contributed to a payout.
type PayoutInvoice struct {
	ID          string          `json:"id"`
	StudentName string          `json:"student_name"`
	AmountNet   decimal.Decimal `json:"amount_net"`
	DueDate     time.Time       `json:"due_date"`
}

// PayoutDetails is the statement of a single payout.
type PayoutDetails struct {
	Payout          Payout          `json:"repasse"`
	EntityName      string          `json:"entity_name"`
	Invoices        []PayoutInvoice `json:"invoices"`
	Movements       []Movement      `json:"movements"`
	PendingInvoices []PayoutInvoice `json:"pending_invoices"`
	BonusTotal      decimal.Decimal `json:"bonus_total"`
	AdvanceTotal    decimal.Decimal `json:"advance_total"`
}

// PreviewRow is one entity's computed payout before confirmation. Totals come
// from the aggregation procedure; BaseValue and FinalValue are derived.
type PreviewRow struct {
	EntityType    EntityType      `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	EntityName    string          `json:"entity_name"`
	Terms         PayoutTerms     `json:"terms"`
	InvoiceTotal  decimal.Decimal `json:"invoice_total"`
	InvoiceCount  int             `json:"invoice_count"`
	MovementCount int             `json:"movement_count"`
	BaseValue     decimal.Decimal `json:"base_value"`
	Bonuses       decimal.Decimal `json:"total_bonuses"`
	Advances      decimal.Decimal `json:"total_advances"`
	FinalValue    decimal.Decimal `json:"final_value"`
}

// Key identifies the row within a preview.
func (r PreviewRow) Key() string {
	return string(r.EntityType) + ":" + r.EntityID
}
