package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType distinguishes debits from credits applied to a payout.
type MovementType string

const (
	MovementAdvance MovementType = "Adiantamento"
	MovementBonus   MovementType = "Bonificacao"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	return t == MovementAdvance || t == MovementBonus
}

// MovementStatus values stored for financial movements.
const (
	MovementOpen     = backendOpen
	MovementPaid     = backendPaid
	MovementCanceled = backendCanceled
)

// Movement is an ad hoc advance or bonus affecting a payout calculation.
type Movement struct {
	ID          string          `json:"id"`
	EntityType  EntityType      `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	EntityName  string          `json:"entity_name"`
	UnitID      string          `json:"unit_id,omitempty"`
	Type        MovementType    `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"advance_date"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
}

// Signed returns the amount as it contributes to a payout.
func (m Movement) Signed() decimal.Decimal {
	if m.Type == MovementAdvance {
		return m.Amount.Neg()
	}
	return m.Amount
}

// MovementTotals are the KPI cards shown above the movement list.
type MovementTotals struct {
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}
