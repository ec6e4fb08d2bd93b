package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EntityType identifies who receives a payout or a financial movement. Values
// follow the backend vocabulary.
type EntityType string

const (
	EntityProfessional EntityType = "Equipe"
	EntityUnit         EntityType = "Unidade"
)

// Label returns the operator-facing name of the entity type.
func (e EntityType) Label() string {
	if e == EntityProfessional {
		return "Profissional"
	}
	return "Unidade"
}

// Valid reports whether e is a known entity type.
func (e EntityType) Valid() bool {
	return e == EntityProfessional || e == EntityUnit
}

// ParseEntityType accepts both the backend and the operator vocabularies.
func ParseEntityType(raw string) (EntityType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "equipe", "profissional", "professional":
		return EntityProfessional, true
	case "unidade", "unit":
		return EntityUnit, true
	default:
		return "", false
	}
}

// PayoutType selects how the base value of a payout is computed.
type PayoutType string

const (
	PayoutPercentage PayoutType = "Percentual"
	PayoutFixed      PayoutType = "Fixo"
)

// ParsePayoutType maps the spellings used across backend tables.
func ParsePayoutType(raw string) PayoutType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "percentual", "percentage":
		return PayoutPercentage
	default:
		return PayoutFixed
	}
}

// PayoutTerms are the payout settings attached to a unit or professional.
type PayoutTerms struct {
	Type  PayoutType      `json:"repass_type" validate:"omitempty,oneof=Percentual Fixo 'Valor Fixo'"`
	Value decimal.Decimal `json:"repass_value" validate:"gte=0"`
}
