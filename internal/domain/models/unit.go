package models

import "time"

// UnitStatus is the lifecycle state of a franchise unit.
type UnitStatus string

const (
	UnitActive   UnitStatus = "Ativa"
	UnitInactive UnitStatus = "Inativa"
)

// Unit is a franchise location.
type Unit struct {
	ID          string      `json:"id"`
	Name        string      `json:"nome" binding:"required"`
	Responsible string      `json:"responsavel"`
	Address     string      `json:"endereco"`
	City        string      `json:"cidade"`
	State       string      `json:"estado" validate:"omitempty,len=2"`
	ZipCode     string      `json:"cep"`
	Phone       string      `json:"telefone"`
	Email       string      `json:"email" binding:"omitempty,email"`
	Payout      PayoutTerms `json:"repasse"`
	Status      UnitStatus  `json:"status" binding:"omitempty,oneof=Ativa Inativa"`
	ManagerIDs  []string    `json:"managerIds,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
