package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a student pays invoices.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "Cartão"
	PaymentPix      PaymentMethod = "Pix"
	PaymentCash     PaymentMethod = "Dinheiro"
	PaymentTransfer PaymentMethod = "Transferência"
)

// StudentStatus is the enrollment state of a student.
type StudentStatus string

const (
	StudentActive   StudentStatus = "Ativo"
	StudentInactive StudentStatus = "Inativo"
	StudentTrial    StudentStatus = "Trial"
)

// Guardian is the person responsible for a student's billing.
type Guardian struct {
	Name  string `json:"nome"`
	Phone string `json:"telefone"`
	Email string `json:"email" binding:"omitempty,email"`
	CPF   string `json:"cpf,omitempty"`
}

// Student is an enrolled athlete.
type Student struct {
	ID            string          `json:"id"`
	Name          string          `json:"nome" binding:"required"`
	BirthDate     string          `json:"dataNascimento"`
	StartDate     string          `json:"dataInicio"`
	LeavingDate   string          `json:"dataSaida,omitempty"`
	CPF           string          `json:"cpf"`
	Address       string          `json:"endereco"`
	Guardian      Guardian        `json:"responsavel"`
	UnitID        string          `json:"unidade"`
	ClassID       string          `json:"turma"`
	PlanID        string          `json:"planId,omitempty"`
	RecurrenceID  string          `json:"recurrenceId,omitempty"`
	PaymentMethod PaymentMethod   `json:"formaPagamento"`
	Discount      decimal.Decimal `json:"descontos"`
	Status        StudentStatus   `json:"status" binding:"omitempty,oneof=Ativo Inativo Trial"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Contact is the minimal addressing data needed to message someone.
type Contact struct {
	ID    string
	Name  string
	Phone string
	// Recipient is the person actually reached; for students it is the guardian.
	Recipient string
}

// Plan is a priced enrollment plan offered by a unit.
type Plan struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	UnitID           string          `json:"unit_id"`
	FrequencyPerWeek int             `json:"frequency_per_week"`
	Value            decimal.Decimal `json:"value"`
	StartDate        string          `json:"start_date,omitempty"`
	EndDate          string          `json:"end_date,omitempty"`
	Status           string          `json:"status"`
}

// Recurrence is a billing cadence with an optional discount.
type Recurrence struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	StartDate       string           `json:"start_date,omitempty"`
	EndDate         string           `json:"end_date,omitempty"`
	UnitsApplicable []string         `json:"units_applicable,omitempty"`
	Status          string           `json:"status"`
}
