package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfessionalRole is the position held by a staff member.
type ProfessionalRole string

const (
	RoleTeacher       ProfessionalRole = "Professor"
	RoleCoordinator   ProfessionalRole = "Coordenador"
	RoleAdministrator ProfessionalRole = "Administrador"
	RoleReceptionist  ProfessionalRole = "Recepcionista"
)

// ProfessionalStatus is the employment state of a staff member.
type ProfessionalStatus string

const (
	ProfessionalActive   ProfessionalStatus = "Ativo"
	ProfessionalInactive ProfessionalStatus = "Inativo"
	ProfessionalOnLeave  ProfessionalStatus = "Licença"
)

// Professional is a member of the technical staff.
type Professional struct {
	ID          string             `json:"id"`
	Name        string             `json:"nome" binding:"required"`
	CPF         string             `json:"cpf"`
	Role        ProfessionalRole   `json:"cargo"`
	Salary      decimal.Decimal    `json:"salario"`
	Specialties []string           `json:"especialidades"`
	Phone       string             `json:"telefone"`
	Email       string             `json:"email" binding:"omitempty,email"`
	UnitIDs     []string           `json:"unidades"`
	HiredAt     string             `json:"dataContratacao"`
	Status      ProfessionalStatus `json:"status" binding:"omitempty,oneof=Ativo Inativo Licença"`
	Payout      PayoutTerms        `json:"repasse"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
