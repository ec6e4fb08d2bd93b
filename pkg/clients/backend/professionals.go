package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

type professionalDTO struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	CPF         string           `json:"cpf,omitempty"`
	Role        string           `json:"role_position,omitempty"`
	Salary      *decimal.Decimal `json:"salary,omitempty"`
	Specialties []string         `json:"specialties,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Email       string           `json:"email,omitempty"`
	UnitIDs     []string         `json:"unit_ids,omitempty"`
	HiredAt     string           `json:"hired_at,omitempty"`
	Status      string           `json:"status,omitempty"`
	RepassType  string           `json:"repass_type,omitempty"`
	RepassValue decimal.Decimal  `json:"repass_value"`
	CreatedAt   *time.Time       `json:"created_at,omitempty"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
}

func roleFromBackend(raw string) models.ProfessionalRole {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "coord"):
		return models.RoleCoordinator
	case strings.Contains(v, "admin"):
		return models.RoleAdministrator
	case strings.Contains(v, "recep"):
		return models.RoleReceptionist
	default:
		return models.RoleTeacher
	}
}

func professionalStatusFromBackend(raw string) models.ProfessionalStatus {
	switch raw {
	case "", "Active":
		return models.ProfessionalActive
	case "Inactive":
		return models.ProfessionalInactive
	default:
		return models.ProfessionalStatus(raw)
	}
}

func (d professionalDTO) toModel() models.Professional {
	p := models.Professional{
		ID:          d.ID,
		Name:        d.Name,
		CPF:         d.CPF,
		Role:        roleFromBackend(d.Role),
		Specialties: d.Specialties,
		Phone:       d.Phone,
		Email:       d.Email,
		UnitIDs:     d.UnitIDs,
		HiredAt:     d.HiredAt,
		Status:      professionalStatusFromBackend(d.Status),
		Payout: models.PayoutTerms{
			Type:  models.ParsePayoutType(d.RepassType),
			Value: d.RepassValue,
		},
		CreatedAt: deref(d.CreatedAt),
		UpdatedAt: deref(d.UpdatedAt),
	}
	if d.Salary != nil {
		p.Salary = *d.Salary
	}
	if p.Specialties == nil {
		p.Specialties = []string{}
	}
	if p.UnitIDs == nil {
		p.UnitIDs = []string{}
	}
	return p
}

func professionalToDTO(p models.Professional) professionalDTO {
	repassType := p.Payout.Type
	if repassType == "" {
		repassType = models.PayoutFixed
	}
	dto := professionalDTO{
		Name:        p.Name,
		CPF:         strings.TrimSpace(p.CPF),
		Role:        strings.TrimSpace(string(p.Role)),
		Specialties: p.Specialties,
		Phone:       strings.TrimSpace(p.Phone),
		Email:       strings.TrimSpace(p.Email),
		UnitIDs:     p.UnitIDs,
		HiredAt:     strings.TrimSpace(p.HiredAt),
		Status:      string(p.Status),
		RepassType:  string(repassType),
		RepassValue: p.Payout.Value,
	}
	if !p.Salary.IsZero() {
		salary := p.Salary
		dto.Salary = &salary
	}
	return dto
}

// ListProfessionals returns staff members matching the optional search term.
func (c *Client) ListProfessionals(ctx context.Context, q string) ([]models.Professional, error) {
	var dtos []professionalDTO
	req := c.request(ctx).SetQueryParams(searchParams(q)).SetResult(&dtos)
	if err := c.execute(req, http.MethodGet, "/professionals"); err != nil {
		return nil, err
	}
	out := make([]models.Professional, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}

// CreateProfessional creates a staff member.
func (c *Client) CreateProfessional(ctx context.Context, p models.Professional) (models.Professional, error) {
	var dto professionalDTO
	req := c.request(ctx).SetBody(professionalToDTO(p)).SetResult(&dto)
	if err := c.execute(req, http.MethodPost, "/professionals"); err != nil {
		return models.Professional{}, err
	}
	return dto.toModel(), nil
}

// UpdateProfessional replaces a staff member's editable fields.
func (c *Client) UpdateProfessional(ctx context.Context, id string, p models.Professional) (models.Professional, error) {
	var dto professionalDTO
	req := c.request(ctx).SetPathParam("id", id).SetBody(professionalToDTO(p)).SetResult(&dto)
	if err := c.execute(req, http.MethodPut, "/professionals/{id}"); err != nil {
		return models.Professional{}, err
	}
	return dto.toModel(), nil
}

// DeleteProfessional removes a staff member.
func (c *Client) DeleteProfessional(ctx context.Context, id string) error {
	return c.execute(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/professionals/{id}")
}
