package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

type unitDTO struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Responsible string          `json:"responsible,omitempty"`
	Address     string          `json:"address,omitempty"`
	City        string          `json:"city,omitempty"`
	State       string          `json:"state,omitempty"`
	ZipCode     string          `json:"cep,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Email       string          `json:"email,omitempty"`
	RepassType  string          `json:"repass_type,omitempty"`
	RepassValue decimal.Decimal `json:"repass_value"`
	Status      string          `json:"status,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func unitStatusFromBackend(raw string) models.UnitStatus {
	switch raw {
	case "Ativo", "Active", "":
		return models.UnitActive
	case "Inativo", "Inactive":
		return models.UnitInactive
	default:
		return models.UnitStatus(raw)
	}
}

// unitStatusToBackend uses the masculine form the units table stores.
func unitStatusToBackend(s models.UnitStatus) string {
	if s == models.UnitInactive {
		return "Inativo"
	}
	return "Ativo"
}

func (d unitDTO) toModel() models.Unit {
	return models.Unit{
		ID:          d.ID,
		Name:        d.Name,
		Responsible: d.Responsible,
		Address:     d.Address,
		City:        d.City,
		State:       d.State,
		ZipCode:     d.ZipCode,
		Phone:       d.Phone,
		Email:       d.Email,
		Payout: models.PayoutTerms{
			Type:  models.ParsePayoutType(d.RepassType),
			Value: d.RepassValue,
		},
		Status:    unitStatusFromBackend(d.Status),
		CreatedAt: deref(d.CreatedAt),
		UpdatedAt: deref(d.UpdatedAt),
	}
}

func unitToDTO(u models.Unit) unitDTO {
	repassType := models.PayoutFixed
	if u.Payout.Type == models.PayoutPercentage {
		repassType = models.PayoutPercentage
	}
	return unitDTO{
		Name:        u.Name,
		Address:     u.Address,
		City:        u.City,
		State:       u.State,
		ZipCode:     u.ZipCode,
		Phone:       u.Phone,
		Email:       u.Email,
		RepassType:  string(repassType),
		RepassValue: u.Payout.Value,
		Status:      unitStatusToBackend(u.Status),
	}
}

// ListUnits returns units matching the optional search term.
func (c *Client) ListUnits(ctx context.Context, q string) ([]models.Unit, error) {
	var dtos []unitDTO
	req := c.request(ctx).SetQueryParams(searchParams(q)).SetResult(&dtos)
	if err := c.execute(req, http.MethodGet, "/units"); err != nil {
		return nil, err
	}
	out := make([]models.Unit, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}

// CreateUnit creates a unit.
func (c *Client) CreateUnit(ctx context.Context, u models.Unit) (models.Unit, error) {
	var dto unitDTO
	req := c.request(ctx).SetBody(unitToDTO(u)).SetResult(&dto)
	if err := c.execute(req, http.MethodPost, "/units"); err != nil {
		return models.Unit{}, err
	}
	return dto.toModel(), nil
}

// UpdateUnit replaces a unit's editable fields.
func (c *Client) UpdateUnit(ctx context.Context, id string, u models.Unit) (models.Unit, error) {
	var dto unitDTO
	req := c.request(ctx).SetPathParam("id", id).SetBody(unitToDTO(u)).SetResult(&dto)
	if err := c.execute(req, http.MethodPut, "/units/{id}"); err != nil {
		return models.Unit{}, err
	}
	return dto.toModel(), nil
}

// DeleteUnit removes a unit.
func (c *Client) DeleteUnit(ctx context.Context, id string) error {
	return c.execute(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/units/{id}")
}
