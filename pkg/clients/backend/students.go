package backend

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

type studentDTO struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	CPF           string     `json:"cpf,omitempty"`
	BirthDate     string     `json:"birthdate,omitempty"`
	StartDate     string     `json:"start_date,omitempty"`
	LeavingDate   string     `json:"leaving_date,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	GuardianName  string     `json:"guardian_name,omitempty"`
	GuardianPhone string     `json:"guardian_phone,omitempty"`
	GuardianEmail string     `json:"guardian_email,omitempty"`
	GuardianCPF   string     `json:"guardian_cpf,omitempty"`
	Status        string     `json:"status,omitempty"`
	UnitID        string     `json:"unit_id,omitempty"`
	ClassID       string     `json:"class_id,omitempty"`
	PlanID        string     `json:"plan_id,omitempty"`
	RecurrenceID  string     `json:"recurrence_id,omitempty"`
	Address       string     `json:"address,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

var cardPattern = regexp.MustCompile(`cr[eé]dito|d[eé]bito`)

// paymentMethodFromBackend maps the backend payment enum to the methods shown
// to operators. Unknown values fall back to Pix.
func paymentMethodFromBackend(raw string) models.PaymentMethod {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "pix"):
		return models.PaymentPix
	case cardPattern.MatchString(v):
		return models.PaymentCard
	case strings.Contains(v, "din"), strings.Contains(v, "cash"):
		return models.PaymentCash
	case strings.Contains(v, "transf"):
		return models.PaymentTransfer
	default:
		return models.PaymentPix
	}
}

// paymentMethodToBackend maps to the backend enum, which has no transfer
// value; transfers are recorded as PIX.
func paymentMethodToBackend(m models.PaymentMethod) string {
	switch m {
	case models.PaymentPix, models.PaymentTransfer:
		return "PIX"
	case models.PaymentCard:
		return "Crédito"
	case models.PaymentCash:
		return "Dinheiro"
	default:
		return ""
	}
}

func studentStatusFromBackend(raw string) models.StudentStatus {
	switch raw {
	case "", "Active":
		return models.StudentActive
	case "Inactive":
		return models.StudentInactive
	default:
		return models.StudentStatus(raw)
	}
}

func (d studentDTO) toModel() models.Student {
	return models.Student{
		ID:          d.ID,
		Name:        d.Name,
		BirthDate:   d.BirthDate,
		StartDate:   d.StartDate,
		LeavingDate: d.LeavingDate,
		CPF:         d.CPF,
		Address:     d.Address,
		Guardian: models.Guardian{
			Name:  d.GuardianName,
			Phone: d.GuardianPhone,
			Email: d.GuardianEmail,
			CPF:   d.GuardianCPF,
		},
		UnitID:        d.UnitID,
		ClassID:       d.ClassID,
		PlanID:        d.PlanID,
		RecurrenceID:  d.RecurrenceID,
		PaymentMethod: paymentMethodFromBackend(d.PaymentMethod),
		Status:        studentStatusFromBackend(d.Status),
		CreatedAt:     deref(d.CreatedAt),
		UpdatedAt:     deref(d.UpdatedAt),
	}
}

func studentToDTO(s models.Student) studentDTO {
	trim := strings.TrimSpace
	return studentDTO{
		Name:          s.Name,
		CPF:           trim(s.CPF),
		BirthDate:     trim(s.BirthDate),
		StartDate:     trim(s.StartDate),
		LeavingDate:   trim(s.LeavingDate),
		PaymentMethod: paymentMethodToBackend(s.PaymentMethod),
		GuardianName:  trim(s.Guardian.Name),
		GuardianPhone: trim(s.Guardian.Phone),
		GuardianEmail: trim(s.Guardian.Email),
		GuardianCPF:   trim(s.Guardian.CPF),
		Status:        string(s.Status),
		UnitID:        trim(s.UnitID),
		ClassID:       trim(s.ClassID),
		PlanID:        trim(s.PlanID),
		RecurrenceID:  trim(s.RecurrenceID),
		Address:       trim(s.Address),
	}
}

// ListStudents returns students matching the optional search term.
func (c *Client) ListStudents(ctx context.Context, q string) ([]models.Student, error) {
	var dtos []studentDTO
	req := c.request(ctx).SetQueryParams(searchParams(q)).SetResult(&dtos)
	if err := c.execute(req, http.MethodGet, "/students"); err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}

// CreateStudent creates a student and returns the stored record.
func (c *Client) CreateStudent(ctx context.Context, s models.Student) (models.Student, error) {
	var dto studentDTO
	req := c.request(ctx).SetBody(studentToDTO(s)).SetResult(&dto)
	if err := c.execute(req, http.MethodPost, "/students"); err != nil {
		return models.Student{}, err
	}
	return dto.toModel(), nil
}

// UpdateStudent replaces a student's editable fields.
func (c *Client) UpdateStudent(ctx context.Context, id string, s models.Student) (models.Student, error) {
	var dto studentDTO
	req := c.request(ctx).SetPathParam("id", id).SetBody(studentToDTO(s)).SetResult(&dto)
	if err := c.execute(req, http.MethodPut, "/students/{id}"); err != nil {
		return models.Student{}, err
	}
	return dto.toModel(), nil
}

// DeleteStudent removes a student.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.execute(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/students/{id}")
}
