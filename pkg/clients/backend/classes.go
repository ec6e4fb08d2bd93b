package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

type slotDTO struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// scheduleDTO is the jsonb schedule column: {"slots": [...]}. Older rows
// store the bare array.
type scheduleDTO struct {
	Slots []slotDTO `json:"slots"`
}

func (s *scheduleDTO) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		s.Slots = nil
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, &s.Slots)
	}
	type plain scheduleDTO
	return json.Unmarshal(data, (*plain)(s))
}

type classDTO struct {
	ID         string      `json:"id,omitempty"`
	UnitID     string      `json:"unit_id"`
	Name       string      `json:"name"`
	Category   *string     `json:"category"`
	Vacancies  *int        `json:"vacancies"`
	Status     string      `json:"status,omitempty"`
	Schedule   scheduleDTO `json:"schedule"`
	TeacherIDs []string    `json:"teacher_ids"`
}

func (d classDTO) toModel() models.Class {
	c := models.Class{
		ID:         d.ID,
		UnitID:     d.UnitID,
		Name:       d.Name,
		Capacity:   d.Vacancies,
		Schedule:   make([]models.ScheduleSlot, 0, len(d.Schedule.Slots)),
		TeacherIDs: d.TeacherIDs,
		Status:     d.Status,
	}
	if d.Category != nil {
		c.Category = *d.Category
	}
	for _, s := range d.Schedule.Slots {
		c.Schedule = append(c.Schedule, models.ScheduleSlot{Day: models.Weekday(s.Day), Start: s.Start, End: s.End})
	}
	if c.TeacherIDs == nil {
		c.TeacherIDs = []string{}
	}
	return c
}

func classToDTO(c models.Class) classDTO {
	dto := classDTO{
		UnitID:     c.UnitID,
		Name:       c.Name,
		Vacancies:  c.Capacity,
		Status:     c.Status,
		Schedule:   scheduleDTO{Slots: make([]slotDTO, 0, len(c.Schedule))},
		TeacherIDs: c.TeacherIDs,
	}
	if c.Category != "" {
		category := c.Category
		dto.Category = &category
	}
	if dto.Status == "" {
		dto.Status = "Ativo"
	}
	if dto.TeacherIDs == nil {
		dto.TeacherIDs = []string{}
	}
	for _, s := range c.Schedule {
		dto.Schedule.Slots = append(dto.Schedule.Slots, slotDTO{Day: string(s.Day), Start: s.Start, End: s.End})
	}
	return dto
}

// ClassQuery narrows the class listing.
type ClassQuery struct {
	UnitID string
	Status string
}

// ListClasses returns classes, optionally restricted to a unit or status.
func (c *Client) ListClasses(ctx context.Context, q ClassQuery) ([]models.Class, error) {
	params := map[string]string{}
	if q.UnitID != "" {
		params["unit_id"] = q.UnitID
	}
	if q.Status != "" {
		params["status"] = q.Status
	}

	var dtos []classDTO
	req := c.request(ctx).SetQueryParams(params).SetResult(&dtos)
	if err := c.execute(req, http.MethodGet, "/classes"); err != nil {
		return nil, err
	}
	out := make([]models.Class, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}

// CreateClass creates a class.
func (c *Client) CreateClass(ctx context.Context, class models.Class) (models.Class, error) {
	var dto classDTO
	req := c.request(ctx).SetBody(classToDTO(class)).SetResult(&dto)
	if err := c.execute(req, http.MethodPost, "/classes"); err != nil {
		return models.Class{}, err
	}
	return dto.toModel(), nil
}

// UpdateClass replaces a class's editable fields.
func (c *Client) UpdateClass(ctx context.Context, id string, class models.Class) (models.Class, error) {
	var dto classDTO
	req := c.request(ctx).SetPathParam("id", id).SetBody(classToDTO(class)).SetResult(&dto)
	if err := c.execute(req, http.MethodPut, "/classes/{id}"); err != nil {
		return models.Class{}, err
	}
	return dto.toModel(), nil
}

// DeleteClass removes a class.
func (c *Client) DeleteClass(ctx context.Context, id string) error {
	return c.execute(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/classes/{id}")
}
