package backend

import (
	"context"
	"net/http"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

const activeStatus = "Ativo"

// ListPlans returns the active plans, optionally of a single unit.
func (c *Client) ListPlans(ctx context.Context, unitID string) ([]models.Plan, error) {
	params := map[string]string{"status": activeStatus}
	if unitID != "" {
		params["unit_id"] = unitID
	}
	var plans []models.Plan
	req := c.request(ctx).SetQueryParams(params).SetResult(&plans)
	if err := c.execute(req, http.MethodGet, "/plans"); err != nil {
		return nil, err
	}
	return plans, nil
}

// ListRecurrences returns the active billing recurrences.
func (c *Client) ListRecurrences(ctx context.Context) ([]models.Recurrence, error) {
	var recurrences []models.Recurrence
	req := c.request(ctx).SetQueryParam("status", activeStatus).SetResult(&recurrences)
	if err := c.execute(req, http.MethodGet, "/recurrences"); err != nil {
		return nil, err
	}
	return recurrences, nil
}
