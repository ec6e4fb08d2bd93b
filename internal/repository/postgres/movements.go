package postgres

import (
	"context"
	"fmt"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

const movementColumns = `
SELECT id::text, COALESCE(entity_type, ''), COALESCE(entity_id::text, ''), COALESCE(unit_id::text, ''),
       COALESCE(type, ''), COALESCE(amount, 0)::text, advance_date, COALESCE(status, 'Aberta'),
       COALESCE(description, ''), COALESCE(receipt_url, '')
FROM financial_movements`

// ListMovements returns the movements dated within the month. An empty
// movement type returns both advances and bonuses.
func (r *Repository) ListMovements(ctx context.Context, month format.Month, movementType models.MovementType) ([]models.Movement, error) {
	rows, err := r.pool.Query(ctx, movementColumns+`
WHERE advance_date >= $1::date AND advance_date <= $2::date
  AND ($3::text IS NULL OR type = $3::text)
ORDER BY advance_date DESC, id`,
		month.FirstDay(), month.End().Format("2006-01-02"), optional(string(movementType)))
	if err != nil {
		return nil, fmt.Errorf("list movements for %s: %w", month, err)
	}
	return scanMovements(rows)
}

// PayoutMovements lists the movements applied to a payout.
func (r *Repository) PayoutMovements(ctx context.Context, payoutID string) ([]models.Movement, error) {
	rows, err := r.pool.Query(ctx, movementColumns+`
WHERE repass_id = $1::uuid
ORDER BY advance_date, id`, payoutID)
	if err != nil {
		return nil, fmt.Errorf("list payout movements: %w", err)
	}
	return scanMovements(rows)
}

// CreateMovement inserts an open advance or bonus.
func (r *Repository) CreateMovement(ctx context.Context, m models.Movement) (models.Movement, error) {
	if m.Status == "" {
		m.Status = models.MovementOpen
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO financial_movements (entity_type, entity_id, unit_id, type, amount, advance_date, status, description)
VALUES ($1, $2::uuid, $3::uuid, $4, $5::numeric, $6::date, $7, $8)
RETURNING id::text`,
		string(m.EntityType), m.EntityID, optional(m.UnitID), string(m.Type), m.Amount.String(),
		m.Date.Format("2006-01-02"), m.Status, optional(m.Description),
	).Scan(&m.ID)
	if err != nil {
		return models.Movement{}, fmt.Errorf("insert movement: %w", err)
	}
	return m, nil
}

type movementRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

func scanMovements(rows movementRows) ([]models.Movement, error) {
	defer rows.Close()
	var out []models.Movement
	for rows.Next() {
		var (
			m                 models.Movement
			rawEntity, rawAmt string
			rawType           string
		)
		if err := rows.Scan(&m.ID, &rawEntity, &m.EntityID, &m.UnitID, &rawType, &rawAmt, &m.Date,
			&m.Status, &m.Description, &m.ReceiptURL); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.EntityType, _ = models.ParseEntityType(rawEntity)
		m.Type = models.MovementType(rawType)
		m.Amount = amount(rawAmt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return out, nil
}
