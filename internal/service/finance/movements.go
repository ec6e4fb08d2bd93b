package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/listing"
	"github.com/mamadbah2/franchise/internal/validation"
)

// MovementQuery selects a page of a month's advances and bonuses. Type is
// applied by the query; search matches entity name and description.
type MovementQuery struct {
	Month  format.Month
	Type   models.MovementType
	Search string
	Window
}

// MovementList is a page of movements.
type MovementList = List[models.Movement, models.MovementTotals]

// MovementInput is a new advance or bonus.
type MovementInput struct {
	EntityType  string          `json:"entity_type" validate:"notblank"`
	EntityID    string          `json:"entity_id" validate:"notblank"`
	UnitID      string          `json:"unit_id"`
	Type        string          `json:"type" validate:"oneof=Adiantamento Bonificacao"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Description string          `json:"description" validate:"max=200"`
}

// ListMovements returns a page of the month's movements.
func (s *Service) ListMovements(ctx context.Context, q MovementQuery) (MovementList, error) {
	if q.Type != "" && !q.Type.Valid() {
		return MovementList{}, validation.Field("type", "tipo desconhecido")
	}

	key := cache.Key(ctx, cache.Movements, q.Month.String(), string(q.Type))
	movements, err := cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) ([]models.Movement, error) {
		rows, err := s.store.ListMovements(ctx, q.Month, q.Type)
		if err != nil {
			return nil, err
		}
		names, err := s.store.EntityNames(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].EntityName = names[string(rows[i].EntityType)+":"+rows[i].EntityID]
			if rows[i].EntityName == "" {
				rows[i].EntityName = rows[i].EntityID
			}
		}
		return rows, nil
	})
	if err != nil {
		return MovementList{}, fmt.Errorf("list movements: %w", err)
	}

	filtered := listing.Filter(movements, func(m models.Movement) bool {
		return listing.Contains(m.EntityName, q.Search) || (q.Search != "" && listing.Contains(m.Description, q.Search))
	})
	filters := map[string]string{"type": string(q.Type), "q": q.Search}
	return page(q.Month, filtered, MovementTotalsOf(filtered), q.Window, filters), nil
}

// MovementTotalsOf sums bonuses as credits and advances as debits.
func MovementTotalsOf(movements []models.Movement) models.MovementTotals {
	var t models.MovementTotals
	for _, m := range movements {
		switch m.Type {
		case models.MovementBonus:
			t.Credits = t.Credits.Add(m.Amount)
		case models.MovementAdvance:
			t.Debits = t.Debits.Add(m.Amount)
		}
	}
	t.Balance = t.Credits.Sub(t.Debits)
	t.Count = len(movements)
	return t
}

// CreateMovement records an open advance or bonus.
func (s *Service) CreateMovement(ctx context.Context, in MovementInput) (models.Movement, error) {
	if err := validation.Struct(in); err != nil {
		return models.Movement{}, err
	}
	entityType, ok := models.ParseEntityType(in.EntityType)
	if !ok {
		return models.Movement{}, validation.Field("entity_type", "tipo de entidade desconhecido")
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return models.Movement{}, validation.Field("date", "data inválida")
	}

	m, err := s.store.CreateMovement(ctx, models.Movement{
		EntityType:  entityType,
		EntityID:    in.EntityID,
		UnitID:      in.UnitID,
		Type:        models.MovementType(in.Type),
		Amount:      in.Amount,
		Date:        date,
		Status:      models.MovementOpen,
		Description: in.Description,
	})
	if err != nil {
		return models.Movement{}, fmt.Errorf("create movement: %w", err)
	}
	s.cache.Invalidate(ctx, cache.Movements)
	return m, nil
}
