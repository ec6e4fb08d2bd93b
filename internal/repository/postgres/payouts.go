package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

// GeneratePayoutPreview runs the aggregation procedure for the month. An
// empty entity type covers both professionals and units; nil ids cover every
// entity. Base and final values are left for the caller to derive.
func (r *Repository) GeneratePayoutPreview(ctx context.Context, month format.Month, entityType models.EntityType, entityIDs []string) ([]models.PreviewRow, error) {
	var ids any
	if len(entityIDs) > 0 {
		ids = entityIDs
	}
	rows, err := r.pool.Query(ctx, `
SELECT COALESCE(entity_type, ''),
       entity_id::text,
       COALESCE(entity_name, ''),
       COALESCE(repass_type, ''),
       COALESCE(repass_value, 0)::text,
       COALESCE(invoice_total, 0)::text,
       COALESCE(invoice_count, 0)::int,
       COALESCE(movement_count, 0)::int,
       COALESCE(total_bonuses, 0)::text,
       COALESCE(total_advances, 0)::text
FROM generate_repass_preview(p_month => $1::date, p_entity_type => $2::text, p_entity_ids => $3::text[]::uuid[])`,
		month.FirstDay(), optional(string(entityType)), ids)
	if err != nil {
		return nil, fmt.Errorf("generate payout preview for %s: %w", month, err)
	}
	defer rows.Close()

	var out []models.PreviewRow
	for rows.Next() {
		var (
			row                                   models.PreviewRow
			rawType, rawTerms, rawValue, rawTotal string
			rawBonuses, rawAdvances               string
		)
		if err := rows.Scan(&rawType, &row.EntityID, &row.EntityName, &rawTerms, &rawValue, &rawTotal,
			&row.InvoiceCount, &row.MovementCount, &rawBonuses, &rawAdvances); err != nil {
			return nil, fmt.Errorf("scan payout preview: %w", err)
		}
		et, ok := models.ParseEntityType(rawType)
		if !ok {
			r.logger.Warn("skipping preview row with unknown entity type",
				zap.String("entity_type", rawType), zap.String("entity_id", row.EntityID))
			continue
		}
		row.EntityType = et
		row.Terms = models.PayoutTerms{Type: models.ParsePayoutType(rawTerms), Value: amount(rawValue)}
		row.InvoiceTotal = amount(rawTotal)
		row.Bonuses = amount(rawBonuses)
		row.Advances = amount(rawAdvances)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout preview: %w", err)
	}
	return out, nil
}

// ConfirmPayout persists one entity's payout for the month and returns its id.
func (r *Repository) ConfirmPayout(ctx context.Context, month format.Month, entityType models.EntityType, entityID string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(confirm_repass(p_month => $1::date, p_entity_type => $2::text, p_entity_id => $3::uuid)::text, '')`,
		month.FirstDay(), string(entityType), entityID,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("confirm payout for %s %s: %w", entityType, entityID, err)
	}
	return id, nil
}

const payoutColumns = `
SELECT p.id::text,
       COALESCE(p.entity_type, ''),
       COALESCE(p.entity_id::text, ''),
       COALESCE(pr.name, u.name, ''),
       p.period_start,
       p.period_end,
       COALESCE(p.gross_value, 0)::text,
       COALESCE(p.advance_deduction, 0)::text,
       COALESCE(p.net_value, 0)::text,
       COALESCE(p.status, 'Aberta'),
       COALESCE(p.receipt_url, ''),
       p.paid_at
FROM repasses p
LEFT JOIN professionals pr ON p.entity_type = 'Equipe' AND pr.id = p.entity_id
LEFT JOIN units u ON p.entity_type = 'Unidade' AND u.id = p.entity_id`

type payoutScanner interface {
	Scan(dest ...any) error
}

func scanPayout(row payoutScanner) (models.Payout, error) {
	var (
		p                        models.Payout
		rawType, gross, adv, net string
		status                   string
	)
	if err := row.Scan(&p.ID, &rawType, &p.EntityID, &p.EntityName, &p.PeriodStart, &p.PeriodEnd,
		&gross, &adv, &net, &status, &p.ReceiptURL, &p.PaidAt); err != nil {
		return models.Payout{}, err
	}
	p.EntityType, _ = models.ParseEntityType(rawType)
	p.GrossValue = amount(gross)
	p.AdvanceDeduction = amount(adv)
	p.NetValue = amount(net)
	p.Status = models.PayoutStatusFromBackend(status)
	if p.EntityName == "" {
		p.EntityName = p.EntityID
	}
	return p, nil
}

// ListPayouts returns the payouts whose period lies within the month.
func (r *Repository) ListPayouts(ctx context.Context, month format.Month) ([]models.Payout, error) {
	rows, err := r.pool.Query(ctx, payoutColumns+`
WHERE p.period_start >= $1::date AND p.period_end <= $2::date
ORDER BY p.period_start DESC, p.id`,
		month.FirstDay(), month.End().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list payouts for %s: %w", month, err)
	}
	defer rows.Close()

	var out []models.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payouts: %w", err)
	}
	return out, nil
}

// GetPayout loads one payout by id.
func (r *Repository) GetPayout(ctx context.Context, id string) (models.Payout, error) {
	p, err := scanPayout(r.pool.QueryRow(ctx, payoutColumns+` WHERE p.id = $1::uuid LIMIT 1`, id))
	if err != nil {
		return models.Payout{}, notFound(err, "payout "+id)
	}
	return p, nil
}

// PayoutInvoices lists the invoices linked to a payout.
func (r *Repository) PayoutInvoices(ctx context.Context, payoutID string) ([]models.PayoutInvoice, error) {
	rows, err := r.pool.Query(ctx, `
SELECT i.id::text, COALESCE(s.name, ''), COALESCE(i.amount_net, i.amount_total, 0)::text, i.due_date
FROM repass_invoices ri
JOIN invoices i ON i.id = ri.invoice_id
LEFT JOIN students s ON s.id = i.student_id
WHERE ri.repass_id = $1::uuid
ORDER BY i.due_date`, payoutID)
	if err != nil {
		return nil, fmt.Errorf("list payout invoices: %w", err)
	}
	return scanPayoutInvoices(rows)
}

// PendingUnitInvoices lists a unit's unpaid invoices due within the period.
func (r *Repository) PendingUnitInvoices(ctx context.Context, unitID string, start, end time.Time) ([]models.PayoutInvoice, error) {
	rows, err := r.pool.Query(ctx, `
SELECT i.id::text, COALESCE(s.name, ''), COALESCE(i.amount_net, i.amount_total, 0)::text, i.due_date
FROM invoices i
LEFT JOIN students s ON s.id = i.student_id
WHERE i.unit_id = $1::uuid
  AND COALESCE(i.status, 'Aberta') <> 'Paga'
  AND i.due_date >= $2::date AND i.due_date <= $3::date
ORDER BY i.due_date`, unitID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list pending unit invoices: %w", err)
	}
	return scanPayoutInvoices(rows)
}

// ProfessionalContact returns the name and phone of a professional.
func (r *Repository) ProfessionalContact(ctx context.Context, id string) (models.Contact, error) {
	var c models.Contact
	err := r.pool.QueryRow(ctx, `
SELECT id::text, COALESCE(name, ''), COALESCE(phone, '')
FROM professionals WHERE id = $1::uuid LIMIT 1`, id).Scan(&c.ID, &c.Name, &c.Phone)
	if err != nil {
		return models.Contact{}, notFound(err, "professional "+id)
	}
	c.Recipient = c.Name
	return c, nil
}

// EntityNames maps "<entity type>:<id>" to a display name for every
// professional and unit.
func (r *Repository) EntityNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT 'Equipe', id::text, COALESCE(name, '') FROM professionals
UNION ALL
SELECT 'Unidade', id::text, COALESCE(name, '') FROM units`)
	if err != nil {
		return nil, fmt.Errorf("load entity names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var kind, id, name string
		if err := rows.Scan(&kind, &id, &name); err != nil {
			return nil, fmt.Errorf("scan entity name: %w", err)
		}
		names[kind+":"+id] = name
	}
	return names, rows.Err()
}
