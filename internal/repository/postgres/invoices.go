package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

// GenerateInvoices creates the month's invoices for every active student and
// returns how many were created.
func (r *Repository) GenerateInvoices(ctx context.Context, generationDate time.Time, dueDay int) (int, error) {
	var created int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(generate_invoices_for_active_students(p_generation_date => $1::date, p_due_day => $2), 0)`,
		generationDate.Format("2006-01-02"), dueDay,
	).Scan(&created)
	if err != nil {
		return 0, fmt.Errorf("generate invoices: %w", err)
	}
	r.logger.Info("invoices generated", zap.Time("generation_date", generationDate), zap.Int("count", created))
	return created, nil
}

// ListInvoicesForMonth runs list_invoices_for_month. unitID and status are
// optional backend filters; status uses the backend vocabulary.
func (r *Repository) ListInvoicesForMonth(ctx context.Context, month format.Month, unitID, status string) ([]models.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text,
       COALESCE(student_id::text, ''),
       COALESCE(student_name, ''),
       COALESCE(unit_id::text, ''),
       COALESCE(unit_name, ''),
       due_date,
       COALESCE(amount_total, 0)::text,
       COALESCE(amount_net, amount_total, 0)::text,
       COALESCE(status, 'Aberta')
FROM list_invoices_for_month(p_month => $1::date, p_unit_id => $2::uuid, p_status => $3::text)`,
		month.FirstDay(), optional(unitID), optional(status))
	if err != nil {
		return nil, fmt.Errorf("list invoices for %s: %w", month, err)
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		var (
			inv                 models.Invoice
			total, net, rawStat string
		)
		if err := rows.Scan(&inv.ID, &inv.StudentID, &inv.StudentName, &inv.UnitID, &inv.UnitName,
			&inv.DueDate, &total, &net, &rawStat); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		finishInvoice(&inv, total, net, rawStat)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return out, nil
}

// GetInvoice loads one invoice by id.
func (r *Repository) GetInvoice(ctx context.Context, id string) (models.Invoice, error) {
	var (
		inv                 models.Invoice
		total, net, rawStat string
	)
	err := r.pool.QueryRow(ctx, `
SELECT i.id::text,
       COALESCE(i.student_id::text, ''),
       COALESCE(s.name, ''),
       COALESCE(i.unit_id::text, ''),
       i.due_date,
       COALESCE(i.amount_total, 0)::text,
       COALESCE(i.amount_net, i.amount_total, 0)::text,
       COALESCE(i.status, 'Aberta'),
       COALESCE(i.receipt_url, '')
FROM invoices i
LEFT JOIN students s ON s.id = i.student_id
WHERE i.id = $1::uuid
LIMIT 1`, id).Scan(&inv.ID, &inv.StudentID, &inv.StudentName, &inv.UnitID, &inv.DueDate,
		&total, &net, &rawStat, &inv.ReceiptURL)
	if err != nil {
		return models.Invoice{}, notFound(err, "invoice "+id)
	}
	finishInvoice(&inv, total, net, rawStat)
	return inv, nil
}

// StudentContact returns the guardian contact of a student.
func (r *Repository) StudentContact(ctx context.Context, studentID string) (models.Contact, error) {
	var c models.Contact
	err := r.pool.QueryRow(ctx, `
SELECT id::text, COALESCE(name, ''), COALESCE(guardian_name, ''), COALESCE(guardian_phone, '')
FROM students WHERE id = $1::uuid LIMIT 1`, studentID).Scan(&c.ID, &c.Name, &c.Recipient, &c.Phone)
	if err != nil {
		return models.Contact{}, notFound(err, "student "+studentID)
	}
	return c, nil
}

func finishInvoice(inv *models.Invoice, total, net, rawStatus string) {
	inv.AmountTotal = amount(total)
	inv.AmountNet = amount(net)
	inv.Status = models.InvoiceStatusFromBackend(rawStatus)
	if inv.StudentName == "" {
		inv.StudentName = inv.StudentID
	}
	if inv.UnitName == "" {
		inv.UnitName = inv.UnitID
	}
	if !inv.DueDate.IsZero() {
		inv.Month = format.MonthOf(inv.DueDate).String()
	}
}

// scanPayoutInvoices reads (id, student name, amount, due date) rows.
func scanPayoutInvoices(rows pgx.Rows) ([]models.PayoutInvoice, error) {
	defer rows.Close()
	var out []models.PayoutInvoice
	for rows.Next() {
		var (
			pi  models.PayoutInvoice
			raw string
		)
		if err := rows.Scan(&pi.ID, &pi.StudentName, &raw, &pi.DueDate); err != nil {
			return nil, fmt.Errorf("scan payout invoice: %w", err)
		}
		pi.AmountNet = amount(raw)
		out = append(out, pi)
	}
	return out, rows.Err()
}

// CreateInvoice inserts a manual invoice outside the monthly generation.
func (r *Repository) CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	status, ok := inv.Status.Backend()
	if !ok {
		status, _ = models.InvoicePending.Backend()
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO invoices (unit_id, student_id, due_date, amount_total, amount_net, payment_method, status)
VALUES ($1::uuid, $2::uuid, $3::date, $4::numeric, $4::numeric, $5, $6)
RETURNING id::text`,
		inv.UnitID, inv.StudentID, inv.DueDate.Format("2006-01-02"), inv.AmountTotal.String(),
		optional(string(inv.PaymentMethod)), status,
	).Scan(&inv.ID)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	inv.AmountNet = inv.AmountTotal
	inv.Month = format.MonthOf(inv.DueDate).String()
	return inv, nil
}

// MarkInvoiceCanceled cancels an invoice.
func (r *Repository) MarkInvoiceCanceled(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET status = 'Cancelada' WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("cancel invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	return nil
}
