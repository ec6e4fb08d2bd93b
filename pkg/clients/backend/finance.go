package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

// MarkInvoicePaidInput carries the payment data of an invoice. Empty fields
// default to PIX and the current time.
type MarkInvoicePaidInput struct {
	PaymentMethod  string
	PaidAt         time.Time
	ReceiptURL     string
	ProfessionalID string
}

type markInvoicePaidBody struct {
	PaymentMethod  string    `json:"payment_method"`
	PaidAt         time.Time `json:"paid_at"`
	ReceiptURL     *string   `json:"receipt_url"`
	ProfessionalID *string   `json:"professional_id"`
}

// MarkRepassPaidInput carries the payment data of a payout.
type MarkRepassPaidInput struct {
	PaidAt     time.Time
	ReceiptURL string
}

type markRepassPaidBody struct {
	PaidAt     time.Time `json:"paid_at"`
	ReceiptURL *string   `json:"receipt_url"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func paidAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// MarkInvoicePaid registers the payment of an invoice.
func (c *Client) MarkInvoicePaid(ctx context.Context, id string, in MarkInvoicePaidInput) error {
	method := in.PaymentMethod
	if method == "" {
		method = "PIX"
	}
	body := markInvoicePaidBody{
		PaymentMethod:  method,
		PaidAt:         paidAt(in.PaidAt),
		ReceiptURL:     nullable(in.ReceiptURL),
		ProfessionalID: nullable(in.ProfessionalID),
	}
	req := c.request(ctx).SetPathParam("id", id).SetBody(body)
	return c.execute(req, http.MethodPut, "/invoices/{id}/mark-paid")
}

// MarkExpensePaid registers the payment of an expense.
func (c *Client) MarkExpensePaid(ctx context.Context, id string) error {
	req := c.request(ctx).SetPathParam("id", id).SetBody(map[string]any{})
	return c.execute(req, http.MethodPut, "/expenses/{id}/mark-paid")
}

// MarkRepassPaid registers the payment of a payout.
func (c *Client) MarkRepassPaid(ctx context.Context, id string, in MarkRepassPaidInput) error {
	body := markRepassPaidBody{PaidAt: paidAt(in.PaidAt), ReceiptURL: nullable(in.ReceiptURL)}
	req := c.request(ctx).SetPathParam("id", id).SetBody(body)
	return c.execute(req, http.MethodPut, "/repasses/{id}/mark-paid")
}

// SendInvoiceWhatsApp asks the backend to deliver an invoice reminder. An
// empty phone lets the backend use the guardian's number.
func (c *Client) SendInvoiceWhatsApp(ctx context.Context, id, phone string) error {
	body := map[string]string{}
	if phone != "" {
		body["phone"] = phone
	}
	req := c.request(ctx).SetPathParam("id", id).SetBody(body)
	return c.execute(req, http.MethodPost, "/invoices/{id}/send-whatsapp")
}

// DashboardMetrics returns the franchise KPIs.
func (c *Client) DashboardMetrics(ctx context.Context) (models.DashboardMetrics, error) {
	var metrics models.DashboardMetrics
	req := c.request(ctx).SetResult(&metrics)
	if err := c.execute(req, http.MethodGet, "/dashboard/metrics"); err != nil {
		return models.DashboardMetrics{}, err
	}
	return metrics, nil
}
