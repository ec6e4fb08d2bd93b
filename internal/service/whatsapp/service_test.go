package whatsapp

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/franchise/internal/config"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/service/templating"
	"github.com/mamadbah2/franchise/internal/validation"
	client "github.com/mamadbah2/franchise/pkg/clients/whatsapp"
)

type memStore struct {
	invoices     map[string]models.Invoice
	students     map[string]models.Contact
	payouts      map[string]models.Payout
	professional map[string]models.Contact
	integrations map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		invoices: map[string]models.Invoice{
			"inv-1": {
				ID: "inv-1", StudentID: "stu-1", Month: "2025-10",
				DueDate:   time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC),
				AmountNet: decimal.RequireFromString("150"), Status: models.InvoicePending,
			},
			"inv-2": {
				ID: "inv-2", StudentID: "stu-1", Month: "2025-09",
				DueDate:   time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
				AmountNet: decimal.RequireFromString("150"), Status: models.InvoiceLate,
			},
			"inv-3": {ID: "inv-3", StudentID: "stu-2"},
		},
		students: map[string]models.Contact{
			"stu-1": {ID: "stu-1", Name: "João", Recipient: "Ana", Phone: "(11) 98765-4321"},
			"stu-2": {ID: "stu-2", Name: "Leo"},
		},
		payouts: map[string]models.Payout{
			"pay-1": {ID: "pay-1", EntityType: models.EntityProfessional, EntityID: "pro-1", PeriodStart: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
			"pay-2": {ID: "pay-2", EntityType: models.EntityUnit, EntityID: "unit-1"},
		},
		professional: map[string]models.Contact{
			"pro-1": {ID: "pro-1", Name: "Carlos", Recipient: "Carlos", Phone: "11 3456-7890"},
		},
		integrations: map[string]string{},
	}
}

func (m *memStore) GetInvoice(_ context.Context, id string) (models.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return models.Invoice{}, errors.New("not found")
	}
	return inv, nil
}

func (m *memStore) StudentContact(_ context.Context, id string) (models.Contact, error) {
	return m.students[id], nil
}

func (m *memStore) GetPayout(_ context.Context, id string) (models.Payout, error) {
	return m.payouts[id], nil
}

func (m *memStore) ProfessionalContact(_ context.Context, id string) (models.Contact, error) {
	return m.professional[id], nil
}

func (m *memStore) GetIntegration(_ context.Context, id string) (string, bool, error) {
	v, ok := m.integrations[id]
	return v, ok, nil
}

func (m *memStore) ListIntegrations(_ context.Context, prefix string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.integrations {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memStore) UpsertIntegration(_ context.Context, id, content string) error {
	m.integrations[id] = content
	return nil
}

func (m *memStore) DeleteIntegration(_ context.Context, id string) error {
	delete(m.integrations, id)
	return nil
}

type fakeSender struct {
	sent []client.TextMessage
	err  error
}

func (f *fakeSender) SendText(_ context.Context, msg client.TextMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "wamid.1", nil
}

func linkConfig() config.WhatsAppConfig {
	return config.WhatsAppConfig{Provider: config.ProviderLink, CountryCode: "55"}
}

func TestInvoiceMessageUsesMonthlyFeeTemplate(t *testing.T) {
	store := newMemStore()
	store.integrations[templating.PixConfigID] = `{"pix_type":"CNPJ","pix_key":"12.345.678/0001-00"}`
	svc := NewService(linkConfig(), store, nil, nil, nil)

	d, err := svc.InvoiceMessage(context.Background(), "inv-1")
	require.NoError(t, err)

	assert.Equal(t, "5511987654321", d.Phone)
	assert.Equal(t, "Ana", d.Recipient)
	assert.Equal(t, "Ana • João", d.Subject)
	assert.False(t, d.Sent)
	assert.Contains(t, d.Message, "Olá Ana")
	assert.Contains(t, d.Message, "aluno(a) João")
	assert.Contains(t, d.Message, "mês 2025-10 vencimento em 10/10/2025")
	assert.Contains(t, d.Message, "CNPJ - 12.345.678/0001-00")

	parsed, err := url.Parse(d.URL)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", parsed.Host)
	assert.Equal(t, "/5511987654321", parsed.Path)
	assert.Equal(t, d.Message, parsed.Query().Get("text"))
}

func TestInvoiceMessageOverdueUsesCollectionTemplate(t *testing.T) {
	store := newMemStore()
	store.integrations[templating.TemplateCollection] = "[responsável], a fatura de [nome aluno] ({{valor}}) venceu em [dataVencimento]."
	svc := NewService(linkConfig(), store, nil, nil, nil)

	d, err := svc.InvoiceMessage(context.Background(), "inv-2")
	require.NoError(t, err)
	assert.Equal(t, "Ana, a fatura de João (R$ 150,00) venceu em 10/09/2025.", d.Message)
}

func TestInvoiceMessageWithoutPhone(t *testing.T) {
	svc := NewService(linkConfig(), newMemStore(), nil, nil, nil)
	_, err := svc.InvoiceMessage(context.Background(), "inv-3")
	assert.ErrorIs(t, err, ErrMissingPhone)
}

func TestPayoutMessage(t *testing.T) {
	svc := NewService(linkConfig(), newMemStore(), nil, nil, nil)

	d, err := svc.PayoutMessage(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, "551134567890", d.Phone)
	assert.Equal(t, "Carlos • 2025-10", d.Subject)
	assert.Contains(t, d.Message, "Olá Carlos segue abaixo demonstrativo de repasse do mês de 2025-10")
	assert.Contains(t, d.Message, "[anexo_pdf de Repasse]")

	_, err = svc.PayoutMessage(context.Background(), "pay-2")
	assert.ErrorIs(t, err, ErrUnsupportedRecipient)
}

func TestMetaProviderSends(t *testing.T) {
	sender := &fakeSender{}
	cfg := linkConfig()
	cfg.Provider = config.ProviderMeta
	svc := NewService(cfg, newMemStore(), sender, nil, nil)

	d, err := svc.PayoutMessage(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.True(t, d.Sent)
	assert.Equal(t, "wamid.1", d.MessageID)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "551134567890", sender.sent[0].To)

	sender.err = &client.APIError{StatusCode: 400, Code: 131030, Message: "recipient not allowed"}
	_, err = svc.PayoutMessage(context.Background(), "pay-1")
	var apiErr *client.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestLinkEncodesSpacesAsPercent20(t *testing.T) {
	assert.Equal(t, "https://wa.me/55119?text=Ol%C3%A1%20Ana%0Aok%2B1", Link("55119", "Olá Ana\nok+1"))
}

func TestTemplatesAndPix(t *testing.T) {
	store := newMemStore()
	svc := NewService(linkConfig(), store, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.SaveTemplate(ctx, TemplateInput{Category: "Cobrança", Name: "Lembrete de atraso"})
	assert.True(t, errors.Is(err, validation.ErrValidation))

	tpl, err := svc.SaveTemplate(ctx, TemplateInput{Category: "Cobrança", Name: "Lembrete de atraso", Content: "Oi {{responsavel}}"})
	require.NoError(t, err)
	assert.Equal(t, "whatsapp:cobranca:lembrete-de-atraso", tpl.ID)

	list, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cobrança", list[0].Category)

	require.NoError(t, svc.DeleteTemplate(ctx, tpl.ID))
	assert.Empty(t, store.integrations)
	assert.Error(t, svc.DeleteTemplate(ctx, "banking:pix"))

	pix, err := svc.PixConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PIX", pix.PixType)
	assert.Equal(t, "informar", pix.PixKey)

	assert.Error(t, svc.SavePixConfig(ctx, models.PixConfig{PixType: "CPF"}))
	require.NoError(t, svc.SavePixConfig(ctx, models.PixConfig{PixType: "CPF", PixKey: "123", BankName: "Banco"}))
	pix, err = svc.PixConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "123", pix.PixKey)
	assert.Equal(t, "Banco", pix.BankName)
}

type fakeDelivery struct{ invoices, phones []string }

func (f *fakeDelivery) SendInvoiceWhatsApp(_ context.Context, id, phone string) error {
	f.invoices = append(f.invoices, id)
	f.phones = append(f.phones, phone)
	return nil
}

func TestBackendProviderDeliversInvoices(t *testing.T) {
	delivery := &fakeDelivery{}
	cfg := linkConfig()
	cfg.Provider = config.ProviderBackend
	svc := NewService(cfg, newMemStore(), nil, nil, nil).WithBackendDelivery(delivery)

	d, err := svc.InvoiceMessage(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.True(t, d.Sent)
	assert.Equal(t, []string{"inv-1"}, delivery.invoices)
	assert.Equal(t, []string{"5511987654321"}, delivery.phones)

	d, err = svc.PayoutMessage(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.False(t, d.Sent)
}
