// Package whatsapp renders billing and payout messages from saved templates
// and delivers them as wa.me links or through the WhatsApp Cloud API.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/config"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/templating"
	"github.com/mamadbah2/franchise/internal/validation"
	client "github.com/mamadbah2/franchise/pkg/clients/whatsapp"
)

var (
	// ErrUnsupportedRecipient is returned for payouts whose entity has no phone book entry.
	ErrUnsupportedRecipient = errors.New("payout messages are only sent to professionals")
	// ErrMissingPhone is returned when the recipient has no usable phone number.
	ErrMissingPhone = errors.New("recipient has no phone number")
)

const sendTimeout = 10 * time.Second

// Store is the data the messaging service reads and the integrations table it
// keeps templates in.
type Store interface {
	GetInvoice(ctx context.Context, id string) (models.Invoice, error)
	StudentContact(ctx context.Context, studentID string) (models.Contact, error)
	GetPayout(ctx context.Context, id string) (models.Payout, error)
	ProfessionalContact(ctx context.Context, id string) (models.Contact, error)

	GetIntegration(ctx context.Context, id string) (string, bool, error)
	ListIntegrations(ctx context.Context, prefix string) (map[string]string, error)
	UpsertIntegration(ctx context.Context, id, content string) error
	DeleteIntegration(ctx context.Context, id string) error
}

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	InvoiceMessage(ctx context.Context, invoiceID string) (models.Dispatch, error)
	PayoutMessage(ctx context.Context, payoutID string) (models.Dispatch, error)
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) (models.Dispatch, error)

	ListTemplates(ctx context.Context) ([]models.MessageTemplate, error)
	SaveTemplate(ctx context.Context, in TemplateInput) (models.MessageTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	PixConfig(ctx context.Context) (models.PixConfig, error)
	SavePixConfig(ctx context.Context, cfg models.PixConfig) error
}

// InvoiceDelivery asks the backend to deliver an invoice reminder itself.
type InvoiceDelivery interface {
	SendInvoiceWhatsApp(ctx context.Context, id, phone string) error
}

// TemplateInput creates or replaces a template.
type TemplateInput struct {
	Category string `json:"category" validate:"notblank"`
	Name     string `json:"name"`
	Content  string `json:"content" validate:"notblank"`
}

// Service is the production implementation. With the meta provider it also
// sends rendered messages through the Cloud API.
type Service struct {
	cfg    config.WhatsAppConfig
	store  Store
	sender client.Sender
	remote InvoiceDelivery
	cache  *cache.Cache
	logger *zap.Logger
}

// NewService wires a new service instance. sender may be nil for the link provider.
func NewService(cfg config.WhatsAppConfig, store Store, sender client.Sender, c *cache.Cache, logger *zap.Logger) *Service {
	svc := &Service{
		cfg:    cfg,
		store:  store,
		sender: sender,
		cache:  c,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.cache == nil {
		svc.cache = cache.New(nil, 0, svc.logger)
	}
	return svc
}

// WithBackendDelivery enables the backend provider for invoice reminders.
func (s *Service) WithBackendDelivery(d InvoiceDelivery) *Service {
	s.remote = d
	return s
}

// InvoiceMessage renders the billing message of an invoice for the student's guardian.
func (s *Service) InvoiceMessage(ctx context.Context, invoiceID string) (models.Dispatch, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return models.Dispatch{}, fmt.Errorf("load invoice: %w", err)
	}
	contact, err := s.store.StudentContact(ctx, inv.StudentID)
	if err != nil {
		return models.Dispatch{}, fmt.Errorf("load student contact: %w", err)
	}

	saved, err := s.templates(ctx)
	if err != nil {
		return models.Dispatch{}, err
	}
	pix, err := s.PixConfig(ctx)
	if err != nil {
		return models.Dispatch{}, err
	}

	guardian := fallback(contact.Recipient, "Responsável")
	student := fallback(contact.Name, "Aluno")
	vars := templating.Vars{
		templating.VarGuardian: guardian,
		templating.VarStudent:  student,
		templating.VarMonth:    inv.Month,
		templating.VarDueDate:  format.Date(inv.DueDate),
		templating.VarAmount:   format.Currency(inv.AmountNet),
		templating.VarPixType:  pix.PixType,
		templating.VarPixKey:   pix.PixKey,
	}
	body := templating.Render(templating.InvoiceTemplate(saved, inv.Status.Overdue()), vars)

	d, err := s.dispatch(ctx, contact.Phone, body, guardian, guardian+" • "+student)
	if err != nil || s.cfg.Provider != config.ProviderBackend || s.remote == nil {
		return d, err
	}
	if err := s.remote.SendInvoiceWhatsApp(ctx, inv.ID, d.Phone); err != nil {
		s.logger.Error("backend failed to send invoice reminder", zap.String("invoice_id", inv.ID), zap.Error(err))
		return d, fmt.Errorf("send invoice reminder: %w", err)
	}
	d.Sent = true
	return d, nil
}

// PayoutMessage renders the payout statement message for a professional.
func (s *Service) PayoutMessage(ctx context.Context, payoutID string) (models.Dispatch, error) {
	p, err := s.store.GetPayout(ctx, payoutID)
	if err != nil {
		return models.Dispatch{}, fmt.Errorf("load payout: %w", err)
	}
	if p.EntityType != models.EntityProfessional {
		return models.Dispatch{}, ErrUnsupportedRecipient
	}
	contact, err := s.store.ProfessionalContact(ctx, p.EntityID)
	if err != nil {
		return models.Dispatch{}, fmt.Errorf("load professional contact: %w", err)
	}

	saved, err := s.templates(ctx)
	if err != nil {
		return models.Dispatch{}, err
	}

	name := fallback(contact.Name, "Profissional")
	month := p.Month()
	vars := templating.Vars{
		templating.VarProfessional: name,
		templating.VarMonth:        month,
		templating.VarPDFLink:      fallback(p.ReceiptURL, "[anexo_pdf de Repasse]"),
	}
	body := templating.Render(templating.PayoutTemplate(saved), vars)

	return s.dispatch(ctx, contact.Phone, body, name, name+" • "+month)
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *Service) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) (models.Dispatch, error) {
	return s.dispatch(ctx, req.To, req.Message, req.To, "")
}

func (s *Service) dispatch(ctx context.Context, rawPhone, body, recipient, subject string) (models.Dispatch, error) {
	phone := format.NormalizePhone(rawPhone, s.cfg.CountryCode)
	if phone == "" {
		return models.Dispatch{}, ErrMissingPhone
	}

	d := models.Dispatch{
		Phone:     phone,
		Message:   body,
		URL:       Link(phone, body),
		Recipient: recipient,
		Subject:   subject,
	}
	if s.cfg.Provider != config.ProviderMeta || s.sender == nil {
		return d, nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.sender.SendText(ctxWithTimeout, client.TextMessage{To: phone, Body: body})
	if err != nil {
		s.logger.Error("failed to send whatsapp message", zap.String("to", phone), zap.Error(err))
		return d, fmt.Errorf("send whatsapp message: %w", err)
	}
	d.Sent = true
	d.MessageID = id

	s.logger.Info("whatsapp message sent", zap.String("to", phone), zap.String("message_id", id))
	return d, nil
}

// Link builds the wa.me deep link with the message percent-encoded.
func Link(phone, body string) string {
	text := strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + text
}

// ListTemplates returns every saved template sorted by id.
func (s *Service) ListTemplates(ctx context.Context) ([]models.MessageTemplate, error) {
	saved, err := s.templates(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(saved))
	for id := range saved {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.MessageTemplate, 0, len(ids))
	for _, id := range ids {
		out = append(out, templating.ParseTemplate(id, saved[id]))
	}
	return out, nil
}

// SaveTemplate creates or replaces the template identified by category and name.
func (s *Service) SaveTemplate(ctx context.Context, in TemplateInput) (models.MessageTemplate, error) {
	if err := validation.Struct(in); err != nil {
		return models.MessageTemplate{}, err
	}
	id := templating.TemplateID(in.Category, in.Name)
	if err := s.store.UpsertIntegration(ctx, id, in.Content); err != nil {
		return models.MessageTemplate{}, fmt.Errorf("save template %s: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.Templates)
	return templating.ParseTemplate(id, in.Content), nil
}

// DeleteTemplate removes a saved template. Built-in defaults apply afterwards.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if !strings.HasPrefix(id, templating.TemplatePrefix) {
		return validation.Field("id", "template inválido")
	}
	if err := s.store.DeleteIntegration(ctx, id); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.Templates)
	return nil
}

// PixConfig returns the banking data quoted in billing messages.
func (s *Service) PixConfig(ctx context.Context) (models.PixConfig, error) {
	raw, _, err := s.store.GetIntegration(ctx, templating.PixConfigID)
	if err != nil {
		return models.PixConfig{}, fmt.Errorf("load pix config: %w", err)
	}
	return templating.ParsePixConfig(raw), nil
}

// SavePixConfig stores the banking data.
func (s *Service) SavePixConfig(ctx context.Context, cfg models.PixConfig) error {
	if err := validation.Struct(cfg); err != nil {
		return err
	}
	raw, err := templating.EncodePixConfig(cfg)
	if err != nil {
		return err
	}
	if err := s.store.UpsertIntegration(ctx, templating.PixConfigID, raw); err != nil {
		return fmt.Errorf("save pix config: %w", err)
	}
	return nil
}

func (s *Service) templates(ctx context.Context) (map[string]string, error) {
	saved, err := cache.Remember(ctx, s.cache, cache.Key(ctx, cache.Templates, "all"), 0,
		func(ctx context.Context) (map[string]string, error) {
			return s.store.ListIntegrations(ctx, templating.TemplatePrefix)
		})
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return saved, nil
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
