package templating

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

// Template ids as stored in the integrations table.
const (
	TemplateMonthlyFee     = "whatsapp:cobranca:mensalidade"
	TemplateCollection     = "whatsapp:cobranca:cobranca"
	TemplateBillingDefault = "whatsapp:cobranca:default"
	TemplatePayout         = "whatsapp:repasse:default"
	TemplatePrefix         = "whatsapp:"
	PixConfigID            = "banking:pix"
)

// Built-in messages used when no template was saved.
const (
	DefaultMonthlyFee = "Olá {{responsavel}}, segue abaixo valor da mensalidade do aluno(a) {{aluno}}, referente ao mês {{mes}} vencimento em {{data_vencimento}}, abaixo chave PIX para pagamento {{tipo_chave}} - {{chave_pix}}"
	DefaultCollection = "Olá {{responsavel}}, segue abaixo valor da mensalidade do aluno(a) {{aluno}}, referente ao mês {{mes}} vencido em {{data_vencimento}}.\nAbaixo chave PIX para pagamento {{tipo_chave}} - {{chave_pix}}.\nLembramos que atrasos podem implicar em suspensão das aulas"
	DefaultPayout     = "Olá {{profissional}} segue abaixo demonstrativo de repasse do mês de {{mes}}, peço que faça conferência para que possamos efetuar o pagamento.\n{{link_pdf}}"
)

// Categories accepted for templates, keyed by slug.
var Categories = map[string]string{
	"cobranca": "Cobrança",
	"lembrete": "Lembrete",
	"repasse":  "Repasse",
	"informes": "Informes",
}

// InvoiceTemplate picks the message for an invoice: the collection template
// for overdue invoices, the monthly fee template otherwise, then the billing
// default, then the built-in text.
func InvoiceTemplate(saved map[string]string, overdue bool) string {
	id, builtin := TemplateMonthlyFee, DefaultMonthlyFee
	if overdue {
		id, builtin = TemplateCollection, DefaultCollection
	}
	if t := strings.TrimSpace(saved[id]); t != "" {
		return saved[id]
	}
	if t := strings.TrimSpace(saved[TemplateBillingDefault]); t != "" {
		return saved[TemplateBillingDefault]
	}
	return builtin
}

// PayoutTemplate returns the saved payout statement template or the built-in one.
func PayoutTemplate(saved map[string]string) string {
	if t := strings.TrimSpace(saved[TemplatePayout]); t != "" {
		return saved[TemplatePayout]
	}
	return DefaultPayout
}

// TemplateID builds the storage id of a named template in a category.
func TemplateID(category, name string) string {
	cat := format.Slugify(category)
	if _, ok := Categories[cat]; !ok {
		cat = "cobranca"
	}
	slug := format.Slugify(name)
	if slug == "" {
		slug = "default"
	}
	return TemplatePrefix + cat + ":" + slug
}

// ParseTemplate turns a stored (id, content) pair into a MessageTemplate.
func ParseTemplate(id, content string) models.MessageTemplate {
	parts := strings.Split(id, ":")
	category := "cobranca"
	if len(parts) > 1 && parts[1] != "" {
		category = parts[1]
	}
	name := "default"
	switch {
	case len(parts) > 2 && parts[2] != "":
		name = parts[2]
	case len(parts) > 1 && parts[1] != "":
		name = parts[1]
	}
	label, ok := Categories[category]
	if !ok {
		label = Categories["cobranca"]
	}
	return models.MessageTemplate{ID: id, Name: name, Category: label, Content: content}
}

// ParsePixConfig decodes the JSON stored under banking:pix and applies the
// defaults quoted in messages when data is missing.
func ParsePixConfig(raw string) models.PixConfig {
	var cfg models.PixConfig
	if strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &cfg)
	}
	if cfg.PixType == "" {
		cfg.PixType = "PIX"
	}
	if cfg.PixKey == "" {
		cfg.PixKey = "informar"
	}
	return cfg
}

// EncodePixConfig serializes the banking data for storage under PixConfigID.
func EncodePixConfig(cfg models.PixConfig) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode pix config: %w", err)
	}
	return string(raw), nil
}
