// Package templating fills operator-edited WhatsApp messages with billing data.
//
// Two placeholder syntaxes are accepted: {{name}} and [name]. Both resolve
// through one synonym table so that every spelling collected over the years
// ("responsável", "nomeAluno", "chave pix", ...) reaches the same value.
package templating

import (
	"regexp"
	"strings"
)

// Canonical variable names.
const (
	VarGuardian     = "responsavel"
	VarStudent      = "aluno"
	VarMonth        = "mes"
	VarDueDate      = "data_vencimento"
	VarAmount       = "valor"
	VarPixType      = "tipo_chave"
	VarPixKey       = "chave_pix"
	VarProfessional = "profissional"
	VarPDFLink      = "link_pdf"
)

// Vars maps canonical variable names to display strings that are already
// formatted (currency, dates).
type Vars map[string]string

// synonyms maps every recognized label, lowercased, to its canonical name.
var synonyms = map[string]string{
	"responsável":          VarGuardian,
	"responsavel":          VarGuardian,
	"aluno":                VarStudent,
	"nomealuno":            VarStudent,
	"nome aluno":           VarStudent,
	"mês":                  VarMonth,
	"mes":                  VarMonth,
	"datavencimento":       VarDueDate,
	"data_vencimento":      VarDueDate,
	"due_date":             VarDueDate,
	"valor":                VarAmount,
	"amount":               VarAmount,
	"tipo chave":           VarPixType,
	"tipo_chave":           VarPixType,
	"chave pix":            VarPixKey,
	"chave_pix":            VarPixKey,
	"profissional":         VarProfessional,
	"anexo_pdf de repasse": VarPDFLink,
	"link_pdf":             VarPDFLink,
}

var placeholder = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}|\[([^\[\]{}]+)\]`)

// Canonical resolves a placeholder label to its canonical variable name.
func Canonical(label string) (string, bool) {
	name, ok := synonyms[strings.ToLower(strings.TrimSpace(label))]
	return name, ok
}

// Labels lists every recognized placeholder label.
func Labels() []string {
	out := make([]string, 0, len(synonyms))
	for label := range synonyms {
		out = append(out, label)
	}
	return out
}

// Render substitutes placeholders in a single pass. {{name}} placeholders
// always resolve, to an empty string when unknown. [name] placeholders are only
// recognized for labels in the synonym table; other bracketed text is kept.
// Substituted values are never scanned again.
func Render(template string, vars Vars) string {
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		if strings.HasPrefix(match, "{{") {
			label := strings.TrimSpace(match[2 : len(match)-2])
			if name, ok := Canonical(label); ok {
				return vars[name]
			}
			return vars[label]
		}

		label := match[1 : len(match)-1]
		name, ok := Canonical(label)
		if !ok {
			return match
		}
		return vars[name]
	})
}
