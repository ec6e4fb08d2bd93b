package models

import "strings"

// Badge is the visual tone of a status label.
type Badge string

const (
	BadgePositive    Badge = "positive"
	BadgeWarning     Badge = "warning"
	BadgeNegative    Badge = "negative"
	BadgeInformative Badge = "informative"
	BadgeNeutral     Badge = "neutral"
)

var badgeByStatus = map[string]Badge{
	"ativo":       BadgePositive,
	"ativa":       BadgePositive,
	"pago":        BadgePositive,
	"confirmado":  BadgePositive,
	"concluído":   BadgePositive,
	"pendente":    BadgeWarning,
	"trial":       BadgeWarning,
	"licença":     BadgeWarning,
	"processando": BadgeWarning,
	"inativo":     BadgeNegative,
	"inativa":     BadgeNegative,
	"cancelado":   BadgeNegative,
	"vencido":     BadgeNegative,
	"expirado":    BadgeNegative,
	"atrasado":    BadgeNegative,
	"suspensa":    BadgeInformative,
	"pausado":     BadgeInformative,
	"aguardando":  BadgeInformative,
}

// BadgeFor maps any status string to its badge. Unknown statuses are neutral.
func BadgeFor(status string) Badge {
	if b, ok := badgeByStatus[strings.ToLower(strings.TrimSpace(status))]; ok {
		return b
	}
	return BadgeNeutral
}
