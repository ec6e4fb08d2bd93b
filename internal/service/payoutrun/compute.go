package payoutrun

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// ComputeBase returns the payout base: the flat value for fixed terms or the
// percentage of the invoice total.
func ComputeBase(t models.PayoutType, value, invoiceTotal decimal.Decimal) decimal.Decimal {
	if t == models.PayoutPercentage {
		return invoiceTotal.Mul(value).Div(hundred)
	}
	return value
}

// ComputeFinal returns base + bonuses - advances.
func ComputeFinal(base, bonuses, advances decimal.Decimal) decimal.Decimal {
	return base.Add(bonuses).Sub(advances)
}

// complete fills the derived values of a preview row.
func complete(row models.PreviewRow) models.PreviewRow {
	row.BaseValue = ComputeBase(row.Terms.Type, row.Terms.Value, row.InvoiceTotal).Round(2)
	row.FinalValue = ComputeFinal(row.BaseValue, row.Bonuses, row.Advances)
	return row
}

// preselected reports whether a row starts selected: it moves money or has
// at least one contributing invoice or movement.
func preselected(row models.PreviewRow) bool {
	return !row.FinalValue.IsZero() || row.InvoiceCount > 0 || row.MovementCount > 0
}
