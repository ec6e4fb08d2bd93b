package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string          `json:"name" validate:"notblank"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
}

func TestStruct(t *testing.T) {
	err := Struct(sample{Name: "Aluguel", Amount: decimal.NewFromInt(10), Date: "2025-10-01"})
	require.NoError(t, err)

	err = Struct(sample{Name: "  ", Amount: decimal.NewFromInt(-1), Date: "01/10/2025"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "campo obrigatório", verr.Fields["name"])
	assert.Equal(t, "deve ser maior que 0", verr.Fields["amount"])
	assert.Contains(t, verr.Fields["date"], "data inválida")
	assert.Contains(t, err.Error(), "amount: ")
}

func TestField(t *testing.T) {
	err := Field("month", "mês inválido")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "invalid input: month: mês inválido", err.Error())
}
