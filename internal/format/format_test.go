package format

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "100", want: "R$ 100,00"},
		{in: "0", want: "R$ 0,00"},
		{in: "1234.5", want: "R$ 1.234,50"},
		{in: "-30", want: "-R$ 30,00"},
		{in: "19.999", want: "R$ 20,00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "05/10/2025", Date(time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", Date(time.Time{}))
	assert.Equal(t, "10/11/2025", DateString("2025-11-10"))
	assert.Equal(t, "10/11/2025", DateString("2025-11-10T12:00:00Z"))
	assert.Equal(t, "amanhã", DateString("amanhã"))
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)

	assert.Equal(t, "2024-02", m.String())
	assert.Equal(t, "2024-02-01", m.FirstDay())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), m.End())

	_, err = ParseMonth("02/2024")
	assert.True(t, errors.Is(err, ErrInvalidMonth))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "(11) 98765-4321", want: "5511987654321"},
		{raw: "(11) 3456-7890", want: "551134567890"},
		{raw: "+55 11 98765-4321", want: "5511987654321"},
		{raw: "987654321", want: "987654321"},
		{raw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw, "55"))
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cobranca", Slugify("Cobrança"))
	assert.Equal(t, "lembrete-de-vencimento", Slugify("  Lembrete de Vencimento! "))
	assert.Equal(t, "mes", Slugify("Mês"))
}
