package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

func TestInvoicesXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := InvoicesXLSX(&buf, []models.Invoice{{
		StudentName: "João", UnitName: "Centro", Month: "2025-10",
		DueDate:   time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC),
		AmountNet: decimal.RequireFromString("150.5"), Status: models.InvoicePaid,
	}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Mensalidades")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Aluno", rows[0][0])
	assert.Equal(t, []string{"João", "Centro", "2025-10", "10/10/2025", "150.5", "Pago"}, rows[1][:6])
}

func TestPayoutsXLSXHeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PayoutsXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Repasses")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Referência", rows[0][0])
	assert.Equal(t, "payouts_2025-10.xlsx", FileName("payouts", "2025-10"))
}

type fakeSheet struct {
	existing [][]interface{}
	appended [][]interface{}
	ranges   []string
}

func (f *fakeSheet) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.ranges = append(f.ranges, sheetRange)
	f.appended = append(f.appended, rows...)
	return nil
}

func (f *fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	return f.existing, nil
}

func TestSyncPayoutRunSkipsKnownAndUnconfirmed(t *testing.T) {
	sheet := &fakeSheet{existing: [][]interface{}{{"payout_id"}, {"p-1"}}}
	sync := NewSheetSync(sheet, nil)
	sync.now = func() time.Time { return time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC) }

	run := models.PayoutRun{
		RunID: "run-1", Tenant: "acme", Month: "2025-10",
		Entries: []models.RunEntry{
			{EntityType: "Equipe", EntityName: "Carlos", FinalValue: "520.00", PayoutID: "p-1", Status: models.RunEntryConfirmed},
			{EntityType: "Unidade", EntityName: "Centro", FinalValue: "100.00", PayoutID: "p-2", Status: models.RunEntryConfirmed},
			{EntityType: "Equipe", EntityName: "Bia", FinalValue: "0.00", Status: models.RunEntryFailed},
		},
	}
	require.NoError(t, sync.SyncPayoutRun(context.Background(), run))
	require.Len(t, sheet.appended, 1)
	assert.Equal(t, []interface{}{"p-2", "acme", "2025-10", "Unidade", "Centro", "100.00", "run-1", "2025-11-01"}, sheet.appended[0])

	sheet.existing = append(sheet.existing, []interface{}{"p-2"})
	require.NoError(t, sync.SyncPayoutRun(context.Background(), run))
	assert.Len(t, sheet.ranges, 1)
}
