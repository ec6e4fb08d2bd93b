package finance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/validation"
	"github.com/mamadbah2/franchise/pkg/clients/backend"
)

type fakeStore struct {
	invoices        []models.Invoice
	expenses        []models.Expense
	movements       []models.Movement
	payouts         []models.Payout
	payoutInvoices  []models.PayoutInvoice
	payoutMovements []models.Movement
	pending         []models.PayoutInvoice
	names           map[string]string

	invoiceCalls   int
	lastStatus     string
	pendingCalls   int
	createdExpense *models.Expense
	canceled       []string
	generated      time.Time
}

func (f *fakeStore) ListInvoicesForMonth(_ context.Context, _ format.Month, _ string, status string) ([]models.Invoice, error) {
	f.invoiceCalls++
	f.lastStatus = status
	return f.invoices, nil
}

func (f *fakeStore) GenerateInvoices(_ context.Context, date time.Time, _ int) (int, error) {
	f.generated = date
	return 7, nil
}

func (f *fakeStore) CreateInvoice(_ context.Context, inv models.Invoice) (models.Invoice, error) {
	inv.ID = "inv-new"
	return inv, nil
}

func (f *fakeStore) MarkInvoiceCanceled(_ context.Context, id string) error {
	f.canceled = append(f.canceled, id)
	return nil
}

func (f *fakeStore) ListExpenses(context.Context, format.Month) ([]models.Expense, error) {
	return f.expenses, nil
}

func (f *fakeStore) CreateExpense(_ context.Context, e models.Expense) (models.Expense, error) {
	e.ID = "exp-new"
	f.createdExpense = &e
	return e, nil
}

func (f *fakeStore) ListMovements(context.Context, format.Month, models.MovementType) ([]models.Movement, error) {
	out := make([]models.Movement, len(f.movements))
	copy(out, f.movements)
	return out, nil
}

func (f *fakeStore) CreateMovement(_ context.Context, m models.Movement) (models.Movement, error) {
	m.ID = "mov-new"
	return m, nil
}

func (f *fakeStore) EntityNames(context.Context) (map[string]string, error) {
	return f.names, nil
}

func (f *fakeStore) ListPayouts(context.Context, format.Month) ([]models.Payout, error) {
	return f.payouts, nil
}

func (f *fakeStore) GetPayout(_ context.Context, id string) (models.Payout, error) {
	for _, p := range f.payouts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Payout{}, errors.New("not found")
}

func (f *fakeStore) PayoutInvoices(context.Context, string) ([]models.PayoutInvoice, error) {
	return f.payoutInvoices, nil
}

func (f *fakeStore) PayoutMovements(context.Context, string) ([]models.Movement, error) {
	return f.payoutMovements, nil
}

func (f *fakeStore) PendingUnitInvoices(context.Context, string, time.Time, time.Time) ([]models.PayoutInvoice, error) {
	f.pendingCalls++
	return f.pending, nil
}

type fakePayments struct {
	invoicePaid backend.MarkInvoicePaidInput
	repassPaid  backend.MarkRepassPaidInput
	err         error
}

func (f *fakePayments) MarkInvoicePaid(_ context.Context, _ string, in backend.MarkInvoicePaidInput) error {
	f.invoicePaid = in
	return f.err
}

func (f *fakePayments) MarkExpensePaid(context.Context, string) error { return f.err }

func (f *fakePayments) MarkRepassPaid(_ context.Context, _ string, in backend.MarkRepassPaidInput) error {
	f.repassPaid = in
	return f.err
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func october(t *testing.T) format.Month {
	t.Helper()
	m, err := format.ParseMonth("2025-10")
	require.NoError(t, err)
	return m
}

func sampleInvoices() []models.Invoice {
	return []models.Invoice{
		{ID: "1", StudentName: "Ana Souza", UnitID: "u1", AmountNet: amount("100"), Status: models.InvoicePending},
		{ID: "2", StudentName: "Bruno Lima", UnitID: "u2", AmountNet: amount("150"), Status: models.InvoicePaid},
		{ID: "3", StudentName: "Ana Paula", UnitID: "u2", AmountNet: amount("80"), Status: models.InvoiceOverdue},
		{ID: "4", StudentName: "Caio", UnitID: "u1", AmountNet: amount("20"), Status: models.InvoiceLate},
		{ID: "5", StudentName: "Davi", UnitID: "u1", AmountNet: amount("50"), Status: models.InvoiceCanceled},
	}
}

func TestListInvoicesFiltersAndTotals(t *testing.T) {
	store := &fakeStore{invoices: sampleInvoices()}
	svc := NewService(store, &fakePayments{}, nil, nil)

	list, err := svc.ListInvoices(context.Background(), InvoiceQuery{Month: october(t), Search: "ana", UnitID: "u2"})
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	assert.Equal(t, "3", list.Items[0].ID)
	assert.Equal(t, "2025-10", list.Month)
	assert.Equal(t, 1, list.TotalItems)

	assert.Equal(t, "400", list.Totals.Total.String())
	assert.Equal(t, "100", list.Totals.Pending.String())
	assert.Equal(t, "150", list.Totals.Paid.String())
	assert.Equal(t, "100", list.Totals.Overdue.String())
}

func TestListInvoicesStatusGoesToProcedure(t *testing.T) {
	store := &fakeStore{invoices: sampleInvoices()}
	svc := NewService(store, &fakePayments{}, nil, nil)

	_, err := svc.ListInvoices(context.Background(), InvoiceQuery{Month: october(t), Status: models.InvoiceLate})
	require.NoError(t, err)
	assert.Equal(t, "Vencida", store.lastStatus)

	_, err = svc.ListInvoices(context.Background(), InvoiceQuery{Month: october(t), Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, "", store.lastStatus)

	_, err = svc.ListInvoices(context.Background(), InvoiceQuery{Month: october(t), Status: "Talvez"})
	assert.ErrorIs(t, err, validation.ErrValidation)
}

func TestListInvoicesPagingResetsOnFilterChange(t *testing.T) {
	invoices := make([]models.Invoice, 60)
	for i := range invoices {
		invoices[i] = models.Invoice{ID: string(rune('a' + i%26)), StudentName: "Aluno", AmountNet: amount("1"), Status: models.InvoicePending}
	}
	svc := NewService(&fakeStore{invoices: invoices}, &fakePayments{}, nil, nil)
	ctx := context.Background()

	first, err := svc.ListInvoices(ctx, InvoiceQuery{Month: october(t), Window: Window{Page: 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Page.Page)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 51, first.StartItem)
	assert.Equal(t, 60, first.EndItem)

	same, err := svc.ListInvoices(ctx, InvoiceQuery{Month: october(t), Window: Window{Prior: first.View.Filters, Page: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, same.Page.Page)

	changed, err := svc.ListInvoices(ctx, InvoiceQuery{Month: october(t), Search: "alu", Window: Window{Prior: first.View.Filters, Page: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, changed.Page.Page)
}

func TestInvoiceMutationsInvalidateCache(t *testing.T) {
	store := &fakeStore{invoices: sampleInvoices()}
	payments := &fakePayments{}
	c := cache.New(&memStore{data: map[string][]byte{}}, time.Minute, nil)
	svc := NewService(store, payments, c, nil)
	ctx := context.Background()
	q := InvoiceQuery{Month: october(t)}

	_, err := svc.ListInvoices(ctx, q)
	require.NoError(t, err)
	_, err = svc.ListInvoices(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, store.invoiceCalls)

	require.NoError(t, svc.MarkInvoicePaid(ctx, "1", MarkInvoicePaidInput{PaymentMethod: "Dinheiro"}))
	assert.Equal(t, "Dinheiro", payments.invoicePaid.PaymentMethod)
	assert.False(t, payments.invoicePaid.PaidAt.IsZero())

	_, err = svc.ListInvoices(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, store.invoiceCalls)

	require.NoError(t, svc.MarkInvoiceCanceled(ctx, "5"))
	assert.Equal(t, []string{"5"}, store.canceled)
	_, err = svc.ListInvoices(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, store.invoiceCalls)
}

func TestMarkInvoicePaidSurfacesBackendError(t *testing.T) {
	payments := &fakePayments{err: &backend.APIError{StatusCode: 409, Message: "fatura já paga"}}
	svc := NewService(&fakeStore{}, payments, nil, nil)

	err := svc.MarkInvoicePaid(context.Background(), "1", MarkInvoicePaidInput{})
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "fatura já paga", apiErr.Message)
}

func TestGenerateInvoices(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, &fakePayments{}, nil, nil)

	count, err := svc.GenerateInvoices(context.Background(), october(t), 10)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), store.generated)

	_, err = svc.GenerateInvoices(context.Background(), october(t), 31)
	assert.ErrorIs(t, err, validation.ErrValidation)
}

func TestCreateInvoiceDefaultsToPending(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakePayments{}, nil, nil)

	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{
		UnitID: "u1", StudentID: "s1", Amount: amount("120"), DueDate: "2025-10-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-new", inv.ID)
	assert.Equal(t, models.InvoicePending, inv.Status)

	_, err = svc.CreateInvoice(context.Background(), InvoiceInput{UnitID: "u1", StudentID: "s1", DueDate: "2025-10-10"})
	assert.ErrorIs(t, err, validation.ErrValidation)
}

func TestExpenses(t *testing.T) {
	store := &fakeStore{expenses: []models.Expense{
		{ID: "1", Category: "Aluguel", Description: "Aluguel sede", Amount: amount("1000"), Status: models.ExpensePending},
		{ID: "2", Category: "Marketing", Description: "Panfletos", Amount: amount("200"), Status: models.ExpensePaid},
		{ID: "3", Category: "Aluguel", Description: "Aluguel quadra", Amount: amount("300"), Status: models.ExpenseCanceled},
	}}
	svc := NewService(store, &fakePayments{}, nil, nil)

	list, err := svc.ListExpenses(context.Background(), ExpenseQuery{Month: october(t), Category: "Aluguel"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, "1300", list.Totals.Total.String())
	assert.Equal(t, "1000", list.Totals.Pending.String())
	assert.True(t, list.Totals.Paid.IsZero())

	_, err = svc.CreateExpense(context.Background(), ExpenseInput{UnitID: "u1", Category: "Outros", Description: "x", Amount: amount("0"), Date: "2025-10-01"})
	assert.ErrorIs(t, err, validation.ErrValidation)
	assert.Nil(t, store.createdExpense)

	e, err := svc.CreateExpense(context.Background(), ExpenseInput{UnitID: "u1", Category: "Outros", Description: "Bolas", Amount: amount("90.5"), Date: "2025-10-03"})
	require.NoError(t, err)
	assert.Equal(t, "exp-new", e.ID)
	assert.Equal(t, models.ExpensePending, store.createdExpense.Status)
}

func TestMovements(t *testing.T) {
	store := &fakeStore{
		movements: []models.Movement{
			{ID: "1", EntityType: models.EntityProfessional, EntityID: "p1", Type: models.MovementBonus, Amount: amount("50")},
			{ID: "2", EntityType: models.EntityProfessional, EntityID: "p2", Type: models.MovementAdvance, Amount: amount("30"), Description: "vale transporte"},
			{ID: "3", EntityType: models.EntityUnit, EntityID: "u9", Type: models.MovementAdvance, Amount: amount("100")},
		},
		names: map[string]string{"Equipe:p1": "Carlos", "Equipe:p2": "Marina"},
	}
	svc := NewService(store, &fakePayments{}, nil, nil)

	all, err := svc.ListMovements(context.Background(), MovementQuery{Month: october(t)})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "Carlos", all.Items[0].EntityName)
	assert.Equal(t, "u9", all.Items[2].EntityName)
	assert.Equal(t, "50", all.Totals.Credits.String())
	assert.Equal(t, "130", all.Totals.Debits.String())
	assert.Equal(t, "-80", all.Totals.Balance.String())
	assert.Equal(t, 3, all.Totals.Count)

	byDescription, err := svc.ListMovements(context.Background(), MovementQuery{Month: october(t), Search: "transporte"})
	require.NoError(t, err)
	require.Len(t, byDescription.Items, 1)
	assert.Equal(t, "Marina", byDescription.Items[0].EntityName)

	_, err = svc.ListMovements(context.Background(), MovementQuery{Month: october(t), Type: "Multa"})
	assert.ErrorIs(t, err, validation.ErrValidation)

	m, err := svc.CreateMovement(context.Background(), MovementInput{
		EntityType: "Profissional", EntityID: "p1", Type: "Bonificacao", Amount: amount("25"), Date: "2025-10-05",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EntityProfessional, m.EntityType)
	assert.Equal(t, models.MovementOpen, m.Status)
}

func TestPayoutsListAndDetails(t *testing.T) {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		payouts: []models.Payout{
			{ID: "r1", EntityType: models.EntityProfessional, EntityID: "p1", NetValue: amount("520"), Status: models.PayoutPending, PeriodStart: start, PeriodEnd: end},
			{ID: "r2", EntityType: models.EntityUnit, EntityID: "u1", NetValue: amount("1800"), Status: models.PayoutPaid, PeriodStart: start, PeriodEnd: end},
		},
		payoutInvoices: []models.PayoutInvoice{{ID: "i1", AmountNet: amount("500")}},
		payoutMovements: []models.Movement{
			{Type: models.MovementBonus, Amount: amount("50")},
			{Type: models.MovementAdvance, Amount: amount("30")},
			{Type: models.MovementBonus, Amount: amount("10")},
		},
		pending: []models.PayoutInvoice{{ID: "i9"}},
	}
	payments := &fakePayments{}
	svc := NewService(store, payments, nil, nil)
	ctx := context.Background()

	list, err := svc.ListPayouts(ctx, PayoutQuery{Month: october(t), EntityType: models.EntityProfessional})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "520", list.Totals.Total.String())
	assert.Equal(t, "520", list.Totals.Pending.String())

	details, err := svc.PayoutDetails(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "60", details.BonusTotal.String())
	assert.Equal(t, "30", details.AdvanceTotal.String())
	assert.Len(t, details.Invoices, 1)
	assert.Empty(t, details.PendingInvoices)
	assert.Equal(t, 0, store.pendingCalls)

	details, err = svc.PayoutDetails(ctx, "r2")
	require.NoError(t, err)
	assert.Len(t, details.PendingInvoices, 1)
	assert.Equal(t, 1, store.pendingCalls)

	require.NoError(t, svc.MarkPayoutPaid(ctx, "r1", MarkPayoutPaidInput{ReceiptURL: "https://files/r1.pdf"}))
	assert.Equal(t, "https://files/r1.pdf", payments.repassPaid.ReceiptURL)

	err = svc.MarkPayoutPaid(ctx, "r1", MarkPayoutPaidInput{ReceiptURL: "not a url"})
	assert.ErrorIs(t, err, validation.ErrValidation)
}
