package scheduler

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/franchise/internal/config"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

type fakeGenerator struct {
	month  format.Month
	dueDay int
}

func (f *fakeGenerator) GenerateInvoices(_ context.Context, month format.Month, dueDay int) (int, error) {
	f.month, f.dueDay = month, dueDay
	return 42, nil
}

type fakeSummaries struct{}

func (fakeSummaries) MonthlySummary(_ context.Context, month format.Month) (models.MonthlySummary, error) {
	return models.MonthlySummary{
		Month: month.String(), Revenue: decimal.NewFromInt(300), PaidInvoices: 2,
		PendingRevenue: decimal.Zero, Expenses: decimal.Zero, Payouts: decimal.Zero, Result: decimal.NewFromInt(300),
	}, nil
}

type fakeNotifier struct {
	sent     []models.OutboundMessageRequest
	linkOnly bool
}

func (f *fakeNotifier) SendOutbound(_ context.Context, req models.OutboundMessageRequest) (models.Dispatch, error) {
	f.sent = append(f.sent, req)
	if f.linkOnly {
		return models.Dispatch{Phone: req.To, URL: "https://wa.me/" + req.To}, nil
	}
	return models.Dispatch{Phone: req.To, Sent: true, MessageID: "wamid.1"}, nil
}

func testConfig() config.Config {
	return config.Config{
		Billing: config.BillingConfig{
			InvoiceCron: "0 6 1 * *",
			ReportCron:  "0 20 * * 5",
			DueDay:      10,
			Timezone:    "America/Sao_Paulo",
		},
		WhatsApp: config.WhatsAppConfig{Provider: config.ProviderMeta, ReportRecipient: "5511999999999"},
	}
}

func TestRunInvoiceGenerationUsesLocalMonth(t *testing.T) {
	gen := &fakeGenerator{}
	s, err := NewScheduler(testConfig(), gen, fakeSummaries{}, nil, nil)
	require.NoError(t, err)
	// 02:00 UTC on Nov 1st is still October in São Paulo.
	s.now = func() time.Time { return time.Date(2025, 11, 1, 2, 0, 0, 0, time.UTC) }

	count, err := s.RunInvoiceGeneration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.Equal(t, "2025-10", gen.month.String())
	assert.Equal(t, 10, gen.dueDay)
}

func TestSendSummary(t *testing.T) {
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig(), &fakeGenerator{}, fakeSummaries{}, notifier, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 10, 17, 23, 0, 0, 0, time.UTC) }

	require.NoError(t, s.SendSummary(context.Background()))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "5511999999999", notifier.sent[0].To)
	assert.Contains(t, notifier.sent[0].Message, "Resumo 2025-10")
}

func TestSendSummaryFailsWhenOnlyALinkWasBuilt(t *testing.T) {
	notifier := &fakeNotifier{linkOnly: true}
	s, err := NewScheduler(testConfig(), &fakeGenerator{}, fakeSummaries{}, notifier, nil)
	require.NoError(t, err)

	err = s.SendSummary(context.Background())
	assert.ErrorIs(t, err, ErrNotDelivered)
	assert.Len(t, notifier.sent, 1)
}

func TestSummaryJobNeedsDeliveringProvider(t *testing.T) {
	tests := []struct {
		provider string
		jobs     int
	}{
		{config.ProviderMeta, 2},
		{config.ProviderLink, 1},
		{config.ProviderBackend, 1},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := testConfig()
			cfg.WhatsApp.Provider = tt.provider
			s, err := NewScheduler(cfg, &fakeGenerator{}, fakeSummaries{}, &fakeNotifier{}, nil)
			require.NoError(t, err)
			require.NoError(t, s.Start())
			defer s.Stop()
			assert.Len(t, s.cron.Entries(), tt.jobs)
		})
	}
}

func TestStartRejectsBadExpression(t *testing.T) {
	cfg := testConfig()
	cfg.Billing.InvoiceCron = "not a cron"
	s, err := NewScheduler(cfg, &fakeGenerator{}, fakeSummaries{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())

	_, err = NewScheduler(config.Config{Billing: config.BillingConfig{Timezone: "Mars/Olympus"}}, nil, nil, nil, nil)
	assert.Error(t, err)
}
