package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/config"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/service/reporting"
	"github.com/mamadbah2/franchise/internal/tenant"
)

const jobTimeout = 2 * time.Minute

// ErrNotDelivered is returned when the provider only built a link for a
// message nobody will open.
var ErrNotDelivered = errors.New("summary was not delivered by the whatsapp provider")

// InvoiceGenerator creates the monthly invoices of active students.
type InvoiceGenerator interface {
	GenerateInvoices(ctx context.Context, month format.Month, dueDay int) (int, error)
}

// Summaries computes the monthly cash summary.
type Summaries interface {
	MonthlySummary(ctx context.Context, month format.Month) (models.MonthlySummary, error)
}

// Notifier delivers a free-form message.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) (models.Dispatch, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	invoices  InvoiceGenerator
	summaries Summaries
	notifier  Notifier
	cfg       config.Config
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.Config, invoices InvoiceGenerator, summaries Summaries, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Billing.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Billing.Timezone, err)
	}

	// Standard 5-field cron expressions evaluated in the franchise timezone.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		invoices:  invoices,
		summaries: summaries,
		notifier:  notifier,
		cfg:       cfg,
		loc:       loc,
		logger:    logger.Named("scheduler"),
		now:       time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("timezone", s.loc.String()))

	if _, err := s.cron.AddFunc(s.cfg.Billing.InvoiceCron, s.generateInvoices); err != nil {
		return fmt.Errorf("schedule invoice generation: %w", err)
	}

	switch {
	case s.cfg.WhatsApp.ReportRecipient == "" || s.notifier == nil:
	case s.cfg.WhatsApp.Provider != config.ProviderMeta:
		s.logger.Warn("cash summary disabled: provider cannot deliver unattended",
			zap.String("provider", s.cfg.WhatsApp.Provider))
	default:
		if _, err := s.cron.AddFunc(s.cfg.Billing.ReportCron, s.sendSummary); err != nil {
			return fmt.Errorf("schedule cash summary: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) generateInvoices() {
	ctx, cancel := context.WithTimeout(tenant.WithID(context.Background(), tenant.Default), jobTimeout)
	defer cancel()
	if _, err := s.RunInvoiceGeneration(ctx); err != nil {
		s.logger.Error("scheduled invoice generation failed", zap.Error(err))
	}
}

// RunInvoiceGeneration generates the invoices of the current month.
func (s *Scheduler) RunInvoiceGeneration(ctx context.Context) (int, error) {
	month := format.MonthOf(s.now().In(s.loc))
	count, err := s.invoices.GenerateInvoices(ctx, month, s.cfg.Billing.DueDay)
	if err != nil {
		return 0, fmt.Errorf("generate invoices for %s: %w", month, err)
	}
	s.logger.Info("monthly invoices generated", zap.String("month", month.String()), zap.Int("count", count))
	return count, nil
}

func (s *Scheduler) sendSummary() {
	ctx, cancel := context.WithTimeout(tenant.WithID(context.Background(), tenant.Default), jobTimeout)
	defer cancel()
	if err := s.SendSummary(ctx); err != nil {
		s.logger.Error("failed to send cash summary", zap.Error(err))
	}
}

// SendSummary messages the current month's cash summary to the report recipient.
func (s *Scheduler) SendSummary(ctx context.Context) error {
	month := format.MonthOf(s.now().In(s.loc))
	sum, err := s.summaries.MonthlySummary(ctx, month)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", month, err)
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.ReportRecipient,
		Message: reporting.SummaryText(sum),
	}
	d, err := s.notifier.SendOutbound(ctx, req)
	if err != nil {
		return fmt.Errorf("send summary: %w", err)
	}
	if !d.Sent {
		return ErrNotDelivered
	}
	s.logger.Info("cash summary sent", zap.String("month", month.String()), zap.String("message_id", d.MessageID))
	return nil
}
