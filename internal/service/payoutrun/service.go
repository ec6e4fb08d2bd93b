// Package payoutrun drives the payout wizard: configure a month and scope,
// preview the computed payouts, select entities and confirm them one by one.
package payoutrun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/tenant"
	"github.com/mamadbah2/franchise/internal/validation"
)

// Procedures are the stored procedures backing the wizard.
type Procedures interface {
	GeneratePayoutPreview(ctx context.Context, month format.Month, entityType models.EntityType, entityIDs []string) ([]models.PreviewRow, error)
	ConfirmPayout(ctx context.Context, month format.Month, entityType models.EntityType, entityID string) (string, error)
}

// Journal records confirm attempts.
type Journal interface {
	SaveRun(ctx context.Context, run models.PayoutRun) error
}

// Syncer mirrors confirmed payouts to an external sheet.
type Syncer interface {
	SyncPayoutRun(ctx context.Context, run models.PayoutRun) error
}

// ConfirmReport is the outcome of a confirm call. Confirmed lists every
// payout created by the call, Failed the entity that stopped the loop and
// Remaining the selected rows that were not attempted.
type ConfirmReport struct {
	RunID     string            `json:"run_id"`
	Confirmed []models.RunEntry `json:"confirmed"`
	Failed    *models.RunEntry  `json:"failed,omitempty"`
	Remaining []models.RunEntry `json:"remaining"`
}

// Done reports whether every selected row was confirmed.
func (r ConfirmReport) Done() bool {
	return r.Failed == nil && len(r.Remaining) == 0
}

// Service runs payout wizards.
type Service struct {
	procs   Procedures
	store   *Store
	journal Journal
	syncer  Syncer
	cache   *cache.Cache
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the wizard. journal and syncer are optional.
func NewService(procs Procedures, store *Store, journal Journal, syncer Syncer, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewStore(time.Hour)
	}
	if c == nil {
		c = cache.New(nil, 0, logger)
	}
	return &Service{
		procs:   procs,
		store:   store,
		journal: journal,
		syncer:  syncer,
		cache:   c,
		logger:  logger.Named("payoutrun"),
		now:     time.Now,
	}
}

// Start opens a wizard in the config step.
func (s *Service) Start(ctx context.Context) *Session {
	return s.store.create(tenant.FromContext(ctx))
}

// Get returns the current state of a wizard.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(tenant.FromContext(ctx), id)
}

// Discard drops a wizard.
func (s *Service) Discard(ctx context.Context, id string) {
	s.store.Delete(tenant.FromContext(ctx), id)
}

// Preview validates cfg, loads the preview and moves the wizard to the
// preview step. On any error the wizard stays in the config step.
func (s *Service) Preview(ctx context.Context, id string, cfg RunConfig) (*Session, error) {
	tenantID := tenant.FromContext(ctx)
	month, cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if current.Step != StepConfig {
		return nil, ErrInvalidTransition
	}

	var ids []string
	if cfg.Scope != ScopeBoth {
		ids = cfg.EntityIDs
	}
	raw, err := s.procs.GeneratePayoutPreview(ctx, month, cfg.Scope.EntityType(), ids)
	if err != nil {
		s.logger.Error("payout preview failed",
			zap.String("tenant", tenantID), zap.String("month", month.String()), zap.Error(err))
		return nil, fmt.Errorf("generate payout preview: %w", err)
	}
	rows := make([]models.PreviewRow, 0, len(raw))
	for _, row := range raw {
		rows = append(rows, complete(row))
	}

	return s.store.Update(tenantID, id, func(sess *Session) error {
		if sess.Step != StepConfig {
			return ErrInvalidTransition
		}
		sess.Config = cfg
		sess.month = month
		sess.enterPreview(rows)
		return nil
	})
}

// Toggle flips the selection of one preview row.
func (s *Service) Toggle(ctx context.Context, id, key string) (*Session, error) {
	return s.store.Update(tenant.FromContext(ctx), id, func(sess *Session) error {
		return sess.Toggle(key)
	})
}

// SelectAll selects or clears every pending row.
func (s *Service) SelectAll(ctx context.Context, id string, on bool) (*Session, error) {
	return s.store.Update(tenant.FromContext(ctx), id, func(sess *Session) error {
		return sess.SelectAll(on)
	})
}

// Back returns to the config step and discards the preview.
func (s *Service) Back(ctx context.Context, id string) (*Session, error) {
	return s.store.Update(tenant.FromContext(ctx), id, func(sess *Session) error {
		return sess.Back()
	})
}

// Confirm creates a payout for every selected row, sequentially. The first
// failure stops the loop; payouts already created are kept and reported, and
// the wizard stays in the preview step so the remaining rows can be retried.
func (s *Service) Confirm(ctx context.Context, id string) (*Session, ConfirmReport, error) {
	tenantID := tenant.FromContext(ctx)
	var (
		pending []models.PreviewRow
		month   format.Month
		scope   Scope
	)
	_, err := s.store.Update(tenantID, id, func(sess *Session) error {
		if sess.Step != StepPreview || sess.Preview == nil {
			return ErrInvalidTransition
		}
		if sess.confirming {
			return ErrBusy
		}
		pending = sess.pending()
		if len(pending) == 0 {
			return ErrEmptySelection
		}
		month, scope = sess.month, sess.Config.Scope
		sess.confirming = true
		return nil
	})
	if err != nil {
		return nil, ConfirmReport{}, err
	}

	started := s.now()
	report := ConfirmReport{RunID: uuid.NewString(), Confirmed: []models.RunEntry{}, Remaining: []models.RunEntry{}}
	created := make(map[string]string, len(pending))
	var loopErr error
	for i, row := range pending {
		payoutID, err := s.procs.ConfirmPayout(ctx, month, row.EntityType, row.EntityID)
		if err != nil {
			loopErr = fmt.Errorf("confirm payout for %s: %w", row.EntityName, err)
			failed := entry(row, models.RunEntryFailed)
			failed.Error = err.Error()
			report.Failed = &failed
			for _, rest := range pending[i+1:] {
				report.Remaining = append(report.Remaining, entry(rest, models.RunEntrySkipped))
			}
			break
		}
		done := entry(row, models.RunEntryConfirmed)
		done.PayoutID = payoutID
		report.Confirmed = append(report.Confirmed, done)
		created[row.Key()] = payoutID
	}

	sess, err := s.store.Update(tenantID, id, func(sess *Session) error {
		sess.confirming = false
		for key, payoutID := range created {
			sess.Preview.Confirmed[key] = payoutID
			sess.Preview.Selected[key] = true
		}
		r := report
		sess.Report = &r
		if report.Done() {
			sess.Step = StepConfirmed
		}
		return nil
	})
	if err != nil {
		s.store.release(tenantID, id)
		s.logger.Warn("payout session vanished during confirm", zap.String("session", id), zap.Error(err))
	}

	run := s.record(tenantID, month, scope, report, started)
	if len(created) > 0 {
		s.cache.Invalidate(ctx, cache.Payouts)
		s.cache.Invalidate(ctx, cache.Movements)
		s.cache.Invalidate(ctx, cache.Dashboard)
	}
	s.afterConfirm(context.WithoutCancel(ctx), run)

	s.logger.Info("payout run finished",
		zap.String("tenant", tenantID),
		zap.String("month", month.String()),
		zap.Int("confirmed", len(report.Confirmed)),
		zap.Bool("failed", report.Failed != nil),
		zap.Int("remaining", len(report.Remaining)))

	if loopErr != nil {
		return sess, report, loopErr
	}
	return sess, report, nil
}

func (s *Service) record(tenantID string, month format.Month, scope Scope, report ConfirmReport, started time.Time) models.PayoutRun {
	entries := append([]models.RunEntry{}, report.Confirmed...)
	failed := 0
	if report.Failed != nil {
		entries = append(entries, *report.Failed)
		failed = 1
	}
	entries = append(entries, report.Remaining...)
	return models.PayoutRun{
		RunID:      report.RunID,
		Tenant:     tenantID,
		Month:      month.String(),
		Scope:      string(scope),
		Entries:    entries,
		Confirmed:  len(report.Confirmed),
		Failed:     failed,
		Remaining:  len(report.Remaining),
		StartedAt:  started,
		FinishedAt: s.now(),
	}
}

// afterConfirm journals the run and mirrors it to the sheet. Failures are
// logged; the payouts already exist. ctx must outlive the request.
func (s *Service) afterConfirm(ctx context.Context, run models.PayoutRun) {
	if s.journal != nil {
		if err := s.journal.SaveRun(ctx, run); err != nil {
			s.logger.Error("failed to journal payout run", zap.String("run", run.RunID), zap.Error(err))
		}
	}
	if s.syncer != nil && run.Confirmed > 0 {
		if err := s.syncer.SyncPayoutRun(ctx, run); err != nil {
			s.logger.Warn("failed to sync payout run to sheet", zap.String("run", run.RunID), zap.Error(err))
		}
	}
}

func entry(row models.PreviewRow, status models.RunEntryStatus) models.RunEntry {
	return models.RunEntry{
		EntityType: string(row.EntityType),
		EntityID:   row.EntityID,
		EntityName: row.EntityName,
		FinalValue: row.FinalValue.StringFixed(2),
		Status:     status,
	}
}

func normalizeConfig(cfg RunConfig) (format.Month, RunConfig, error) {
	if err := validation.Struct(cfg); err != nil {
		return format.Month{}, cfg, err
	}
	month, err := format.ParseMonth(cfg.Month)
	if err != nil {
		return format.Month{}, cfg, validation.Field("month", "mês inválido, use AAAA-MM")
	}

	ids := make([]string, 0, len(cfg.EntityIDs))
	seen := make(map[string]bool, len(cfg.EntityIDs))
	for _, raw := range cfg.EntityIDs {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return format.Month{}, cfg, validation.Field("entity_ids", "identificador inválido: "+id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if cfg.Scope == ScopeBoth && len(ids) > 0 {
		return format.Month{}, cfg, validation.Field("entity_ids", "seleção de entidades exige um único tipo")
	}
	cfg.Month = month.String()
	cfg.EntityIDs = ids
	return month, cfg, nil
}
