package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/repository/sheets"
)

const (
	payoutSheetRange = "Repasses!A:H"
	payoutIDRange    = "Repasses!A:A"
	sheetDateLayout  = "2006-01-02"
)

// SheetSync mirrors confirmed payouts to a Google Sheet.
type SheetSync struct {
	repo   sheets.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSheetSync wires the sync over a sheet repository.
func NewSheetSync(repo sheets.Repository, logger *zap.Logger) *SheetSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetSync{repo: repo, logger: logger, now: time.Now}
}

// SyncPayoutRun appends one row per payout confirmed by the run. Payouts
// already present in the sheet are skipped, so retries do not duplicate rows.
func (s *SheetSync) SyncPayoutRun(ctx context.Context, run models.PayoutRun) error {
	existing, err := s.repo.ReadRange(ctx, payoutIDRange)
	if err != nil {
		return fmt.Errorf("load synced payout ids: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, row := range existing {
		if len(row) > 0 {
			seen[fmt.Sprint(row[0])] = true
		}
	}

	var rows [][]interface{}
	for _, e := range run.Entries {
		if e.Status != models.RunEntryConfirmed || e.PayoutID == "" || seen[e.PayoutID] {
			continue
		}
		seen[e.PayoutID] = true
		rows = append(rows, []interface{}{
			e.PayoutID,
			run.Tenant,
			run.Month,
			models.EntityType(e.EntityType).Label(),
			e.EntityName,
			e.FinalValue,
			run.RunID,
			s.now().Format(sheetDateLayout),
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := s.repo.AppendRows(ctx, payoutSheetRange, rows); err != nil {
		return fmt.Errorf("append payouts: %w", err)
	}
	s.logger.Info("payouts synced to sheet", zap.String("run", run.RunID), zap.Int("rows", len(rows)))
	return nil
}
