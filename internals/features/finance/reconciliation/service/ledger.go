package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "gabkutschola_backend/internals/features/finance/reconciliation/model"

	aggservice "gabkutschola_backend/internals/features/finance/aggregates/service"
)

/* Ledger entries are immutable once written; the single legal mutation
   is the explicit validated->cancelled transition below. Corrections
   are modeled as a cancellation plus a fresh entry coming through the
   normal intention/confirmation flow. */

type LedgerService struct {
	DB         *gorm.DB
	Recomputer *aggservice.Recomputer
}

func NewLedgerService(db *gorm.DB, rec *aggservice.Recomputer) *LedgerService {
	return &LedgerService{DB: db, Recomputer: rec}
}

// Cancel flips one entry out of the validated set (guarded update, same
// CAS shape as the intention confirmation) and recomputes the affected
// student and class.
func (s *LedgerService) Cancel(ctx context.Context, entryID uuid.UUID, reason string) (*model.LedgerEntryModel, error) {
	var entry model.LedgerEntryModel
	if err := s.DB.WithContext(ctx).
		First(&entry, "ledger_entry_id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"ledger_entry_status":       model.LedgerEntryStatusCancelled,
		"ledger_entry_cancelled_at": now,
	}
	if r := strings.TrimSpace(reason); r != "" {
		updates["ledger_entry_cancel_reason"] = r
	}

	res := s.DB.WithContext(ctx).
		Model(&model.LedgerEntryModel{}).
		Where("ledger_entry_id = ? AND ledger_entry_status = ?",
			entryID, model.LedgerEntryStatusValidated).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEntryNotCancellable
	}

	if s.Recomputer != nil {
		if err := s.Recomputer.RecomputeAffected(ctx, entry.LedgerEntryStudentID, entry.LedgerEntryClassID); err != nil {
			log.Printf("[ERROR] recompute after cancelling %s failed: %v", entry.LedgerEntryReceiptNumber, err)
		}
	}

	if err := s.DB.WithContext(ctx).
		First(&entry, "ledger_entry_id = ?", entryID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
