package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =====================================================================
   ledger_entries = the canonical payment records.

   A row is written exactly once, by the matcher, inside the same
   transaction that flips the intention to confirmed. After that the only
   legal mutation is the validated->cancelled transition; corrections are
   a cancel plus a fresh entry. The unique index on
   (reference, external_transaction_id) is what makes webhook replays
   idempotent.
===================================================================== */

type LedgerEntryModel struct {
	LedgerEntryID uuid.UUID `gorm:"column:ledger_entry_id;type:uuid;primaryKey" json:"ledger_entry_id"`

	// Internal, human-traceable receipt number, e.g. RC-20261003-7KQ2M4TN.
	LedgerEntryReceiptNumber string `gorm:"column:ledger_entry_receipt_number;not null;uniqueIndex" json:"ledger_entry_receipt_number"`

	LedgerEntryReference             string `gorm:"column:ledger_entry_reference;not null;uniqueIndex:ux_ledger_entries_reference_external_tx;index" json:"ledger_entry_reference"`
	LedgerEntryExternalTransactionID string `gorm:"column:ledger_entry_external_transaction_id;not null;uniqueIndex:ux_ledger_entries_reference_external_tx" json:"ledger_entry_external_transaction_id"`

	// Minor units; equals the decoded event amount.
	LedgerEntryAmount   int64  `gorm:"column:ledger_entry_amount;not null;check:ledger_entry_amount > 0" json:"ledger_entry_amount"`
	LedgerEntryCurrency string `gorm:"column:ledger_entry_currency;type:varchar(8);not null" json:"ledger_entry_currency"`
	LedgerEntryPeriod   string `gorm:"column:ledger_entry_period;not null" json:"ledger_entry_period"`

	LedgerEntryStudentID uuid.UUID `gorm:"column:ledger_entry_student_id;type:uuid;not null;index" json:"ledger_entry_student_id"`
	LedgerEntryClassID   uuid.UUID `gorm:"column:ledger_entry_class_id;type:uuid;not null;index" json:"ledger_entry_class_id"`

	// At most one intention per entry, at most one entry per intention.
	LedgerEntryIntentionID *uuid.UUID `gorm:"column:ledger_entry_intention_id;type:uuid;uniqueIndex" json:"ledger_entry_intention_id,omitempty"`

	// Payer/intention snapshot frozen at confirmation time, independent of
	// later mutation to upstream records.
	LedgerEntryPayerSnapshot datatypes.JSON `gorm:"column:ledger_entry_payer_snapshot;type:jsonb" json:"ledger_entry_payer_snapshot,omitempty"`

	LedgerEntryStatus LedgerEntryStatus `gorm:"column:ledger_entry_status;type:varchar(16);not null;default:'validated'" json:"ledger_entry_status"`

	LedgerEntryCancelledAt  *time.Time `gorm:"column:ledger_entry_cancelled_at" json:"ledger_entry_cancelled_at,omitempty"`
	LedgerEntryCancelReason *string    `gorm:"column:ledger_entry_cancel_reason" json:"ledger_entry_cancel_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:ledger_entry_created_at;autoCreateTime" json:"ledger_entry_created_at"`
	UpdatedAt time.Time `gorm:"column:ledger_entry_updated_at;autoUpdateTime" json:"ledger_entry_updated_at"`
}

func (LedgerEntryModel) TableName() string { return "ledger_entries" }

func (m *LedgerEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.LedgerEntryID == uuid.Nil {
		m.LedgerEntryID = uuid.New()
	}
	return nil
}

func (m *LedgerEntryModel) IsValidated() bool {
	return m.LedgerEntryStatus == LedgerEntryStatusValidated
}
