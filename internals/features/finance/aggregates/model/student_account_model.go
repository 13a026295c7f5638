package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =====================================================================
   student_accounts = derived balances, never the source of truth.

   Every column except the keys is overwritten wholesale by the
   recomputer from the ledger + fee schedule. Incremental updates are
   deliberately not supported.
===================================================================== */

type StudentAccountModel struct {
	StudentAccountID uuid.UUID `gorm:"column:student_account_id;type:uuid;primaryKey" json:"student_account_id"`

	StudentAccountStudentID uuid.UUID `gorm:"column:student_account_student_id;type:uuid;not null;uniqueIndex" json:"student_account_student_id"`
	StudentAccountClassID   uuid.UUID `gorm:"column:student_account_class_id;type:uuid;not null;index" json:"student_account_class_id"`

	// Minor units.
	StudentAccountExpectedFees       int64 `gorm:"column:student_account_expected_fees;not null;default:0" json:"student_account_expected_fees"`
	StudentAccountTotalPaid          int64 `gorm:"column:student_account_total_paid;not null;default:0" json:"student_account_total_paid"`
	StudentAccountOutstandingBalance int64 `gorm:"column:student_account_outstanding_balance;not null;default:0" json:"student_account_outstanding_balance"`

	StudentAccountEntryCount       int64     `gorm:"column:student_account_entry_count;not null;default:0" json:"student_account_entry_count"`
	StudentAccountLastRecomputedAt time.Time `gorm:"column:student_account_last_recomputed_at;not null" json:"student_account_last_recomputed_at"`

	CreatedAt time.Time `gorm:"column:student_account_created_at;autoCreateTime" json:"student_account_created_at"`
	UpdatedAt time.Time `gorm:"column:student_account_updated_at;autoUpdateTime" json:"student_account_updated_at"`
}

func (StudentAccountModel) TableName() string { return "student_accounts" }

func (m *StudentAccountModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentAccountID == uuid.Nil {
		m.StudentAccountID = uuid.New()
	}
	return nil
}
