package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// class_revenues: derived per-class totals, recomputed wholesale like
// student_accounts.
type ClassRevenueModel struct {
	ClassRevenueID uuid.UUID `gorm:"column:class_revenue_id;type:uuid;primaryKey" json:"class_revenue_id"`

	ClassRevenueClassID uuid.UUID `gorm:"column:class_revenue_class_id;type:uuid;not null;uniqueIndex" json:"class_revenue_class_id"`

	// Minor units. Expected = planned fees x enrolled headcount.
	ClassRevenueExpected int64 `gorm:"column:class_revenue_expected;not null;default:0" json:"class_revenue_expected"`
	ClassRevenueActual   int64 `gorm:"column:class_revenue_actual;not null;default:0" json:"class_revenue_actual"`
	ClassRevenueVariance int64 `gorm:"column:class_revenue_variance;not null;default:0" json:"class_revenue_variance"`

	ClassRevenueEntryCount       int64     `gorm:"column:class_revenue_entry_count;not null;default:0" json:"class_revenue_entry_count"`
	ClassRevenueLastRecomputedAt time.Time `gorm:"column:class_revenue_last_recomputed_at;not null" json:"class_revenue_last_recomputed_at"`

	CreatedAt time.Time `gorm:"column:class_revenue_created_at;autoCreateTime" json:"class_revenue_created_at"`
	UpdatedAt time.Time `gorm:"column:class_revenue_updated_at;autoUpdateTime" json:"class_revenue_updated_at"`
}

func (ClassRevenueModel) TableName() string { return "class_revenues" }

func (m *ClassRevenueModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassRevenueID == uuid.Nil {
		m.ClassRevenueID = uuid.New()
	}
	return nil
}
