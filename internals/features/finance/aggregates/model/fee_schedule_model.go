package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* fee_schedules = planning input for the derived aggregates.
   One row per (class, period): the fee amount owed for that period and
   the enrolled headcount used for the class revenue projection.
   Maintained by staff; read-only for the recomputer. */

type FeeScheduleModel struct {
	FeeScheduleID uuid.UUID `gorm:"column:fee_schedule_id;type:uuid;primaryKey" json:"fee_schedule_id"`

	FeeScheduleClassID uuid.UUID `gorm:"column:fee_schedule_class_id;type:uuid;not null;uniqueIndex:ux_fee_schedules_class_period" json:"fee_schedule_class_id"`
	FeeSchedulePeriod  string    `gorm:"column:fee_schedule_period;not null;uniqueIndex:ux_fee_schedules_class_period" json:"fee_schedule_period"`

	// Minor units.
	FeeScheduleAmount        int64 `gorm:"column:fee_schedule_amount;not null;check:fee_schedule_amount >= 0" json:"fee_schedule_amount"`
	FeeScheduleEnrolledCount int64 `gorm:"column:fee_schedule_enrolled_count;not null;default:0" json:"fee_schedule_enrolled_count"`

	CreatedAt time.Time `gorm:"column:fee_schedule_created_at;autoCreateTime" json:"fee_schedule_created_at"`
	UpdatedAt time.Time `gorm:"column:fee_schedule_updated_at;autoUpdateTime" json:"fee_schedule_updated_at"`
}

func (FeeScheduleModel) TableName() string { return "fee_schedules" }

func (m *FeeScheduleModel) BeforeCreate(tx *gorm.DB) error {
	if m.FeeScheduleID == uuid.Nil {
		m.FeeScheduleID = uuid.New()
	}
	return nil
}
