package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "gabkutschola_backend/internals/features/finance/aggregates/model"
	reconmodel "gabkutschola_backend/internals/features/finance/reconciliation/model"
)

/* =====================================================================
   Recomputer

   Derived totals are a pure function over the ledger and the fee
   schedule, recomputed wholesale on every ledger mutation. No
   incremental += / -= anywhere: a recompute that runs twice, late, or
   out of order lands on the same numbers, so retried and racing
   mutations cannot drift the balances.
===================================================================== */

type Recomputer struct {
	DB *gorm.DB
}

func NewRecomputer(db *gorm.DB) *Recomputer {
	return &Recomputer{DB: db}
}

type sumRow struct {
	Total int64
	N     int64
}

// RecomputeStudent rebuilds the student_accounts row for one student.
func (r *Recomputer) RecomputeStudent(ctx context.Context, studentID, classID uuid.UUID) (*model.StudentAccountModel, error) {
	db := r.DB.WithContext(ctx)

	var paid sumRow
	if err := db.Model(&reconmodel.LedgerEntryModel{}).
		Select("COALESCE(SUM(ledger_entry_amount), 0) AS total, COUNT(*) AS n").
		Where("ledger_entry_student_id = ? AND ledger_entry_status = ?",
			studentID, reconmodel.LedgerEntryStatusValidated).
		Scan(&paid).Error; err != nil {
		return nil, err
	}

	var expected sumRow
	if err := db.Model(&model.FeeScheduleModel{}).
		Select("COALESCE(SUM(fee_schedule_amount), 0) AS total, COUNT(*) AS n").
		Where("fee_schedule_class_id = ?", classID).
		Scan(&expected).Error; err != nil {
		return nil, err
	}

	outstanding := expected.Total - paid.Total
	if outstanding < 0 {
		outstanding = 0
	}

	acc := &model.StudentAccountModel{
		StudentAccountStudentID:          studentID,
		StudentAccountClassID:            classID,
		StudentAccountExpectedFees:       expected.Total,
		StudentAccountTotalPaid:          paid.Total,
		StudentAccountOutstandingBalance: outstanding,
		StudentAccountEntryCount:         paid.N,
		StudentAccountLastRecomputedAt:   time.Now().UTC(),
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_account_student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"student_account_class_id",
			"student_account_expected_fees",
			"student_account_total_paid",
			"student_account_outstanding_balance",
			"student_account_entry_count",
			"student_account_last_recomputed_at",
			"student_account_updated_at",
		}),
	}).Create(acc).Error; err != nil {
		return nil, err
	}
	return acc, nil
}

// RecomputeClass rebuilds the class_revenues row for one class.
func (r *Recomputer) RecomputeClass(ctx context.Context, classID uuid.UUID) (*model.ClassRevenueModel, error) {
	db := r.DB.WithContext(ctx)

	var actual sumRow
	if err := db.Model(&reconmodel.LedgerEntryModel{}).
		Select("COALESCE(SUM(ledger_entry_amount), 0) AS total, COUNT(*) AS n").
		Where("ledger_entry_class_id = ? AND ledger_entry_status = ?",
			classID, reconmodel.LedgerEntryStatusValidated).
		Scan(&actual).Error; err != nil {
		return nil, err
	}

	var expected sumRow
	if err := db.Model(&model.FeeScheduleModel{}).
		Select("COALESCE(SUM(fee_schedule_amount * fee_schedule_enrolled_count), 0) AS total, COUNT(*) AS n").
		Where("fee_schedule_class_id = ?", classID).
		Scan(&expected).Error; err != nil {
		return nil, err
	}

	rev := &model.ClassRevenueModel{
		ClassRevenueClassID:          classID,
		ClassRevenueExpected:         expected.Total,
		ClassRevenueActual:           actual.Total,
		ClassRevenueVariance:         expected.Total - actual.Total,
		ClassRevenueEntryCount:       actual.N,
		ClassRevenueLastRecomputedAt: time.Now().UTC(),
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "class_revenue_class_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"class_revenue_expected",
			"class_revenue_actual",
			"class_revenue_variance",
			"class_revenue_entry_count",
			"class_revenue_last_recomputed_at",
			"class_revenue_updated_at",
		}),
	}).Create(rev).Error; err != nil {
		return nil, err
	}
	return rev, nil
}

// RecomputeAffected is the hook the matcher and the ledger cancel path
// call after a mutation: student first, then the class.
func (r *Recomputer) RecomputeAffected(ctx context.Context, studentID, classID uuid.UUID) error {
	if _, err := r.RecomputeStudent(ctx, studentID, classID); err != nil {
		return err
	}
	_, err := r.RecomputeClass(ctx, classID)
	return err
}

// RecomputeAll walks every (student, class) pair seen in the ledger plus
// every class in the fee schedule. Used by the staff force-recompute
// endpoint as a self-healing hook.
func (r *Recomputer) RecomputeAll(ctx context.Context) (int, error) {
	db := r.DB.WithContext(ctx)

	type pair struct {
		StudentID uuid.UUID `gorm:"column:sid"`
		ClassID   uuid.UUID `gorm:"column:cid"`
	}
	var pairs []pair
	if err := db.Model(&reconmodel.LedgerEntryModel{}).
		Select("DISTINCT ledger_entry_student_id AS sid, ledger_entry_class_id AS cid").
		Scan(&pairs).Error; err != nil {
		return 0, err
	}

	touched := 0
	seenClass := map[uuid.UUID]bool{}
	for _, p := range pairs {
		if _, err := r.RecomputeStudent(ctx, p.StudentID, p.ClassID); err != nil {
			return touched, err
		}
		touched++
		if !seenClass[p.ClassID] {
			if _, err := r.RecomputeClass(ctx, p.ClassID); err != nil {
				return touched, err
			}
			seenClass[p.ClassID] = true
			touched++
		}
	}

	var classIDs []uuid.UUID
	if err := db.Model(&model.FeeScheduleModel{}).
		Distinct("fee_schedule_class_id").
		Pluck("fee_schedule_class_id", &classIDs).Error; err != nil {
		return touched, err
	}
	for _, cid := range classIDs {
		if seenClass[cid] {
			continue
		}
		if _, err := r.RecomputeClass(ctx, cid); err != nil {
			return touched, err
		}
		touched++
	}

	return touched, nil
}
