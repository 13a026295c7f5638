package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gabkutschola_backend/internals/features/finance/aggregates/model"
	"gabkutschola_backend/internals/features/finance/aggregates/service"
	reconmodel "gabkutschola_backend/internals/features/finance/reconciliation/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&reconmodel.LedgerEntryModel{},
		&model.StudentAccountModel{},
		&model.ClassRevenueModel{},
		&model.FeeScheduleModel{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, studentID, classID uuid.UUID, amount int64, status reconmodel.LedgerEntryStatus) {
	t.Helper()
	require.NoError(t, db.Create(&reconmodel.LedgerEntryModel{
		LedgerEntryReceiptNumber:         "RC-TEST-" + uuid.NewString()[:8],
		LedgerEntryReference:             "19732-NKK",
		LedgerEntryExternalTransactionID: uuid.NewString(),
		LedgerEntryAmount:                amount,
		LedgerEntryCurrency:              "CDF",
		LedgerEntryPeriod:                "Octobre",
		LedgerEntryStudentID:             studentID,
		LedgerEntryClassID:               classID,
		LedgerEntryStatus:                status,
	}).Error)
}

func TestRecomputeStudentSumsValidatedEntriesOnly(t *testing.T) {
	db := newTestDB(t)
	rec := service.NewRecomputer(db)
	ctx := context.Background()

	studentID, classID := uuid.New(), uuid.New()

	// GIVEN two validated payments, one cancelled one, and a 120.00 fee plan
	seedEntry(t, db, studentID, classID, 5000, reconmodel.LedgerEntryStatusValidated)
	seedEntry(t, db, studentID, classID, 3000, reconmodel.LedgerEntryStatusValidated)
	seedEntry(t, db, studentID, classID, 9999, reconmodel.LedgerEntryStatusCancelled)
	require.NoError(t, db.Create(&model.FeeScheduleModel{
		FeeScheduleClassID: classID,
		FeeSchedulePeriod:  "Octobre",
		FeeScheduleAmount:  12000,
	}).Error)

	acc, err := rec.RecomputeStudent(ctx, studentID, classID)
	require.NoError(t, err)

	// THEN cancelled money does not count and the balance is the gap
	assert.Equal(t, int64(8000), acc.StudentAccountTotalPaid)
	assert.Equal(t, int64(12000), acc.StudentAccountExpectedFees)
	assert.Equal(t, int64(4000), acc.StudentAccountOutstandingBalance)
	assert.Equal(t, int64(2), acc.StudentAccountEntryCount)
}

func TestRecomputeStudentClampsOverpaymentAtZero(t *testing.T) {
	db := newTestDB(t)
	rec := service.NewRecomputer(db)

	studentID, classID := uuid.New(), uuid.New()
	seedEntry(t, db, studentID, classID, 15000, reconmodel.LedgerEntryStatusValidated)
	require.NoError(t, db.Create(&model.FeeScheduleModel{
		FeeScheduleClassID: classID,
		FeeSchedulePeriod:  "Octobre",
		FeeScheduleAmount:  12000,
	}).Error)

	acc, err := rec.RecomputeStudent(context.Background(), studentID, classID)
	require.NoError(t, err)

	assert.Equal(t, int64(15000), acc.StudentAccountTotalPaid)
	assert.Equal(t, int64(0), acc.StudentAccountOutstandingBalance)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	rec := service.NewRecomputer(db)
	ctx := context.Background()

	studentID, classID := uuid.New(), uuid.New()
	seedEntry(t, db, studentID, classID, 5000, reconmodel.LedgerEntryStatusValidated)

	// Running the recompute twice lands on the same numbers and one row.
	first, err := rec.RecomputeStudent(ctx, studentID, classID)
	require.NoError(t, err)
	second, err := rec.RecomputeStudent(ctx, studentID, classID)
	require.NoError(t, err)

	assert.Equal(t, first.StudentAccountTotalPaid, second.StudentAccountTotalPaid)
	assert.Equal(t, first.StudentAccountOutstandingBalance, second.StudentAccountOutstandingBalance)

	var n int64
	require.NoError(t, db.Model(&model.StudentAccountModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRecomputeClassRevenue(t *testing.T) {
	db := newTestDB(t)
	rec := service.NewRecomputer(db)

	classID := uuid.New()
	seedEntry(t, db, uuid.New(), classID, 5000, reconmodel.LedgerEntryStatusValidated)
	seedEntry(t, db, uuid.New(), classID, 5000, reconmodel.LedgerEntryStatusValidated)
	require.NoError(t, db.Create(&model.FeeScheduleModel{
		FeeScheduleClassID:       classID,
		FeeSchedulePeriod:        "Octobre",
		FeeScheduleAmount:        5000,
		FeeScheduleEnrolledCount: 30,
	}).Error)

	rev, err := rec.RecomputeClass(context.Background(), classID)
	require.NoError(t, err)

	// Expected = fee x headcount; variance = expected - actual.
	assert.Equal(t, int64(150000), rev.ClassRevenueExpected)
	assert.Equal(t, int64(10000), rev.ClassRevenueActual)
	assert.Equal(t, int64(140000), rev.ClassRevenueVariance)
	assert.Equal(t, int64(2), rev.ClassRevenueEntryCount)
}

func TestRecomputeAllCoversLedgerAndSchedule(t *testing.T) {
	db := newTestDB(t)
	rec := service.NewRecomputer(db)

	// Two students in one class with payments, plus a class that only has
	// a fee plan and no money yet.
	classA, classB := uuid.New(), uuid.New()
	seedEntry(t, db, uuid.New(), classA, 5000, reconmodel.LedgerEntryStatusValidated)
	seedEntry(t, db, uuid.New(), classA, 3000, reconmodel.LedgerEntryStatusValidated)
	require.NoError(t, db.Create(&model.FeeScheduleModel{
		FeeScheduleClassID:       classB,
		FeeSchedulePeriod:        "Octobre",
		FeeScheduleAmount:        7000,
		FeeScheduleEnrolledCount: 10,
	}).Error)

	touched, err := rec.RecomputeAll(context.Background())
	require.NoError(t, err)
	// 2 student accounts + class A + class B.
	assert.Equal(t, 4, touched)

	var accounts, revenues int64
	require.NoError(t, db.Model(&model.StudentAccountModel{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&model.ClassRevenueModel{}).Count(&revenues).Error)
	assert.Equal(t, int64(2), accounts)
	assert.Equal(t, int64(2), revenues)

	var idle model.ClassRevenueModel
	require.NoError(t, db.First(&idle, "class_revenue_class_id = ?", classB).Error)
	assert.Equal(t, int64(70000), idle.ClassRevenueExpected)
	assert.Equal(t, int64(0), idle.ClassRevenueActual)
}
