package service_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	aggmodel "gabkutschola_backend/internals/features/finance/aggregates/model"
	aggservice "gabkutschola_backend/internals/features/finance/aggregates/service"
	intmodel "gabkutschola_backend/internals/features/finance/intentions/model"
	"gabkutschola_backend/internals/features/finance/reconciliation/dto"
	reconmodel "gabkutschola_backend/internals/features/finance/reconciliation/model"
	"gabkutschola_backend/internals/features/finance/reconciliation/service"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// File-backed so concurrent tests share state; immediate txlock +
	// busy timeout serialize the racing transactions the way Postgres
	// row locks would.
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&intmodel.PaymentIntentionModel{},
		&reconmodel.LedgerEntryModel{},
		&reconmodel.UnmatchedConfirmationModel{},
		&reconmodel.GatewayEventModel{},
		&aggmodel.StudentAccountModel{},
		&aggmodel.ClassRevenueModel{},
		&aggmodel.FeeScheduleModel{},
	))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestMatcher(t *testing.T) (*service.Matcher, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	m := &service.Matcher{
		DB: db,
		Credentials: service.GatewayCredentials{
			MerchantID:   "MERCHANT-001",
			SharedSecret: "s3cret",
		},
		Recomputer: aggservice.NewRecomputer(db),
	}
	return m, db
}

func seedIntention(t *testing.T, db *gorm.DB, reference string, amount int64, createdAt time.Time) *intmodel.PaymentIntentionModel {
	t.Helper()
	m := &intmodel.PaymentIntentionModel{
		PaymentIntentionReference: reference,
		PaymentIntentionAmount:    amount,
		PaymentIntentionCurrency:  "CDF",
		PaymentIntentionPeriod:    "Octobre",
		PaymentIntentionStudentID: uuid.New(),
		PaymentIntentionClassID:   uuid.New(),
		PaymentIntentionStatus:    intmodel.IntentionStatusPending,
		CreatedAt:                 createdAt,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func successEvent(reference string, amount int64, externalTxID string) *dto.ConfirmationEvent {
	return &dto.ConfirmationEvent{
		Reference:             reference,
		AmountMinor:           amount,
		Currency:              "CDF",
		Status:                "success",
		ExternalTransactionID: externalTxID,
		ReceivedAt:            time.Now().UTC(),
	}
}

func countLedgerEntries(t *testing.T, db *gorm.DB, reference string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&reconmodel.LedgerEntryModel{}).
		Where("ledger_entry_reference = ?", reference).
		Count(&n).Error)
	return n
}
