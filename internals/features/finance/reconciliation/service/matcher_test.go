package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aggmodel "gabkutschola_backend/internals/features/finance/aggregates/model"
	intmodel "gabkutschola_backend/internals/features/finance/intentions/model"
	reconmodel "gabkutschola_backend/internals/features/finance/reconciliation/model"
	"gabkutschola_backend/internals/features/finance/reconciliation/service"
)

func TestMatcherBooksMatchingConfirmation(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	// GIVEN a pending intention of 50.00 CDF on matricule 19732-NKK
	intent := seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	// WHEN the gateway confirms 5000 minor units for that reference
	res, err := m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)

	// THEN exactly one validated entry is booked with the event amount
	require.Equal(t, reconmodel.GatewayEventOutcomeMatched, res.Outcome)
	assert.False(t, res.Ambiguous)
	require.NotNil(t, res.Entry)
	assert.Equal(t, int64(5000), res.Entry.LedgerEntryAmount)
	assert.Equal(t, "MP-TX-001", res.Entry.LedgerEntryExternalTransactionID)
	assert.Equal(t, reconmodel.LedgerEntryStatusValidated, res.Entry.LedgerEntryStatus)
	assert.Equal(t, intent.PaymentIntentionPeriod, res.Entry.LedgerEntryPeriod)
	assert.Equal(t, int64(1), countLedgerEntries(t, db, "19732-NKK"))

	// AND the intention is confirmed and back-linked to the entry
	var got intmodel.PaymentIntentionModel
	require.NoError(t, db.First(&got, "payment_intention_id = ?", intent.PaymentIntentionID).Error)
	assert.Equal(t, intmodel.IntentionStatusConfirmed, got.PaymentIntentionStatus)
	require.NotNil(t, got.PaymentIntentionConfirmedAt)
	require.NotNil(t, got.PaymentIntentionLedgerEntryID)
	assert.Equal(t, res.Entry.LedgerEntryID, *got.PaymentIntentionLedgerEntryID)

	// AND the derived student account already reflects the payment
	var acc aggmodel.StudentAccountModel
	require.NoError(t, db.First(&acc,
		"student_account_student_id = ?", intent.PaymentIntentionStudentID).Error)
	assert.Equal(t, int64(5000), acc.StudentAccountTotalPaid)
	assert.Equal(t, int64(1), acc.StudentAccountEntryCount)
}

func TestMatcherReplayIsIdempotent(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))
	first, err := m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)
	require.Equal(t, reconmodel.GatewayEventOutcomeMatched, first.Outcome)

	// WHEN the gateway retries the exact same confirmation
	replay, err := m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)

	// THEN it is acknowledged as a duplicate and nothing new is written
	assert.Equal(t, reconmodel.GatewayEventOutcomeDuplicate, replay.Outcome)
	require.NotNil(t, replay.Entry)
	assert.Equal(t, first.Entry.LedgerEntryID, replay.Entry.LedgerEntryID)
	assert.Equal(t, int64(1), countLedgerEntries(t, db, "19732-NKK"))
}

func TestMatcherSecondInstallmentBooksSeparately(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	// GIVEN two pending installments on the same matricule
	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-2*time.Hour))
	seedIntention(t, db, "19732-NKK", 3000, time.Now().Add(-time.Hour))

	res1, err := m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)
	res2, err := m.Process(ctx, successEvent("19732-NKK", 3000, "MP-TX-002"))
	require.NoError(t, err)

	// THEN both confirmations book, each against its own intention
	assert.Equal(t, reconmodel.GatewayEventOutcomeMatched, res1.Outcome)
	assert.Equal(t, reconmodel.GatewayEventOutcomeMatched, res2.Outcome)
	assert.False(t, res1.Ambiguous)
	assert.False(t, res2.Ambiguous)
	assert.NotEqual(t, *res1.IntentionID, *res2.IntentionID)
	assert.Equal(t, int64(2), countLedgerEntries(t, db, "19732-NKK"))
}

func TestMatcherUnknownReferenceRecordsAnomaly(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	// WHEN a confirmation arrives for a reference nobody registered
	res, err := m.Process(ctx, successEvent("GHOST-REF", 5000, "MP-TX-404"))
	require.NoError(t, err)

	// THEN nothing is booked and the confirmation is parked for review
	assert.Equal(t, reconmodel.GatewayEventOutcomeUnmatched, res.Outcome)
	assert.Nil(t, res.Entry)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, reconmodel.ReviewStatusOpen, res.Anomaly.UnmatchedConfirmationReviewStatus)
	assert.Equal(t, int64(0), countLedgerEntries(t, db, "GHOST-REF"))

	// AND a retry of the same confirmation does not pile up anomaly rows
	res2, err := m.Process(ctx, successEvent("GHOST-REF", 5000, "MP-TX-404"))
	require.NoError(t, err)
	assert.Equal(t, reconmodel.GatewayEventOutcomeUnmatched, res2.Outcome)

	var n int64
	require.NoError(t, db.Model(&reconmodel.UnmatchedConfirmationModel{}).
		Where("unmatched_confirmation_reference = ?", "GHOST-REF").
		Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestMatcherAmountOutsideToleranceRecordsAnomaly(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	// WHEN the confirmed amount is off by more than the tolerance
	res, err := m.Process(ctx, successEvent("19732-NKK", 5200, "MP-TX-001"))
	require.NoError(t, err)

	// THEN the intention stays pending and the confirmation is parked
	assert.Equal(t, reconmodel.GatewayEventOutcomeUnmatched, res.Outcome)
	assert.Equal(t, int64(0), countLedgerEntries(t, db, "19732-NKK"))

	var pending int64
	require.NoError(t, db.Model(&intmodel.PaymentIntentionModel{}).
		Where("payment_intention_status = ?", intmodel.IntentionStatusPending).
		Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestMatcherAmountWithinToleranceMatches(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	// 5001 vs 5000 is within the rounding tolerance
	res, err := m.Process(ctx, successEvent("19732-NKK", 5001, "MP-TX-001"))
	require.NoError(t, err)

	require.Equal(t, reconmodel.GatewayEventOutcomeMatched, res.Outcome)
	// The booked amount is what the gateway confirmed, not the local guess.
	assert.Equal(t, int64(5001), res.Entry.LedgerEntryAmount)
	assert.Equal(t, int64(1), countLedgerEntries(t, db, "19732-NKK"))
}

func TestMatcherCurrencyMismatchRecordsAnomaly(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	ev := successEvent("19732-NKK", 5000, "MP-TX-001")
	ev.Currency = "USD"
	res, err := m.Process(ctx, ev)
	require.NoError(t, err)

	assert.Equal(t, reconmodel.GatewayEventOutcomeUnmatched, res.Outcome)
	assert.Equal(t, int64(0), countLedgerEntries(t, db, "19732-NKK"))
}

func TestMatcherMostRecentIntentionWins(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	// GIVEN two identical pending installments, created an hour apart
	older := seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-2*time.Hour))
	newer := seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	res, err := m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)

	// THEN the most recently created one is confirmed, flagged for audit
	require.Equal(t, reconmodel.GatewayEventOutcomeMatched, res.Outcome)
	assert.True(t, res.Ambiguous)
	require.NotNil(t, res.IntentionID)
	assert.Equal(t, newer.PaymentIntentionID, *res.IntentionID)

	var left intmodel.PaymentIntentionModel
	require.NoError(t, db.First(&left, "payment_intention_id = ?", older.PaymentIntentionID).Error)
	assert.Equal(t, intmodel.IntentionStatusPending, left.PaymentIntentionStatus)
}

func TestMatcherIgnoresNonSuccessStatus(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	ev := successEvent("19732-NKK", 5000, "MP-TX-001")
	ev.Status = "failed"
	res, err := m.Process(ctx, ev)
	require.NoError(t, err)

	// Acknowledged, audited, nothing booked, intention untouched.
	assert.Equal(t, reconmodel.GatewayEventOutcomeIgnored, res.Outcome)
	assert.Equal(t, int64(0), countLedgerEntries(t, db, "19732-NKK"))

	var got intmodel.PaymentIntentionModel
	require.NoError(t, db.First(&got, "payment_intention_reference = ?", "19732-NKK").Error)
	assert.Equal(t, intmodel.IntentionStatusPending, got.PaymentIntentionStatus)
}

func TestMatcherSkipsCancelledIntentions(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	intent := seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))
	require.NoError(t, db.Model(&intmodel.PaymentIntentionModel{}).
		Where("payment_intention_id = ?", intent.PaymentIntentionID).
		Update("payment_intention_status", intmodel.IntentionStatusCancelled).Error)

	res, err := m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)

	// A cancelled intention is never a candidate.
	assert.Equal(t, reconmodel.GatewayEventOutcomeUnmatched, res.Outcome)
	assert.Equal(t, int64(0), countLedgerEntries(t, db, "19732-NKK"))
}

func TestMatcherWritesAuditTrail(t *testing.T) {
	m, db := newTestMatcher(t)
	ctx := context.Background()

	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	_, err := m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)
	_, err = m.Process(ctx, successEvent("19732-NKK", 5000, "MP-TX-001"))
	require.NoError(t, err)
	_, err = m.Process(ctx, successEvent("GHOST-REF", 100, "MP-TX-404"))
	require.NoError(t, err)

	// Every terminal delivery leaves exactly one audit row.
	var rows []reconmodel.GatewayEventModel
	require.NoError(t, db.Order("gateway_event_created_at").Find(&rows).Error)
	require.Len(t, rows, 3)

	outcomes := map[reconmodel.GatewayEventOutcome]int{}
	for _, r := range rows {
		outcomes[r.GatewayEventOutcome]++
		assert.Equal(t, "MERCHANT-001", r.GatewayEventMerchantID)
		require.NotNil(t, r.GatewayEventProcessedAt)
	}
	assert.Equal(t, 1, outcomes[reconmodel.GatewayEventOutcomeMatched])
	assert.Equal(t, 1, outcomes[reconmodel.GatewayEventOutcomeDuplicate])
	assert.Equal(t, 1, outcomes[reconmodel.GatewayEventOutcomeUnmatched])
}

func TestMatcherConcurrentReplayBooksOnce(t *testing.T) {
	m, db := newTestMatcher(t)

	seedIntention(t, db, "19732-NKK", 5000, time.Now().Add(-time.Hour))

	// WHEN the same confirmation is delivered twice at the same time
	var wg sync.WaitGroup
	results := make([]*service.MatchResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Process(context.Background(),
				successEvent("19732-NKK", 5000, "MP-TX-001"))
		}(i)
	}
	wg.Wait()

	// THEN both deliveries are acknowledged
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// AND exactly one entry exists, one matched and one duplicate outcome
	assert.Equal(t, int64(1), countLedgerEntries(t, db, "19732-NKK"))
	outcomes := map[reconmodel.GatewayEventOutcome]int{}
	for _, r := range results {
		outcomes[r.Outcome]++
	}
	assert.Equal(t, 1, outcomes[reconmodel.GatewayEventOutcomeMatched])
	assert.Equal(t, 1, outcomes[reconmodel.GatewayEventOutcomeDuplicate])

	var confirmed int64
	require.NoError(t, db.Model(&intmodel.PaymentIntentionModel{}).
		Where("payment_intention_status = ?", intmodel.IntentionStatusConfirmed).
		Count(&confirmed).Error)
	assert.Equal(t, int64(1), confirmed)
}

func TestMatcherAuthenticate(t *testing.T) {
	m, _ := newTestMatcher(t)

	require.NoError(t, m.Authenticate("MERCHANT-001", "s3cret"))
	assert.ErrorIs(t, m.Authenticate("MERCHANT-001", "wrong"), service.ErrAuthentication)
	assert.ErrorIs(t, m.Authenticate("someone-else", "s3cret"), service.ErrAuthentication)
}
