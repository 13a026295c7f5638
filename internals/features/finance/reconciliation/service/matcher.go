package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	intmodel "gabkutschola_backend/internals/features/finance/intentions/model"
	dto "gabkutschola_backend/internals/features/finance/reconciliation/dto"
	model "gabkutschola_backend/internals/features/finance/reconciliation/model"

	aggservice "gabkutschola_backend/internals/features/finance/aggregates/service"
)

/* =====================================================================
   Confirmation Matcher

   One confirmation = one short-lived unit of work against the
   datastore; the datastore is the only synchronization point. Two
   guards make at-least-once, out-of-order delivery safe without a
   global lock:

     1. the unique ledger index on (reference, external_transaction_id)
     2. the conditional pending->confirmed update on the intention

   Under ambiguity the matcher books nothing: a confirmation that fits
   no pending intention lands in unmatched_confirmations and waits for
   a human.
===================================================================== */

// AmountToleranceMinor absorbs rounding between the gateway's minor-unit
// representation and locally captured amounts (0.01 currency unit).
const AmountToleranceMinor = 1

type Matcher struct {
	DB          *gorm.DB
	Credentials GatewayCredentials
	Recomputer  *aggservice.Recomputer

	// Optional collaborators, both fire-and-forget.
	Notifier ReceiptNotifier
	Alerter  AnomalyAlerter
}

type MatchResult struct {
	Outcome   model.GatewayEventOutcome
	Ambiguous bool

	Entry       *model.LedgerEntryModel
	Anomaly     *model.UnmatchedConfirmationModel
	IntentionID *uuid.UUID
}

// Authenticate checks the credentials carried in the callback body.
// Must be called before Process; a failure here leaves no trace at all.
func (m *Matcher) Authenticate(merchantID, sharedSecret string) error {
	return m.Credentials.Verify(merchantID, sharedSecret)
}

// Process reconciles one confirmation event. Terminal outcomes
// (matched, duplicate, ignored, unmatched) return a nil error: the
// gateway gets an acknowledgment and stops retrying. A non-nil error
// means nothing was written and the delivery is safe to retry.
func (m *Matcher) Process(ctx context.Context, ev *dto.ConfirmationEvent) (*MatchResult, error) {
	res := &MatchResult{}

	// Non-success statuses are acknowledged and dropped; the payer never
	// completed this attempt, so there is nothing to book.
	if !ev.IsSuccess() {
		res.Outcome = model.GatewayEventOutcomeIgnored
		m.logEvent(ctx, ev, res)
		return res, nil
	}

	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.reconcile(tx, ev, res)
	})
	if errors.Is(err, errConcurrentDuplicate) {
		// Lost a race with another delivery of this confirmation. The
		// transaction rolled back; the winner's entry (if it is already
		// visible) is returned for the acknowledgment.
		res.Outcome = model.GatewayEventOutcomeDuplicate
		res.Ambiguous = false
		res.Entry = m.findExisting(ctx, ev)
		err = nil
	}
	if err != nil {
		return nil, err
	}

	m.logEvent(ctx, ev, res)

	switch res.Outcome {
	case model.GatewayEventOutcomeMatched:
		// Derived totals are recomputed synchronously after the commit.
		// A failure here is logged, not surfaced: the ledger is already
		// durable and the recompute is self-healing on the next trigger.
		if m.Recomputer != nil {
			if rerr := m.Recomputer.RecomputeAffected(ctx, res.Entry.LedgerEntryStudentID, res.Entry.LedgerEntryClassID); rerr != nil {
				log.Printf("[ERROR] recompute after %s failed: %v", res.Entry.LedgerEntryReceiptNumber, rerr)
			}
		}
		if m.Notifier != nil {
			entry := res.Entry
			go m.Notifier.NotifyReceipt(entry)
		}
	case model.GatewayEventOutcomeUnmatched:
		if m.Alerter != nil && res.Anomaly != nil {
			anomaly := res.Anomaly
			go m.Alerter.AlertUnmatched(anomaly)
		}
	}

	return res, nil
}

func (m *Matcher) reconcile(tx *gorm.DB, ev *dto.ConfirmationEvent, res *MatchResult) error {
	// Step 1: replay check. Same (reference, external tx) already booked
	// means the gateway is retrying; acknowledge and change nothing.
	var existing model.LedgerEntryModel
	err := tx.First(&existing,
		"ledger_entry_reference = ? AND ledger_entry_external_transaction_id = ?",
		ev.Reference, ev.ExternalTransactionID,
	).Error
	if err == nil {
		res.Outcome = model.GatewayEventOutcomeDuplicate
		res.Entry = &existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Step 2: candidate intentions, same reference and currency, amount
	// within tolerance, newest first.
	var candidates []intmodel.PaymentIntentionModel
	if err := tx.
		Where("payment_intention_status = ?", intmodel.IntentionStatusPending).
		Where("payment_intention_reference = ?", ev.Reference).
		Where("payment_intention_currency = ?", ev.Currency).
		Where("ABS(payment_intention_amount - ?) <= ?", ev.AmountMinor, AmountToleranceMinor).
		Order("payment_intention_created_at DESC").
		Find(&candidates).Error; err != nil {
		return err
	}

	// Step 3: zero candidates -> record the anomaly, book nothing. Better
	// no record than a wrong one.
	if len(candidates) == 0 {
		return m.recordAnomaly(tx, ev, res)
	}

	// Step 4: several equally valid intentions (installments with the
	// same amount) -> most recently created wins. Flagged for audit.
	if len(candidates) > 1 {
		res.Ambiguous = true
		log.Printf("[AUDIT] ambiguous match reference=%s amount=%d candidates=%d, most recent wins",
			ev.Reference, ev.AmountMinor, len(candidates))
	}
	winner := candidates[0]

	// Step 5: guarded transition. Only one delivery can move the
	// intention out of pending; everyone else lands on the duplicate
	// path.
	now := time.Now().UTC()
	upd := tx.Model(&intmodel.PaymentIntentionModel{}).
		Where("payment_intention_id = ? AND payment_intention_status = ?",
			winner.PaymentIntentionID, intmodel.IntentionStatusPending).
		Updates(map[string]interface{}{
			"payment_intention_status":       intmodel.IntentionStatusConfirmed,
			"payment_intention_confirmed_at": now,
		})
	if upd.Error != nil {
		return upd.Error
	}
	if upd.RowsAffected == 0 {
		return errConcurrentDuplicate
	}

	// Step 6: write the ledger entry. The amount booked is the decoded
	// event amount; the intention details are frozen into the snapshot.
	snapshot, err := payerSnapshot(&winner, ev)
	if err != nil {
		return err
	}
	entry := &model.LedgerEntryModel{
		LedgerEntryReceiptNumber:         NewReceiptNumber(now),
		LedgerEntryReference:             ev.Reference,
		LedgerEntryExternalTransactionID: ev.ExternalTransactionID,
		LedgerEntryAmount:                ev.AmountMinor,
		LedgerEntryCurrency:              ev.Currency,
		LedgerEntryPeriod:                winner.PaymentIntentionPeriod,
		LedgerEntryStudentID:             winner.PaymentIntentionStudentID,
		LedgerEntryClassID:               winner.PaymentIntentionClassID,
		LedgerEntryIntentionID:           &winner.PaymentIntentionID,
		LedgerEntryPayerSnapshot:         snapshot,
		LedgerEntryStatus:                model.LedgerEntryStatusValidated,
	}
	if err := tx.Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return errConcurrentDuplicate
		}
		return err
	}

	// Step 7: back-link, so a confirmed intention points at its entry.
	if err := tx.Model(&intmodel.PaymentIntentionModel{}).
		Where("payment_intention_id = ?", winner.PaymentIntentionID).
		Update("payment_intention_ledger_entry_id", entry.LedgerEntryID).Error; err != nil {
		return err
	}

	res.Outcome = model.GatewayEventOutcomeMatched
	res.Entry = entry
	res.IntentionID = &winner.PaymentIntentionID
	return nil
}

func (m *Matcher) recordAnomaly(tx *gorm.DB, ev *dto.ConfirmationEvent, res *MatchResult) error {
	anomaly := &model.UnmatchedConfirmationModel{
		UnmatchedConfirmationReference:             ev.Reference,
		UnmatchedConfirmationExternalTransactionID: ev.ExternalTransactionID,
		UnmatchedConfirmationAmount:                ev.AmountMinor,
		UnmatchedConfirmationCurrency:              ev.Currency,
		UnmatchedConfirmationGatewayStatus:         ev.Status,
		UnmatchedConfirmationPayerPhone:            ev.PayerPhone,
		UnmatchedConfirmationPayerEmail:            ev.PayerEmail,
		UnmatchedConfirmationReceivedAt:            ev.ReceivedAt,
		UnmatchedConfirmationReviewStatus:          model.ReviewStatusOpen,
	}
	if err := tx.Create(anomaly).Error; err != nil {
		if isUniqueViolation(err) {
			// Retry of a confirmation already sitting in review.
			var prev model.UnmatchedConfirmationModel
			if ferr := tx.First(&prev,
				"unmatched_confirmation_reference = ? AND unmatched_confirmation_external_transaction_id = ?",
				ev.Reference, ev.ExternalTransactionID,
			).Error; ferr == nil {
				res.Outcome = model.GatewayEventOutcomeUnmatched
				res.Anomaly = &prev
				return nil
			}
		}
		return err
	}
	res.Outcome = model.GatewayEventOutcomeUnmatched
	res.Anomaly = anomaly
	return nil
}

// findExisting re-reads the ledger after a lost race, outside the
// rolled-back transaction. May legitimately return nil when the winner
// confirmed the same intention under a different external transaction
// id.
func (m *Matcher) findExisting(ctx context.Context, ev *dto.ConfirmationEvent) *model.LedgerEntryModel {
	var entry model.LedgerEntryModel
	if err := m.DB.WithContext(ctx).First(&entry,
		"ledger_entry_reference = ? AND ledger_entry_external_transaction_id = ?",
		ev.Reference, ev.ExternalTransactionID,
	).Error; err != nil {
		return nil
	}
	return &entry
}

// logEvent appends the audit row for a terminally handled delivery.
// Audit logging must never break reconciliation, so failures only log.
func (m *Matcher) logEvent(ctx context.Context, ev *dto.ConfirmationEvent, res *MatchResult) {
	now := time.Now().UTC()
	row := &model.GatewayEventModel{
		GatewayEventMerchantID:            m.Credentials.MerchantID,
		GatewayEventReference:             ev.Reference,
		GatewayEventExternalTransactionID: ev.ExternalTransactionID,
		GatewayEventPayload:               ev.Raw,
		GatewayEventOutcome:               res.Outcome,
		GatewayEventAmbiguous:             res.Ambiguous,
		GatewayEventIntentionID:           res.IntentionID,
		GatewayEventReceivedAt:            ev.ReceivedAt,
		GatewayEventProcessedAt:           &now,
	}
	if res.Entry != nil {
		row.GatewayEventLedgerEntryID = &res.Entry.LedgerEntryID
	}
	if err := m.DB.WithContext(ctx).Create(row).Error; err != nil {
		log.Printf("[ERROR] gateway event log write failed: %v", err)
	}
}

type snapshotDoc struct {
	Reference  string  `json:"reference"`
	Period     string  `json:"period"`
	Amount     int64   `json:"amount"`
	Currency   string  `json:"currency"`
	PayerName  *string `json:"payer_name,omitempty"`
	PayerPhone *string `json:"payer_phone,omitempty"`
	PayerEmail *string `json:"payer_email,omitempty"`
}

func payerSnapshot(intent *intmodel.PaymentIntentionModel, ev *dto.ConfirmationEvent) (datatypes.JSON, error) {
	doc := snapshotDoc{
		Reference:  intent.PaymentIntentionReference,
		Period:     intent.PaymentIntentionPeriod,
		Amount:     intent.PaymentIntentionAmount,
		Currency:   intent.PaymentIntentionCurrency,
		PayerName:  intent.PaymentIntentionPayerName,
		PayerPhone: intent.PaymentIntentionPayerPhone,
		PayerEmail: intent.PaymentIntentionPayerEmail,
	}
	if doc.PayerPhone == nil {
		doc.PayerPhone = ev.PayerPhone
	}
	if doc.PayerEmail == nil {
		doc.PayerEmail = ev.PayerEmail
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
