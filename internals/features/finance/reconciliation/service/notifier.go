package service

import (
	"log"

	model "gabkutschola_backend/internals/features/finance/reconciliation/model"
)

/* External collaborators. Receipt dispatch and anomaly alerting run
   after the reconciliation outcome is committed; their failure is
   logged and never rolls back or blocks the ledger. */

// ReceiptNotifier gets every freshly written ledger entry (receipts by
// SMS/email live behind this).
type ReceiptNotifier interface {
	NotifyReceipt(entry *model.LedgerEntryModel)
}

// AnomalyAlerter gets every new unmatched confirmation for staff
// follow-up.
type AnomalyAlerter interface {
	AlertUnmatched(anomaly *model.UnmatchedConfirmationModel)
}

// LogNotifier is the default implementation: structured log lines the
// ops side can tail until a real dispatcher is plugged in.
type LogNotifier struct{}

func (LogNotifier) NotifyReceipt(entry *model.LedgerEntryModel) {
	log.Printf("[RECEIPT] %s reference=%s amount=%d %s student=%s",
		entry.LedgerEntryReceiptNumber,
		entry.LedgerEntryReference,
		entry.LedgerEntryAmount,
		entry.LedgerEntryCurrency,
		entry.LedgerEntryStudentID,
	)
}

func (LogNotifier) AlertUnmatched(a *model.UnmatchedConfirmationModel) {
	log.Printf("[ALERT] unmatched confirmation reference=%s amount=%d %s external_tx=%s",
		a.UnmatchedConfirmationReference,
		a.UnmatchedConfirmationAmount,
		a.UnmatchedConfirmationCurrency,
		a.UnmatchedConfirmationExternalTransactionID,
	)
}
