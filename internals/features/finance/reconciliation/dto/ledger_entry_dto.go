package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	model "gabkutschola_backend/internals/features/finance/reconciliation/model"
)

type LedgerEntryResponse struct {
	LedgerEntryID uuid.UUID `json:"ledger_entry_id"`

	ReceiptNumber         string `json:"receipt_number"`
	Reference             string `json:"reference"`
	ExternalTransactionID string `json:"external_transaction_id"`

	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Period      string `json:"period"`

	StudentID   uuid.UUID  `json:"student_id"`
	ClassID     uuid.UUID  `json:"class_id"`
	IntentionID *uuid.UUID `json:"intention_id,omitempty"`

	PayerSnapshot datatypes.JSON `json:"payer_snapshot,omitempty"`

	Status       model.LedgerEntryStatus `json:"status"`
	CancelledAt  *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason *string                 `json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func FromLedgerEntryModel(m *model.LedgerEntryModel) *LedgerEntryResponse {
	if m == nil {
		return nil
	}
	return &LedgerEntryResponse{
		LedgerEntryID: m.LedgerEntryID,

		ReceiptNumber:         m.LedgerEntryReceiptNumber,
		Reference:             m.LedgerEntryReference,
		ExternalTransactionID: m.LedgerEntryExternalTransactionID,

		Amount:      decimal.New(m.LedgerEntryAmount, -2).StringFixed(2),
		AmountMinor: m.LedgerEntryAmount,
		Currency:    m.LedgerEntryCurrency,
		Period:      m.LedgerEntryPeriod,

		StudentID:   m.LedgerEntryStudentID,
		ClassID:     m.LedgerEntryClassID,
		IntentionID: m.LedgerEntryIntentionID,

		PayerSnapshot: m.LedgerEntryPayerSnapshot,

		Status:       m.LedgerEntryStatus,
		CancelledAt:  m.LedgerEntryCancelledAt,
		CancelReason: m.LedgerEntryCancelReason,

		CreatedAt: m.CreatedAt,
	}
}

func FromLedgerEntryModels(rows []model.LedgerEntryModel) []*LedgerEntryResponse {
	out := make([]*LedgerEntryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromLedgerEntryModel(&rows[i]))
	}
	return out
}
