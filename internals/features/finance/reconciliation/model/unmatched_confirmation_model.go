package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =====================================================================
   unmatched_confirmations = confirmations the matcher refused to book.

   Kept apart from the ledger on purpose: these rows are never promoted
   automatically. A human investigates, creates the missing intention if
   the money is real, and asks the gateway to resend (or re-submits the
   event). The unique index keeps replays of the same confirmation from
   piling up duplicate anomaly rows.
===================================================================== */

type UnmatchedConfirmationModel struct {
	UnmatchedConfirmationID uuid.UUID `gorm:"column:unmatched_confirmation_id;type:uuid;primaryKey" json:"unmatched_confirmation_id"`

	UnmatchedConfirmationReference             string `gorm:"column:unmatched_confirmation_reference;not null;uniqueIndex:ux_unmatched_reference_external_tx;index" json:"unmatched_confirmation_reference"`
	UnmatchedConfirmationExternalTransactionID string `gorm:"column:unmatched_confirmation_external_transaction_id;not null;uniqueIndex:ux_unmatched_reference_external_tx" json:"unmatched_confirmation_external_transaction_id"`

	// Minor units as received from the gateway.
	UnmatchedConfirmationAmount   int64  `gorm:"column:unmatched_confirmation_amount;not null" json:"unmatched_confirmation_amount"`
	UnmatchedConfirmationCurrency string `gorm:"column:unmatched_confirmation_currency;type:varchar(8);not null" json:"unmatched_confirmation_currency"`

	UnmatchedConfirmationGatewayStatus string `gorm:"column:unmatched_confirmation_gateway_status;not null" json:"unmatched_confirmation_gateway_status"`

	UnmatchedConfirmationPayerPhone *string `gorm:"column:unmatched_confirmation_payer_phone" json:"unmatched_confirmation_payer_phone,omitempty"`
	UnmatchedConfirmationPayerEmail *string `gorm:"column:unmatched_confirmation_payer_email" json:"unmatched_confirmation_payer_email,omitempty"`

	UnmatchedConfirmationReceivedAt time.Time `gorm:"column:unmatched_confirmation_received_at;not null" json:"unmatched_confirmation_received_at"`

	UnmatchedConfirmationReviewStatus   ReviewStatus `gorm:"column:unmatched_confirmation_review_status;type:varchar(16);not null;default:'open'" json:"unmatched_confirmation_review_status"`
	UnmatchedConfirmationResolutionNote *string      `gorm:"column:unmatched_confirmation_resolution_note" json:"unmatched_confirmation_resolution_note,omitempty"`
	UnmatchedConfirmationResolvedAt     *time.Time   `gorm:"column:unmatched_confirmation_resolved_at" json:"unmatched_confirmation_resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"column:unmatched_confirmation_created_at;autoCreateTime" json:"unmatched_confirmation_created_at"`
	UpdatedAt time.Time `gorm:"column:unmatched_confirmation_updated_at;autoUpdateTime" json:"unmatched_confirmation_updated_at"`
}

func (UnmatchedConfirmationModel) TableName() string { return "unmatched_confirmations" }

func (m *UnmatchedConfirmationModel) BeforeCreate(tx *gorm.DB) error {
	if m.UnmatchedConfirmationID == uuid.Nil {
		m.UnmatchedConfirmationID = uuid.New()
	}
	return nil
}
