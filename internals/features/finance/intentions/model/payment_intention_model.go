package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =====================================================================
   payment_intentions = locally recorded promises to pay.

   A row is created when the payer starts a payment at the front office,
   before the gateway sees any money. The matcher is the only writer of
   the pending->confirmed transition. Several rows may share a reference
   (installments on the same matricule); the matcher disambiguates by
   amount + recency.
===================================================================== */

type PaymentIntentionModel struct {
	PaymentIntentionID uuid.UUID `gorm:"column:payment_intention_id;type:uuid;primaryKey" json:"payment_intention_id"`

	// Payer-supplied identifier, e.g. the student matricule "19732-NKK".
	PaymentIntentionReference string `gorm:"column:payment_intention_reference;not null;index" json:"payment_intention_reference"`

	// Minor units (1/100 of the currency unit).
	PaymentIntentionAmount   int64  `gorm:"column:payment_intention_amount;not null;check:payment_intention_amount > 0" json:"payment_intention_amount"`
	PaymentIntentionCurrency string `gorm:"column:payment_intention_currency;type:varchar(8);not null;default:CDF" json:"payment_intention_currency"`

	// Target period, e.g. "Octobre".
	PaymentIntentionPeriod string `gorm:"column:payment_intention_period;not null" json:"payment_intention_period"`

	PaymentIntentionStudentID uuid.UUID `gorm:"column:payment_intention_student_id;type:uuid;not null;index" json:"payment_intention_student_id"`
	PaymentIntentionClassID   uuid.UUID `gorm:"column:payment_intention_class_id;type:uuid;not null;index" json:"payment_intention_class_id"`

	PaymentIntentionPayerName  *string `gorm:"column:payment_intention_payer_name" json:"payment_intention_payer_name,omitempty"`
	PaymentIntentionPayerPhone *string `gorm:"column:payment_intention_payer_phone" json:"payment_intention_payer_phone,omitempty"`
	PaymentIntentionPayerEmail *string `gorm:"column:payment_intention_payer_email" json:"payment_intention_payer_email,omitempty"`

	PaymentIntentionStatus IntentionStatus `gorm:"column:payment_intention_status;type:varchar(16);not null;default:'pending'" json:"payment_intention_status"`

	// Set when the matcher confirms; exactly one entry per confirmed intention.
	PaymentIntentionLedgerEntryID *uuid.UUID `gorm:"column:payment_intention_ledger_entry_id;type:uuid;uniqueIndex" json:"payment_intention_ledger_entry_id,omitempty"`

	// Optional checkout bootstrap (gateway-hosted payment page).
	PaymentIntentionProvider      *string `gorm:"column:payment_intention_provider;type:varchar(16)" json:"payment_intention_provider,omitempty"`
	PaymentIntentionCheckoutToken *string `gorm:"column:payment_intention_checkout_token" json:"payment_intention_checkout_token,omitempty"`
	PaymentIntentionCheckoutURL   *string `gorm:"column:payment_intention_checkout_url" json:"payment_intention_checkout_url,omitempty"`

	PaymentIntentionConfirmedAt *time.Time `gorm:"column:payment_intention_confirmed_at" json:"payment_intention_confirmed_at,omitempty"`
	PaymentIntentionCancelledAt *time.Time `gorm:"column:payment_intention_cancelled_at" json:"payment_intention_cancelled_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:payment_intention_created_at;autoCreateTime" json:"payment_intention_created_at"`
	UpdatedAt time.Time      `gorm:"column:payment_intention_updated_at;autoUpdateTime" json:"payment_intention_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:payment_intention_deleted_at;index" json:"payment_intention_deleted_at,omitempty"`
}

func (PaymentIntentionModel) TableName() string { return "payment_intentions" }

func (m *PaymentIntentionModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentIntentionID == uuid.Nil {
		m.PaymentIntentionID = uuid.New()
	}
	return nil
}

/* ===================== Helpers ===================== */

func (m *PaymentIntentionModel) IsPending() bool {
	return m.PaymentIntentionStatus == IntentionStatusPending
}

func (m *PaymentIntentionModel) IsConfirmed() bool {
	return m.PaymentIntentionStatus == IntentionStatusConfirmed
}

func (m *PaymentIntentionModel) IsTerminal() bool {
	return m.PaymentIntentionStatus != IntentionStatusPending
}
