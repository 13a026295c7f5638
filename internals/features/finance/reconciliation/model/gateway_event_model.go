package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  gateway_events = audit log of every authenticated confirmation callback.
  One row per delivery (replays included), with the raw payload and the
  outcome the matcher reached. Ambiguous matches are flagged here for
  staff follow-up.
*/

type GatewayEventModel struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;primaryKey" json:"gateway_event_id"`

	GatewayEventMerchantID            string `gorm:"column:gateway_event_merchant_id;not null" json:"gateway_event_merchant_id"`
	GatewayEventReference             string `gorm:"column:gateway_event_reference;not null;index" json:"gateway_event_reference"`
	GatewayEventExternalTransactionID string `gorm:"column:gateway_event_external_transaction_id;not null;index" json:"gateway_event_external_transaction_id"`

	// Raw payload for debug / replay.
	GatewayEventPayload datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload,omitempty"`

	GatewayEventOutcome   GatewayEventOutcome `gorm:"column:gateway_event_outcome;type:varchar(16);not null" json:"gateway_event_outcome"`
	GatewayEventAmbiguous bool                `gorm:"column:gateway_event_ambiguous;not null;default:false" json:"gateway_event_ambiguous"`
	GatewayEventError     *string             `gorm:"column:gateway_event_error" json:"gateway_event_error,omitempty"`

	GatewayEventIntentionID   *uuid.UUID `gorm:"column:gateway_event_intention_id;type:uuid" json:"gateway_event_intention_id,omitempty"`
	GatewayEventLedgerEntryID *uuid.UUID `gorm:"column:gateway_event_ledger_entry_id;type:uuid" json:"gateway_event_ledger_entry_id,omitempty"`

	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;not null" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at,omitempty"`

	CreatedAt time.Time `gorm:"column:gateway_event_created_at;autoCreateTime" json:"gateway_event_created_at"`
}

func (GatewayEventModel) TableName() string { return "gateway_events" }

func (m *GatewayEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.GatewayEventID == uuid.Nil {
		m.GatewayEventID = uuid.New()
	}
	return nil
}
