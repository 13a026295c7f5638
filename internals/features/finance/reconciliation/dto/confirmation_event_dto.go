package dto

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
)

/* =========================================================
   Inbound confirmation

   The gateway posts a loosely-typed payload; everything past the
   controller works on the validated ConfirmationEvent instead of raw
   fields.
========================================================= */

type GatewayConfirmationRequest struct {
	MerchantID   string `json:"merchant_id" validate:"required"`
	SharedSecret string `json:"shared_secret" validate:"required"`

	Reference string `json:"reference" validate:"required"`

	// Minor units (1/100 of the currency unit), e.g. 5000 for 50.00.
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency"`

	Status                string `json:"status" validate:"required"`
	ExternalTransactionID string `json:"external_transaction_id" validate:"required"`

	PayerPhone *string `json:"payer_phone"`
	PayerEmail *string `json:"payer_email"`

	// RFC3339; defaults to the arrival time when absent or unparsable.
	Timestamp string `json:"timestamp"`
}

// Gateway statuses that mean "money actually moved".
var successStatuses = map[string]bool{
	"success":    true,
	"settlement": true,
	"paid":       true,
}

type ConfirmationEvent struct {
	Reference             string
	AmountMinor           int64
	Currency              string
	Status                string
	ExternalTransactionID string
	PayerPhone            *string
	PayerEmail            *string
	ReceivedAt            time.Time

	// Raw body as delivered, kept for the audit log.
	Raw datatypes.JSON
}

func (e *ConfirmationEvent) IsSuccess() bool {
	return successStatuses[e.Status]
}

// ToEvent coerces the raw payload into the typed event. Run
// helper.ValidateStruct on the request first.
func (r *GatewayConfirmationRequest) ToEvent() (*ConfirmationEvent, error) {
	ref := strings.TrimSpace(r.Reference)
	extID := strings.TrimSpace(r.ExternalTransactionID)
	if ref == "" || extID == "" {
		return nil, errors.New("reference and external_transaction_id are required")
	}
	if r.Amount <= 0 {
		return nil, errors.New("amount must be a positive number of minor units")
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = "CDF"
	}

	receivedAt := time.Now().UTC()
	if ts := strings.TrimSpace(r.Timestamp); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			receivedAt = t.UTC()
		}
	}

	return &ConfirmationEvent{
		Reference:             ref,
		AmountMinor:           r.Amount,
		Currency:              currency,
		Status:                strings.ToLower(strings.TrimSpace(r.Status)),
		ExternalTransactionID: extID,
		PayerPhone:            r.PayerPhone,
		PayerEmail:            r.PayerEmail,
		ReceivedAt:            receivedAt,
	}, nil
}
