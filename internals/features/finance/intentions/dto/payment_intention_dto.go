package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	model "gabkutschola_backend/internals/features/finance/intentions/model"
)

/* =========================================================
   CREATE
========================================================= */

type CreatePaymentIntentionRequest struct {
	Reference string `json:"reference" validate:"required"`

	// Major units as a decimal string, e.g. "50.00". Converted to minor
	// units at the boundary so the stores only ever see integers.
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency"`
	Period   string `json:"period" validate:"required"`

	StudentID uuid.UUID `json:"student_id" validate:"required"`
	ClassID   uuid.UUID `json:"class_id" validate:"required"`

	PayerName  *string `json:"payer_name"`
	PayerPhone *string `json:"payer_phone"`
	PayerEmail *string `json:"payer_email" validate:"omitempty,email"`

	// Optional hosted-checkout provider ("midtrans"). Empty = payer pays
	// through whatever channel the gateway offers them directly.
	Provider *string `json:"provider"`
}

// AmountMinor parses the decimal amount into minor units. Rejects
// non-positive values and anything finer than 2 decimal places.
func (r *CreatePaymentIntentionRequest) AmountMinor() (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return 0, errors.New("invalid amount")
	}
	if !d.IsPositive() {
		return 0, errors.New("amount must be positive")
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, errors.New("amount has more than 2 decimal places")
	}
	return minor.IntPart(), nil
}

func (r *CreatePaymentIntentionRequest) Validate() error {
	if strings.TrimSpace(r.Reference) == "" {
		return errors.New("reference is required")
	}
	if strings.TrimSpace(r.Period) == "" {
		return errors.New("period is required")
	}
	if _, err := r.AmountMinor(); err != nil {
		return err
	}
	if r.Provider != nil && *r.Provider != "" &&
		strings.ToLower(*r.Provider) != string(model.CheckoutProviderMidtrans) {
		return errors.New("invalid provider")
	}
	return nil
}

func (r *CreatePaymentIntentionRequest) ToModel() (*model.PaymentIntentionModel, error) {
	amount, err := r.AmountMinor()
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = "CDF"
	}

	out := &model.PaymentIntentionModel{
		PaymentIntentionReference: strings.TrimSpace(r.Reference),
		PaymentIntentionAmount:    amount,
		PaymentIntentionCurrency:  currency,
		PaymentIntentionPeriod:    strings.TrimSpace(r.Period),
		PaymentIntentionStudentID: r.StudentID,
		PaymentIntentionClassID:   r.ClassID,

		PaymentIntentionPayerName:  r.PayerName,
		PaymentIntentionPayerPhone: r.PayerPhone,
		PaymentIntentionPayerEmail: r.PayerEmail,

		PaymentIntentionStatus: model.IntentionStatusPending,
	}
	if r.Provider != nil && *r.Provider != "" {
		prov := strings.ToLower(strings.TrimSpace(*r.Provider))
		out.PaymentIntentionProvider = &prov
	}
	return out, nil
}

/* =========================================================
   RESPONSE
========================================================= */

type PaymentIntentionResponse struct {
	PaymentIntentionID uuid.UUID `json:"payment_intention_id"`

	Reference   string `json:"reference"`
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Period      string `json:"period"`

	StudentID uuid.UUID `json:"student_id"`
	ClassID   uuid.UUID `json:"class_id"`

	PayerName  *string `json:"payer_name,omitempty"`
	PayerPhone *string `json:"payer_phone,omitempty"`
	PayerEmail *string `json:"payer_email,omitempty"`

	Status        model.IntentionStatus `json:"status"`
	LedgerEntryID *uuid.UUID            `json:"ledger_entry_id,omitempty"`

	Provider      *string `json:"provider,omitempty"`
	CheckoutToken *string `json:"checkout_token,omitempty"`
	CheckoutURL   *string `json:"checkout_url,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func FromModel(m *model.PaymentIntentionModel) *PaymentIntentionResponse {
	if m == nil {
		return nil
	}
	return &PaymentIntentionResponse{
		PaymentIntentionID: m.PaymentIntentionID,

		Reference:   m.PaymentIntentionReference,
		Amount:      decimal.New(m.PaymentIntentionAmount, -2).StringFixed(2),
		AmountMinor: m.PaymentIntentionAmount,
		Currency:    m.PaymentIntentionCurrency,
		Period:      m.PaymentIntentionPeriod,

		StudentID: m.PaymentIntentionStudentID,
		ClassID:   m.PaymentIntentionClassID,

		PayerName:  m.PaymentIntentionPayerName,
		PayerPhone: m.PaymentIntentionPayerPhone,
		PayerEmail: m.PaymentIntentionPayerEmail,

		Status:        m.PaymentIntentionStatus,
		LedgerEntryID: m.PaymentIntentionLedgerEntryID,

		Provider:      m.PaymentIntentionProvider,
		CheckoutToken: m.PaymentIntentionCheckoutToken,
		CheckoutURL:   m.PaymentIntentionCheckoutURL,

		ConfirmedAt: m.PaymentIntentionConfirmedAt,
		CancelledAt: m.PaymentIntentionCancelledAt,
		CreatedAt:   m.CreatedAt,
	}
}

func FromModels(rows []model.PaymentIntentionModel) []*PaymentIntentionResponse {
	out := make([]*PaymentIntentionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
