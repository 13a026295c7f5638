package dto_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gabkutschola_backend/internals/features/finance/intentions/dto"
	"gabkutschola_backend/internals/features/finance/intentions/model"
)

func TestAmountMinorParsing(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "plain decimal", amount: "50.00", want: 5000},
		{name: "no fraction", amount: "120", want: 12000},
		{name: "one decimal place", amount: "7.5", want: 750},
		{name: "leading space", amount: " 50.00 ", want: 5000},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5.00", wantErr: true},
		{name: "too many decimals", amount: "10.123", wantErr: true},
		{name: "not a number", amount: "cinquante", wantErr: true},
		{name: "empty", amount: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := dto.CreatePaymentIntentionRequest{Amount: tc.amount}
			got, err := r.AmountMinor()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCreateRequestToModel(t *testing.T) {
	r := dto.CreatePaymentIntentionRequest{
		Reference: " 19732-NKK ",
		Amount:    "50.00",
		Period:    "Octobre",
		StudentID: uuid.New(),
		ClassID:   uuid.New(),
	}
	require.NoError(t, r.Validate())

	m, err := r.ToModel()
	require.NoError(t, err)

	assert.Equal(t, "19732-NKK", m.PaymentIntentionReference)
	assert.Equal(t, int64(5000), m.PaymentIntentionAmount)
	// Currency defaults to the franc when the front office omits it.
	assert.Equal(t, "CDF", m.PaymentIntentionCurrency)
	assert.Equal(t, model.IntentionStatusPending, m.PaymentIntentionStatus)
	assert.Nil(t, m.PaymentIntentionProvider)
}

func TestCreateRequestRejectsUnknownProvider(t *testing.T) {
	prov := "paypal"
	r := dto.CreatePaymentIntentionRequest{
		Reference: "19732-NKK",
		Amount:    "50.00",
		Period:    "Octobre",
		Provider:  &prov,
	}
	assert.Error(t, r.Validate())
}

func TestResponseRendersMajorUnits(t *testing.T) {
	m := &model.PaymentIntentionModel{
		PaymentIntentionID:        uuid.New(),
		PaymentIntentionReference: "19732-NKK",
		PaymentIntentionAmount:    5001,
		PaymentIntentionCurrency:  "CDF",
		PaymentIntentionPeriod:    "Octobre",
		PaymentIntentionStatus:    model.IntentionStatusPending,
	}

	resp := dto.FromModel(m)
	assert.Equal(t, "50.01", resp.Amount)
	assert.Equal(t, int64(5001), resp.AmountMinor)
}
