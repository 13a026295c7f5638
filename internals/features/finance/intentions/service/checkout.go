package service

import (
	"errors"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	model "gabkutschola_backend/internals/features/finance/intentions/model"
)

/* =========================================================
   Hosted checkout (Midtrans Snap)

   Optional convenience: when an intention is created with
   provider=midtrans, the front office gets a Snap token back so the
   payer can finish on the gateway-hosted page. The reconciliation
   pipeline does not depend on this; confirmations arrive over the
   webhook regardless of how the payer reached the gateway.
========================================================= */

var snapClient snap.Client
var snapReady bool

// InitCheckout must be called at bootstrap when MIDTRANS_SERVER_KEY is set.
func InitCheckout(serverKey string, useProduction bool) {
	if serverKey == "" {
		return
	}
	if useProduction {
		snapClient.New(serverKey, midtrans.Production)
	} else {
		snapClient.New(serverKey, midtrans.Sandbox)
	}
	snapReady = true
}

func CheckoutEnabled() bool { return snapReady }

// GenerateCheckoutToken asks Snap for a token + redirect URL for the
// given pending intention. The intention id doubles as the gateway
// OrderID so the callback can be traced back.
func GenerateCheckoutToken(m *model.PaymentIntentionModel) (string, string, error) {
	if !snapReady {
		return "", "", errors.New("checkout is not configured")
	}
	if m.PaymentIntentionAmount <= 0 {
		return "", "", errors.New("invalid intention amount")
	}

	// Snap wants major units.
	gross := m.PaymentIntentionAmount / 100

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  m.PaymentIntentionID.String(),
			GrossAmt: gross,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       m.PaymentIntentionReference,
				Price:    gross,
				Qty:      1,
				Name:     "School fees " + m.PaymentIntentionPeriod,
				Category: "FEES",
			},
		},
	}

	if m.PaymentIntentionPayerName != nil || m.PaymentIntentionPayerEmail != nil || m.PaymentIntentionPayerPhone != nil {
		req.CustomerDetail = &midtrans.CustomerDetails{
			FName: deref(m.PaymentIntentionPayerName),
			Email: deref(m.PaymentIntentionPayerEmail),
			Phone: deref(m.PaymentIntentionPayerPhone),
		}
	}

	resp, err := snapClient.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
