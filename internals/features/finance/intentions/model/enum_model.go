package model

type IntentionStatus string

/* Mirrors the payment_intention_status CHECK constraint. The transitions
   are guarded updates only:
   pending -> confirmed (matcher CAS, links a ledger entry)
   pending -> cancelled (staff CAS, no ledger effect)
   Both terminal states are immutable. */

const (
	IntentionStatusPending   IntentionStatus = "pending"
	IntentionStatusConfirmed IntentionStatus = "confirmed"
	IntentionStatusCancelled IntentionStatus = "cancelled"
)

type CheckoutProvider string

const (
	CheckoutProviderMidtrans CheckoutProvider = "midtrans"
	CheckoutProviderNone     CheckoutProvider = "none"
)
