package model

type LedgerEntryStatus string

const (
	LedgerEntryStatusValidated LedgerEntryStatus = "validated"
	LedgerEntryStatusCancelled LedgerEntryStatus = "cancelled"
)

// Outcome of one inbound confirmation, as recorded in the event log.
type GatewayEventOutcome string

const (
	GatewayEventOutcomeMatched   GatewayEventOutcome = "matched"
	GatewayEventOutcomeDuplicate GatewayEventOutcome = "duplicate"
	GatewayEventOutcomeIgnored   GatewayEventOutcome = "ignored"
	GatewayEventOutcomeUnmatched GatewayEventOutcome = "unmatched"
	GatewayEventOutcomeFailed    GatewayEventOutcome = "failed"
)

type ReviewStatus string

const (
	ReviewStatusOpen      ReviewStatus = "open"
	ReviewStatusResolved  ReviewStatus = "resolved"
	ReviewStatusDismissed ReviewStatus = "dismissed"
)
