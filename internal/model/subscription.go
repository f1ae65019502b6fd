package model

// SubscriptionStatus enumerates subscription lifecycle states.
type SubscriptionStatus string

const (
	// SubscriptionFree is the initial state of every account.
	SubscriptionFree SubscriptionStatus = "free"
	// SubscriptionActive is a paid account with no record limit.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionCancelled is a paid account whose renewal was cancelled.
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	// SubscriptionExpired is a lapsed account, back on the free quota.
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Valid reports whether s is a known subscription status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionFree, SubscriptionActive, SubscriptionCancelled, SubscriptionExpired:
		return true
	}
	return false
}

// transitions holds the allowed state machine edges. Same-state events are
// accepted as idempotent no-ops by CanTransitionTo.
var transitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionFree:      {SubscriptionActive},
	SubscriptionActive:    {SubscriptionCancelled, SubscriptionExpired},
	SubscriptionCancelled: {SubscriptionExpired, SubscriptionActive},
	SubscriptionExpired:   {SubscriptionActive},
}

// CanTransitionTo reports whether the state machine permits moving from s to
// target. All status changes must go through this check; the status field is
// never edited outside the subscription service.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	if s == target {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SubscriptionEvent is the inbound payment-gateway notification. The signature
// covers the reference, payment and subscription IDs, and status, and must be
// verified before the event is applied; an unverified transition would be a
// free upgrade.
type SubscriptionEvent struct {
	Reference      string             `json:"reference"`
	PaymentID      string             `json:"paymentId"`
	SubscriptionID string             `json:"subscriptionId"`
	Status         SubscriptionStatus `json:"status"`
	Signature      string             `json:"signature"`
}
