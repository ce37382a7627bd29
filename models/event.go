package models

import "time"

const (
	EventPolicyCreated         = "policy_created"
	EventPaymentAmountMismatch = "payment_amount_mismatch"
)

// PolicyEvent is published to the event bus after verification outcomes.
type PolicyEvent struct {
	EventType      string    `json:"event_type"`
	PolicyID       string    `json:"policy_id,omitempty"`
	OrderID        string    `json:"order_id"`
	PaymentID      string    `json:"payment_id"`
	PlanType       string    `json:"plan_type,omitempty"`
	Amount         int64     `json:"amount"`
	ExpectedAmount int64     `json:"expected_amount,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
