package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// CreateOrderRequest is the payload for POST /api/create-order. Any amount the
// client sends is not part of the contract and is dropped during decoding.
type CreateOrderRequest struct {
	PlanType string `json:"planType"`
}

type CreateOrderResponse struct {
	ID string `json:"id"`
}

// VerifyPaymentRequest is the payload for POST /api/verify-payment.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string          `json:"razorpay_order_id"`
	RazorpayPaymentID string          `json:"razorpay_payment_id"`
	RazorpaySignature string          `json:"razorpay_signature"`
	UserData          json.RawMessage `json:"user_data"`
}

// HasUserData reports whether UserData is a non-empty JSON object.
func (r *VerifyPaymentRequest) HasUserData() bool {
	trimmed := bytes.TrimSpace(r.UserData)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return false
	}
	return len(obj) > 0
}

type VerifyPaymentResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	PolicyNumber *string `json:"policyNumber"`
	Details      string  `json:"details,omitempty"`
}

// ProviderOrderRequest is sent to the payment provider to open an order.
type ProviderOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// ProviderOrder is the provider's view of an order.
type ProviderOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// ProviderPayment is the provider's authoritative record of a payment.
type ProviderPayment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
	Method   string
	Email    string
	Contact  string
}

// AmountMismatch describes a payment whose charged amount differs from the
// amount the order was created for.
type AmountMismatch struct {
	OrderID       string
	PaymentID     string
	Expected      int64
	Actual        int64
	CustomerEmail string
	RequestID     string
	DetectedAt    time.Time
}
