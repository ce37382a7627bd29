package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies a failed operation for callers and metrics.
type ErrorKind string

const (
	KindValidation            ErrorKind = "ValidationError"
	KindInvalidPlan           ErrorKind = "InvalidPlan"
	KindUnknownOrder          ErrorKind = "UnknownOrder"
	KindAmountMismatch        ErrorKind = "AmountMismatch"
	KindInvalidSignature      ErrorKind = "InvalidSignature"
	KindProviderError         ErrorKind = "ProviderError"
	KindProviderNotConfigured ErrorKind = "ProviderNotConfigured"
	KindPersistenceError      ErrorKind = "PersistenceError"
	KindPolicyIDCollision     ErrorKind = "PolicyIDCollision"
	KindNotFound              ErrorKind = "NotFound"
	KindInternal              ErrorKind = "InternalError"
)

// User-facing messages. Internal causes stay in Err.
const (
	MsgInvalidPlan           = "Invalid plan type"
	MsgProviderNotConfigured = "Payment service is not configured"
	MsgCreateOrderFailed     = "Failed to create order"
	MsgMissingFields         = "Missing required payment details"
	MsgUnknownOrder          = "Order not found or expired"
	MsgProviderFetchFailed   = "Unable to confirm payment with provider"
	MsgAmountMismatch        = "Payment amount does not match the order amount"
	MsgInvalidSignature      = "Invalid payment signature"
	MsgPolicyCreateFailed    = "Payment was successful but we could not create your policy. Please contact support with your payment ID."
	MsgPaymentVerified       = "Payment verified successfully"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// AsServiceError unwraps err into a ServiceError. Anything else becomes an
// opaque 500.
func AsServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return &ServiceError{Kind: KindInternal, StatusCode: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

func newError(kind ErrorKind, status int, msg string, err error) *ServiceError {
	return &ServiceError{Kind: kind, StatusCode: status, Message: msg, Err: err}
}
