package providers

import (
	"context"
	"errors"

	"github.com/ShashankBhake/st-shield-backend/models"
)

// ErrNotConfigured is returned when provider credentials are missing.
var ErrNotConfigured = errors.New("payment provider not configured")

// PaymentProvider defines the calls made to the external payment gateway.
type PaymentProvider interface {
	// CreateOrder opens a charge intent for a server-resolved amount.
	CreateOrder(ctx context.Context, req models.ProviderOrderRequest) (models.ProviderOrder, error)

	// FetchPayment returns the amount actually charged for paymentID.
	FetchPayment(ctx context.Context, paymentID string) (models.ProviderPayment, error)

	// KeySecret is the secret used to sign checkout responses.
	KeySecret() string
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}
