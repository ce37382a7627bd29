package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
)

var (
	// ErrPolicyExists is returned when the not-exists precondition on policy_id fails.
	ErrPolicyExists   = errors.New("policy already exists")
	ErrPolicyNotFound = errors.New("policy not found")
)

// PolicyRepository stores policy records. Create is put-if-absent on PolicyID;
// records are never updated or deleted.
type PolicyRepository interface {
	Create(ctx context.Context, policy *models.Policy) error
	FindByID(ctx context.Context, policyID string) (*models.Policy, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Policy, error)
	// ListByTimeRange returns policies with from <= timestamp <= to, oldest first.
	ListByTimeRange(ctx context.Context, from, to time.Time) ([]models.Policy, error)
}
