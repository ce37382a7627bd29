// Package pricing holds the server-side price table. Amounts are in minor
// units (paise) and never come from the client.
package pricing

import (
	"errors"
	"sort"
)

// DefaultPlan is the plan shipped with every deployment.
const DefaultPlan = "student-shield"

var ErrInvalidPlan = errors.New("invalid plan type")

// Registry maps plan ids to prices. It is read-only after construction.
type Registry struct {
	prices map[string]int64
}

// NewRegistry builds the table from the built-in plan plus extra entries.
// Extras may override the built-in price.
func NewRegistry(extra map[string]int64) *Registry {
	prices := map[string]int64{
		DefaultPlan: 99900,
	}
	for plan, amount := range extra {
		prices[plan] = amount
	}
	return &Registry{prices: prices}
}

// Resolve returns the price for planID.
func (r *Registry) Resolve(planID string) (int64, error) {
	amount, ok := r.prices[planID]
	if !ok {
		return 0, ErrInvalidPlan
	}
	return amount, nil
}

// Plans returns the known plan ids in sorted order.
func (r *Registry) Plans() []string {
	plans := make([]string, 0, len(r.prices))
	for p := range r.prices {
		plans = append(plans, p)
	}
	sort.Strings(plans)
	return plans
}
