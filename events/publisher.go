// Package events publishes best-effort domain events about policies.
package events

import (
	"context"

	"github.com/ShashankBhake/st-shield-backend/models"
)

// Publisher sends a policy event to the configured bus.
type Publisher interface {
	Publish(ctx context.Context, event models.PolicyEvent) error
	Close() error
}

// NopPublisher drops every event. Used when EVENT_BUS=none.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.PolicyEvent) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
