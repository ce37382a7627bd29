package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShashankBhake/st-shield-backend/models"
	awspkg "github.com/ShashankBhake/st-shield-backend/pkg/aws"
)

// SNSPublisher publishes events to a topic with an event_type attribute for
// subscription filtering.
type SNSPublisher struct {
	client   awspkg.SNSPublisher
	topicArn string
}

func NewSNSPublisher(client awspkg.SNSPublisher, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) Publish(ctx context.Context, event models.PolicyEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType, err)
	}
	return p.client.Publish(ctx, p.topicArn, msg, map[string]string{"event_type": event.EventType})
}

func (p *SNSPublisher) Close() error { return nil }
