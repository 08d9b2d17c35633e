package messaging

import "context"

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, for
// deployments without a broker.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	return nil
}
