// Package messaging hands completed orders to the external fulfillment
// process. The storefront only publishes; status transitions flow back
// through fulfillment's own channels.
package messaging

import "context"

// Publisher publishes a domain event to a topic, keyed for partitioning.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}
