package contracts

import "context"

// MessageQueue is the per-room ordered hand-off between frame acceptance and
// durable persistence. One consumer per topic preserves publish order.
type MessageQueue interface {
	// Publish appends a payload to the topic's stream.
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe consumes the topic sequentially until ctx is cancelled,
	// invoking handler once per payload in publish order.
	Subscribe(ctx context.Context, topic, group string, handler func(ctx context.Context, messageID string, data []byte) error) error
	// Ack marks a consumed message as processed.
	Ack(ctx context.Context, topic, group, messageID string) error
	// Delete removes a processed message from the stream.
	Delete(ctx context.Context, topic, messageID string) error
}
