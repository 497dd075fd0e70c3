package redis

import (
	"context"
	"fmt"
)

// Bus is a thin Redis Pub/Sub wrapper. Channels are namespaced by the client prefix.
type Bus struct {
	client *Client
}

// NewBus creates a Pub/Sub bus on the given client.
func NewBus(client *Client) *Bus {
	return &Bus{client: client}
}

// Channel returns the fully qualified channel name for a topic.
func (b *Bus) Channel(topic string) string {
	return b.client.Key("state", topic)
}

// Publish sends payload on the topic channel. A disabled client drops it.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	if !b.client.Enabled() {
		return nil
	}
	if err := b.client.Redis().Publish(ctx, b.Channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe pattern-subscribes to every topic and streams raw payloads until
// ctx is cancelled. The returned channel is closed on exit.
func (b *Bus) Subscribe(ctx context.Context) (<-chan []byte, error) {
	if !b.client.Enabled() {
		return nil, fmt.Errorf("redis: bus disabled")
	}

	pubsub := b.client.Redis().PSubscribe(ctx, b.Channel("*"))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe: %w", err)
	}

	out := make(chan []byte, 128)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
