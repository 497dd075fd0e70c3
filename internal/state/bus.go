package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/planetprotrader/backend/pkg/redis"
)

// Topics published by the stores
const (
	TopicAuth       = "auth"
	TopicBots       = "bots"
	TopicTrading    = "trading"
	TopicSignals    = "signals"
	TopicControl    = "control"
	TopicScreenshot = "screenshot"
	TopicVPS        = "vps"
	TopicDebug      = "debug"
	TopicPlaybook   = "playbook"
)

// Change is one published snapshot
type Change struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// NewChange encodes v as the payload of a change on topic
func NewChange(topic string, v interface{}) (Change, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Change{}, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return Change{Topic: topic, Payload: payload, At: time.Now().UTC()}, nil
}

// Bus carries changes from stores to listeners such as the WebSocket hub
type Bus interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// MemoryBus fans changes out in process
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// NewMemoryBus creates an in-process bus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[chan Change]struct{})}
}

// Publish delivers to every subscriber, dropping for subscribers that are full
func (b *MemoryBus) Publish(_ context.Context, change Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

// Subscribe streams changes until ctx is cancelled
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, 64)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

// RedisBus sends changes over Redis Pub/Sub so several processes share one stream
type RedisBus struct {
	bus *redis.Bus
}

// NewRedisBus wraps a Redis Pub/Sub bus
func NewRedisBus(bus *redis.Bus) *RedisBus {
	return &RedisBus{bus: bus}
}

// Publish encodes the change and publishes it on its topic channel
func (b *RedisBus) Publish(ctx context.Context, change Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	return b.bus.Publish(ctx, change.Topic, data)
}

// Subscribe decodes every change published on any topic
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Change, error) {
	raw, err := b.bus.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Change, 64)
	go func() {
		defer close(out)
		for data := range raw {
			var change Change
			if err := json.Unmarshal(data, &change); err != nil {
				continue
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
