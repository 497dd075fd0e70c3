package state

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/pkg/logger"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func TestMirror_KeepsLatestPerTopic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := NewMemoryBus()
	cache := &mapCache{data: map[string][]byte{}}

	done := make(chan error, 1)
	go func() { done <- Mirror(ctx, bus, cache, time.Minute, logger.NewNop()) }()

	v := NewValue(TopicTrading, counter{N: 1}, bus, nil)

	// the mirror subscribes asynchronously; publish until it lands
	require.Eventually(t, func() bool {
		v.Set(counter{N: 2})
		_, ok, err := LastChange(ctx, cache, TopicTrading)
		return err == nil && ok
	}, time.Second, 10*time.Millisecond)

	v.Set(counter{N: 7})
	require.Eventually(t, func() bool {
		change, _, _ := LastChange(ctx, cache, TopicTrading)
		return string(change.Payload) == `{"n":7}`
	}, time.Second, 10*time.Millisecond)

	_, ok, err := LastChange(ctx, cache, TopicBots)
	require.NoError(t, err)
	assert.False(t, ok)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
