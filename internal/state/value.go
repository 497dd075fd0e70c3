// Package state holds observable values that stores publish their snapshots through.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/planetprotrader/backend/pkg/logger"
)

// Value is a mutex-guarded value that notifies subscribers on every change.
// Subscribers that fall behind only ever see the latest value.
type Value[T any] struct {
	mu     sync.RWMutex
	v      T
	subs   map[int]chan T
	nextID int

	topic  string
	bus    Bus
	logger *logger.Logger
}

// NewValue creates a value published on topic. bus and log may be nil.
func NewValue[T any](topic string, initial T, bus Bus, log *logger.Logger) *Value[T] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Value[T]{
		v:      initial,
		subs:   make(map[int]chan T),
		topic:  topic,
		bus:    bus,
		logger: log,
	}
}

// Topic is the bus topic this value publishes on
func (s *Value[T]) Topic() string {
	return s.topic
}

// Get returns the current value
func (s *Value[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

// Set replaces the value and notifies subscribers
func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	s.v = v
	s.notifyLocked(v)
	s.mu.Unlock()

	s.publish(v)
}

// Update applies fn to the current value under the write lock and returns the result
func (s *Value[T]) Update(fn func(*T)) T {
	s.mu.Lock()
	fn(&s.v)
	v := s.v
	s.notifyLocked(v)
	s.mu.Unlock()

	s.publish(v)
	return v
}

// Subscribe returns a channel of future values and a cancel func that closes it.
func (s *Value[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan T, buffer)
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// notifyLocked never blocks: a full channel loses its oldest value
func (s *Value[T]) notifyLocked(v T) {
	for _, ch := range s.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

func (s *Value[T]) publish(v T) {
	if s.bus == nil {
		return
	}

	change, err := NewChange(s.topic, v)
	if err != nil {
		s.logger.WithError(err).WithField("topic", s.topic).Warn("Failed to encode state change")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.bus.Publish(ctx, change); err != nil {
		s.logger.WithError(err).WithField("topic", s.topic).Warn("Failed to publish state change")
	}
}
