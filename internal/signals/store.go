// Package signals generates mock trade signals and keeps a bounded history of them.
package signals

import (
	"math"
	"sync"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
)

// DefaultCapacity is how many signals the store keeps
const DefaultCapacity = 50

// DefaultReferencePrice is used when no price source is wired
const DefaultReferencePrice = 2045.0

// Timeframes a generated signal can target
var Timeframes = []string{"5m", "15m", "1h", "4h"}

var lotSizes = []float64{0.1, 0.2, 0.5, 1.0}

var reasons = map[contracts.TradeDirection][]string{
	contracts.DirectionBuy: {
		"Bullish engulfing at H1 support",
		"Breakout above Asian session high",
		"RSI divergence off oversold levels",
		"Retest of broken resistance as support",
	},
	contracts.DirectionSell: {
		"Bearish rejection at daily resistance",
		"Break of rising trendline with volume",
		"Double top on the 15m chart",
		"Failed breakout above London high",
	},
}

// PriceSource returns the current reference price
type PriceSource func() float64

// Store produces signals and holds the most recent ones, newest first
type Store struct {
	mu       sync.Mutex
	signals  []contracts.Signal
	capacity int
	gen      *sample.Generator
	price    PriceSource

	view   *state.Value[[]contracts.Signal]
	logger *logger.Logger
}

// NewStore creates a signal store. price may be nil.
func NewStore(gen *sample.Generator, price PriceSource, capacity int, bus state.Bus, log *logger.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if price == nil {
		price = func() float64 { return DefaultReferencePrice }
	}
	return &Store{
		capacity: capacity,
		gen:      gen,
		price:    price,
		view:     state.NewValue(state.TopicSignals, []contracts.Signal{}, bus, log),
		logger:   log.WithComponent("signals"),
	}
}

// View exposes the published history
func (s *Store) View() *state.Value[[]contracts.Signal] {
	return s.view
}

// Generate builds a new pending signal around the reference price and stores it
func (s *Store) Generate(now time.Time) contracts.Signal {
	ref := s.price()

	s.mu.Lock()
	defer s.mu.Unlock()

	direction := sample.Pick(s.gen, []contracts.TradeDirection{contracts.DirectionBuy, contracts.DirectionSell})
	entry := round2(ref + s.gen.Uniform(-2, 2))
	risk := s.gen.Uniform(5, 15)
	reward := risk * s.gen.Uniform(1.5, 3)

	sig := contracts.Signal{
		ID:         s.gen.ID(),
		Timestamp:  now,
		Symbol:     sample.GoldSymbol,
		Direction:  direction,
		EntryPrice: entry,
		LotSize:    sample.Pick(s.gen, lotSizes),
		Confidence: s.gen.Uniform(0.6, 0.95),
		Reasoning:  sample.Pick(s.gen, reasons[direction]),
		Timeframe:  sample.Pick(s.gen, Timeframes),
		Status:     contracts.SignalPending,
	}
	if direction == contracts.DirectionBuy {
		sig.StopLoss = round2(entry - risk)
		sig.TakeProfit = round2(entry + reward)
	} else {
		sig.StopLoss = round2(entry + risk)
		sig.TakeProfit = round2(entry - reward)
	}

	s.signals = append([]contracts.Signal{sig}, s.signals...)
	if len(s.signals) > s.capacity {
		s.signals = s.signals[:s.capacity]
	}
	s.publishLocked()

	s.logger.WithFields(map[string]interface{}{
		"direction":  sig.Direction,
		"entry":      sig.EntryPrice,
		"confidence": sig.FormattedConfidence(),
	}).Info("Signal generated")
	return sig
}

// Expire marks pending signals older than ttl as expired and returns how many changed
func (s *Store) Expire(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.signals {
		if s.signals[i].Status == contracts.SignalPending && now.Sub(s.signals[i].Timestamp) > ttl {
			s.signals[i].Status = contracts.SignalExpired
			n++
		}
	}
	if n > 0 {
		s.publishLocked()
	}
	return n
}

// List returns the stored signals, newest first
func (s *Store) List() []contracts.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contracts.Signal(nil), s.signals...)
}

func (s *Store) publishLocked() {
	s.view.Set(append([]contracts.Signal(nil), s.signals...))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
