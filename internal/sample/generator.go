// Package sample builds the mock records the simulation starts from.
package sample

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Generator is a seeded source of ids and random values.
// It is not safe for concurrent use; each store owns its own.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator seeds a generator. Seed 0 picks a time based seed.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// WithClock overrides the time source
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Derive returns an independent generator for another store
func (g *Generator) Derive() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(g.rng.Int63())),
		now: g.now,
	}
}

// Now is the generator's clock
func (g *Generator) Now() time.Time {
	return g.now()
}

// ID returns a uuid drawn from the generator's stream
func (g *Generator) ID() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Uniform returns a value in [lo, hi)
func (g *Generator) Uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Intn returns a value in [0, n)
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rng.Intn(n)
}

// Chance is true with probability p
func (g *Generator) Chance(p float64) bool {
	return g.rng.Float64() < p
}

// Pick returns a random element of items
func Pick[T any](g *Generator, items []T) T {
	return items[g.Intn(len(items))]
}
