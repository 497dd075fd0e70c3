// Package marketplace is the catalogue of bots listed for rent or sale.
package marketplace

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/planetprotrader/backend/internal/contracts"
)

// ErrNotFound is returned for an unknown listing
var ErrNotFound = errors.New("marketplace bot not found")

// SortKey orders a listing
type SortKey string

const (
	SortByRating  SortKey = "rating"
	SortByPrice   SortKey = "price"
	SortByWinRate SortKey = "winRate"
	SortByNewest  SortKey = "newest"
)

// ParseSortKey accepts the query-string form, defaulting to rating
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByRating, nil
	case SortByRating, SortByPrice, SortByWinRate, SortByNewest:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	Category      contracts.BotCategory
	Rarity        contracts.BotRarity
	AvailableOnly bool
	MaxPrice      float64
}

func (f Filter) matches(b contracts.MarketplaceBot) bool {
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.Rarity != "" && b.Rarity != f.Rarity {
		return false
	}
	if f.AvailableOnly && !b.IsAvailable() {
		return false
	}
	if f.MaxPrice > 0 && b.Price > f.MaxPrice {
		return false
	}
	return true
}

// Catalog holds the listed bots
type Catalog struct {
	mu   sync.RWMutex
	bots []contracts.MarketplaceBot
}

// NewCatalog creates a catalogue
func NewCatalog(bots []contracts.MarketplaceBot) *Catalog {
	return &Catalog{bots: append([]contracts.MarketplaceBot(nil), bots...)}
}

// List returns the listings matching f in catalogue order
func (c *Catalog) List(f Filter) []contracts.MarketplaceBot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]contracts.MarketplaceBot, 0, len(c.bots))
	for _, b := range c.bots {
		if f.matches(b) {
			out = append(out, b)
		}
	}
	return out
}

// Get returns one listing
func (c *Catalog) Get(id string) (contracts.MarketplaceBot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.bots {
		if b.ID == id {
			return b, nil
		}
	}
	return contracts.MarketplaceBot{}, ErrNotFound
}

// Sort orders bots in place: rating, win rate and newest descending, price ascending
func Sort(bots []contracts.MarketplaceBot, by SortKey) []contracts.MarketplaceBot {
	var less func(a, b contracts.MarketplaceBot) bool
	switch by {
	case SortByPrice:
		less = func(a, b contracts.MarketplaceBot) bool { return a.Price < b.Price }
	case SortByWinRate:
		less = func(a, b contracts.MarketplaceBot) bool { return a.Stats.WinRate > b.Stats.WinRate }
	case SortByNewest:
		less = func(a, b contracts.MarketplaceBot) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b contracts.MarketplaceBot) bool { return a.AverageRating > b.AverageRating }
	}

	sort.SliceStable(bots, func(i, j int) bool { return less(bots[i], bots[j]) })
	return bots
}
