package marketplace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/sample"
)

func newTestCatalog() *Catalog {
	gen := sample.NewGenerator(42).WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	return NewCatalog(sample.MarketplaceBots(gen))
}

func names(bots []contracts.MarketplaceBot) []string {
	out := make([]string, len(bots))
	for i, b := range bots {
		out[i] = b.Name
	}
	return out
}

func TestList_Filters(t *testing.T) {
	c := newTestCatalog()

	assert.Len(t, c.List(Filter{}), 3)
	assert.Equal(t, []string{"Gold Rush Pro", "Swing Master"}, names(c.List(Filter{AvailableOnly: true})))
	assert.Equal(t, []string{"Swing Master"}, names(c.List(Filter{Category: contracts.CategorySwingTrader})))
	assert.Equal(t, []string{"News Ninja"}, names(c.List(Filter{Rarity: contracts.RarityMythic})))
	assert.Equal(t, []string{"Gold Rush Pro", "Swing Master"}, names(c.List(Filter{MaxPrice: 500})))
	assert.Empty(t, c.List(Filter{Rarity: contracts.RarityMythic, AvailableOnly: true}))
}

func TestSort(t *testing.T) {
	c := newTestCatalog()

	tests := []struct {
		by   SortKey
		want []string
	}{
		{SortByRating, []string{"News Ninja", "Gold Rush Pro", "Swing Master"}},
		{SortByPrice, []string{"Swing Master", "Gold Rush Pro", "News Ninja"}},
		{SortByWinRate, []string{"Gold Rush Pro", "News Ninja", "Swing Master"}},
		{SortByNewest, []string{"News Ninja", "Gold Rush Pro", "Swing Master"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			assert.Equal(t, tt.want, names(Sort(c.List(Filter{}), tt.by)))
		})
	}
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByRating, k)

	k, err = ParseSortKey("price")
	require.NoError(t, err)
	assert.Equal(t, SortByPrice, k)

	_, err = ParseSortKey("cheapest")
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	c := newTestCatalog()
	first := c.List(Filter{})[0]

	got, err := c.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, got.Name)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
