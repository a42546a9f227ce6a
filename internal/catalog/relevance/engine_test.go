package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance/lexicon"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(lexicon.Default())
	require.NoError(t, err)
	return e
}

func names(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestRankFiltersGiftCardsAndPrefersExactMatch(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 1, Name: "Apple - MacBook Air 13.6 Laptop M2 - Silver", OnlineAvailability: true},
		{SKU: 2, Name: "Apple - MacBook Pro 14 inch Laptop M3 Pro - Space Black", OnlineAvailability: true},
		{SKU: 3, Name: "Best Buy - $100 Apple Gift Card"},
	}

	ranked := e.Rank("MacBook Pro 14 inch", products, 5)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].SKU, "exact name match must rank first")
	assert.NotContains(t, names(ranked), "Best Buy - $100 Apple Gift Card")
}

func TestRankDropsConflictingProductType(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 10, Name: "Apple - iPhone 15 128GB - Black"},
		{SKU: 11, Name: "Apple - iPad Air 11 inch 128GB - Blue"},
	}

	ranked := e.Rank("iphone 15", products, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(10), ranked[0].SKU)
}

func TestRankIsIdempotent(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 1, Name: "Samsung - 65 inch Class QLED 4K Smart TV", OnlineAvailability: true},
		{SKU: 2, Name: "LG - 55 inch Class OLED evo 4K Smart TV", OnlineAvailability: true},
		{SKU: 3, Name: "Sony - 65 inch Class Bravia 4K Smart Google TV"},
	}

	first := e.Rank("65 inch tv ", products, 3)
	second := e.Rank("65 inch tv ", first, 3)
	assert.Equal(t, names(first), names(second))
}

func TestRankEmptyWhenPageIsAllGiftCards(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 1, Name: "Best Buy - $25 Gift Card"},
		{SKU: 2, Name: "Best Buy - $50 Gift Card"},
		{SKU: 3, Name: "Best Buy - $100 E-Gift Card"},
		{SKU: 4, Name: "Geek Squad Protection Plan - 2 Year"},
	}

	assert.Empty(t, e.Rank("birthday present", products, 5))
}

func TestRankFallsBackWhenSpecsEliminateEverything(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 20, Name: "SanDisk - Extreme 1TB External SSD"},
		{SKU: 21, Name: "WD - My Passport 2TB External Hard Drive"},
	}

	// Both products miss both specs, so every score goes negative, but
	// the page is not irrelevant and must not come back empty.
	ranked := e.Rank("512gb purple ssd", products, 2)
	require.NotEmpty(t, ranked)
	assert.Len(t, ranked, 2)
}

func TestRankFiltersAccessoriesOnDeviceSearch(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 30, Name: "Apple Watch Series 9 GPS 45mm Aluminum Case with Sport Band"},
		{SKU: 31, Name: "Sport Band for Apple Watch 44mm - Midnight"},
		{SKU: 32, Name: "Anker - Magnetic Watch Charger Cable - White"},
	}

	ranked := e.Rank("apple watch", products, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(30), ranked[0].SKU)
}

func TestRankConsoleSearchPrefersHardwareOverGames(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 40, Name: "Marvel's Spider-Man 2 - PlayStation 5"},
		{SKU: 41, Name: "Sony - PlayStation 5 Slim Console Digital Edition - White", OnlineAvailability: true},
		{SKU: 42, Name: "Sony - PlayStation 5 DualSense Wireless Controller - White"},
	}

	ranked := e.Rank("playstation 5", products, 5)
	require.NotEmpty(t, ranked)
	assert.Equal(t, int64(41), ranked[0].SKU, "console hardware outranks everything")
	assert.NotContains(t, names(ranked), "Marvel's Spider-Man 2 - PlayStation 5")
}

func TestRankKeepsGameTitlesOnExplicitGameSearch(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 50, Name: "Marvel's Spider-Man 2 - PlayStation 5"},
	}

	ranked := e.Rank("ps5 games", products, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(50), ranked[0].SKU)
}

func TestRankFiltersApplianceAccessories(t *testing.T) {
	e := newTestEngine(t)

	products := []model.Product{
		{SKU: 60, Name: "Samsung - 28 cu. ft. French Door Refrigerator - Stainless Steel"},
		{SKU: 61, Name: "Samsung - Water Filter for Select Refrigerators"},
	}

	ranked := e.Rank("refrigerator", products, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(60), ranked[0].SKU)
}

func TestDeviceQuery(t *testing.T) {
	e := newTestEngine(t)

	assert.True(t, e.DeviceQuery("macbook pro 16"))
	assert.True(t, e.DeviceQuery("window air conditioner"))
	assert.False(t, e.DeviceQuery("hdmi splitter"))
}
