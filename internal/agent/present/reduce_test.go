package present

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopagent-core-poc/server/internal/agent/model"
)

type fakeDetailer struct {
	products map[string]*model.Product
	calls    int
}

func (f *fakeDetailer) ProductBySKU(_ context.Context, sku string) (*model.Product, error) {
	f.calls++
	if p, ok := f.products[sku]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no product %s", sku)
}

func cfg() model.PresentConfig {
	return model.PresentConfig{DisplayLimit: 8, MaxSuggestions: 3}
}

func TestReduceDedupesFirstEncounterWins(t *testing.T) {
	accumulated := []model.Product{
		{SKU: 100, Name: "First mention", SalePrice: 99},
		{SKU: 200, Name: "Other"},
		{SKU: 100, Name: "Later duplicate", SalePrice: 89},
	}

	products, _ := Reduce(context.Background(), "Here are some options.", accumulated, nil, cfg())

	require.Len(t, products, 2)
	assert.Equal(t, "First mention", products[0].Name)
	assert.Equal(t, int64(200), products[1].SKU)
}

func TestReduceCapsAtDisplayLimit(t *testing.T) {
	var accumulated []model.Product
	for i := 1; i <= 12; i++ {
		accumulated = append(accumulated, model.Product{SKU: int64(100000 + i), Name: strconv.Itoa(i)})
	}

	products, _ := Reduce(context.Background(), "Lots of choices here.", accumulated, nil, cfg())

	require.Len(t, products, 8)
	assert.Equal(t, int64(100001), products[0].SKU)
}

func TestReduceNarrowsToMentionedSKU(t *testing.T) {
	accumulated := []model.Product{
		{SKU: 6418599, Name: "MacBook Air"},
		{SKU: 6535138, Name: "MacBook Pro"},
		{SKU: 6522356, Name: "iPad"},
	}

	products, suggestions := Reduce(context.Background(),
		"I'd go with the MacBook Air (SKU: 6418599), it is the best value.",
		accumulated, nil, cfg())

	require.Len(t, products, 1)
	assert.Equal(t, int64(6418599), products[0].SKU)
	require.NotEmpty(t, suggestions)
	for _, s := range suggestions {
		assert.Contains(t, s, "(SKU: 6418599)")
	}
}

func TestReduceKeepsFullListWhenManySKUsMentioned(t *testing.T) {
	accumulated := []model.Product{
		{SKU: 111111, Name: "A"},
		{SKU: 222222, Name: "B"},
		{SKU: 333333, Name: "C"},
	}

	products, _ := Reduce(context.Background(),
		"Compare SKU 111111, SKU 222222 and SKU 333333 side by side.",
		accumulated, nil, cfg())

	assert.Len(t, products, 3)
}

func TestReduceBackfillsMentionedSKUThroughDetailer(t *testing.T) {
	d := &fakeDetailer{products: map[string]*model.Product{
		"6535138": {SKU: 6535138, Name: "MacBook Pro 14"},
	}}
	accumulated := []model.Product{{SKU: 6418599, Name: "MacBook Air"}}

	products, _ := Reduce(context.Background(),
		"The MacBook Pro (SKU: 6535138) would suit you better.",
		accumulated, d, cfg())

	require.Len(t, products, 1)
	assert.Equal(t, "MacBook Pro 14", products[0].Name)
	assert.Equal(t, 1, d.calls)
}

func TestReduceIgnoresDetailerFailure(t *testing.T) {
	d := &fakeDetailer{}
	accumulated := []model.Product{{SKU: 6418599, Name: "MacBook Air"}}

	products, _ := Reduce(context.Background(),
		"Check out SKU 9999999, it sold out though.",
		accumulated, d, cfg())

	// Backfill failed and nothing else matched, so the full list stays.
	require.Len(t, products, 1)
	assert.Equal(t, int64(6418599), products[0].SKU)
}

func TestSuggestionsSingleProductLeadsWithWarranty(t *testing.T) {
	display := []model.Product{{
		SKU:           6418599,
		Name:          "MacBook Air",
		WarrantyLabor: "1 year",
		Height:        "0.44 inches",
		IncludedItems: []model.IncludedItem{{Item: "Power adapter"}},
	}}

	suggestions := Suggestions(display, 3)

	require.Len(t, suggestions, 3)
	assert.Equal(t, "How long is the warranty? (SKU: 6418599)", suggestions[0])
	assert.Equal(t, "Are there open box options for this? (SKU: 6418599)", suggestions[1])
	assert.Equal(t, "What are the dimensions and weight? (SKU: 6418599)", suggestions[2])
}

func TestSuggestionsMultipleProductsPointAtTheRightSKUs(t *testing.T) {
	display := []model.Product{
		{SKU: 111111, Name: "A", CustomerReviewAverage: 4.2, CustomerReviewCount: 10},
		{SKU: 222222, Name: "B", CustomerReviewAverage: 4.8, CustomerReviewCount: 400,
			OnSale: true, RegularPrice: 999, SalePrice: 799},
		{SKU: 333333, Name: "C", FreeShipping: true},
	}

	suggestions := Suggestions(display, 3)

	require.Len(t, suggestions, 3)
	assert.Equal(t, "Which of these has the best reviews? (SKU: 222222)", suggestions[0])
	assert.Equal(t, "Which one has the biggest discount? (SKU: 222222)", suggestions[1])
	assert.Equal(t, "Which of these ship free? (SKU: 333333)", suggestions[2])
}

func TestSuggestionsEmptyDisplay(t *testing.T) {
	assert.Nil(t, Suggestions(nil, 3))
}
