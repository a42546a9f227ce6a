package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/shopagent-core-poc/server/internal/core/error"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/cart"
	"github.com/shopagent-core-poc/server/internal/catalog"
)

type fakeCatalog struct {
	Catalog

	searchQuery string
	searchOpts  catalog.SearchOptions
	searchPage  *model.SearchResult

	productsBySKU map[string]*model.Product

	storePostal string
	storeMax    int
}

func (f *fakeCatalog) Search(_ context.Context, query string, opts catalog.SearchOptions) (*model.SearchResult, error) {
	f.searchQuery = query
	f.searchOpts = opts
	return f.searchPage, nil
}

func (f *fakeCatalog) ProductBySKU(_ context.Context, sku string) (*model.Product, error) {
	if p, ok := f.productsBySKU[sku]; ok {
		return p, nil
	}
	return nil, errx.New(errx.ErrNotFound, 404, "product not found")
}

func (f *fakeCatalog) StoreAvailability(_ context.Context, sku, productName, postalCode string, radius, maxStores int) (*model.StoreSearchResult, error) {
	f.storePostal = postalCode
	f.storeMax = maxStores
	return &model.StoreSearchResult{SKU: sku, PostalCode: postalCode}, nil
}

type fakeCarts struct {
	Carts

	addedUser string
	added     []cart.Item
}

func (f *fakeCarts) Add(_ context.Context, userID string, item cart.Item) (*cart.Item, error) {
	f.addedUser = userID
	item.Subtotal = item.Price * float64(item.Quantity)
	f.added = append(f.added, item)
	return &item, nil
}

func findTool(t *testing.T, deps Deps, name string) tool.InvokableTool {
	t.Helper()
	for _, bt := range GetQueryTools(deps) {
		info, err := bt.Info(context.Background())
		require.NoError(t, err)
		if info.Name == name {
			inv, ok := bt.(tool.InvokableTool)
			require.True(t, ok)
			return inv
		}
	}
	t.Fatalf("tool %s not registered", name)
	return nil
}

func invoke(t *testing.T, tl tool.InvokableTool, ctx context.Context, args string, out any) {
	t.Helper()
	raw, err := tl.InvokableRun(ctx, args)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), out))
}

func TestRegistryHasAllTools(t *testing.T) {
	deps := Deps{Catalog: &fakeCatalog{}, Carts: &fakeCarts{}}

	names := make(map[string]bool)
	for _, bt := range GetQueryTools(deps) {
		info, err := bt.Info(context.Background())
		require.NoError(t, err)
		names[info.Name] = true
	}

	for _, want := range []string{
		ToolSearchProducts, ToolSearchByUPC, ToolProductDetails,
		ToolAdvancedSearch, ToolSearchCategories, ToolRecommendations,
		ToolAlsoBought, ToolComplementary, ToolOpenBox,
		ToolStoreAvailability, ToolAddToCart, ToolViewCart,
		ToolUpdateCartQty, ToolRemoveFromCart, ToolStartCheckout,
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
	assert.Len(t, names, 15)
}

func TestSearchProductsDefaultsToTwoResults(t *testing.T) {
	cat := &fakeCatalog{searchPage: &model.SearchResult{
		Total:    40,
		Products: []model.Product{{SKU: 1, Name: "A"}, {SKU: 2, Name: "B"}},
	}}
	tl := findTool(t, Deps{Catalog: cat}, ToolSearchProducts)

	var out SearchProductsOutput
	invoke(t, tl, context.Background(), `{"query":"macbook air"}`, &out)

	assert.True(t, out.Success)
	assert.Equal(t, 2, cat.searchOpts.PageSize)
	assert.Equal(t, "macbook air", cat.searchQuery)
	assert.Len(t, out.Products, 2)
}

func TestSearchProductsClampsMaxResults(t *testing.T) {
	cat := &fakeCatalog{searchPage: &model.SearchResult{}}
	tl := findTool(t, Deps{Catalog: cat}, ToolSearchProducts)

	var out SearchProductsOutput
	invoke(t, tl, context.Background(), `{"query":"tv","max_results":50}`, &out)

	assert.True(t, out.Success)
	assert.Equal(t, 10, cat.searchOpts.PageSize)
}

func TestSearchProductsMissingQueryFailsInBand(t *testing.T) {
	tl := findTool(t, Deps{Catalog: &fakeCatalog{}}, ToolSearchProducts)

	var out SearchProductsOutput
	invoke(t, tl, context.Background(), `{}`, &out)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "query is required")
}

func TestProductDetailsNotFoundFailsInBand(t *testing.T) {
	tl := findTool(t, Deps{Catalog: &fakeCatalog{}}, ToolProductDetails)

	var out ProductOutput
	invoke(t, tl, context.Background(), `{"sku":"9999999"}`, &out)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "9999999")
	assert.Nil(t, out.Product)
}

func TestAddToCartLooksUpProductAndUsesSalePrice(t *testing.T) {
	cat := &fakeCatalog{productsBySKU: map[string]*model.Product{
		"6418599": {SKU: 6418599, Name: "MacBook Air", RegularPrice: 1099, SalePrice: 949, OnSale: true},
	}}
	carts := &fakeCarts{}
	tl := findTool(t, Deps{Catalog: cat, Carts: carts}, ToolAddToCart)

	ctx := WithUserID(context.Background(), "conv-42")
	var out CartItemOutput
	invoke(t, tl, ctx, `{"sku":"6418599","quantity":2}`, &out)

	require.True(t, out.Success)
	assert.Equal(t, "conv-42", carts.addedUser)
	require.Len(t, carts.added, 1)
	assert.Equal(t, 949.0, carts.added[0].Price)
	assert.Equal(t, 2, carts.added[0].Quantity)
	assert.Equal(t, "MacBook Air", out.Item.Name)
}

func TestAddToCartUnknownSKUFailsInBand(t *testing.T) {
	carts := &fakeCarts{}
	tl := findTool(t, Deps{Catalog: &fakeCatalog{}, Carts: carts}, ToolAddToCart)

	var out CartItemOutput
	invoke(t, tl, context.Background(), `{"sku":"1234567"}`, &out)

	assert.False(t, out.Success)
	assert.Empty(t, carts.added)
}

func TestStoreAvailabilityDefaults(t *testing.T) {
	cat := &fakeCatalog{}
	tl := findTool(t, Deps{Catalog: cat, DefaultPostalCode: "55423"}, ToolStoreAvailability)

	var out StoreAvailabilityOutput
	invoke(t, tl, context.Background(), `{"sku":"6418599"}`, &out)

	assert.True(t, out.Success)
	assert.Equal(t, "55423", cat.storePostal)
	assert.Equal(t, 3, cat.storeMax)
}

func TestUserIDDefaultsWhenUnset(t *testing.T) {
	assert.Equal(t, "default", userIDFrom(context.Background()))
	assert.Equal(t, "u1", userIDFrom(WithUserID(context.Background(), "u1")))
}
