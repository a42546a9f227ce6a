package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopagent-core-poc/server/internal/catalog/ratelimit"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance/lexicon"
	"github.com/shopagent-core-poc/server/internal/catalog/taxonomy"
	errx "github.com/shopagent-core-poc/server/internal/core/error"
)

// callCounter tallies upstream requests by path prefix.
type callCounter struct {
	mu    sync.Mutex
	calls []string
}

func (c *callCounter) record(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, path)
}

func (c *callCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *callCounter) matching(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.calls {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	engine, err := relevance.NewEngine(lexicon.Default())
	require.NoError(t, err)

	client, err := New(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5,
	}, ratelimit.New(ratelimit.Config{ShortLimit: 1000, DailyLimit: 100000}), engine, taxonomy.Default())
	require.NoError(t, err)
	return client, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func recommendationItems(skus ...int) []map[string]any {
	items := make([]map[string]any, 0, len(skus))
	for _, sku := range skus {
		items = append(items, map[string]any{
			"sku":    strconv.Itoa(sku),
			"names":  map[string]any{"title": "Product " + strconv.Itoa(sku)},
			"prices": map[string]any{"current": 19.99, "regular": 29.99},
		})
	}
	return items
}

func TestComplementarySkipsSearchWhenSignalIsRich(t *testing.T) {
	counter := &callCounter{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.record(r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/alsoBought"):
			writeJSON(t, w, map[string]any{"results": recommendationItems(101, 102, 103, 104)})
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
	})
	client, _ := newTestClient(t, handler)

	products, err := client.Complementary(context.Background(), "999", []string{"Televisions"})
	require.NoError(t, err)
	assert.Len(t, products, 4)
	assert.Equal(t, 1, counter.total(), "rich also-bought signal must use a single call")
}

func TestComplementaryFallsBackToOneSearch(t *testing.T) {
	counter := &callCounter{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.record(r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/alsoBought"):
			writeJSON(t, w, map[string]any{"results": recommendationItems(101)})
		case strings.HasPrefix(r.URL.Path, "/v1/products(search="):
			writeJSON(t, w, map[string]any{
				"total": 2,
				"products": []map[string]any{
					{"sku": 201, "name": "Roku Streaming Stick 4K"},
					{"sku": 101, "name": "Duplicate of also-bought item"},
				},
			})
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
	})
	client, _ := newTestClient(t, handler)

	products, err := client.Complementary(context.Background(), "999", []string{"Televisions"})
	require.NoError(t, err)
	assert.Equal(t, 2, counter.total(), "thin signal must add exactly one search call")

	var skus []int64
	for _, p := range products {
		skus = append(skus, p.SKU)
	}
	assert.Contains(t, skus, int64(101))
	assert.Contains(t, skus, int64(201))
	assert.Len(t, products, 2, "duplicate SKUs must collapse")
}

func TestSimilarFailsSoftToEmptyList(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/similar") {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		t.Errorf("unexpected call to %s", r.URL.Path)
	})
	client, _ := newTestClient(t, handler)

	products, err := client.Similar(context.Background(), "321")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSimilarParsesNestedShape(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/beta/products/321/similar", r.URL.Path)
		writeJSON(t, w, map[string]any{"results": recommendationItems(301, 302)})
	})
	client, _ := newTestClient(t, handler)

	products, err := client.Similar(context.Background(), "321")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(301), products[0].SKU)
	assert.Equal(t, "Product 301", products[0].Name)
	assert.Equal(t, 19.99, products[0].SalePrice)
}

func TestStoreAvailabilityUsesExactlyTwoCalls(t *testing.T) {
	counter := &callCounter{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.record(r.URL.Path)
		switch {
		case r.URL.Path == "/v1/stores":
			writeJSON(t, w, map[string]any{"stores": []map[string]any{
				{"storeId": 1001, "name": "Richfield", "city": "Richfield", "distance": 2.1},
				{"storeId": 1002, "name": "Edina", "city": "Edina", "distance": 5.4},
				{"storeId": 1003, "name": "Bloomington", "city": "Bloomington", "distance": 7.9},
			}})
		case strings.HasPrefix(r.URL.Path, "/v1/products/555/stores/"):
			writeJSON(t, w, map[string]any{
				"inStoreAvailability": true,
				"pickupEligible":      true,
			})
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
	})
	client, _ := newTestClient(t, handler)

	result, err := client.StoreAvailability(context.Background(), "555", "Test TV", "55423", 25, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.total(), "availability must cost exactly two calls")
	require.Len(t, result.Stores, 1)
	assert.Equal(t, int64(1001), result.Stores[0].Store.StoreID, "nearest store is the one checked")
	assert.True(t, result.Stores[0].InStock)
	assert.True(t, result.Stores[0].PickupEligible)
}

func TestProductBySKUNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"total": 0, "products": []any{}})
	})
	client, _ := newTestClient(t, handler)

	_, err := client.ProductBySKU(context.Background(), "404404")
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestSearchOversamplesAndRanks(t *testing.T) {
	var gotPageSize, gotSort string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPageSize = r.URL.Query().Get("pageSize")
		gotSort = r.URL.Query().Get("sort")
		writeJSON(t, w, map[string]any{
			"total": 3,
			"products": []map[string]any{
				{"sku": 1, "name": "Best Buy - $50 Gift Card"},
				{"sku": 2, "name": "Apple - MacBook Pro 14 inch Laptop - Space Black", "onlineAvailability": true},
				{"sku": 3, "name": "Apple - MacBook Air 13 Laptop - Silver", "onlineAvailability": true},
			},
		})
	})
	client, _ := newTestClient(t, handler)

	result, err := client.Search(context.Background(), "macbook pro 14 inch", SearchOptions{PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, "8", gotPageSize, "page size 2 oversamples 4x")
	assert.Equal(t, "bestSellingRank.asc", gotSort, "device query sorts by best selling rank")
	require.NotEmpty(t, result.Products)
	assert.Equal(t, int64(2), result.Products[0].SKU)
	for _, p := range result.Products {
		assert.NotContains(t, strings.ToLower(p.Name), "gift card")
	}
}

func TestSearchCategoriesCommonNameSkipsSearchEndpoint(t *testing.T) {
	counter := &callCounter{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.record(r.URL.Path)
		require.True(t, strings.HasPrefix(r.URL.Path, "/v1/categories(id="), "common names resolve by ID")
		writeJSON(t, w, map[string]any{
			"total": 1,
			"categories": []map[string]any{
				{"id": "abcat0502000", "name": "Laptops"},
			},
		})
	})
	client, _ := newTestClient(t, handler)

	result, err := client.SearchCategories(context.Background(), "Laptops", 20)
	require.NoError(t, err)
	require.Len(t, result.Categories, 1)
	assert.Equal(t, "abcat0502000", result.Categories[0].ID)

	// Second lookup is served from the category cache.
	_, err = client.SearchCategories(context.Background(), "Laptops", 20)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.total())
}

func TestOpenBoxNotFoundMeansNoOffers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	client, _ := newTestClient(t, handler)

	result, err := client.OpenBoxOptions(context.Background(), "777")
	require.NoError(t, err)
	assert.False(t, result.HasOpenBox)
	assert.Empty(t, result.Offers)
}
