package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/catalog/taxonomy"
	errx "github.com/shopagent-core-poc/server/internal/core/error"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

type SearchOptions struct {
	PageSize int    // products to return after ranking, default 10
	Sort     string // explicit sort expression, overrides the heuristic
}

// Search runs a keyword search, oversampling the raw page so the
// relevance engine has enough material to filter gift cards and
// accessories out of.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*model.SearchResult, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	// Gift cards and warranties dominate the first rows of raw pages,
	// so request 4x and let ranking cut the page back down.
	requestSize := minInt(pageSize*4, 50)

	params := map[string]string{
		"show":     searchShow,
		"pageSize": strconv.Itoa(requestSize),
	}
	switch {
	case opts.Sort != "":
		params["sort"] = opts.Sort
	case c.engine.DeviceQuery(query):
		params["sort"] = "bestSellingRank.asc"
		logx.Debug().Str("query", query).Msg("device search, sorting by best selling rank")
	default:
		params["sort"] = "name.asc"
	}

	var envelope searchEnvelope
	path := fmt.Sprintf("/v1/products(search=%s)", url.PathEscape(query))
	if _, err := c.getJSON(ctx, path, params, &envelope); err != nil {
		logx.Error().Err(err).Str("query", query).Msg("product search failed")
		return nil, err
	}

	page := envelope.page(requestSize)
	ranked := c.engine.Rank(query, page.Products, pageSize)
	logx.Info().
		Str("query", query).
		Int("raw", len(page.Products)).
		Int("ranked", len(ranked)).
		Msg("product search complete")

	return &model.SearchResult{
		From:        1,
		To:          len(ranked),
		Total:       len(ranked),
		CurrentPage: 1,
		TotalPages:  1,
		Products:    ranked,
	}, nil
}

type AdvancedFilters struct {
	Query         string
	Manufacturer  string
	Category      string // category ID (abcat/pcmcat prefix) or display name
	MinPrice      *float64
	MaxPrice      *float64
	OnSale        bool
	FreeShipping  bool
	InStorePickup bool
	PageSize      int
	Sort          string
}

// AdvancedSearch combines API-level filters with client-side ranking.
// Filter segments keep a fixed order so identical requests produce
// identical URLs. Upstream failures degrade to an empty page.
func (c *Client) AdvancedSearch(ctx context.Context, f AdvancedFilters) (*model.SearchResult, error) {
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	var filters []string
	if f.Manufacturer != "" {
		filters = append(filters, "manufacturer="+url.PathEscape(f.Manufacturer))
	}
	if f.Category != "" {
		if strings.HasPrefix(f.Category, "abcat") || strings.HasPrefix(f.Category, "pcmcat") {
			filters = append(filters, "categoryPath.id="+f.Category)
		} else {
			filters = append(filters, `categoryPath.name="`+url.PathEscape(f.Category)+`"`)
		}
	}
	if f.Query != "" {
		filters = append(filters, "search="+url.PathEscape(f.Query))
	}
	if f.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("salePrice>=%g", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("salePrice<=%g", *f.MaxPrice))
	}
	if f.OnSale {
		filters = append(filters, "onSale=true")
	}
	if f.FreeShipping {
		filters = append(filters, "freeShipping=true")
	}
	if f.InStorePickup {
		filters = append(filters, "inStoreAvailability=true")
	}

	path := "/v1/products"
	if len(filters) > 0 {
		path = "/v1/products(" + strings.Join(filters, "&") + ")"
	}

	params := map[string]string{
		"show":     fullShow,
		"pageSize": strconv.Itoa(minInt(pageSize*10, 100)),
	}
	switch {
	case f.Sort != "":
		params["sort"] = f.Sort
	case f.Category == taxonomy.GameConsolesCategoryID:
		// Best-selling rank puts popular games before consoles; price
		// descending floats the hardware to the top instead.
		params["sort"] = "salePrice.desc"
	default:
		params["sort"] = "bestSellingRank.asc"
	}

	var envelope searchEnvelope
	if _, err := c.getJSON(ctx, path, params, &envelope); err != nil {
		logx.Error().Err(err).Str("filters", strings.Join(filters, "&")).Msg("advanced search failed")
		return &model.SearchResult{From: 1, CurrentPage: 1}, nil
	}

	if f.Query != "" && len(envelope.Products) > 0 {
		ranked := c.engine.Rank(f.Query, envelope.Products, pageSize)
		return &model.SearchResult{
			From:        1,
			To:          len(ranked),
			Total:       len(ranked),
			CurrentPage: 1,
			TotalPages:  1,
			Products:    ranked,
		}, nil
	}

	products := envelope.Products
	if len(products) > pageSize {
		products = products[:pageSize]
	}
	return &model.SearchResult{
		From:        1,
		To:          len(products),
		Total:       len(products),
		CurrentPage: 1,
		TotalPages:  1,
		Products:    products,
	}, nil
}

// ProductBySKU fetches the full product document. Returns a not-found
// error when the catalog has no such SKU.
func (c *Client) ProductBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var envelope searchEnvelope
	path := fmt.Sprintf("/v1/products(sku=%s)", url.PathEscape(sku))
	status, err := c.getJSON(ctx, path, map[string]string{"show": detailShow}, &envelope)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, errx.New(errx.ErrNotFound, http.StatusNotFound, "product not found")
		}
		logx.Error().Err(err).Str("sku", sku).Msg("product lookup failed")
		return nil, err
	}
	if len(envelope.Products) == 0 {
		logx.Warn().Str("sku", sku).Msg("product not found")
		return nil, errx.New(errx.ErrNotFound, http.StatusNotFound, "product not found")
	}
	return &envelope.Products[0], nil
}

// ProductByUPC looks a product up by barcode.
func (c *Client) ProductByUPC(ctx context.Context, upc string) (*model.Product, error) {
	var envelope searchEnvelope
	path := fmt.Sprintf("/v1/products(upc=%s)", url.PathEscape(upc))
	_, err := c.getJSON(ctx, path, map[string]string{"show": fullShow}, &envelope)
	if err != nil {
		logx.Error().Err(err).Str("upc", upc).Msg("UPC lookup failed")
		return nil, err
	}
	if envelope.Total == 0 || len(envelope.Products) == 0 {
		return nil, errx.New(errx.ErrNotFound, http.StatusNotFound, "product not found")
	}
	return &envelope.Products[0], nil
}
