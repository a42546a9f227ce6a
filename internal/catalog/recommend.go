package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

// The recommendation endpoints fail soft: an upstream error is logged
// and surfaces as an empty list, never as a hard failure. Only a
// canceled context propagates.

func (c *Client) recommendationList(ctx context.Context, path string, kind string) ([]model.Product, error) {
	var envelope recommendationEnvelope
	if _, err := c.getJSON(ctx, path, nil, &envelope); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logx.Warn().Err(err).Str("endpoint", kind).Msg("recommendation fetch failed, returning empty list")
		return nil, nil
	}
	return flattenRecommendations(envelope.items()), nil
}

// Recommendations returns products viewed alongside the given SKU.
func (c *Client) Recommendations(ctx context.Context, sku string) ([]model.Product, error) {
	path := fmt.Sprintf("/v1/products/%s/alsoViewed", url.PathEscape(sku))
	return c.recommendationList(ctx, path, "alsoViewed")
}

// AlsoBought returns products frequently bought together with the SKU.
func (c *Client) AlsoBought(ctx context.Context, sku string) ([]model.Product, error) {
	path := fmt.Sprintf("/v1/products/%s/alsoBought", url.PathEscape(sku))
	return c.recommendationList(ctx, path, "alsoBought")
}

// Similar returns catalog-curated lookalikes of the SKU.
func (c *Client) Similar(ctx context.Context, sku string) ([]model.Product, error) {
	path := fmt.Sprintf("/beta/products/%s/similar", url.PathEscape(sku))
	return c.recommendationList(ctx, path, "similar")
}

// Complementary returns up to 6 products that go with the anchor SKU
// on a budget of at most two API calls. The also-bought signal comes
// first; a targeted keyword search derived from the category hints
// fills in only when that signal is thin.
func (c *Client) Complementary(ctx context.Context, sku string, categoryHints []string) ([]model.Product, error) {
	const (
		maxComplementary = 6
		enoughFromSignal = 3
	)

	seen := map[string]bool{sku: true}
	var results []model.Product

	alsoBought, err := c.AlsoBought(ctx, sku)
	if err != nil {
		return nil, err
	}
	for _, p := range alsoBought {
		key := fmt.Sprintf("%d", p.SKU)
		if !seen[key] {
			seen[key] = true
			results = append(results, p)
		}
	}
	if len(results) >= enoughFromSignal {
		return results[:minInt(len(results), maxComplementary)], nil
	}

	fallbackQuery := ""
	if len(categoryHints) > 0 {
		fallbackQuery = c.tables.ComplementQuery(categoryHints)
	}
	if fallbackQuery == "" {
		logx.Debug().Str("sku", sku).Int("count", len(results)).
			Msg("no complement query derivable, returning also-bought as-is")
		return results, nil
	}

	logx.Info().Str("sku", sku).Str("query", fallbackQuery).
		Msg("also-bought signal thin, running targeted complement search")
	searchResult, err := c.Search(ctx, fallbackQuery, SearchOptions{PageSize: maxComplementary})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logx.Warn().Err(err).Str("query", fallbackQuery).Msg("complement search failed")
		return results, nil
	}
	for _, p := range searchResult.Products {
		key := fmt.Sprintf("%d", p.SKU)
		if !seen[key] {
			seen[key] = true
			results = append(results, p)
		}
	}
	if len(results) > maxComplementary {
		results = results[:maxComplementary]
	}
	return results, nil
}

// OpenBoxOptions checks the buying-options endpoint for open box
// offers. A 404 means the SKU simply has none.
func (c *Client) OpenBoxOptions(ctx context.Context, sku string) (*model.OpenBoxResult, error) {
	path := fmt.Sprintf("/beta/products/%s/openBox", url.PathEscape(sku))

	var envelope struct {
		Results []struct {
			Names struct {
				Title string `json:"title"`
			} `json:"names"`
			Prices struct {
				Current float64 `json:"current"`
			} `json:"prices"`
			Links struct {
				AddToCart string `json:"addToCart"`
				Web       string `json:"web"`
			} `json:"links"`
			Offers []struct {
				Condition string `json:"condition"`
				Prices    struct {
					Current float64 `json:"current"`
					Regular float64 `json:"regular"`
				} `json:"prices"`
			} `json:"offers"`
		} `json:"results"`
	}

	status, err := c.getJSON(ctx, path, nil, &envelope)
	if err != nil {
		if status == http.StatusNotFound {
			return &model.OpenBoxResult{SKU: sku, HasOpenBox: false}, nil
		}
		logx.Error().Err(err).Str("sku", sku).Msg("open box lookup failed")
		return nil, err
	}
	if len(envelope.Results) == 0 {
		return &model.OpenBoxResult{SKU: sku, HasOpenBox: false}, nil
	}

	item := envelope.Results[0]
	result := &model.OpenBoxResult{
		SKU:         sku,
		ProductName: item.Names.Title,
		HasOpenBox:  len(item.Offers) > 0,
		NewPrice:    item.Prices.Current,
	}
	for _, o := range item.Offers {
		result.Offers = append(result.Offers, model.OpenBoxOffer{
			Condition:    o.Condition,
			OpenBoxPrice: o.Prices.Current,
			RegularPrice: o.Prices.Regular,
			AddToCartURL: item.Links.AddToCart,
			ProductURL:   item.Links.Web,
		})
	}
	return result, nil
}
