package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

// StoreAvailability checks in-store stock near a postal code using
// exactly two API calls: one store locator page, then availability at
// the nearest store. Checking every nearby store would burn most of
// the per-minute quota on a single question.
func (c *Client) StoreAvailability(ctx context.Context, sku, productName, postalCode string, radius, maxStores int) (*model.StoreSearchResult, error) {
	if radius <= 0 {
		radius = 25
	}
	result := &model.StoreSearchResult{
		SKU:        sku,
		PostalCode: postalCode,
	}
	if productName != "" {
		result.ProductName = productName
	} else {
		result.ProductName = "Product " + sku
	}

	params := map[string]string{
		"pageSize": strconv.Itoa(maxInt(1, maxStores)),
		"show":     storeShow,
	}
	if postalCode != "" {
		params["area"] = fmt.Sprintf("%s,%d", postalCode, radius)
	}

	var located struct {
		Stores []model.Store `json:"stores"`
	}
	if _, err := c.getJSON(ctx, "/v1/stores", params, &located); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logx.Warn().Err(err).Str("sku", sku).Str("postal_code", postalCode).
			Msg("store locator failed, reporting no stores")
		return result, nil
	}
	if len(located.Stores) == 0 {
		logx.Info().Str("sku", sku).Str("postal_code", postalCode).Msg("no stores in range")
		return result, nil
	}

	nearest := located.Stores[0]
	var avail struct {
		InStoreAvailability   bool `json:"inStoreAvailability"`
		PickupEligible        bool `json:"pickupEligible"`
		ShipFromStoreEligible bool `json:"shipFromStoreEligible"`
	}
	availPath := fmt.Sprintf("/v1/products/%s/stores/%d", url.PathEscape(sku), nearest.StoreID)
	if _, err := c.getJSON(ctx, availPath, nil, &avail); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logx.Warn().Err(err).Str("sku", sku).Int64("store_id", nearest.StoreID).
			Msg("availability check failed for nearest store")
		return result, nil
	}

	result.Stores = append(result.Stores, model.StoreAvailability{
		Store:                 nearest,
		InStock:               avail.InStoreAvailability,
		PickupEligible:        avail.PickupEligible,
		ShipFromStoreEligible: avail.ShipFromStoreEligible,
	})
	result.TotalStores = len(result.Stores)
	return result, nil
}
