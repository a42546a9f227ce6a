// Package catalog is the gateway to the retail product API. Every call
// passes through the quota limiter, and keyword search pages pass
// through the relevance engine before anyone downstream sees them.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/catalog/ratelimit"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance"
	"github.com/shopagent-core-poc/server/internal/catalog/taxonomy"
	errx "github.com/shopagent-core-poc/server/internal/core/error"
)

type Config struct {
	BaseURL           string `envconfig:"CATALOG_BASE_URL" default:"https://api.bestbuy.com"`
	APIKey            string `envconfig:"CATALOG_API_KEY" required:"true"`
	Timeout           int    `envconfig:"CATALOG_TIMEOUT_SECONDS" default:"30"`
	RetryCount        int    `envconfig:"CATALOG_RETRY_COUNT" default:"2"`
	RetryWaitMS       int    `envconfig:"CATALOG_RETRY_WAIT_MS" default:"500"`
	CategoryCacheSize int    `envconfig:"CATALOG_CATEGORY_CACHE_SIZE" default:"256"`
	SearchCacheSize   int    `envconfig:"CATALOG_SEARCH_CACHE_SIZE" default:"128"`
}

// show field sets per endpoint family. Filter endpoints accept
// dot-notation fields (details.name); plain list fields do not.
const (
	searchShow = "sku,name,regularPrice,salePrice,onSale,image,mediumImage,thumbnailImage," +
		"shortDescription,manufacturer,modelNumber,upc,url,customerReviewAverage," +
		"customerReviewCount,customerTopRated,freeShipping,inStoreAvailability," +
		"onlineAvailability,depth,height,width,weight,color,condition,preowned," +
		"dollarSavings,percentSavings"

	detailShow = "sku,name,regularPrice,salePrice,onSale,image,mediumImage,thumbnailImage," +
		"manufacturer,modelNumber,upc,url,customerReviewAverage,customerReviewCount," +
		"customerTopRated,freeShipping,inStoreAvailability,onlineAvailability," +
		"depth,height,width,weight,color,condition,preowned,dollarSavings,percentSavings," +
		"warrantyLabor,warrantyParts,details.name,details.value"

	fullShow = "sku,name,regularPrice,salePrice,onSale,image,largeFrontImage,mediumImage," +
		"thumbnailImage,longDescription,shortDescription,manufacturer,modelNumber,upc,url," +
		"addToCartUrl,customerReviewAverage,customerReviewCount,customerTopRated," +
		"freeShipping,inStoreAvailability,onlineAvailability,depth,height,width,weight," +
		"color,condition,preowned,dollarSavings,percentSavings"

	storeShow    = "storeId,storeType,name,address,city,region,postalCode,phone,distance"
	categoryShow = "id,name,url,path,subCategories"
)

type Client struct {
	http    *resty.Client
	apiKey  string
	limiter *ratelimit.Limiter
	engine  *relevance.Engine
	tables  *taxonomy.Tables

	categoryCache *lru.Cache[string, model.Category]
	searchCache   *lru.Cache[string, *model.CategoryResult]
}

func New(cfg Config, limiter *ratelimit.Limiter, engine *relevance.Engine, tables *taxonomy.Tables) (*Client, error) {
	if cfg.CategoryCacheSize <= 0 {
		cfg.CategoryCacheSize = 256
	}
	if cfg.SearchCacheSize <= 0 {
		cfg.SearchCacheSize = 128
	}
	categoryCache, err := lru.New[string, model.Category](cfg.CategoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("category cache: %w", err)
	}
	searchCache, err := lru.New[string, *model.CategoryResult](cfg.SearchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("category search cache: %w", err)
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(time.Duration(cfg.RetryWaitMS) * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := r.StatusCode()
			return code >= http.StatusInternalServerError ||
				code == http.StatusTooManyRequests ||
				code == http.StatusRequestTimeout
		})

	return &Client{
		http:          httpClient,
		apiKey:        cfg.APIKey,
		limiter:       limiter,
		engine:        engine,
		tables:        tables,
		categoryCache: categoryCache,
		searchCache:   searchCache,
	}, nil
}

// QuotaStats exposes the limiter snapshot for diagnostics.
func (c *Client) QuotaStats() ratelimit.Stats {
	return c.limiter.Stats()
}

// getJSON runs one quota-gated GET and decodes the body into out.
// The status code is returned even on HTTP-level errors so callers can
// special-case 404.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out any) (int, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return 0, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("apiKey", c.apiKey).
		SetQueryParam("format", "json")
	for k, v := range params {
		req.SetQueryParam(k, v)
	}

	resp, err := req.Get(path)
	if err != nil {
		return 0, errx.New(err, http.StatusBadGateway, errx.UpstreamErrorMessage)
	}
	if resp.IsError() {
		return resp.StatusCode(), errx.New(
			fmt.Errorf("catalog responded %s for %s", resp.Status(), path),
			resp.StatusCode(),
			errx.UpstreamErrorMessage,
		)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return resp.StatusCode(), errx.New(
				fmt.Errorf("decode catalog response for %s: %w", path, err),
				http.StatusBadGateway,
				errx.UpstreamErrorMessage,
			)
		}
	}
	return resp.StatusCode(), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
