package tools

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	errx "github.com/shopagent-core-poc/server/internal/core/error"
	logx "github.com/shopagent-core-poc/server/pkg/logger"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/catalog"
)

// ===================================
// search_products
// ===================================

type SearchProductsInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
	SortBy     string `json:"sort_by,omitempty"`
}

type SearchProductsOutput struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Query    string          `json:"query"`
	Total    int             `json:"total"`
	Products []model.Product `json:"products"`
}

func createSearchProductsTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchProducts,
			Desc: "Search the product catalog by keywords. Results are already relevance-filtered: gift cards, unrelated accessories, and off-type items are removed. Default of 2 results is enough for most questions; only ask for more when the customer explicitly wants many options.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Search keywords, e.g. 'macbook air m3', 'oled tv 65 inch', 'wireless headphones'.",
					Required: true,
				},
				"max_results": {
					Type: "number",
					Desc: "How many products to return (default 2, max 10). Keep it small to save quota.",
				},
				"sort_by": {
					Type: "string",
					Desc: "Optional sort expression like 'salePrice.asc' or 'customerReviewAverage.desc'. Leave empty for best-selling order.",
				},
			}),
		},
		func(ctx context.Context, in *SearchProductsInput) (*SearchProductsOutput, error) {
			if in.Query == "" {
				return &SearchProductsOutput{Success: false, Error: "query is required"}, nil
			}
			maxResults := in.MaxResults
			if maxResults <= 0 {
				maxResults = 2
			}
			if maxResults > 10 {
				maxResults = 10
			}

			result, err := deps.Catalog.Search(ctx, in.Query, catalog.SearchOptions{
				PageSize: maxResults,
				Sort:     in.SortBy,
			})
			if err != nil {
				logx.Warn().Err(err).Str("query", in.Query).Msg("search_products failed")
				return &SearchProductsOutput{Success: false, Error: err.Error(), Query: in.Query}, nil
			}
			return &SearchProductsOutput{
				Success:  true,
				Query:    in.Query,
				Total:    result.Total,
				Products: result.Products,
			}, nil
		},
	)
}

// ===================================
// search_by_upc
// ===================================

type SearchByUPCInput struct {
	UPC string `json:"upc"`
}

type ProductOutput struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Product *model.Product `json:"product,omitempty"`
}

func createSearchByUPCTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchByUPC,
			Desc: "Look up a single product by its UPC barcode number.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"upc": {
					Type:     "string",
					Desc:     "The UPC barcode digits, e.g. '194253715160'.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *SearchByUPCInput) (*ProductOutput, error) {
			if in.UPC == "" {
				return &ProductOutput{Success: false, Error: "upc is required"}, nil
			}
			product, err := deps.Catalog.ProductByUPC(ctx, in.UPC)
			if err != nil {
				if errors.Is(err, errx.ErrNotFound) {
					return &ProductOutput{Success: false, Error: "no product found for UPC " + in.UPC}, nil
				}
				logx.Warn().Err(err).Str("upc", in.UPC).Msg("search_by_upc failed")
				return &ProductOutput{Success: false, Error: err.Error()}, nil
			}
			return &ProductOutput{Success: true, Product: product}, nil
		},
	)
}

// ===================================
// get_product_details
// ===================================

type ProductDetailsInput struct {
	SKU string `json:"sku"`
}

func createProductDetailsTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolProductDetails,
			Desc: "Get the full detail record of one product by SKU: specifications, dimensions, warranty, included items, variations, offers, and accessories.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The product SKU, e.g. '6418599'.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *ProductDetailsInput) (*ProductOutput, error) {
			if in.SKU == "" {
				return &ProductOutput{Success: false, Error: "sku is required"}, nil
			}
			product, err := deps.Catalog.ProductBySKU(ctx, in.SKU)
			if err != nil {
				if errors.Is(err, errx.ErrNotFound) {
					return &ProductOutput{Success: false, Error: "no product found for SKU " + in.SKU}, nil
				}
				logx.Warn().Err(err).Str("sku", in.SKU).Msg("get_product_details failed")
				return &ProductOutput{Success: false, Error: err.Error()}, nil
			}
			return &ProductOutput{Success: true, Product: product}, nil
		},
	)
}

// ===================================
// advanced_product_search
// ===================================

type AdvancedSearchInput struct {
	Query         string   `json:"query,omitempty"`
	Manufacturer  string   `json:"manufacturer,omitempty"`
	Category      string   `json:"category,omitempty"`
	MinPrice      *float64 `json:"min_price,omitempty"`
	MaxPrice      *float64 `json:"max_price,omitempty"`
	OnSale        bool     `json:"on_sale,omitempty"`
	FreeShipping  bool     `json:"free_shipping,omitempty"`
	InStorePickup bool     `json:"in_store_pickup,omitempty"`
	PageSize      int      `json:"page_size,omitempty"`
	SortBy        string   `json:"sort_by,omitempty"`
}

func createAdvancedSearchTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAdvancedSearch,
			Desc: "Search with structured filters: manufacturer, category, price range, on-sale, free shipping, in-store pickup. Prefer this over search_products when the customer names a budget, a brand, or a deal requirement.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type: "string",
					Desc: "Optional keywords to combine with the filters.",
				},
				"manufacturer": {
					Type: "string",
					Desc: "Brand name, e.g. 'Apple', 'Samsung', 'LG'.",
				},
				"category": {
					Type: "string",
					Desc: "Category ID (e.g. 'abcat0700000') or display name (e.g. 'Laptops').",
				},
				"min_price": {
					Type: "number",
					Desc: "Minimum sale price in USD.",
				},
				"max_price": {
					Type: "number",
					Desc: "Maximum sale price in USD.",
				},
				"on_sale": {
					Type: "boolean",
					Desc: "Only products currently discounted.",
				},
				"free_shipping": {
					Type: "boolean",
					Desc: "Only products with free shipping.",
				},
				"in_store_pickup": {
					Type: "boolean",
					Desc: "Only products available for in-store pickup.",
				},
				"page_size": {
					Type: "number",
					Desc: "How many products to return (default 5).",
				},
				"sort_by": {
					Type: "string",
					Desc: "Optional sort expression like 'salePrice.asc'.",
				},
			}),
		},
		func(ctx context.Context, in *AdvancedSearchInput) (*SearchProductsOutput, error) {
			pageSize := in.PageSize
			if pageSize <= 0 {
				pageSize = 5
			}
			result, err := deps.Catalog.AdvancedSearch(ctx, catalog.AdvancedFilters{
				Query:         in.Query,
				Manufacturer:  in.Manufacturer,
				Category:      in.Category,
				MinPrice:      in.MinPrice,
				MaxPrice:      in.MaxPrice,
				OnSale:        in.OnSale,
				FreeShipping:  in.FreeShipping,
				InStorePickup: in.InStorePickup,
				PageSize:      pageSize,
				Sort:          in.SortBy,
			})
			if err != nil {
				logx.Warn().Err(err).Msg("advanced_product_search failed")
				return &SearchProductsOutput{Success: false, Error: err.Error(), Query: in.Query}, nil
			}
			return &SearchProductsOutput{
				Success:  true,
				Query:    in.Query,
				Total:    result.Total,
				Products: result.Products,
			}, nil
		},
	)
}

// ===================================
// search_categories
// ===================================

type SearchCategoriesInput struct {
	Name       string `json:"name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
}

type SearchCategoriesOutput struct {
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
	Total      int              `json:"total"`
	Categories []model.Category `json:"categories"`
}

func createSearchCategoriesTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCategories,
			Desc: "Find category IDs for use in advanced_product_search. Pass a name to search, or a known category_id to list its subcategories. Well-known categories (laptops, tvs, headphones, ...) resolve without an API call.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name": {
					Type: "string",
					Desc: "Category name to search for, e.g. 'coffee makers'. Wildcards allowed.",
				},
				"category_id": {
					Type: "string",
					Desc: "Exact category ID to fetch, e.g. 'abcat0502000'.",
				},
				"page_size": {
					Type: "number",
					Desc: "How many categories to return (default 20).",
				},
			}),
		},
		func(ctx context.Context, in *SearchCategoriesInput) (*SearchCategoriesOutput, error) {
			pageSize := in.PageSize
			if pageSize <= 0 {
				pageSize = 20
			}

			var (
				result *model.CategoryResult
				err    error
			)
			switch {
			case in.CategoryID != "":
				result, err = deps.Catalog.Categories(ctx, in.CategoryID, pageSize)
			case in.Name != "":
				result, err = deps.Catalog.SearchCategories(ctx, in.Name, pageSize)
			default:
				return &SearchCategoriesOutput{Success: false, Error: "name or category_id is required"}, nil
			}
			if err != nil {
				logx.Warn().Err(err).Str("name", in.Name).Msg("search_categories failed")
				return &SearchCategoriesOutput{Success: false, Error: err.Error()}, nil
			}
			return &SearchCategoriesOutput{
				Success:    true,
				Total:      result.Total,
				Categories: result.Categories,
			}, nil
		},
	)
}
