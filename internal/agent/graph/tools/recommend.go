package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/shopagent-core-poc/server/pkg/logger"

	"github.com/shopagent-core-poc/server/internal/agent/model"
)

// ===================================
// get_product_recommendations
// ===================================

type RecommendationsInput struct {
	SKU        string `json:"sku"`
	MaxResults int    `json:"max_results,omitempty"`
}

type RecommendationsOutput struct {
	Success         bool            `json:"success"`
	Error           string          `json:"error,omitempty"`
	SKU             string          `json:"sku"`
	Recommendations []model.Product `json:"recommendations"`
}

func createRecommendationsTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolRecommendations,
			Desc: "Get products customers also viewed alongside the given SKU. Good for 'anything similar?' questions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The anchor product SKU.",
					Required: true,
				},
				"max_results": {
					Type: "number",
					Desc: "How many recommendations to return (default 5).",
				},
			}),
		},
		func(ctx context.Context, in *RecommendationsInput) (*RecommendationsOutput, error) {
			if in.SKU == "" {
				return &RecommendationsOutput{Success: false, Error: "sku is required"}, nil
			}
			products, err := deps.Catalog.Recommendations(ctx, in.SKU)
			if err != nil {
				logx.Warn().Err(err).Str("sku", in.SKU).Msg("get_product_recommendations failed")
				return &RecommendationsOutput{Success: false, Error: err.Error(), SKU: in.SKU}, nil
			}
			return &RecommendationsOutput{
				Success:         true,
				SKU:             in.SKU,
				Recommendations: capProducts(products, in.MaxResults, 5),
			}, nil
		},
	)
}

// ===================================
// get_also_bought_products
// ===================================

type AlsoBoughtOutput struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	SKU        string          `json:"sku"`
	AlsoBought []model.Product `json:"also_bought"`
}

func createAlsoBoughtTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAlsoBought,
			Desc: "Get products customers frequently bought together with the given SKU. Good for bundle and upsell questions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The anchor product SKU.",
					Required: true,
				},
				"max_results": {
					Type: "number",
					Desc: "How many products to return (default 5).",
				},
			}),
		},
		func(ctx context.Context, in *RecommendationsInput) (*AlsoBoughtOutput, error) {
			if in.SKU == "" {
				return &AlsoBoughtOutput{Success: false, Error: "sku is required"}, nil
			}
			products, err := deps.Catalog.AlsoBought(ctx, in.SKU)
			if err != nil {
				logx.Warn().Err(err).Str("sku", in.SKU).Msg("get_also_bought_products failed")
				return &AlsoBoughtOutput{Success: false, Error: err.Error(), SKU: in.SKU}, nil
			}
			return &AlsoBoughtOutput{
				Success:    true,
				SKU:        in.SKU,
				AlsoBought: capProducts(products, in.MaxResults, 5),
			}, nil
		},
	)
}

// ===================================
// get_complementary_products
// ===================================

type ComplementaryInput struct {
	SKU           string   `json:"sku"`
	CategoryHints []string `json:"category_hints,omitempty"`
}

type ComplementaryOutput struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	SKU      string          `json:"sku"`
	Products []model.Product `json:"products"`
}

func createComplementaryTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolComplementary,
			Desc: "Get accessories and add-ons that go with the given SKU, e.g. a case and charger for a laptop. If the conversation already contains a pre-fetched complementary products block for this SKU, answer from that instead of calling this.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The product the accessories should complement.",
					Required: true,
				},
				"category_hints": {
					Type:     "array",
					ElemInfo: &schema.ParameterInfo{Type: "string"},
					Desc:     "Category names of the anchor product, e.g. ['laptops'], to steer the fallback search.",
				},
			}),
		},
		func(ctx context.Context, in *ComplementaryInput) (*ComplementaryOutput, error) {
			if in.SKU == "" {
				return &ComplementaryOutput{Success: false, Error: "sku is required"}, nil
			}
			products, err := deps.Catalog.Complementary(ctx, in.SKU, in.CategoryHints)
			if err != nil {
				logx.Warn().Err(err).Str("sku", in.SKU).Msg("get_complementary_products failed")
				return &ComplementaryOutput{Success: false, Error: err.Error(), SKU: in.SKU}, nil
			}
			return &ComplementaryOutput{Success: true, SKU: in.SKU, Products: products}, nil
		},
	)
}

// ===================================
// get_open_box_options
// ===================================

type OpenBoxInput struct {
	SKU string `json:"sku"`
}

type OpenBoxOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	model.OpenBoxResult
}

func createOpenBoxTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolOpenBox,
			Desc: "Check whether discounted open-box units exist for the given SKU and at what condition and price.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The product SKU to check.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *OpenBoxInput) (*OpenBoxOutput, error) {
			if in.SKU == "" {
				return &OpenBoxOutput{Success: false, Error: "sku is required"}, nil
			}
			result, err := deps.Catalog.OpenBoxOptions(ctx, in.SKU)
			if err != nil {
				logx.Warn().Err(err).Str("sku", in.SKU).Msg("get_open_box_options failed")
				return &OpenBoxOutput{Success: false, Error: err.Error()}, nil
			}
			return &OpenBoxOutput{Success: true, OpenBoxResult: *result}, nil
		},
	)
}

// ===================================
// check_store_availability
// ===================================

type StoreAvailabilityInput struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Radius      int    `json:"radius,omitempty"`
	MaxStores   int    `json:"max_stores,omitempty"`
}

type StoreAvailabilityOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	model.StoreSearchResult
}

func createStoreAvailabilityTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolStoreAvailability,
			Desc: "Check in-store pickup availability of a SKU at stores near a postal code. Reports stock at the nearest store.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The product SKU to check.",
					Required: true,
				},
				"product_name": {
					Type: "string",
					Desc: "Product name for the summary, if known.",
				},
				"postal_code": {
					Type: "string",
					Desc: "ZIP code to search around. Omit to use the store default.",
				},
				"radius": {
					Type: "number",
					Desc: "Search radius in miles (default 25).",
				},
				"max_stores": {
					Type: "number",
					Desc: "How many nearby stores to list (default 3).",
				},
			}),
		},
		func(ctx context.Context, in *StoreAvailabilityInput) (*StoreAvailabilityOutput, error) {
			if in.SKU == "" {
				return &StoreAvailabilityOutput{Success: false, Error: "sku is required"}, nil
			}
			postalCode := in.PostalCode
			if postalCode == "" {
				postalCode = deps.DefaultPostalCode
			}
			maxStores := in.MaxStores
			if maxStores <= 0 {
				maxStores = 3
			}
			result, err := deps.Catalog.StoreAvailability(ctx, in.SKU, in.ProductName, postalCode, in.Radius, maxStores)
			if err != nil {
				logx.Warn().Err(err).Str("sku", in.SKU).Msg("check_store_availability failed")
				return &StoreAvailabilityOutput{Success: false, Error: err.Error()}, nil
			}
			return &StoreAvailabilityOutput{Success: true, StoreSearchResult: *result}, nil
		},
	)
}

// capProducts trims the list to max, falling back to def when the
// model left max unset.
func capProducts(products []model.Product, max, def int) []model.Product {
	if max <= 0 {
		max = def
	}
	if len(products) > max {
		return products[:max]
	}
	return products
}
