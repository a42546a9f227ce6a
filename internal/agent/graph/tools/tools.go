// Package tools exposes the catalog and cart operations the chat model
// can call. Every tool reports failures inside its JSON result with
// success=false so the model can recover in-conversation; a Go error
// would abort the whole graph run instead.
package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/cart"
	"github.com/shopagent-core-poc/server/internal/catalog"
)

// Tool names as the chat model sees them.
const (
	ToolSearchProducts    = "search_products"
	ToolSearchByUPC       = "search_by_upc"
	ToolProductDetails    = "get_product_details"
	ToolAdvancedSearch    = "advanced_product_search"
	ToolSearchCategories  = "search_categories"
	ToolRecommendations   = "get_product_recommendations"
	ToolAlsoBought        = "get_also_bought_products"
	ToolComplementary     = "get_complementary_products"
	ToolOpenBox           = "get_open_box_options"
	ToolStoreAvailability = "check_store_availability"
	ToolAddToCart         = "add_to_cart"
	ToolViewCart          = "view_cart"
	ToolUpdateCartQty     = "update_cart_quantity"
	ToolRemoveFromCart    = "remove_from_cart"
	ToolStartCheckout     = "start_checkout"
)

// Catalog is the slice of the catalog gateway the tools need.
type Catalog interface {
	Search(ctx context.Context, query string, opts catalog.SearchOptions) (*model.SearchResult, error)
	AdvancedSearch(ctx context.Context, f catalog.AdvancedFilters) (*model.SearchResult, error)
	ProductBySKU(ctx context.Context, sku string) (*model.Product, error)
	ProductByUPC(ctx context.Context, upc string) (*model.Product, error)
	Recommendations(ctx context.Context, sku string) ([]model.Product, error)
	AlsoBought(ctx context.Context, sku string) ([]model.Product, error)
	Complementary(ctx context.Context, sku string, categoryHints []string) ([]model.Product, error)
	OpenBoxOptions(ctx context.Context, sku string) (*model.OpenBoxResult, error)
	StoreAvailability(ctx context.Context, sku, productName, postalCode string, radius, maxStores int) (*model.StoreSearchResult, error)
	Categories(ctx context.Context, categoryID string, pageSize int) (*model.CategoryResult, error)
	SearchCategories(ctx context.Context, name string, pageSize int) (*model.CategoryResult, error)
}

// Carts is the slice of the cart store the tools need.
type Carts interface {
	Add(ctx context.Context, userID string, item cart.Item) (*cart.Item, error)
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, userID, sku string, quantity int) (*cart.Item, error)
	Remove(ctx context.Context, userID, sku string) (bool, error)
	StartCheckout(ctx context.Context, userID string) (*cart.CheckoutSession, error)
}

type Deps struct {
	Catalog Catalog
	Carts   Carts
	// DefaultPostalCode is used for store lookups when the shopper
	// never gave one.
	DefaultPostalCode string
}

type userIDKey struct{}

// WithUserID tags the context with the identity cart tools act on.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func userIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok && id != "" {
		return id
	}
	return "default"
}

// GetQueryTools returns every tool the conversation graph registers,
// in a stable order.
func GetQueryTools(deps Deps) []tool.BaseTool {
	return []tool.BaseTool{
		createSearchProductsTool(deps),
		createSearchByUPCTool(deps),
		createProductDetailsTool(deps),
		createAdvancedSearchTool(deps),
		createSearchCategoriesTool(deps),
		createRecommendationsTool(deps),
		createAlsoBoughtTool(deps),
		createComplementaryTool(deps),
		createOpenBoxTool(deps),
		createStoreAvailabilityTool(deps),
		createAddToCartTool(deps),
		createViewCartTool(deps),
		createUpdateCartQuantityTool(deps),
		createRemoveFromCartTool(deps),
		createStartCheckoutTool(deps),
	}
}

// GetToolInfos resolves the schemas of the given tools for model binding.
func GetToolInfos(ctx context.Context, baseTools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(baseTools))
	for _, t := range baseTools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
