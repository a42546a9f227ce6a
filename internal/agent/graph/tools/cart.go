package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	errx "github.com/shopagent-core-poc/server/internal/core/error"
	logx "github.com/shopagent-core-poc/server/pkg/logger"

	"github.com/shopagent-core-poc/server/internal/cart"
)

// ===================================
// add_to_cart
// ===================================

type AddToCartInput struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity,omitempty"`
}

type CartItemOutput struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
	Item    *cart.Item `json:"item,omitempty"`
}

func createAddToCartTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAddToCart,
			Desc: "Add a product to the customer's cart by SKU. The product is looked up first so the cart line carries its current name and price.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The product SKU to add.",
					Required: true,
				},
				"quantity": {
					Type: "number",
					Desc: "How many units (default 1).",
				},
			}),
		},
		func(ctx context.Context, in *AddToCartInput) (*CartItemOutput, error) {
			if in.SKU == "" {
				return &CartItemOutput{Success: false, Error: "sku is required"}, nil
			}
			quantity := in.Quantity
			if quantity <= 0 {
				quantity = 1
			}

			product, err := deps.Catalog.ProductBySKU(ctx, in.SKU)
			if err != nil {
				if errors.Is(err, errx.ErrNotFound) {
					return &CartItemOutput{Success: false, Error: "no product found for SKU " + in.SKU}, nil
				}
				logx.Warn().Err(err).Str("sku", in.SKU).Msg("add_to_cart lookup failed")
				return &CartItemOutput{Success: false, Error: err.Error()}, nil
			}

			price := product.SalePrice
			if price == 0 {
				price = product.RegularPrice
			}
			item, err := deps.Carts.Add(ctx, userIDFrom(ctx), cart.Item{
				SKU:      strconv.FormatInt(product.SKU, 10),
				Name:     product.Name,
				Price:    price,
				ImageURL: product.Image,
				Quantity: quantity,
			})
			if err != nil {
				logx.Error().Err(err).Str("sku", in.SKU).Msg("add_to_cart failed")
				return &CartItemOutput{Success: false, Error: err.Error()}, nil
			}
			return &CartItemOutput{
				Success: true,
				Message: fmt.Sprintf("Added %d x %s to the cart.", quantity, product.Name),
				Item:    item,
			}, nil
		},
	)
}

// ===================================
// view_cart
// ===================================

type ViewCartInput struct{}

type CartOutput struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
	Cart    *cart.Cart `json:"cart,omitempty"`
}

func createViewCartTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolViewCart,
			Desc:        "Show the current contents of the customer's cart with per-line subtotals and the total.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, _ *ViewCartInput) (*CartOutput, error) {
			c, err := deps.Carts.Get(ctx, userIDFrom(ctx))
			if err != nil {
				logx.Error().Err(err).Msg("view_cart failed")
				return &CartOutput{Success: false, Error: err.Error()}, nil
			}
			out := &CartOutput{Success: true, Cart: c}
			if c.ItemCount == 0 {
				out.Message = "The cart is empty."
			}
			return out, nil
		},
	)
}

// ===================================
// update_cart_quantity
// ===================================

type UpdateCartQuantityInput struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

func createUpdateCartQuantityTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolUpdateCartQty,
			Desc: "Change the quantity of a cart line. A quantity of 0 removes the line.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The SKU of the cart line to change.",
					Required: true,
				},
				"quantity": {
					Type:     "number",
					Desc:     "The new quantity. 0 removes the item.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *UpdateCartQuantityInput) (*CartItemOutput, error) {
			if in.SKU == "" {
				return &CartItemOutput{Success: false, Error: "sku is required"}, nil
			}
			item, err := deps.Carts.UpdateQuantity(ctx, userIDFrom(ctx), in.SKU, in.Quantity)
			if err != nil {
				if errors.Is(err, errx.ErrNotFound) {
					return &CartItemOutput{Success: false, Error: "SKU " + in.SKU + " is not in the cart"}, nil
				}
				logx.Error().Err(err).Str("sku", in.SKU).Msg("update_cart_quantity failed")
				return &CartItemOutput{Success: false, Error: err.Error()}, nil
			}
			if item == nil {
				return &CartItemOutput{
					Success: true,
					Message: "Removed SKU " + in.SKU + " from the cart.",
				}, nil
			}
			return &CartItemOutput{
				Success: true,
				Message: fmt.Sprintf("Quantity of %s is now %d.", item.Name, item.Quantity),
				Item:    item,
			}, nil
		},
	)
}

// ===================================
// remove_from_cart
// ===================================

type RemoveFromCartInput struct {
	SKU string `json:"sku"`
}

func createRemoveFromCartTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolRemoveFromCart,
			Desc: "Remove a product from the customer's cart by SKU.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku": {
					Type:     "string",
					Desc:     "The SKU of the cart line to remove.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *RemoveFromCartInput) (*CartItemOutput, error) {
			if in.SKU == "" {
				return &CartItemOutput{Success: false, Error: "sku is required"}, nil
			}
			removed, err := deps.Carts.Remove(ctx, userIDFrom(ctx), in.SKU)
			if err != nil {
				logx.Error().Err(err).Str("sku", in.SKU).Msg("remove_from_cart failed")
				return &CartItemOutput{Success: false, Error: err.Error()}, nil
			}
			if !removed {
				return &CartItemOutput{Success: false, Error: "SKU " + in.SKU + " is not in the cart"}, nil
			}
			return &CartItemOutput{Success: true, Message: "Removed SKU " + in.SKU + " from the cart."}, nil
		},
	)
}

// ===================================
// start_checkout
// ===================================

type StartCheckoutInput struct{}

type StartCheckoutOutput struct {
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"`
	SessionID   string  `json:"session_id,omitempty"`
	TotalAmount float64 `json:"total_amount,omitempty"`
	Status      string  `json:"status,omitempty"`
	ExpiresAt   string  `json:"expires_at,omitempty"`
}

func createStartCheckoutTool(deps Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolStartCheckout,
			Desc:        "Start a checkout session for the current cart. Fails when the cart is empty. The session expires after one hour.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, _ *StartCheckoutInput) (*StartCheckoutOutput, error) {
			session, err := deps.Carts.StartCheckout(ctx, userIDFrom(ctx))
			if err != nil {
				if errors.Is(err, cart.ErrEmptyCart) {
					return &StartCheckoutOutput{Success: false, Error: "the cart is empty, add products before checking out"}, nil
				}
				logx.Error().Err(err).Msg("start_checkout failed")
				return &StartCheckoutOutput{Success: false, Error: err.Error()}, nil
			}
			return &StartCheckoutOutput{
				Success:     true,
				SessionID:   session.ID,
				TotalAmount: session.TotalAmount,
				Status:      session.Status,
				ExpiresAt:   session.ExpiresAt.Format(time.RFC3339),
			}, nil
		},
	)
}
