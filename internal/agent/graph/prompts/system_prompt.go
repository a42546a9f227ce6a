package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/shopagent-core-poc/server/internal/agent/graph/tools"
	"github.com/shopagent-core-poc/server/internal/agent/model"
)

//go:embed template/system_prompt.txt
var coreSystemPrompt string

// RenderSystem renders the dynamic system prompt and triggers prompt
// callbacks. injections carries pre-fetched context blocks that are
// appended verbatim after the personalization section.
func RenderSystem(ctx context.Context, config model.PromptConfig, uc *model.UserContext, injections []string) (string, error) {
	// Render via Eino prompt component (Go template) to both format and emit callbacks
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)

	injected := ""
	if len(injections) > 0 {
		injected = "\n\n" + strings.Join(injections, "\n\n")
	}

	vars := map[string]any{
		"StoreName":          config.StoreName,
		"DefaultPostalCode":  config.DefaultPostalCode,
		"SearchTool":         tools.ToolSearchProducts,
		"AdvancedSearchTool": tools.ToolAdvancedSearch,
		"DetailsTool":        tools.ToolProductDetails,
		"UPCTool":            tools.ToolSearchByUPC,
		"CategoriesTool":     tools.ToolSearchCategories,
		"StoreTool":          tools.ToolStoreAvailability,
		"ComplementaryTool":  tools.ToolComplementary,
		"AddToCartTool":      tools.ToolAddToCart,
		"ViewCartTool":       tools.ToolViewCart,
		"CheckoutTool":       tools.ToolStartCheckout,
		"Personalization":    personalizationBlock(uc),
		"Injections":         injected,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// personalizationBlock summarizes the shopper's device-side browsing
// history for the model. Empty context renders nothing.
func personalizationBlock(uc *model.UserContext) string {
	if uc == nil {
		return ""
	}

	rule := strings.Repeat("=", 70)
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(rule + "\n")
	b.WriteString("PERSONALIZED CONTEXT (from user's browsing/scan history on their device):\n")
	b.WriteString(rule + "\n")

	if len(uc.RecentCategories) > 0 {
		b.WriteString("* Recently explored categories: " + strings.Join(uc.RecentCategories, ", ") + "\n")
	}
	if len(uc.FavoriteManufacturers) > 0 {
		b.WriteString("* Preferred brands: " + strings.Join(uc.FavoriteManufacturers, ", ") + "\n")
	}
	if len(uc.RecentSKUs) > 0 {
		skus := uc.RecentSKUs
		if len(skus) > 5 {
			skus = skus[:5]
		}
		b.WriteString("* Recently viewed product SKUs: " + strings.Join(skus, ", ") + "\n")
		b.WriteString("  MOST RECENT SKU = " + uc.RecentSKUs[0] + "\n")
	}
	b.WriteString(fmt.Sprintf("* Total interactions tracked: %d\n", uc.InteractionCount))
	b.WriteString("\n")
	b.WriteString("Use this context to:\n")
	b.WriteString("  1. Greet or acknowledge the user's taste naturally (do NOT recite raw data)\n")
	b.WriteString("  2. Prioritize results matching their preferred brands\n")
	b.WriteString("  3. Call " + tools.ToolComplementary + " ONLY when search returns a single product\n")
	b.WriteString("     OR the user asks about one specific item, NOT for multi-product brand searches\n")
	b.WriteString("\n")
	b.WriteString("CRITICAL RULE - When the user asks about accessories / what goes with it /\n")
	b.WriteString("  recommendations / complete the setup / what else should I get:\n")
	b.WriteString("  -> IMMEDIATELY call " + tools.ToolComplementary + "(sku=MOST_RECENT_SKU)\n")
	b.WriteString("  -> Use the SKU from 'Recently viewed product SKUs' above\n")
	b.WriteString("  -> Do NOT give generic text suggestions without calling the function first\n")
	b.WriteString("  -> The function returns REAL products - present them with names and prices\n")
	b.WriteString(rule)

	return b.String()
}
