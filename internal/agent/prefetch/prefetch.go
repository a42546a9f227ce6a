// Package prefetch runs catalog lookups before the model sees the
// query, so follow-up questions about accessories or a specific SKU
// are answered from real inventory instead of a speculative tool
// round.
package prefetch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance/lexicon"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

// Catalog is the slice of the gateway the prefetcher needs.
type Catalog interface {
	Complementary(ctx context.Context, sku string, categoryHints []string) ([]model.Product, error)
	ProductBySKU(ctx context.Context, sku string) (*model.Product, error)
}

// skuPattern matches explicit SKU references like "(SKU: 6418599)".
var skuPattern = regexp.MustCompile(`(?i)\(?\s*sku[:\s#]+(\d{5,9})\)?`)

type Prefetcher struct {
	catalog Catalog
	lex     *lexicon.Lexicon
}

func New(catalog Catalog, lex *lexicon.Lexicon) *Prefetcher {
	return &Prefetcher{catalog: catalog, lex: lex}
}

// ComplementaryBlock fires when the message expresses accessory intent
// and the user context carries a recently viewed SKU. It returns a
// system prompt injection describing real complementary products, plus
// the products themselves for the display accumulator. Both are empty
// when the prefetch does not apply or fails; prefetching never blocks
// the conversation.
func (p *Prefetcher) ComplementaryBlock(ctx context.Context, message string, uc *model.UserContext) (string, []model.Product) {
	if uc == nil || len(uc.RecentSKUs) == 0 || !p.accessoryIntent(message) {
		return "", nil
	}

	anchorSKU := uc.RecentSKUs[0]
	products, err := p.catalog.Complementary(ctx, anchorSKU, uc.RecentCategories)
	if err != nil || len(products) == 0 {
		if err != nil {
			logx.Warn().Err(err).Str("sku", anchorSKU).Msg("proactive complementary fetch failed")
		}
		return "", nil
	}
	logx.Info().Str("sku", anchorSKU).Int("count", len(products)).Msg("proactive complementary fetch")

	var b strings.Builder
	rule := strings.Repeat("=", 70)
	b.WriteString("\n\n" + rule + "\n")
	fmt.Fprintf(&b, "PRE-FETCHED COMPLEMENTARY PRODUCTS (live inventory) for SKU %s:\n", anchorSKU)
	for i, prod := range products {
		if i >= 5 {
			break
		}
		price := prod.RegularPrice
		if price == 0 {
			price = prod.SalePrice
		}
		fmt.Fprintf(&b, "  * %s (SKU %d): $%.2f\n", prod.Name, prod.SKU, price)
	}
	b.WriteString("INSTRUCTION: The user is asking about accessories. Present the products above ")
	b.WriteString("positively by name and price. Do NOT say you have no recommendations.\n")
	b.WriteString("Do NOT call get_complementary_products again, the products are already loaded.\n")
	b.WriteString(rule)
	return b.String(), products
}

// DetailBlock fires when the message carries an explicit SKU token,
// typically a tapped suggestion chip. The product document is fetched
// up front so the model answers the follow-up without a tool round.
func (p *Prefetcher) DetailBlock(ctx context.Context, message string) (string, []model.Product) {
	m := skuPattern.FindStringSubmatch(message)
	if m == nil {
		return "", nil
	}
	sku := m[1]

	prod, err := p.catalog.ProductBySKU(ctx, sku)
	if err != nil {
		logx.Warn().Err(err).Str("sku", sku).Msg("proactive detail fetch failed")
		return "", nil
	}
	logx.Info().Str("sku", sku).Str("name", prod.Name).Msg("proactive detail fetch")

	var b strings.Builder
	rule := strings.Repeat("=", 70)
	b.WriteString("\n\n" + rule + "\n")
	fmt.Fprintf(&b, "PRE-FETCHED PRODUCT DETAILS for SKU %s:\n", sku)
	fmt.Fprintf(&b, "  Name: %s\n", prod.Name)
	fmt.Fprintf(&b, "  Price: $%.2f (regular $%.2f)\n", prod.SalePrice, prod.RegularPrice)
	if prod.Manufacturer != "" {
		fmt.Fprintf(&b, "  Manufacturer: %s\n", prod.Manufacturer)
	}
	if prod.ModelNumber != "" {
		fmt.Fprintf(&b, "  Model: %s\n", prod.ModelNumber)
	}
	if prod.Color != "" {
		fmt.Fprintf(&b, "  Color: %s\n", prod.Color)
	}
	if prod.Depth != "" || prod.Height != "" || prod.Width != "" || prod.Weight != "" {
		fmt.Fprintf(&b, "  Dimensions: depth %s, height %s, width %s, weight %s\n",
			orDash(prod.Depth), orDash(prod.Height), orDash(prod.Width), orDash(prod.Weight))
	}
	if prod.WarrantyLabor != "" || prod.WarrantyParts != "" {
		fmt.Fprintf(&b, "  Warranty: labor %s, parts %s\n", orDash(prod.WarrantyLabor), orDash(prod.WarrantyParts))
	}
	for _, d := range prod.Details {
		fmt.Fprintf(&b, "  %s: %s\n", d.Name, d.Value)
	}
	b.WriteString("INSTRUCTION: Answer the user's question about this product from the details ")
	b.WriteString("above. Do NOT call get_product_details again for this SKU.\n")
	b.WriteString(rule)
	return b.String(), []model.Product{*prod}
}

func (p *Prefetcher) accessoryIntent(message string) bool {
	msg := strings.ToLower(message)
	for _, kw := range p.lex.AccessoryIntent {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
