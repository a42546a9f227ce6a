// Package present turns the raw pile of products a conversation turn
// touched into the short list a chat surface can actually show, and
// derives tappable follow-up questions from it.
package present

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

// Detailer backfills product documents for SKUs the reply mentions but
// the accumulator never saw.
type Detailer interface {
	ProductBySKU(ctx context.Context, sku string) (*model.Product, error)
}

// skuMention matches explicit SKU references in the assistant's reply.
var skuMention = regexp.MustCompile(`(?i)sku[:\s#]*\s*(\d{5,9})`)

// Reduce dedupes the accumulated products by SKU (first encounter
// wins), narrows the list to the SKUs the reply explicitly focuses on
// when there are one or two of them, caps it at the display limit, and
// derives suggested follow-up questions from whatever remains.
func Reduce(ctx context.Context, finalText string, accumulated []model.Product, d Detailer, cfg model.PresentConfig) ([]model.Product, []string) {
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = 8
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 3
	}

	seen := make(map[int64]bool)
	deduped := make([]model.Product, 0, len(accumulated))
	for _, p := range accumulated {
		if p.SKU == 0 || seen[p.SKU] {
			continue
		}
		seen[p.SKU] = true
		deduped = append(deduped, p)
	}

	display := focus(ctx, finalText, deduped, d)
	if len(display) > cfg.DisplayLimit {
		display = display[:cfg.DisplayLimit]
	}

	return display, Suggestions(display, cfg.MaxSuggestions)
}

// focus narrows the display list to the one or two SKUs the reply
// singles out. A reply comparing many products keeps the full list.
func focus(ctx context.Context, finalText string, products []model.Product, d Detailer) []model.Product {
	matches := skuMention.FindAllStringSubmatch(finalText, -1)
	if len(matches) == 0 {
		return products
	}

	var ordered []int64
	mentioned := make(map[int64]bool)
	for _, m := range matches {
		sku, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || mentioned[sku] {
			continue
		}
		mentioned[sku] = true
		ordered = append(ordered, sku)
	}
	if len(ordered) == 0 || len(ordered) > 2 {
		return products
	}

	bySKU := make(map[int64]model.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}

	var focused []model.Product
	for _, sku := range ordered {
		if p, ok := bySKU[sku]; ok {
			focused = append(focused, p)
			continue
		}
		if d == nil {
			continue
		}
		p, err := d.ProductBySKU(ctx, strconv.FormatInt(sku, 10))
		if err != nil {
			logx.Debug().Err(err).Int64("sku", sku).Msg("could not backfill focused product")
			continue
		}
		focused = append(focused, *p)
	}
	if len(focused) == 0 {
		return products
	}
	return focused
}

// Suggestions derives up to max follow-up questions. Every question
// ends with a SKU chip the client can send back verbatim, which the
// detail prefetcher then resolves without a tool round.
func Suggestions(display []model.Product, max int) []string {
	if len(display) == 0 || max <= 0 {
		return nil
	}
	var out []string
	add := func(q string, sku int64) {
		if len(out) < max {
			out = append(out, fmt.Sprintf("%s (SKU: %d)", q, sku))
		}
	}

	if len(display) == 1 {
		p := display[0]
		if p.WarrantyLabor != "" || p.WarrantyParts != "" {
			add("How long is the warranty?", p.SKU)
		}
		if len(p.ProductVariations) > 0 {
			add("What other colors or configurations are available?", p.SKU)
		}
		add("Are there open box options for this?", p.SKU)
		if p.Depth != "" || p.Height != "" || p.Width != "" || p.Weight != "" {
			add("What are the dimensions and weight?", p.SKU)
		}
		if len(p.IncludedItems) > 0 {
			add("What comes in the box?", p.SKU)
		}
		if len(p.Accessories) > 0 {
			add("What accessories are available for it?", p.SKU)
		}
		if len(p.Offers) > 0 {
			add("Are there any current offers on it?", p.SKU)
		}
		add("Is it available for pickup nearby?", p.SKU)
		return out
	}

	if topRated := bestRated(display); topRated != nil {
		add("Which of these has the best reviews?", topRated.SKU)
	}
	if discounted := biggestDiscount(display); discounted != nil {
		add("Which one has the biggest discount?", discounted.SKU)
	}
	if freeShip := firstFreeShipping(display); freeShip != nil {
		add("Which of these ship free?", freeShip.SKU)
	}
	if countColors(display) >= 2 {
		add("What colors do these come in?", display[0].SKU)
	}
	add("What's the price difference between these?", display[0].SKU)
	return out
}

func bestRated(products []model.Product) *model.Product {
	var best *model.Product
	for i := range products {
		p := &products[i]
		if p.CustomerReviewCount == 0 {
			continue
		}
		if best == nil || p.CustomerReviewAverage > best.CustomerReviewAverage {
			best = p
		}
	}
	return best
}

func biggestDiscount(products []model.Product) *model.Product {
	var best *model.Product
	var bestSavings float64
	for i := range products {
		p := &products[i]
		if !p.OnSale {
			continue
		}
		savings := p.RegularPrice - p.SalePrice
		if savings > bestSavings {
			bestSavings = savings
			best = p
		}
	}
	return best
}

func firstFreeShipping(products []model.Product) *model.Product {
	for i := range products {
		if products[i].FreeShipping {
			return &products[i]
		}
	}
	return nil
}

func countColors(products []model.Product) int {
	colors := make(map[string]bool)
	for _, p := range products {
		c := strings.TrimSpace(strings.ToLower(p.Color))
		if c != "" {
			colors[c] = true
		}
	}
	return len(colors)
}
