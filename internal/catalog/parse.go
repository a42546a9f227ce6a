package catalog

import (
	"encoding/json"

	"github.com/shopagent-core-poc/server/internal/agent/model"
)

// The catalog speaks two product shapes. Products endpoints return the
// flat document that model.Product maps directly; the recommendations
// endpoints (alsoViewed, alsoBought, similar) return a nested shape
// that has to be flattened by hand.

// searchEnvelope decodes a products page. Pagination fields may be
// absent on filter-style endpoints, so defaults are filled in by the
// caller.
type searchEnvelope struct {
	From        *int            `json:"from"`
	To          *int            `json:"to"`
	Total       int             `json:"total"`
	CurrentPage *int            `json:"currentPage"`
	TotalPages  *int            `json:"totalPages"`
	Products    []model.Product `json:"products"`
}

// page fills pagination defaults the way the API omits them.
func (e *searchEnvelope) page(requestSize int) model.SearchResult {
	out := model.SearchResult{
		From:        1,
		To:          minInt(requestSize, len(e.Products)),
		Total:       e.Total,
		CurrentPage: 1,
		TotalPages:  1,
		Products:    e.Products,
	}
	if e.From != nil {
		out.From = *e.From
	}
	if e.To != nil {
		out.To = *e.To
	}
	if e.CurrentPage != nil {
		out.CurrentPage = *e.CurrentPage
	}
	switch {
	case e.TotalPages != nil:
		out.TotalPages = *e.TotalPages
	case requestSize > 0:
		out.TotalPages = (e.Total + requestSize - 1) / requestSize
	}
	return out
}

type recommendationEnvelope struct {
	Results  []recommendationItem `json:"results"`
	Products []recommendationItem `json:"products"`
}

func (e *recommendationEnvelope) items() []recommendationItem {
	if len(e.Results) > 0 {
		return e.Results
	}
	return e.Products
}

type recommendationItem struct {
	SKU   json.Number `json:"sku"`
	Names struct {
		Title string `json:"title"`
	} `json:"names"`
	Prices struct {
		Current *float64 `json:"current"`
		Regular *float64 `json:"regular"`
	} `json:"prices"`
	Images struct {
		Standard string `json:"standard"`
	} `json:"images"`
	Descriptions struct {
		Short string `json:"short"`
	} `json:"descriptions"`
	CustomerReviews struct {
		AverageScore float64 `json:"averageScore"`
		Count        int     `json:"count"`
	} `json:"customerReviews"`
	Links struct {
		Web       string `json:"web"`
		AddToCart string `json:"addToCart"`
	} `json:"links"`
}

// product flattens a recommendation item into the flat shape. A sale
// price below the regular price marks the product on sale; the nested
// shape carries no onSale flag of its own.
func (r recommendationItem) product() model.Product {
	p := model.Product{
		Name:                  r.Names.Title,
		Image:                 r.Images.Standard,
		ShortDescription:      r.Descriptions.Short,
		CustomerReviewAverage: r.CustomerReviews.AverageScore,
		CustomerReviewCount:   r.CustomerReviews.Count,
		URL:                   r.Links.Web,
		AddToCartURL:          r.Links.AddToCart,
	}
	if sku, err := r.SKU.Int64(); err == nil {
		p.SKU = sku
	}
	if r.Prices.Current != nil {
		p.SalePrice = *r.Prices.Current
	}
	if r.Prices.Regular != nil {
		p.RegularPrice = *r.Prices.Regular
	}
	p.OnSale = r.Prices.Current != nil && r.Prices.Regular != nil &&
		*r.Prices.Current < *r.Prices.Regular
	return p
}

func flattenRecommendations(items []recommendationItem) []model.Product {
	out := make([]model.Product, 0, len(items))
	for _, item := range items {
		out = append(out, item.product())
	}
	return out
}
