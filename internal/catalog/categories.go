package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

// Categories fetches category metadata, optionally narrowed to one ID.
// Single-ID lookups are served from the LRU cache when possible;
// category taxonomies change rarely and every saved call matters under
// the quota.
func (c *Client) Categories(ctx context.Context, categoryID string, pageSize int) (*model.CategoryResult, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	if categoryID != "" {
		if cached, ok := c.categoryCache.Get(categoryID); ok {
			logx.Debug().Str("category_id", categoryID).Msg("category cache hit")
			return &model.CategoryResult{Total: 1, Categories: []model.Category{cached}}, nil
		}
	}

	path := "/v1/categories"
	if categoryID != "" {
		path = fmt.Sprintf("/v1/categories(id=%s)", url.PathEscape(categoryID))
	}
	params := map[string]string{
		"pageSize": strconv.Itoa(minInt(pageSize, 100)),
		"show":     categoryShow,
	}

	var envelope struct {
		Total      int              `json:"total"`
		Categories []model.Category `json:"categories"`
	}
	if _, err := c.getJSON(ctx, path, params, &envelope); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logx.Warn().Err(err).Str("category_id", categoryID).Msg("category fetch failed")
		return &model.CategoryResult{}, nil
	}

	for _, cat := range envelope.Categories {
		c.categoryCache.Add(cat.ID, cat)
	}
	return &model.CategoryResult{Total: envelope.Total, Categories: envelope.Categories}, nil
}

// SearchCategories finds categories by display name with wildcard
// matching. Well-known names short-circuit to their IDs without any
// API call; other searches are cached by normalized name.
func (c *Client) SearchCategories(ctx context.Context, name string, pageSize int) (*model.CategoryResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	cacheKey := strings.TrimSpace(strings.TrimRight(strings.ToLower(name), "*"))

	if id, ok := c.tables.CommonCategoryID(cacheKey); ok {
		logx.Debug().Str("name", name).Str("category_id", id).Msg("common category shortcut")
		return c.Categories(ctx, id, pageSize)
	}

	if cached, ok := c.searchCache.Get(cacheKey); ok {
		logx.Debug().Str("name", name).Msg("category search cache hit")
		return cached, nil
	}

	searchName := name
	if !strings.Contains(name, "*") {
		searchName = name + "*"
	}
	// The API needs the wildcard literally, so it must survive escaping.
	path := fmt.Sprintf("/v1/categories(name=%s)", escapeKeepingWildcard(searchName))
	params := map[string]string{
		"pageSize": strconv.Itoa(minInt(pageSize, 100)),
		"show":     categoryShow,
	}

	var envelope struct {
		Total      int              `json:"total"`
		Categories []model.Category `json:"categories"`
	}
	if _, err := c.getJSON(ctx, path, params, &envelope); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logx.Warn().Err(err).Str("name", name).Msg("category search failed")
		return &model.CategoryResult{}, nil
	}

	result := &model.CategoryResult{Total: envelope.Total, Categories: envelope.Categories}
	for _, cat := range envelope.Categories {
		c.categoryCache.Add(cat.ID, cat)
	}
	c.searchCache.Add(cacheKey, result)
	return result, nil
}

func escapeKeepingWildcard(s string) string {
	parts := strings.Split(s, "*")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "*")
}
