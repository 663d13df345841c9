package api

import (
	"context"
	"net/http"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

// The backend owns the "current filters" resource; clients are views over
// it and never the source of truth.

// CurrentFilters fetches the server-held filter state.
func (c *Client) CurrentFilters(ctx context.Context) (model.Filters, error) {
	var filters model.Filters
	if err := c.get(ctx, "/api/filters/current/", &filters); err != nil {
		return model.Filters{}, err
	}
	return filters, nil
}

// UpdateFilters replaces the server-held filter state.
func (c *Client) UpdateFilters(ctx context.Context, filters model.Filters) error {
	return c.do(ctx, http.MethodPut, "/api/filters/current/", filters, nil)
}

// ResetFilters clears every filter dimension server-side.
func (c *Client) ResetFilters(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/filters/reset/", nil, nil)
}
