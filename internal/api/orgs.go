package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

// ListOrganizations returns the tenants available to the authenticated user.
func (c *Client) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	var orgs []model.Organization
	if err := c.get(ctx, "/api/organizations/", &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// SwitchOrganization changes the active tenant for subsequent requests.
func (c *Client) SwitchOrganization(ctx context.Context, id string) (model.Organization, error) {
	var org model.Organization
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/organizations/%s/switch/", id), nil, &org); err != nil {
		return model.Organization{}, err
	}
	return org, nil
}
