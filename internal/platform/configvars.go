package platform

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ConfigVars(ctx context.Context, app string) (map[string]string, error) {
	vars := map[string]string{}
	if err := c.do(ctx, http.MethodGet, "/apps/"+url.PathEscape(app)+"/config-vars", nil, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

// UpdateConfigVars patches the app's config vars. A nil value removes the key.
func (c *Client) UpdateConfigVars(ctx context.Context, app string, patch map[string]*string) (map[string]string, error) {
	vars := map[string]string{}
	if err := c.do(ctx, http.MethodPatch, "/apps/"+url.PathEscape(app)+"/config-vars", patch, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}
