package platform

import (
	"context"
	"net/http"
	"net/url"
)

type App struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"web_url"`
	Region struct {
		Name string `json:"name"`
	} `json:"region"`
}

type AppCreate struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
	Team   string `json:"team,omitempty"`
}

// CreateApp provisions a new app, under a team when one is given.
func (c *Client) CreateApp(ctx context.Context, in AppCreate) (*App, error) {
	path := "/apps"
	if in.Team != "" {
		path = "/teams/apps"
	}
	var app App
	if err := c.do(ctx, http.MethodPost, path, in, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) GetApp(ctx context.Context, name string) (*App, error) {
	var app App
	if err := c.do(ctx, http.MethodGet, "/apps/"+url.PathEscape(name), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) DeleteApp(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/apps/"+url.PathEscape(name), nil, nil)
}

// EnablePreboot turns on the preboot feature so a release starts new dynos
// before old ones are stopped.
func (c *Client) EnablePreboot(ctx context.Context, app string) error {
	return c.SetFeature(ctx, app, "preboot", true)
}

func (c *Client) SetFeature(ctx context.Context, app, feature string, enabled bool) error {
	path := "/apps/" + url.PathEscape(app) + "/features/" + url.PathEscape(feature)
	return c.do(ctx, http.MethodPatch, path, map[string]bool{"enabled": enabled}, nil)
}
