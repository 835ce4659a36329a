// Package changelog opens and closes change requests in Konstructor.
package changelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nexttools/internal/logger"
)

const (
	GatewayMashery     = "mashery"
	GatewayKonstructor = "konstructor"
	GatewayInternal    = "internal"
)

var (
	ErrInvalidGateway = errors.New("invalid log gateway")
	logLogs           = logger.PackageLogger("changelog", "📝")
)

// gateway resolves a gateway name to its base url and auth header.
type gateway struct {
	base   string
	header string
}

var gateways = map[string]gateway{
	GatewayMashery:     {base: "https://api.ft.com/konstructor", header: "X-Api-Key"},
	GatewayKonstructor: {base: "https://konstructor.ft.com", header: "Authorization"},
	GatewayInternal:    {base: "http://konstructor.svc.ft.com"},
}

type Client struct {
	APIKey  string
	Owner   string
	Channel string
	HTTP    *http.Client
	// BaseURLs replaces gateway base urls, keyed by gateway name.
	BaseURLs map[string]string
}

type OpenRequest struct {
	Summary     string
	Environment string
	Name        string
	Gateway     string
}

type changeRequests struct {
	ChangeRequests []struct {
		ID json.RawMessage `json:"id"`
	} `json:"changeRequests"`
}

// Open logs a change request and returns its id.
func (c *Client) Open(ctx context.Context, in OpenRequest) (string, error) {
	form := url.Values{
		"ownerEmailAddress":      {c.Owner},
		"summaryOfChange":        {in.Summary},
		"changeDescription":      {"See summary"},
		"reasonForChangeDetails": {"Deployment"},
		"changeCategory":         {"Minor"},
		"riskProfile":            {"Low"},
		"environment":            {in.Environment},
		"willThereBeAnOutage":    {"No"},
		"resourceOne":            {c.Owner},
		"serviceIds":             {in.Name},
		"notifyChannel":          {c.Channel},
		"notify":                 {"true"},
	}
	body, err := c.post(ctx, in.Gateway, "/v1/changerequest/releaselog", form)
	if err != nil {
		return "", err
	}

	var out changeRequests
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding change request: %w", err)
	}
	if len(out.ChangeRequests) == 0 {
		return "", errors.New("konstructor returned no change request")
	}
	id := strings.Trim(string(out.ChangeRequests[0].ID), `"`)
	logLogs.Success("change request logged: %s", id)
	return id, nil
}

// Close marks the change request as implemented.
func (c *Client) Close(ctx context.Context, id, gatewayName string) error {
	if id == "" {
		return errors.New("change request id is required")
	}
	form := url.Values{
		"closedByEmailAddress": {c.Owner},
		"closeCategory":        {"Implemented"},
		"notifyChannel":        {c.Channel},
		"notify":               {"true"},
	}
	if _, err := c.post(ctx, gatewayName, "/v1/changerequest/close/"+url.PathEscape(id), form); err != nil {
		return err
	}
	logLogs.Success("change request %s closed", id)
	return nil
}

func (c *Client) post(ctx context.Context, gatewayName, path string, form url.Values) ([]byte, error) {
	gw, ok := gateways[gatewayName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGateway, gatewayName)
	}
	base := gw.base
	if override, ok := c.BaseURLs[gatewayName]; ok {
		base = override
	}

	encoded := form.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, strings.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Content-Length", strconv.Itoa(len(encoded)))
	if gw.header != "" {
		req.Header.Set(gw.header, c.APIKey)
	}

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logLogs.Debug("POST %s%s", base, path)
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("konstructor %s: %w", path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading konstructor response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		logLogs.Error("%s", body)
		return nil, fmt.Errorf("could not log change to SalesForce: %s", res.Status)
	}
	return body, nil
}
