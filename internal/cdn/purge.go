package cdn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Purge removes a single url from the cache. A soft purge marks the
// content stale instead of evicting it.
func (c *Client) Purge(ctx context.Context, rawURL string, soft bool) error {
	target, err := purgePath(rawURL)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	headers := map[string]string{}
	if soft {
		headers["Fastly-Soft-Purge"] = "1"
	}
	if err := c.do(ctx, http.MethodPost, "/purge/"+target, nil, headers, nil); err != nil {
		return err
	}
	cdnLogs.Success("purged %s", rawURL)
	return nil
}

// PurgeAll purges urls in order and stops at the first failure.
func (c *Client) PurgeAll(ctx context.Context, urls []string, soft bool) error {
	for _, u := range urls {
		if err := c.Purge(ctx, u, soft); err != nil {
			return fmt.Errorf("purging %s: %w", u, err)
		}
	}
	return nil
}

// purgePath turns https://host/path?q into host/path?q.
func purgePath(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid purge url %q", rawURL)
	}
	p := u.Host + u.EscapedPath()
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p, nil
}
