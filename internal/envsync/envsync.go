// Package envsync copies environment variables from the config-vars
// service onto a platform app.
package envsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"nexttools/internal/logger"
)

var (
	ErrMissingKey = errors.New("config-vars key is required")
	syncLogs      = logger.PackageLogger("configure", "🔧")
)

// Source fetches an app's variables from the config-vars service.
type Source struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

func (s Source) Fetch(ctx context.Context, app string) (map[string]string, error) {
	if s.Key == "" {
		return nil, ErrMissingKey
	}
	client := s.HTTP
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	endpoint := strings.TrimSuffix(s.BaseURL, "/") + "/" + url.PathEscape(app)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", s.Key)
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching config vars for %s: %w", app, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("config-vars service returned %s for %s", res.Status, app)
	}

	vars := map[string]string{}
	if err := json.NewDecoder(res.Body).Decode(&vars); err != nil {
		return nil, fmt.Errorf("decoding config vars for %s: %w", app, err)
	}
	return vars, nil
}

// ParseOverrides turns ["KEY=value", ...] into a map. An entry without '='
// is rejected.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("override %q is not KEY=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// Diff computes the platform patch that turns current into desired: changed
// or new keys carry their value, keys missing from desired are nil.
func Diff(current, desired map[string]string) map[string]*string {
	patch := map[string]*string{}
	for k, v := range desired {
		if cur, ok := current[k]; ok && cur == v {
			continue
		}
		v := v
		patch[k] = &v
	}
	for k := range current {
		if _, ok := desired[k]; !ok {
			patch[k] = nil
		}
	}
	return patch
}

// Target is the platform side of a sync.
type Target interface {
	ConfigVars(ctx context.Context, app string) (map[string]string, error)
	UpdateConfigVars(ctx context.Context, app string, patch map[string]*string) (map[string]string, error)
}

// Sync applies source vars plus overrides onto the target app and returns
// the sorted list of keys it changed.
func Sync(ctx context.Context, src Source, dst Target, from, to string, overrides map[string]string) ([]string, error) {
	desired, err := src.Fetch(ctx, from)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		desired[k] = v
	}

	current, err := dst.ConfigVars(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("reading config vars of %s: %w", to, err)
	}

	patch := Diff(current, desired)
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(patch) == 0 {
		syncLogs.Info("%s already up to date", to)
		return keys, nil
	}
	if _, err := dst.UpdateConfigVars(ctx, to, patch); err != nil {
		return nil, fmt.Errorf("updating config vars of %s: %w", to, err)
	}
	syncLogs.Success("updated %d config var(s) on %s", len(keys), to)
	return keys, nil
}
