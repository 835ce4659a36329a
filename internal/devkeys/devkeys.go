// Package devkeys downloads the shared development keys file.
package devkeys

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nexttools/internal/logger"
)

const FileName = ".next-development-keys.json"

var (
	ErrDevKeys = errors.New("could not download development keys; make sure you have joined the config-vars app with operate permissions")
	keysLogs   = logger.PackageLogger("devkeys", "🔑")
)

type Downloader struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

// Download writes the development keys to dest unless it already exists
// and update is false. It reports whether a file was written.
func (d Downloader) Download(ctx context.Context, dest string, update bool) (bool, error) {
	if _, err := os.Stat(dest); err == nil && !update {
		keysLogs.Info("development keys found, loading from %s", dest)
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", dest, err)
	}

	data, err := d.fetch(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDevKeys, err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return false, fmt.Errorf("%w: response is not json: %v", ErrDevKeys, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(dest, pretty.Bytes(), 0o600); err != nil {
		return false, fmt.Errorf("writing %s: %w", dest, err)
	}
	keysLogs.Success("development keys downloaded, written to %s", dest)
	return true, nil
}

func (d Downloader) fetch(ctx context.Context) ([]byte, error) {
	client := d.HTTP
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(d.BaseURL, "/")+"/development", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", d.Key)

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("config-vars service returned %s", res.Status)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DefaultPath is ~/.next-development-keys.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}
