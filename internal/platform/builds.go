package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	BuildPending   = "pending"
	BuildSucceeded = "succeeded"
	BuildFailed    = "failed"
)

type SourceBlob struct {
	GetURL string `json:"get_url"`
	PutURL string `json:"put_url"`
}

type Source struct {
	SourceBlob SourceBlob `json:"source_blob"`
}

// CreateSource reserves a blob the project tarball can be PUT to.
func (c *Client) CreateSource(ctx context.Context) (*Source, error) {
	var src Source
	if err := c.do(ctx, http.MethodPost, "/sources", nil, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// UploadSource PUTs the tarball to the pre-signed url returned by CreateSource.
func (c *Client) UploadSource(ctx context.Context, putURL string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, putURL, body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = size
	// the signature is computed without a content type
	req.Header.Set("Content-Type", "")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("uploading source: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Method: http.MethodPut, Path: "source blob", Status: res.StatusCode}
	}
	return nil
}

type BuildSource struct {
	URL     string `json:"url"`
	Version string `json:"version,omitempty"`
}

type BuildCreate struct {
	SourceBlob BuildSource `json:"source_blob"`
}

type Build struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	OutputStreamURL string `json:"output_stream_url"`
	Release         *struct {
		ID string `json:"id"`
	} `json:"release"`
}

func (c *Client) CreateBuild(ctx context.Context, app string, in BuildCreate) (*Build, error) {
	var b Build
	if err := c.do(ctx, http.MethodPost, "/apps/"+url.PathEscape(app)+"/builds", in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) GetBuild(ctx context.Context, app, id string) (*Build, error) {
	var b Build
	path := "/apps/" + url.PathEscape(app) + "/builds/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// WaitForBuild polls the build until it leaves the pending state.
func (c *Client) WaitForBuild(ctx context.Context, app, id string, interval time.Duration) (*Build, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		b, err := c.GetBuild(ctx, app, id)
		if err != nil {
			return nil, err
		}
		switch b.Status {
		case BuildSucceeded:
			return b, nil
		case BuildFailed:
			return b, fmt.Errorf("build %s for %s failed", id, app)
		}
		platformLogs.Debug("build %s is %s", id, b.Status)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
