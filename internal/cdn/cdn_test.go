package cdn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "fastly-key", WithPurgeRate(0))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("", "")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestPurge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/purge/www.ft.com/__assets/main.css", r.URL.Path)
		assert.Equal(t, "fastly-key", r.Header.Get("Fastly-Key"))
		assert.Equal(t, "1", r.Header.Get("Fastly-Soft-Purge"))
		w.Write([]byte(`{"status":"ok"}`))
	})
	require.NoError(t, c.Purge(context.Background(), "https://www.ft.com/__assets/main.css", true))
}

func TestPurgeAll_StopsOnFailure(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Empty(t, r.Header.Get("Fastly-Soft-Purge"))
		if strings.Contains(r.URL.Path, "bad") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
	})
	err := c.PurgeAll(context.Background(), []string{"ft.com/a", "ft.com/bad", "ft.com/c"}, false)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, []string{"/purge/ft.com/a", "/purge/ft.com/bad"}, paths)
}

func TestPurge_InvalidURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	assert.Error(t, c.Purge(context.Background(), "https://", false))
}

func writeVCL(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadVCL_SubstitutesVars(t *testing.T) {
	dir := writeVCL(t, map[string]string{
		"main.vcl":   `set req.http.Auth = "${AUTH_KEY}"; backend ${SERVICE};`,
		"extra.vcl":  `# nothing`,
		"README.txt": "ignored",
	})

	files, err := LoadVCL(dir, []string{"AUTH_KEY", "SERVICE"}, map[string]string{"AUTH_KEY": "s3cret", "SERVICE": "origin"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "extra", files[0].Name)
	assert.Equal(t, "main", files[1].Name)
	assert.Equal(t, `set req.http.Auth = "s3cret"; backend origin;`, files[1].Content)

	_, err = LoadVCL(dir, []string{"MISSING"}, nil)
	assert.ErrorContains(t, err, "MISSING")

	_, err = LoadVCL(t.TempDir(), nil, nil)
	assert.Error(t, err)
}

type fakeFastly struct {
	mu       sync.Mutex
	calls    []string
	uploaded map[string]string
	validate string
}

func (f *fakeFastly) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	switch {
	case r.URL.Path == "/service/svc/details":
		w.Write([]byte(`{"active_version":{"number":7}}`))
	case r.URL.Path == "/service/svc/version/7/clone":
		w.Write([]byte(`{"number":8}`))
	case r.Method == http.MethodGet && r.URL.Path == "/service/svc/version/8/vcl":
		json.NewEncoder(w).Encode([]vclEntry{{Name: "old"}})
	case r.Method == http.MethodPost && r.URL.Path == "/service/svc/version/8/vcl":
		_ = r.ParseForm()
		f.uploaded[r.PostForm.Get("name")] = r.PostForm.Get("content")
	case r.URL.Path == "/service/svc/version/8/validate":
		fmt.Fprintf(w, `{"status":%q,"msg":"syntax error"}`, f.validate)
	}
}

func TestDeployVCL(t *testing.T) {
	fake := &fakeFastly{uploaded: map[string]string{}, validate: "ok"}
	c := newTestClient(t, fake.ServeHTTP)

	files := []VCLFile{{Name: "main", Content: "sub vcl_recv {}"}, {Name: "extra", Content: "#"}}
	v, err := c.DeployVCL(context.Background(), "svc", files, "main.vcl")
	require.NoError(t, err)
	assert.Equal(t, 8, v)
	assert.Equal(t, map[string]string{"main": "sub vcl_recv {}", "extra": "#"}, fake.uploaded)
	assert.Equal(t, []string{
		"GET /service/svc/details",
		"PUT /service/svc/version/7/clone",
		"GET /service/svc/version/8/vcl",
		"DELETE /service/svc/version/8/vcl/old",
		"POST /service/svc/version/8/vcl",
		"POST /service/svc/version/8/vcl",
		"PUT /service/svc/version/8/vcl/main/main",
		"GET /service/svc/version/8/validate",
		"PUT /service/svc/version/8/activate",
	}, fake.calls)
}

func TestDeployVCL_ValidationFailureDoesNotActivate(t *testing.T) {
	fake := &fakeFastly{uploaded: map[string]string{}, validate: "error"}
	c := newTestClient(t, fake.ServeHTTP)

	_, err := c.DeployVCL(context.Background(), "svc", []VCLFile{{Name: "main"}}, "")
	assert.ErrorContains(t, err, "syntax error")
	assert.NotContains(t, fake.calls, "PUT /service/svc/version/8/activate")
}

func TestDeployVCL_Preconditions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.DeployVCL(context.Background(), "", []VCLFile{{Name: "main"}}, "")
	assert.ErrorIs(t, err, ErrMissingService)

	_, err = c.DeployVCL(context.Background(), "svc", []VCLFile{{Name: "other"}}, "main.vcl")
	assert.ErrorContains(t, err, "main vcl")
}
