package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ft-next-", cfg.App.Prefix)
	assert.Equal(t, ".", cfg.App.ProjectDir)
	assert.Equal(t, "https://api.heroku.com", cfg.Heroku.APIURL)
	assert.Equal(t, 60*time.Second, cfg.GTG.Timeout)
	assert.Equal(t, 2*time.Second, cfg.GTG.Interval)
	assert.Equal(t, 5*time.Second, cfg.GTG.AttemptTimeout)
	assert.Equal(t, "herokuapp.com", cfg.GTG.HostSuffix)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "ft-next-qa", cfg.AWS.Bucket)
	assert.Equal(t, 5.0, cfg.Fastly.PurgeRate)
	assert.Equal(t, "konstructor", cfg.Konstructor.Gateway)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	dir := chdirTemp(t)
	content := []byte(`
app:
  name: ft-next-article
gtg:
  timeout: 90s
  interval: 500ms
aws:
  bucket: my-bucket
`)
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ft-next-article", cfg.App.Name)
	assert.Equal(t, 90*time.Second, cfg.GTG.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.GTG.Interval)
	assert.Equal(t, "my-bucket", cfg.AWS.Bucket)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("NEXTTOOLS_GTG_TIMEOUT", "10s")
	t.Setenv("NEXTTOOLS_APP_NAME", "from-env")
	t.Setenv("FASTLY_KEY", "fastly-secret")
	t.Setenv("HEROKU_AUTH_TOKEN", "heroku-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.GTG.Timeout)
	assert.Equal(t, "from-env", cfg.App.Name)
	assert.Equal(t, "fastly-secret", cfg.Fastly.Key)
	assert.Equal(t, "heroku-secret", cfg.Heroku.Token)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NEXTTOOLS_KONSTRUCTOR_API_KEY=dotenv-key\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("NEXTTOOLS_KONSTRUCTOR_API_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.Konstructor.APIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("/non/existent/nexttools.yml")
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := chdirTemp(t)
	cfg := Default()
	cfg.App.Name = "ft-next-front-page"

	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "token:")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.App.Name, loaded.App.Name)
	assert.Equal(t, cfg.GTG, loaded.GTG)
}
