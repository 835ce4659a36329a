package deploy

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nexttools/internal/gtg"
	"nexttools/internal/logger"
	"nexttools/internal/platform"
)

type mockPlatform struct{ mock.Mock }

func (m *mockPlatform) EnablePreboot(ctx context.Context, app string) error {
	return m.Called(app).Error(0)
}

func (m *mockPlatform) CreateSource(ctx context.Context) (*platform.Source, error) {
	args := m.Called()
	src, _ := args.Get(0).(*platform.Source)
	return src, args.Error(1)
}

func (m *mockPlatform) UploadSource(ctx context.Context, putURL string, body io.Reader, size int64) error {
	return m.Called(putURL, size > 0).Error(0)
}

func (m *mockPlatform) CreateBuild(ctx context.Context, app string, in platform.BuildCreate) (*platform.Build, error) {
	args := m.Called(app, in)
	b, _ := args.Get(0).(*platform.Build)
	return b, args.Error(1)
}

func (m *mockPlatform) WaitForBuild(ctx context.Context, app, id string, interval time.Duration) (*platform.Build, error) {
	args := m.Called(app, id)
	b, _ := args.Get(0).(*platform.Build)
	return b, args.Error(1)
}

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(ctx context.Context, t gtg.Target) (gtg.Outcome, error) {
	args := m.Called(t.URL())
	return args.Get(0).(gtg.Outcome), args.Error(1)
}

func projectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"next-article","description":"Article pages"}`), 0o644))
	return dir
}

func newDeployer(pf *mockPlatform, v *mockVerifier) *Deployer {
	return &Deployer{
		Token:       func(context.Context) (string, error) { return "tok", nil },
		Commit:      func(context.Context, string) (string, error) { return "abc123", nil },
		NewPlatform: func(token string) (Platform, error) { return pf, nil },
		Verifier:    v,
	}
}

func TestDeploy_FullSequence(t *testing.T) {
	dir := projectDir(t)
	pf := &mockPlatform{}
	v := &mockVerifier{}

	pf.On("CreateSource").Return(&platform.Source{SourceBlob: platform.SourceBlob{GetURL: "https://get", PutURL: "https://put"}}, nil)
	pf.On("UploadSource", "https://put", true).Return(nil)
	pf.On("EnablePreboot", "ft-next-article").Return(nil)
	pf.On("CreateBuild", "ft-next-article", platform.BuildCreate{
		SourceBlob: platform.BuildSource{URL: "https://get", Version: "abc123"},
	}).Return(&platform.Build{ID: "b1", Status: platform.BuildPending}, nil)
	pf.On("WaitForBuild", "ft-next-article", "b1").Return(&platform.Build{ID: "b1", Status: platform.BuildSucceeded}, nil)
	v.On("Verify", "https://ft-next-article.herokuapp.com/__gtg").Return(gtg.Outcome{Kind: gtg.Healthy, Attempts: 2}, nil)

	res, err := newDeployer(pf, v).Deploy(context.Background(), Options{App: "ft-next-article", ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.Commit)
	assert.Equal(t, "b1", res.BuildID)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, gtg.Healthy, res.Outcome.Kind)

	pf.AssertExpectations(t)
	v.AssertExpectations(t)
	assert.FileExists(t, filepath.Join(dir, "public", "__about.json"))
}

func TestDeploy_SkipsPrebootAndGTG(t *testing.T) {
	dir := projectDir(t)
	pf := &mockPlatform{}
	v := &mockVerifier{}

	pf.On("CreateSource").Return(&platform.Source{SourceBlob: platform.SourceBlob{GetURL: "g", PutURL: "p"}}, nil)
	pf.On("UploadSource", "p", true).Return(nil)
	pf.On("CreateBuild", "app", mock.Anything).Return(&platform.Build{ID: "b"}, nil)
	pf.On("WaitForBuild", "app", "b").Return(&platform.Build{Status: platform.BuildSucceeded}, nil)

	res, err := newDeployer(pf, v).Deploy(context.Background(), Options{
		App: "app", ProjectDir: dir, SkipEnablePreboot: true, SkipGTG: true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Outcome)
	pf.AssertNotCalled(t, "EnablePreboot", mock.Anything)
	v.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestDeploy_DockerWritesDockerfileAndReleases(t *testing.T) {
	dir := projectDir(t)
	pf := &mockPlatform{}
	v := &mockVerifier{}
	pf.On("EnablePreboot", "app").Return(nil)
	v.On("Verify", mock.Anything).Return(gtg.Outcome{Kind: gtg.Healthy}, nil)

	var ran []string
	d := newDeployer(pf, v)
	d.Exec = func(ctx context.Context, dir, name string, args ...string) error {
		ran = append([]string{name}, args...)
		return nil
	}

	_, err := d.Deploy(context.Background(), Options{App: "app", ProjectDir: dir, Docker: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"heroku", "docker:release", "--app", "app"}, ran)

	raw, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err)
	assert.Equal(t, "FROM "+DefaultDockerImage, string(raw))
	pf.AssertNotCalled(t, "CreateBuild", mock.Anything, mock.Anything)
}

func TestDeploy_WarnsOnDirtyTreeAndTimesPhases(t *testing.T) {
	var logs bytes.Buffer
	logger.Configure(&logs, logger.LevelDebug, "json")
	t.Cleanup(func() { logger.Configure(&bytes.Buffer{}, logger.LevelInfo, "console") })

	dir := projectDir(t)
	pf := &mockPlatform{}
	d := newDeployer(pf, &mockVerifier{})
	d.Exec = func(context.Context, string, string, ...string) error { return nil }
	var checked string
	d.Dirty = func(_ context.Context, dir string) bool {
		checked = dir
		return true
	}

	_, err := d.Deploy(context.Background(), Options{App: "app", ProjectDir: dir, Docker: true, SkipEnablePreboot: true, SkipGTG: true})
	require.NoError(t, err)
	assert.Equal(t, dir, checked)
	assert.Contains(t, logs.String(), "uncommitted changes")
	assert.Contains(t, logs.String(), "completed build")
	assert.Contains(t, logs.String(), "completed release")
}

func TestDeploy_ExistingDockerfileIsKept(t *testing.T) {
	dir := projectDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM custom"), 0o644))
	pf := &mockPlatform{}
	d := newDeployer(pf, &mockVerifier{})
	d.Exec = func(context.Context, string, string, ...string) error { return nil }

	_, err := d.Deploy(context.Background(), Options{App: "app", ProjectDir: dir, Docker: true, SkipEnablePreboot: true, SkipGTG: true})
	require.NoError(t, err)
	raw, _ := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	assert.Equal(t, "FROM custom", string(raw))
}

func TestDeploy_FirstFailureWins(t *testing.T) {
	pf := &mockPlatform{}
	d := newDeployer(pf, &mockVerifier{})
	d.Token = func(context.Context) (string, error) { return "", platform.ErrMissingToken }

	_, err := d.Deploy(context.Background(), Options{App: "app", ProjectDir: projectDir(t)})
	assert.ErrorIs(t, err, platform.ErrMissingToken)
	pf.AssertNotCalled(t, "EnablePreboot", mock.Anything)
}

func TestDeploy_PrebootFailureStopsRelease(t *testing.T) {
	pf := &mockPlatform{}
	pf.On("CreateSource").Return(&platform.Source{}, nil)
	pf.On("UploadSource", mock.Anything, mock.Anything).Return(nil)
	pf.On("EnablePreboot", "app").Return(errors.New("forbidden"))

	_, err := newDeployer(pf, &mockVerifier{}).Deploy(context.Background(), Options{App: "app", ProjectDir: projectDir(t)})
	assert.ErrorContains(t, err, "enabling preboot")
	pf.AssertNotCalled(t, "CreateBuild", mock.Anything, mock.Anything)
}

func TestDeploy_GTGTimeoutIsReturned(t *testing.T) {
	pf := &mockPlatform{}
	pf.On("EnablePreboot", "app").Return(nil)
	v := &mockVerifier{}
	timeout := &gtg.TimeoutError{App: "app", Attempts: 30, Elapsed: time.Minute}
	v.On("Verify", mock.Anything).Return(gtg.Outcome{Kind: gtg.TimedOut, Attempts: 30}, timeout)

	d := newDeployer(pf, v)
	d.Exec = func(context.Context, string, string, ...string) error { return nil }
	res, err := d.Deploy(context.Background(), Options{App: "app", ProjectDir: projectDir(t), Docker: true})
	assert.ErrorIs(t, err, gtg.ErrTimedOut)
	require.NotNil(t, res)
	assert.Equal(t, gtg.TimedOut, res.Outcome.Kind)
}

func TestDeploy_InvalidAppFailsBeforeRemoteCalls(t *testing.T) {
	pf := &mockPlatform{}
	d := newDeployer(pf, &mockVerifier{})
	tokenCalled := false
	d.Token = func(context.Context) (string, error) { tokenCalled = true; return "t", nil }

	_, err := d.Deploy(context.Background(), Options{App: "Not A Host", ProjectDir: projectDir(t)})
	assert.ErrorIs(t, err, gtg.ErrInvalidTarget)
	assert.False(t, tokenCalled)
}

func TestAppName(t *testing.T) {
	dir := projectDir(t)

	name, err := AppName("", "ft-next-", dir)
	require.NoError(t, err)
	assert.Equal(t, "ft-next-article", name)

	name, err = AppName("explicit", "ft-next-", dir)
	require.NoError(t, err)
	assert.Equal(t, "explicit", name)

	_, err = AppName("", "ft-next-", t.TempDir())
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "front-page", NormalizeName("ft-next-front-page"))
	assert.Equal(t, "article", NormalizeName("next-article"))
	assert.Equal(t, "search", NormalizeName("Search"))
}

func TestTarball_SkipsGitAndNodeModules(t *testing.T) {
	dir := projectDir(t)
	for _, p := range []string{".git/HEAD", "node_modules/x/index.js", "server/app.js"} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	buf, err := Tarball(dir)
	require.NoError(t, err)

	gz, err := gzip.NewReader(buf)
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	var files []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeReg {
			files = append(files, hdr.Name)
		}
	}
	sort.Strings(files)
	assert.Equal(t, []string{"package.json", "server/app.js"}, files)
}
