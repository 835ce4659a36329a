package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"-c", "user.email=dev@example.com", "-c", "user.name=dev", "commit", "-q", "--allow-empty", "-m", "init"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	return dir
}

func TestCommitHash(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	full, err := CommitHash(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, full, 40)

	short, err := ShortHash(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, full[:7], short)
}

func TestIsDirty(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()
	assert.False(t, IsDirty(ctx, dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644))
	assert.True(t, IsDirty(ctx, dir))
}

func TestCommitHash_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	_, err := CommitHash(context.Background(), t.TempDir())
	assert.Error(t, err)
}
