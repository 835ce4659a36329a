package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// CommitHash returns the full sha of HEAD in dir.
func CommitHash(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "rev-parse", "HEAD")
}

// ShortHash returns the 7 character abbreviation of HEAD.
func ShortHash(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "rev-parse", "--short=7", "HEAD")
}

func IsDirty(ctx context.Context, dir string) bool {
	out, _ := run(ctx, dir, "status", "--porcelain")
	return out != ""
}
