package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "nexttools"
	keyringUser    = "heroku"
)

// TokenResolver finds a Heroku auth token: an explicit value first, then the
// OS keyring, then the heroku CLI.
type TokenResolver struct {
	Explicit string
	// CLI runs `heroku auth:token`; replaced in tests.
	CLI func(ctx context.Context) (string, error)
}

func (r TokenResolver) Resolve(ctx context.Context) (string, error) {
	if t := strings.TrimSpace(r.Explicit); t != "" {
		return t, nil
	}

	t, err := keyring.Get(keyringService, keyringUser)
	switch {
	case err == nil && t != "":
		platformLogs.Debug("using heroku token from keyring")
		return t, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		platformLogs.Warn("keyring unavailable: %v", err)
	}

	cli := r.CLI
	if cli == nil {
		cli = herokuCLIToken
	}
	t, err = cli(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingToken, err)
	}
	if t == "" {
		return "", ErrMissingToken
	}
	return t, nil
}

// StoreToken saves token in the OS keyring for later Resolve calls.
func StoreToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return fmt.Errorf("storing heroku token in keyring: %w", err)
	}
	return nil
}

// ForgetToken removes a stored token; a missing entry is not an error.
func ForgetToken() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing heroku token from keyring: %w", err)
	}
	return nil
}

func herokuCLIToken(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "heroku", "auth:token")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("heroku auth:token failed: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
