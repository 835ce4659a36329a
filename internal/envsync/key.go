package envsync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadKey returns explicit when set, otherwise the trimmed contents of
// keyFile. A leading ~/ in keyFile is expanded to the home directory.
func LoadKey(explicit, keyFile string) (string, error) {
	if k := strings.TrimSpace(explicit); k != "" {
		return k, nil
	}
	if keyFile == "" {
		return "", ErrMissingKey
	}
	if strings.HasPrefix(keyFile, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		keyFile = filepath.Join(home, keyFile[2:])
	}
	raw, err := os.ReadFile(keyFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s not found", ErrMissingKey, keyFile)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", keyFile, err)
	}
	k := strings.TrimSpace(string(raw))
	if k == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingKey, keyFile)
	}
	return k, nil
}
