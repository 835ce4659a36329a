package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const HashesFile = "asset-hashes.json"

// StaticFiles maps source files onto keys under destination, dropping the
// first strip path components of each source. Directories are walked.
func StaticFiles(sources []string, destination string, strip int) ([]File, error) {
	var files []File
	for _, src := range sources {
		err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			key, err := stripKey(filepath.ToSlash(p), strip)
			if err != nil {
				return err
			}
			files = append(files, File{Path: p, Key: joinKey(destination, key)})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", src, err)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no files to upload")
	}
	return files, nil
}

func stripKey(p string, strip int) (string, error) {
	if strip < 0 {
		return "", fmt.Errorf("strip must not be negative, got %d", strip)
	}
	parts := strings.Split(strings.TrimPrefix(p, "./"), "/")
	if strip >= len(parts) {
		return "", fmt.Errorf("cannot strip %d components from %s", strip, p)
	}
	return strings.Join(parts[strip:], "/"), nil
}

func joinKey(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// HashedFiles reads <publicDir>/asset-hashes.json and returns the hashed
// files it names, keyed under appName/.
func HashedFiles(publicDir, appName string) ([]File, error) {
	raw, err := os.ReadFile(filepath.Join(publicDir, HashesFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s (run the asset build first): %w", HashesFile, err)
	}
	hashes := map[string]string{}
	if err := json.Unmarshal(raw, &hashes); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", HashesFile, err)
	}

	names := make([]string, 0, len(hashes))
	for _, hashed := range hashes {
		names = append(names, hashed)
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for _, hashed := range names {
		local := filepath.Join(publicDir, filepath.FromSlash(hashed))
		if _, err := os.Stat(local); err != nil {
			return nil, fmt.Errorf("hashed asset %s: %w", hashed, err)
		}
		files = append(files, File{Path: local, Key: joinKey(appName, hashed)})
	}
	return files, nil
}
