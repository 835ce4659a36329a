package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type packageJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func readPackageJSON(projectDir string) (packageJSON, error) {
	var pkg packageJSON
	raw, err := os.ReadFile(filepath.Join(projectDir, "package.json"))
	if err != nil {
		return pkg, fmt.Errorf("reading package.json: %w", err)
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return pkg, fmt.Errorf("parsing package.json: %w", err)
	}
	return pkg, nil
}

// NormalizeName strips the ft- and next- prefixes projects carry in
// package.json so the prefix can be applied once.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "ft-")
	name = strings.TrimPrefix(name, "next-")
	return name
}

// AppName returns explicit when set, otherwise prefix + the normalized
// package.json name.
func AppName(explicit, prefix, projectDir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	pkg, err := readPackageJSON(projectDir)
	if err != nil {
		return "", err
	}
	if pkg.Name == "" {
		return "", fmt.Errorf("package.json has no name; pass an app name")
	}
	return prefix + NormalizeName(pkg.Name), nil
}
