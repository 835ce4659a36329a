// Package about writes the __about.json file served by deployed apps.
package about

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const FileName = "__about.json"

type About struct {
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	Versions            []string  `json:"versions"`
	AppVersion          string    `json:"appVersion"`
	BuildCompletionTime time.Time `json:"buildCompletionTime"`
}

// Write stores a under <projectDir>/public and returns the written path.
func Write(projectDir string, a About) (string, error) {
	if a.Name == "" {
		return "", fmt.Errorf("about: name is required")
	}
	if a.BuildCompletionTime.IsZero() {
		a.BuildCompletionTime = time.Now().UTC()
	}
	if a.Versions == nil {
		a.Versions = []string{}
	}

	dir := filepath.Join(projectDir, "public")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding about: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
