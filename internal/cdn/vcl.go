package cdn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultMainVCL = "main.vcl"

var ErrMissingService = errors.New("fastly service id is required")

type VCLFile struct {
	Name    string
	Content string
}

// LoadVCL reads every *.vcl file in dir and substitutes ${NAME} for each
// name in vars. A listed var with no value is an error.
func LoadVCL(dir string, vars []string, values map[string]string) ([]VCLFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.vcl"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .vcl files in %s", dir)
	}
	sort.Strings(paths)

	replacements := make([]string, 0, len(vars)*2)
	for _, name := range vars {
		v, ok := values[name]
		if !ok || v == "" {
			return nil, fmt.Errorf("vcl var %s has no value", name)
		}
		replacements = append(replacements, "${"+name+"}", v)
	}
	replacer := strings.NewReplacer(replacements...)

	files := make([]VCLFile, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		files = append(files, VCLFile{
			Name:    strings.TrimSuffix(filepath.Base(p), ".vcl"),
			Content: replacer.Replace(string(raw)),
		})
	}
	return files, nil
}

type version struct {
	Number int `json:"number"`
}

type serviceDetails struct {
	ActiveVersion *version `json:"active_version"`
}

type vclEntry struct {
	Name string `json:"name"`
}

type validation struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// DeployVCL clones the active version of the service, replaces its VCL with
// files, sets main, validates and activates the clone. It returns the new
// version number.
func (c *Client) DeployVCL(ctx context.Context, serviceID string, files []VCLFile, main string) (int, error) {
	if serviceID == "" {
		return 0, ErrMissingService
	}
	if main == "" {
		main = DefaultMainVCL
	}
	mainName := strings.TrimSuffix(main, ".vcl")
	found := false
	for _, f := range files {
		if f.Name == mainName {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("main vcl %s is not among the uploaded files", main)
	}

	svc := "/service/" + url.PathEscape(serviceID)

	var details serviceDetails
	if err := c.do(ctx, http.MethodGet, svc+"/details", nil, nil, &details); err != nil {
		return 0, err
	}
	if details.ActiveVersion == nil {
		return 0, fmt.Errorf("service %s has no active version", serviceID)
	}

	var clone version
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/version/%d/clone", svc, details.ActiveVersion.Number), nil, nil, &clone); err != nil {
		return 0, fmt.Errorf("cloning version %d: %w", details.ActiveVersion.Number, err)
	}
	cdnLogs.Info("cloned version %d to %d", details.ActiveVersion.Number, clone.Number)
	ver := fmt.Sprintf("%s/version/%d", svc, clone.Number)

	var existing []vclEntry
	if err := c.do(ctx, http.MethodGet, ver+"/vcl", nil, nil, &existing); err != nil {
		return 0, err
	}
	for _, e := range existing {
		if err := c.do(ctx, http.MethodDelete, ver+"/vcl/"+url.PathEscape(e.Name), nil, nil, nil); err != nil {
			return 0, fmt.Errorf("deleting vcl %s: %w", e.Name, err)
		}
	}

	for _, f := range files {
		form := url.Values{"name": {f.Name}, "content": {f.Content}}
		if err := c.do(ctx, http.MethodPost, ver+"/vcl", form, nil, nil); err != nil {
			return 0, fmt.Errorf("uploading vcl %s: %w", f.Name, err)
		}
		cdnLogs.Debug("uploaded %s.vcl", f.Name)
	}

	if err := c.do(ctx, http.MethodPut, ver+"/vcl/"+url.PathEscape(mainName)+"/main", nil, nil, nil); err != nil {
		return 0, fmt.Errorf("setting main vcl: %w", err)
	}

	var v validation
	if err := c.do(ctx, http.MethodGet, ver+"/validate", nil, nil, &v); err != nil {
		return 0, err
	}
	if v.Status != "ok" {
		return 0, fmt.Errorf("version %d failed validation: %s", clone.Number, v.Msg)
	}

	if err := c.do(ctx, http.MethodPut, ver+"/activate", nil, nil, nil); err != nil {
		return 0, fmt.Errorf("activating version %d: %w", clone.Number, err)
	}
	cdnLogs.Success("version %d of %s is active", clone.Number, serviceID)
	return clone.Number, nil
}
