package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region load-file

// LoadFile parses a single YAML template definition.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	applyDefaults(&tpl)
	if result := Validate(&tpl); !result.Passed {
		return nil, fmt.Errorf("invalid template %s: %s", path, result.Reason)
	}
	return &tpl, nil
}

// applyDefaults fills schema defaults the YAML may omit.
func applyDefaults(tpl *Template) {
	if tpl.Output.Format == "" {
		tpl.Output.Format = DefaultFormat
	}
	if len(tpl.Output.FormatOptions) == 0 {
		tpl.Output.FormatOptions = []string{tpl.Output.Format}
	}
}

// #endregion load-file

// #region load-dir

// LoadDir loads every .yaml/.yml file in dir, sorted by filename so
// registration order is stable across runs.
func LoadDir(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	templates := make([]*Template, 0, len(paths))
	for _, p := range paths {
		tpl, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

// RegistryFromDir loads a directory and registers everything found.
func RegistryFromDir(dir string) (*Registry, error) {
	templates, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, tpl := range templates {
		if err := reg.Register(tpl); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// #endregion load-dir
