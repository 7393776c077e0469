package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/marcenapp/internal/model"
)

// FileExtension is the default extension for JSON project files.
const FileExtension = ".marcen"

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Save writes a project as YAML for .yaml/.yml paths and JSON otherwise.
// YAML files hold only the inputs; JSON files also keep the last result.
func Save(path string, p model.Project) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(p)
	} else {
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a project saved by Save. Settings missing from the file are
// filled from the defaults.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("reading project: %w", err)
	}

	p := model.NewProject()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &p)
	} else {
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("parsing project %s: %w", filepath.Base(path), err)
	}

	if p.Parts == nil {
		p.Parts = []model.Part{}
	}
	if len(p.Settings.MaterialOrder) == 0 {
		p.Settings.MaterialOrder = model.DefaultNestingSettings().MaterialOrder
	}
	return p, nil
}

// IsProjectFile reports whether path looks like a saved project rather than
// a part list.
func IsProjectFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == FileExtension || isYAML(path)
}
