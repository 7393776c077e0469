package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/marcenapp/internal/importer"
	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/project"
)

// job is a part list ready to nest, with the settings it is nested under.
type job struct {
	Name     string
	Parts    []model.Part
	Settings model.NestingSettings
	Warnings []string
	Project  bool // Loaded from a saved project file
}

// loadJob reads a project file or a part list. Part lists are nested under
// defaults, overlaid with any settings a JSON part list carries.
func loadJob(path string, defaults model.NestingSettings, opts importer.Options) (job, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if project.IsProjectFile(path) {
		p, err := project.Load(path)
		if err != nil {
			return job{}, err
		}
		return job{Name: p.Name, Parts: p.Parts, Settings: p.Settings, Project: true}, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return job{}, fmt.Errorf("reading part list: %w", err)
		}
		pl, err := importer.DecodePartList(data)
		if err != nil {
			return job{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		name := pl.Name
		if name == "" {
			name = base
		}
		return job{Name: name, Parts: pl.Parts, Settings: pl.Apply(defaults)}, nil
	}

	res := importer.ImportFile(path, opts)
	if len(res.Errors) > 0 {
		return job{}, fmt.Errorf("%s: %d import errors:\n  %s",
			filepath.Base(path), len(res.Errors), strings.Join(res.Errors, "\n  "))
	}
	if len(res.Parts) == 0 {
		return job{}, fmt.Errorf("%s: no parts found", filepath.Base(path))
	}
	return job{Name: base, Parts: res.Parts, Settings: defaults, Warnings: res.Warnings}, nil
}

// fileBase turns a job name into something safe to use in file names.
func fileBase(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	if name == "" {
		return "nesting"
	}
	return name
}
