package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectTemplate is a reusable part list with its nesting settings, such as a
// standard wardrobe module. It never carries a nesting result.
type ProjectTemplate struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	CreatedAt   string          `json:"created_at" yaml:"created_at"`
	UpdatedAt   string          `json:"updated_at" yaml:"updated_at"`
	Parts       []Part          `json:"parts" yaml:"parts"`
	Settings    NestingSettings `json:"settings" yaml:"settings"`
}

func NewProjectTemplate(name, description string, parts []Part, settings NestingSettings) ProjectTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return ProjectTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Parts:       copyParts(parts),
		Settings:    settings,
	}
}

// ToProject creates a project from the template. Parts get fresh IDs so
// edits to the project never reach back into the template.
func (t ProjectTemplate) ToProject(projectName string) Project {
	parts := make([]Part, len(t.Parts))
	for i, p := range t.Parts {
		parts[i] = NewPart(p.Name, p.Width, p.Height, p.Quantity, p.Material)
		parts[i].Grain = p.Grain
		parts[i].EdgeBanding = p.EdgeBanding
	}
	return Project{
		Name:     projectName,
		Parts:    parts,
		Settings: t.Settings,
	}
}

// TemplateStore holds the saved templates.
type TemplateStore struct {
	Templates []ProjectTemplate `json:"templates"`
}

func NewTemplateStore() TemplateStore {
	return TemplateStore{Templates: []ProjectTemplate{}}
}

func (ts *TemplateStore) Add(t ProjectTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove deletes the template with id. Returns true if it was found.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

func (ts *TemplateStore) FindByID(id string) *ProjectTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns the first template called name, or nil.
func (ts *TemplateStore) FindByName(name string) *ProjectTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

func copyParts(parts []Part) []Part {
	if parts == nil {
		return []Part{}
	}
	cp := make([]Part, len(parts))
	copy(cp, parts)
	return cp
}
